// Package ingest imports trust graphs from JSON, CSV edge lists, and YAML.
package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TFMV/tenlab/models"
	"github.com/TFMV/tenlab/physics"
)

// ErrMissingColumns is returned when a CSV header lacks source or target
var ErrMissingColumns = errors.New("CSV must contain source and target columns")

// DataProcessor defines the interface that all data processors must implement
type DataProcessor interface {
	// ProcessData takes raw data bytes and returns a graph representation
	ProcessData(data []byte) (*models.Graph, error)

	// GetName returns the name of the processor
	GetName() string
}

// document is the shape shared by JSON and YAML imports.
// Positions are optional; missing ones are placed near the center.
type document struct {
	Name  string `json:"name" yaml:"name"`
	Nodes []struct {
		ID    string   `json:"id" yaml:"id"`
		Label string   `json:"label" yaml:"label"`
		X     *float64 `json:"x,omitempty" yaml:"x,omitempty"`
		Y     *float64 `json:"y,omitempty" yaml:"y,omitempty"`
	} `json:"nodes" yaml:"nodes"`
	Edges []struct {
		Source string `json:"source" yaml:"from"`
		Target string `json:"target" yaml:"to"`
	} `json:"edges" yaml:"edges"`
}

func (d *document) build(defaultName string, placer *physics.Placer) (*models.Graph, error) {
	name := d.Name
	if name == "" {
		name = defaultName
	}
	graph := models.NewGraph(name)

	for i, n := range d.Nodes {
		x, y := placer.Next()
		if n.X != nil {
			x = *n.X
		}
		if n.Y != nil {
			y = *n.Y
		}
		node := models.NewNode(n.Label, x, y)
		if n.ID != "" {
			node.ID = n.ID
		}
		if err := graph.AddNode(node); err != nil {
			return nil, fmt.Errorf("node %d (%q): %w", i, n.ID, err)
		}
	}

	for i, e := range d.Edges {
		if err := graph.AddEdge(e.Source, e.Target); err != nil {
			return nil, fmt.Errorf("edge %d (%s -> %s): %w", i, e.Source, e.Target, err)
		}
	}

	return graph, nil
}

// JSONProcessor handles JSON data
type JSONProcessor struct {
	placer *physics.Placer
}

// NewJSONProcessor creates a new JSON processor with the specified placer
func NewJSONProcessor(placer *physics.Placer) *JSONProcessor {
	if placer == nil {
		placer = physics.NewPlacer(1)
	}
	return &JSONProcessor{placer: placer}
}

// GetName returns the name of the processor
func (p *JSONProcessor) GetName() string {
	return "JSON Processor"
}

// ProcessData processes JSON data
func (p *JSONProcessor) ProcessData(data []byte) (*models.Graph, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}
	return doc.build("JSON Import", p.placer)
}

// YAMLProcessor handles YAML data in the same shape as the ranking presets
type YAMLProcessor struct {
	placer *physics.Placer
}

// NewYAMLProcessor creates a new YAML processor with the specified placer
func NewYAMLProcessor(placer *physics.Placer) *YAMLProcessor {
	if placer == nil {
		placer = physics.NewPlacer(1)
	}
	return &YAMLProcessor{placer: placer}
}

// GetName returns the name of the processor
func (p *YAMLProcessor) GetName() string {
	return "YAML Processor"
}

// ProcessData processes YAML data
func (p *YAMLProcessor) ProcessData(data []byte) (*models.Graph, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	return doc.build("YAML Import", p.placer)
}

// CSVProcessor handles CSV edge lists. Nodes are created from the names
// in the source and target columns, in order of first appearance.
type CSVProcessor struct {
	placer *physics.Placer
}

// NewCSVProcessor creates a new CSV processor with the specified placer
func NewCSVProcessor(placer *physics.Placer) *CSVProcessor {
	if placer == nil {
		placer = physics.NewPlacer(1)
	}
	return &CSVProcessor{placer: placer}
}

// GetName returns the name of the processor
func (p *CSVProcessor) GetName() string {
	return "CSV Processor"
}

// ProcessData processes CSV data
func (p *CSVProcessor) ProcessData(data []byte) (*models.Graph, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	sourceIdx, targetIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "source", "from", "src":
			sourceIdx = i
		case "target", "to", "dst":
			targetIdx = i
		}
	}
	if sourceIdx == -1 || targetIdx == -1 {
		return nil, ErrMissingColumns
	}

	graph := models.NewGraph("CSV Import")
	ensure := func(name string) error {
		if _, err := graph.FindNodeByID(name); err == nil {
			return nil
		}
		x, y := p.placer.Next()
		node := models.NewNode(name, x, y)
		node.ID = name
		return graph.AddNode(node)
	}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}

		source := strings.TrimSpace(row[sourceIdx])
		target := strings.TrimSpace(row[targetIdx])
		if err := ensure(source); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := ensure(target); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := graph.AddEdge(source, target); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}

	return graph, nil
}

// GetProcessor returns the appropriate processor for the given format
func GetProcessor(format string) (DataProcessor, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONProcessor(nil), nil
	case "csv":
		return NewCSVProcessor(nil), nil
	case "yaml", "yml":
		return NewYAMLProcessor(nil), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatFromPath guesses the import format from a file extension
func FormatFromPath(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return "json"
	}
	return strings.ToLower(path[i+1:])
}
