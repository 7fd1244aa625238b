package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/TFMV/tenlab/tools"
	"github.com/TFMV/tenlab/verdict"
)

// Dashboard palette
var (
	colorAccent  = lipgloss.Color("#4ade80")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorInfo    = lipgloss.Color("#20B9B4")
	colorMuted   = lipgloss.Color("#6B7280")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	formulaStyle = lipgloss.NewStyle().Italic(true).Foreground(colorMuted)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
)

// toneColor maps a verdict tone to its border color
func toneColor(t verdict.Tone) lipgloss.Color {
	switch t {
	case verdict.Good:
		return colorAccent
	case verdict.Caution:
		return colorWarning
	case verdict.Bad:
		return colorError
	case verdict.Info:
		return colorInfo
	default:
		return colorMuted
	}
}

// report is the machine-readable form of one tool run
type report struct {
	Tool    tools.ID        `json:"tool"`
	Preset  string          `json:"preset,omitempty"`
	Params  any             `json:"params"`
	Result  any             `json:"result"`
	Verdict verdict.Verdict `json:"verdict"`
}

// print writes r as JSON, or as a styled block with body in the middle
func (a *app) print(w io.Writer, r report, body func(w io.Writer)) error {
	if a.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	info := r.Tool.Info()
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(info.Number+" "+info.Title), labelStyle.Render(info.Subtitle))
	fmt.Fprintln(w, formulaStyle.Render(info.Formula))
	if r.Preset != "" {
		field(w, "Preset", r.Preset)
	}
	fmt.Fprintln(w)
	body(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, banner(r.Verdict))
	return nil
}

// field prints one aligned label/value line
func field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-16s", label)), valueStyle.Render(value))
}

// banner renders a verdict as a bordered box colored by tone
func banner(v verdict.Verdict) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(toneColor(v.Tone)).
		Padding(0, 1)
	title := lipgloss.NewStyle().Bold(true).Foreground(toneColor(v.Tone)).Render(v.Title)
	return box.Render(title + "\n" + v.Detail)
}
