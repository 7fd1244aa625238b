package cli

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TFMV/tenlab/bandit"
	"github.com/TFMV/tenlab/descent"
	"github.com/TFMV/tenlab/ingest"
	"github.com/TFMV/tenlab/markov"
	"github.com/TFMV/tenlab/models"
	"github.com/TFMV/tenlab/ranking"
	"github.com/TFMV/tenlab/render"
	"github.com/TFMV/tenlab/scheduler"
	"github.com/TFMV/tenlab/tools"
	"github.com/TFMV/tenlab/verdict"
)

// renderOptions applies the configured canvas to the default options
func (a *app) renderOptions(format string) *render.OutputOptions {
	opts := render.NewDefaultOptions(format)
	opts.Width = a.cfg.Render.Width
	opts.Height = a.cfg.Render.Height
	opts.Background = a.cfg.Render.Background
	opts.Accent = a.cfg.Render.Accent
	return opts
}

// seeded returns a repeatable source for a non-zero seed, else nil
func seeded(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (a *app) markovCmd() *cobra.Command {
	var (
		preset, svg string
		seed        uint64
		steps       int
		flags       markov.Params
	)
	cmd := &cobra.Command{
		Use:   "markov",
		Short: tools.Markov.Info().Subtitle,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, name := markov.DefaultParams(), ""
			if preset != "" {
				i, err := a.presets.Index(tools.Markov, preset)
				if err != nil {
					return err
				}
				p, name = a.presets.Markov[i].Params, a.presets.Markov[i].Name
			}
			override(cmd, "name-a", &p.NameA, flags.NameA)
			override(cmd, "name-b", &p.NameB, flags.NameB)
			override(cmd, "retention", &p.Retention, flags.Retention)
			override(cmd, "recovery", &p.Recovery, flags.Recovery)
			if err := check(p); err != nil {
				return err
			}

			st := markov.Solve(p)
			var src markov.Uniform
			if r := seeded(seed); r != nil {
				src = r
			}
			walk := markov.WalkN(p, src, steps)
			if svg != "" {
				if err := a.writeFile(svg, render.MarkovSVG(walk, st, a.renderOptions("svg"))); err != nil {
					return err
				}
			}

			result := struct {
				Stationary markov.Stationary `json:"stationary"`
				Walk       string            `json:"walk"`
				Occupancy  float64           `json:"occupancy"`
			}{st, render.WalkStrip(walk), markov.Occupancy(walk)}
			return a.print(cmd.OutOrStdout(), report{tools.Markov, name, p, result, verdict.Markov(st)}, func(w io.Writer) {
				field(w, "A", fmt.Sprintf("%s (stay %.0f%%)", p.NameA, p.Retention))
				field(w, "B", fmt.Sprintf("%s (back to A %.0f%%)", p.NameB, p.Recovery))
				fmt.Fprint(w, render.Bars([]string{"  " + p.NameA, "  " + p.NameB}, []float64{st.A, st.B}, 100, 30))
				if st.Degenerate {
					field(w, "Note", "no transitions either way; the split is a convention")
				}
				field(w, "Walk", result.Walk)
				field(w, "Time in A", fmt.Sprintf("%.1f%%", result.Occupancy))
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&preset, "preset", "p", "", presetUsage)
	f.StringVar(&flags.NameA, "name-a", "", "name of the good state")
	f.StringVar(&flags.NameB, "name-b", "", "name of the bad state")
	f.Float64Var(&flags.Retention, "retention", 0, "chance to stay in A, percent")
	f.Float64Var(&flags.Recovery, "recovery", 0, "chance to return from B to A, percent")
	f.Uint64Var(&seed, "seed", 0, "seed for a repeatable walk (0 picks one)")
	f.IntVar(&steps, "steps", markov.WalkSteps, "walk length in transitions")
	f.StringVar(&svg, "svg", "", "write the walk chart to this file")
	return cmd
}

func (a *app) rankCmd() *cobra.Command {
	var preset, input, layout, format, out string
	cmd := &cobra.Command{
		Use:     "rank",
		Aliases: []string{"ranking", "pagerank"},
		Short:   tools.Ranking.Info().Subtitle,
		Long: `Rank the nodes of a trust network with PageRank.

The network comes from a preset or from a JSON, YAML or CSV file. The
default output is a table plus a terminal sketch; --format svg, ascii, json
or dot renders the graph instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, name, err := a.loadGraph(preset, input)
			if err != nil {
				return err
			}
			results := ranking.Rank(g)
			v := verdict.Ranking(results)
			a.logger.Debug("ranked", "graph", g.Name, "nodes", len(g.Nodes), "edges", len(g.Edges))

			if format != "table" {
				opts := a.renderOptions(format)
				opts.Layout = layout
				data, err := render.Generate(g, opts)
				if err != nil {
					return err
				}
				if out != "" {
					return a.writeFile(out, data)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			sketch := render.NewDefaultOptions("ascii")
			sketch.Layout = layout
			picture, err := render.Generate(g, sketch)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), report{tools.Ranking, name, g, results, v}, func(w io.Writer) {
				labels := make([]string, len(results))
				scores := make([]float64, len(results))
				for i, r := range results {
					labels[i] = fmt.Sprintf("  %d. %s", r.Rank, r.Label)
					scores[i] = r.Score * 100
				}
				fmt.Fprint(w, render.Bars(labels, scores, 100, 30))
				describeGraph(w, g, results)
				fmt.Fprintln(w)
				w.Write(picture)
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&preset, "preset", "p", "1", presetUsage)
	f.StringVarP(&input, "input", "i", "", "import a graph from a .json, .yaml or .csv file")
	f.StringVar(&layout, "layout", "", "layout to run before drawing: force, circle or jitter")
	f.StringVarP(&format, "format", "f", "table", "output: table, svg, ascii, json or dot")
	f.StringVarP(&out, "out", "o", "", "write the rendered graph to this file")
	return cmd
}

// describeGraph notes who backs the top node and which nodes are cut off
func describeGraph(w io.Writer, g *models.Graph, results []ranking.Result) {
	top, ok := ranking.Top(results)
	if !ok {
		return
	}
	var backers []string
	for _, e := range g.FindIncomingEdges(top.NodeID) {
		if n, err := g.FindNodeByID(e.Source); err == nil {
			backers = append(backers, n.Label)
		}
	}
	if len(backers) > 0 {
		field(w, "Trusted by", strings.Join(backers, ", "))
	}
	sinks := g.FilterNodes(func(n *models.Node) bool { return len(g.FindOutgoingEdges(n.ID)) == 0 })
	if len(sinks) > 0 {
		field(w, "Trusts no one", nodeLabels(sinks))
	}
	if iso := g.Isolated(); len(iso) > 0 {
		field(w, "Isolated", nodeLabels(iso))
	}
}

func nodeLabels(nodes []models.Node) string {
	labels := make([]string, len(nodes))
	for i, n := range nodes {
		labels[i] = n.Label
	}
	return strings.Join(labels, ", ")
}

// loadGraph imports input when set, else builds the named ranking preset
func (a *app) loadGraph(preset, input string) (*models.Graph, string, error) {
	if input != "" {
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read input: %w", err)
		}
		proc, err := ingest.GetProcessor(ingest.FormatFromPath(input))
		if err != nil {
			return nil, "", err
		}
		g, err := proc.ProcessData(data)
		if err != nil {
			return nil, "", fmt.Errorf("import %s: %w", input, err)
		}
		return g, g.Name, nil
	}

	i, err := a.presets.Index(tools.Ranking, preset)
	if err != nil {
		return nil, "", err
	}
	g, err := a.presets.Ranking[i].Graph()
	if err != nil {
		return nil, "", fmt.Errorf("preset %s: %w", preset, err)
	}
	return g, a.presets.Ranking[i].Name, nil
}

func (a *app) banditCmd() *cobra.Command {
	var (
		preset, svg string
		seed        uint64
		trials      int
		flags       bandit.Params
	)
	cmd := &cobra.Command{
		Use:     "bandit",
		Aliases: []string{"qlearning"},
		Short:   tools.Bandit.Info().Subtitle,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, name := bandit.DefaultParams(), ""
			if preset != "" {
				i, err := a.presets.Index(tools.Bandit, preset)
				if err != nil {
					return err
				}
				p, name = a.presets.Bandit[i].Params, a.presets.Bandit[i].Name
			}
			override(cmd, "epsilon", &p.Epsilon, flags.Epsilon)
			if err := check(p); err != nil {
				return err
			}
			if trials <= 0 {
				trials = a.cfg.Animation.BatchSize
			}

			var rng bandit.Random
			if r := seeded(seed); r != nil {
				rng = r
			}
			l := bandit.New(p, rng, nil)
			explored := 0
			for range trials {
				if l.Step().Explored {
					explored++
				}
			}
			snap := l.Snapshot()
			if svg != "" {
				if err := a.writeFile(svg, render.BanditSVG(snap, a.renderOptions("svg"))); err != nil {
					return err
				}
			}

			return a.print(cmd.OutOrStdout(), report{tools.Bandit, name, p, snap, verdict.Bandit(p)}, func(w io.Writer) {
				field(w, "Epsilon", fmt.Sprintf("%.0f%%", p.Epsilon))
				field(w, "Trials", fmt.Sprintf("%d (%d explored)", snap.Steps, explored))
				labels := make([]string, len(snap.Estimates))
				values := make([]float64, len(snap.Estimates))
				for i, e := range snap.Estimates {
					labels[i] = fmt.Sprintf("  %s x%d", e.Action.Name, e.Pulls)
					values[i] = e.Value
				}
				fmt.Fprint(w, render.Bars(labels, values, 100, 30))
				field(w, "Best so far", snap.Best)
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&preset, "preset", "p", "", presetUsage)
	f.Float64Var(&flags.Epsilon, "epsilon", 0, "exploration rate in percent")
	f.IntVarP(&trials, "trials", "t", 0, "number of trials (default: animation.batch_size)")
	f.Uint64Var(&seed, "seed", 0, "seed for repeatable trials (0 picks one)")
	f.StringVar(&svg, "svg", "", "write the estimate chart to this file")
	return cmd
}

func (a *app) descentCmd() *cobra.Command {
	var (
		preset, svg string
		maxSteps    int
		animate     bool
		flags       descent.Params
	)
	cmd := &cobra.Command{
		Use:     "descent",
		Aliases: []string{"gradient"},
		Short:   tools.Descent.Info().Subtitle,
		Long: `Walk downhill on f(x) = x^4 - 2x^2 + 0.5x until the step is tiny
(converged) or the position leaves [-2.2, 2.2] (diverged).

With --animate one step is printed per animation interval; Ctrl-C stops early.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, name, target := descent.DefaultParams(), "", ""
			if preset != "" {
				i, err := a.presets.Index(tools.Descent, preset)
				if err != nil {
					return err
				}
				d := a.presets.Descent[i]
				p, name, target = d.Params, d.Name, d.TargetLabel
			}
			override(cmd, "rate", &p.LearningRate, flags.LearningRate)
			override(cmd, "initial", &p.Initial, flags.Initial)
			if err := check(p); err != nil {
				return err
			}
			if maxSteps <= 0 {
				maxSteps = a.cfg.Animation.MaxSteps
			}

			st := descent.New(p)
			if animate {
				a.animate(cmd, st, maxSteps)
			} else {
				st.Run(maxSteps)
			}
			state := st.Snapshot()
			if svg != "" {
				if err := a.writeFile(svg, render.DescentSVG(state, a.renderOptions("svg"))); err != nil {
					return err
				}
			}

			return a.print(cmd.OutOrStdout(), report{tools.Descent, name, p, state, verdict.Descent(state)}, func(w io.Writer) {
				if target != "" {
					field(w, "Looking for", target)
				}
				field(w, "Rate", fmt.Sprintf("%.2f", p.LearningRate))
				field(w, "Start", fmt.Sprintf("%+.2f", p.Initial))
				field(w, "Position", fmt.Sprintf("%+.4f", state.Position))
				field(w, "Loss", fmt.Sprintf("%+.4f", state.Loss))
				field(w, "Slope", fmt.Sprintf("%+.4f", state.Gradient))
				field(w, "Status", fmt.Sprintf("%s after %d steps", state.Status, state.Steps))
				fmt.Fprintln(w)
				fmt.Fprint(w, render.DescentASCII(state, 60, 16))
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&preset, "preset", "p", "", presetUsage)
	f.Float64Var(&flags.LearningRate, "rate", 0, "learning rate 0.01..0.6")
	f.Float64Var(&flags.Initial, "initial", 0, "start position -2.1..2.1")
	f.IntVar(&maxSteps, "max-steps", 0, "step limit (default: animation.max_steps)")
	f.BoolVar(&animate, "animate", false, "print one step per animation interval")
	f.StringVar(&svg, "svg", "", "write the descent chart to this file")
	return cmd
}

// animate drives st on the animation interval until it halts, reaches
// maxSteps, or the command context ends
func (a *app) animate(cmd *cobra.Command, st *descent.Stepper, maxSteps int) {
	w := cmd.ErrOrStderr()
	st.Start()
	task := scheduler.Every(cmd.Context(), a.cfg.Animation.Interval, func() bool {
		status := st.Step()
		x := st.Position()
		fmt.Fprintf(w, "%s step %3d  x=%+.4f  f=%+.4f  %s\n",
			labelStyle.Render(">"), st.Steps(), x, descent.Loss(x), strings.ToUpper(status.String()))
		return !status.Halted() && st.Steps() < maxSteps
	})
	reason := task.Wait()
	st.Pause()
	if reason == scheduler.Canceled {
		fmt.Fprintf(w, "%s interrupted at step %d\n", labelStyle.Render(">"), st.Steps())
	}
	a.logger.Debug("animation ended", "reason", reason.String(), "ticks", task.Ticks())
}
