package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TFMV/tenlab/calc"
	"github.com/TFMV/tenlab/render"
	"github.com/TFMV/tenlab/rules"
	"github.com/TFMV/tenlab/tools"
	"github.com/TFMV/tenlab/verdict"
)

const presetUsage = "preset name or number (see: tenlab presets)"

func (a *app) bayesCmd() *cobra.Command {
	var (
		preset string
		flags  calc.BayesParams
	)
	cmd := &cobra.Command{
		Use:     "bayes",
		Aliases: []string{"bayesian"},
		Short:   tools.Bayes.Info().Subtitle,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, name := calc.DefaultBayes(), ""
			if preset != "" {
				i, err := a.presets.Index(tools.Bayes, preset)
				if err != nil {
					return err
				}
				p, name = a.presets.Bayes[i].BayesParams, a.presets.Bayes[i].Name
			}
			override(cmd, "prior", &p.Prior, flags.Prior)
			override(cmd, "likelihood", &p.Likelihood, flags.Likelihood)
			override(cmd, "false-positive", &p.FalsePositive, flags.FalsePositive)
			if err := check(p); err != nil {
				return err
			}

			r := calc.Bayes(p)
			return a.print(cmd.OutOrStdout(), report{tools.Bayes, name, p, r, verdict.Bayes(r)}, func(w io.Writer) {
				field(w, "Prior", fmt.Sprintf("%.1f%%", p.Prior))
				field(w, "Likelihood", fmt.Sprintf("%.1f%%", p.Likelihood))
				field(w, "False positive", fmt.Sprintf("%.1f%%", p.FalsePositive))
				field(w, "Evidence", fmt.Sprintf("%.1f%%", r.Evidence))
				field(w, "Posterior", fmt.Sprintf("%.1f%%", r.Posterior))
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&preset, "preset", "p", "", presetUsage)
	f.Float64Var(&flags.Prior, "prior", 0, "prior belief P(A) in percent")
	f.Float64Var(&flags.Likelihood, "likelihood", 0, "P(evidence | A) in percent")
	f.Float64Var(&flags.FalsePositive, "false-positive", 0, "P(evidence | not A) in percent")
	return cmd
}

func (a *app) kellyCmd() *cobra.Command {
	var (
		preset string
		flags  calc.KellyParams
	)
	cmd := &cobra.Command{
		Use:     "kelly",
		Aliases: []string{"betting"},
		Short:   tools.Kelly.Info().Subtitle,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, name := calc.DefaultKelly(), ""
			if preset != "" {
				i, err := a.presets.Index(tools.Kelly, preset)
				if err != nil {
					return err
				}
				p, name = a.presets.Kelly[i].KellyParams, a.presets.Kelly[i].Name
			}
			override(cmd, "win", &p.WinProb, flags.WinProb)
			override(cmd, "odds", &p.Odds, flags.Odds)
			override(cmd, "bankroll", &p.Bankroll, flags.Bankroll)
			if err := check(p); err != nil {
				return err
			}

			r := calc.Kelly(p)
			return a.print(cmd.OutOrStdout(), report{tools.Kelly, name, p, r, verdict.Kelly(r)}, func(w io.Writer) {
				field(w, "Win probability", fmt.Sprintf("%.1f%%", p.WinProb))
				field(w, "Decimal odds", fmt.Sprintf("%.2f", p.Odds))
				field(w, "Bankroll", fmt.Sprintf("%.0f", p.Bankroll))
				field(w, "Expected value", fmt.Sprintf("%+.3f", r.ExpectedValue))
				field(w, "Stake fraction", fmt.Sprintf("%.1f%%", r.Fraction*100))
				field(w, "Stake", fmt.Sprintf("%.0f", r.Bet))
				if r.BreakEvenOdds > 0 {
					field(w, "Break-even odds", fmt.Sprintf("%.2f", r.BreakEvenOdds))
				}
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&preset, "preset", "p", "", presetUsage)
	f.Float64Var(&flags.WinProb, "win", 0, "win probability in percent")
	f.Float64Var(&flags.Odds, "odds", 0, "decimal odds (2.0 doubles the stake)")
	f.Float64Var(&flags.Bankroll, "bankroll", 0, "total bankroll")
	return cmd
}

func (a *app) confidenceCmd() *cobra.Command {
	var (
		preset string
		flags  calc.ConfidenceParams
	)
	cmd := &cobra.Command{
		Use:   "confidence",
		Short: tools.Confidence.Info().Subtitle,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, name := calc.DefaultConfidence(), ""
			if preset != "" {
				i, err := a.presets.Index(tools.Confidence, preset)
				if err != nil {
					return err
				}
				p, name = a.presets.Confidence[i].ConfidenceParams, a.presets.Confidence[i].Name
			}
			override(cmd, "samples", &p.SampleSize, flags.SampleSize)
			override(cmd, "successes", &p.Successes, flags.Successes)
			override(cmd, "level", &p.Level, flags.Level)
			if err := check(p); err != nil {
				return err
			}
			p = p.Normalize()

			r := calc.Confidence(p)
			return a.print(cmd.OutOrStdout(), report{tools.Confidence, name, p, r, verdict.Confidence(p.SampleSize, r)}, func(w io.Writer) {
				field(w, "Sample", fmt.Sprintf("%d of %d", p.Successes, p.SampleSize))
				field(w, "Level", fmt.Sprintf("%.0f%% (z=%.3f)", p.Level*100, r.Z))
				field(w, "Proportion", fmt.Sprintf("%.1f%%", r.Proportion))
				field(w, "Margin", fmt.Sprintf("±%.1f%%", r.Margin))
				field(w, "Interval", fmt.Sprintf("%.1f%% .. %.1f%%", r.Lower, r.Upper))
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&preset, "preset", "p", "", presetUsage)
	f.IntVarP(&flags.SampleSize, "samples", "n", 0, "sample size")
	f.IntVarP(&flags.Successes, "successes", "k", 0, "successes in the sample")
	f.Float64Var(&flags.Level, "level", 0, "confidence level in (0,1)")
	return cmd
}

func (a *app) frenzyCmd() *cobra.Command {
	var (
		preset string
		flags  calc.FrenzyParams
	)
	cmd := &cobra.Command{
		Use:     "frenzy",
		Aliases: []string{"market"},
		Short:   tools.Frenzy.Info().Subtitle,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, name := calc.DefaultFrenzy(), ""
			if preset != "" {
				i, err := a.presets.Index(tools.Frenzy, preset)
				if err != nil {
					return err
				}
				p, name = a.presets.Frenzy[i].FrenzyParams, a.presets.Frenzy[i].Name
			}
			override(cmd, "price", &p.Price, flags.Price)
			override(cmd, "fair", &p.FairValue, flags.FairValue)
			override(cmd, "vol", &p.Volatility, flags.Volatility)
			if err := check(p); err != nil {
				return err
			}

			r := calc.Frenzy(p)
			return a.print(cmd.OutOrStdout(), report{tools.Frenzy, name, p, r, verdict.Frenzy(r)}, func(w io.Writer) {
				field(w, "Price / value", fmt.Sprintf("%.2f / %.2f", p.Price, p.FairValue))
				field(w, "Deviation", fmt.Sprintf("%+.1f%%", r.Deviation))
				field(w, "Amplifier", fmt.Sprintf("x%.2f", r.Amplifier))
				fmt.Fprint(w, render.Bars([]string{"  Heat"}, []float64{r.Heat}, 100, 30))
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&preset, "preset", "p", "", presetUsage)
	f.Float64Var(&flags.Price, "price", 0, "market price")
	f.Float64Var(&flags.FairValue, "fair", 0, "fair value")
	f.Float64Var(&flags.Volatility, "vol", 0, "volatility 0..100")
	return cmd
}

func (a *app) correlationCmd() *cobra.Command {
	var preset, svg string
	cmd := &cobra.Command{
		Use:   "correlation",
		Short: tools.Correlation.Info().Subtitle,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			i, err := a.presets.Index(tools.Correlation, preset)
			if err != nil {
				return err
			}
			c := a.presets.Correlation[i]
			p := c.CorrelationParams

			r := calc.Correlation(p)
			if svg != "" {
				if err := a.writeFile(svg, render.ScatterSVG(p, r, a.renderOptions("svg"))); err != nil {
					return err
				}
			}
			return a.print(cmd.OutOrStdout(), report{tools.Correlation, c.Name, p, r, verdict.Correlation(r)}, func(w io.Writer) {
				field(w, "Axes", p.XLabel+" vs "+p.YLabel)
				for _, pt := range calc.SortedByX(p.Points) {
					fmt.Fprintf(w, "    %10.1f  %10.1f\n", pt.X, pt.Y)
				}
				field(w, "r", fmt.Sprintf("%+.3f (%s)", r.R, r.Direction()))
				field(w, "Fit", fmt.Sprintf("y = %.3f x %+.3f", r.Slope, r.Intercept))
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&preset, "preset", "p", "1", presetUsage)
	f.StringVar(&svg, "svg", "", "write a scatter plot to this file")
	return cmd
}

func (a *app) rulesCmd() *cobra.Command {
	var (
		preset, name, situation string
		ruleArgs                []string
	)
	cmd := &cobra.Command{
		Use:     "rules",
		Aliases: []string{"ifthen"},
		Short:   tools.Rules.Info().Subtitle,
		Long: `Evaluate an if-then protocol against a situation.

Rules come from a preset and from --rule flags written as
"TRIGGER => ACTION | FALLBACK".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, label := rules.New("protocol"), ""
			if preset != "" {
				i, err := a.presets.Index(tools.Rules, preset)
				if err != nil {
					return err
				}
				p, label = a.presets.Rules[i].Protocol.Clone(), a.presets.Rules[i].Name
			}
			if name != "" {
				p.Rename(name)
			}
			for _, raw := range ruleArgs {
				r, err := parseRule(raw)
				if err != nil {
					return err
				}
				p.Add(r)
			}

			decisions := p.Evaluate(situation)
			result := struct {
				Protocol  string           `json:"protocol"`
				Decisions []rules.Decision `json:"decisions"`
			}{p.Name, decisions}
			return a.print(cmd.OutOrStdout(), report{tools.Rules, label, p, result, verdict.Rules(p)}, func(w io.Writer) {
				fmt.Fprint(w, p.Script())
				if situation == "" {
					return
				}
				fmt.Fprintln(w)
				field(w, "Situation", situation)
				for i, d := range decisions {
					mark := "ELSE"
					if d.Matched {
						mark = "THEN"
					}
					fmt.Fprintf(w, "  %02d %s %s\n", i+1, labelStyle.Render(mark), d.Action)
				}
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&preset, "preset", "p", "", presetUsage)
	f.StringVar(&name, "name", "", "protocol name")
	f.StringArrayVar(&ruleArgs, "rule", nil, `add a rule "TRIGGER => ACTION | FALLBACK"`)
	f.StringVarP(&situation, "situation", "s", "", "situation to evaluate the protocol against")
	return cmd
}

// parseRule reads "TRIGGER => ACTION | FALLBACK"; the fallback is optional
func parseRule(raw string) (rules.Rule, error) {
	trigger, rest, ok := strings.Cut(raw, "=>")
	if !ok || strings.TrimSpace(trigger) == "" {
		return rules.Rule{}, fmt.Errorf("rule %q: want TRIGGER => ACTION | FALLBACK", raw)
	}
	then, otherwise, _ := strings.Cut(rest, "|")
	return rules.Rule{
		If:   strings.TrimSpace(trigger),
		Then: strings.TrimSpace(then),
		Else: strings.TrimSpace(otherwise),
	}, nil
}
