// File: cmd/personas.go
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/ghostcursor/internal/cursor"
	"github.com/xkilldash9x/ghostcursor/internal/persona"
)

func newPersonasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "personas",
		Aliases: []string{"persona"},
		Short:   "Inspect the persona catalog",
	}
	cmd.AddCommand(newPersonasListCmd())
	cmd.AddCommand(newPersonasShowCmd())
	cmd.AddCommand(newPersonasCompileCmd())
	return cmd
}

func newPersonasListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available personas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg.Cursor())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, id := range catalog.IDs() {
				p, err := catalog.Get(id)
				if err != nil {
					return err
				}
				marker := " "
				if id == cfg.Cursor().Persona {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-12s %s\n", marker, id, p.Description)
			}
			return nil
		},
	}
}

func newPersonasShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print a persona definition as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg.Cursor())
			if err != nil {
				return err
			}
			p, err := catalog.Get(args[0])
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(p); err != nil {
				return fmt.Errorf("failed to encode persona: %w", err)
			}
			return enc.Close()
		},
	}
}

// compiledOutput is CompiledOptions with durations in milliseconds.
type compiledOutput struct {
	Move struct {
		PaddingPercentage  float64 `json:"padding_percentage"`
		OvershootThreshold float64 `json:"overshoot_threshold"`
		MaxTries           int     `json:"max_tries"`
		MoveDelayMs        float64 `json:"move_delay_ms"`
		RandomizeMoveDelay bool    `json:"randomize_move_delay"`
		PaceMs             float64 `json:"pace_ms"`
	} `json:"move"`
	Click struct {
		HesitateMs            float64 `json:"hesitate_ms"`
		WaitForClickMs        float64 `json:"wait_for_click_ms"`
		MoveDelayMs           float64 `json:"move_delay_ms"`
		DoubleClickIntervalMs float64 `json:"double_click_interval_ms"`
		DoubleClickDrift      float64 `json:"double_click_drift"`
		MicroJitter           float64 `json:"micro_jitter"`
	} `json:"click"`
	Scroll struct {
		ScrollSpeed          float64 `json:"scroll_speed"`
		ScrollDelayMs        float64 `json:"scroll_delay_ms"`
		WheelStep            *float64 `json:"wheel_step,omitempty"`
		WheelTickDelayMs     *float64 `json:"wheel_tick_delay_ms,omitempty"`
		Overshoot            *float64 `json:"overshoot,omitempty"`
		OvershootProbability *float64 `json:"overshoot_probability,omitempty"`
	} `json:"scroll"`
	SpreadMultiplier float64      `json:"spread_multiplier"`
	TargetTimeMs     float64      `json:"target_time_ms"`
	Meta             persona.Meta `json:"meta"`
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func newCompiledOutput(c persona.CompiledOptions) compiledOutput {
	var o compiledOutput
	o.Move.PaddingPercentage = c.Move.PaddingPercentage
	o.Move.OvershootThreshold = c.Move.OvershootThreshold
	o.Move.MaxTries = c.Move.MaxTries
	o.Move.MoveDelayMs = millis(c.Move.MoveDelay)
	o.Move.RandomizeMoveDelay = c.Move.RandomizeMoveDelay
	o.Move.PaceMs = millis(c.Move.Pace)

	o.Click.HesitateMs = millis(c.Click.Hesitate)
	o.Click.WaitForClickMs = millis(c.Click.WaitForClick)
	o.Click.MoveDelayMs = millis(c.Click.MoveDelay)
	o.Click.DoubleClickIntervalMs = millis(c.Click.DoubleClickInterval)
	o.Click.DoubleClickDrift = c.Click.DoubleClickDrift
	o.Click.MicroJitter = c.Click.MicroJitter

	o.Scroll.ScrollSpeed = c.Scroll.ScrollSpeed
	o.Scroll.ScrollDelayMs = millis(c.Scroll.ScrollDelay)
	o.Scroll.WheelStep = c.Scroll.WheelStep
	if c.Scroll.WheelTickDelay != nil {
		o.Scroll.WheelTickDelayMs = cursor.Ptr(millis(*c.Scroll.WheelTickDelay))
	}
	o.Scroll.Overshoot = c.Scroll.Overshoot
	o.Scroll.OvershootProbability = c.Scroll.OvershootProbability

	o.SpreadMultiplier = c.Path.SpreadMultiplier
	o.TargetTimeMs = millis(c.TargetTime)
	o.Meta = c.Meta
	return o
}

func newPersonasCompileCmd() *cobra.Command {
	var distance, width float64
	cmd := &cobra.Command{
		Use:   "compile ID",
		Short: "Sample concrete action options from a persona",
		Long: `Compiles a persona into the options one action would use, for a move of
--distance pixels onto a target --width pixels wide. Set --seed to make the
draw reproducible.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg.Cursor())
			if err != nil {
				return err
			}
			compiled, err := catalog.Compile(args[0], newSource(cfg.Cursor().Seed), distance, width)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(newCompiledOutput(compiled), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode options: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().Float64Var(&distance, "distance", 500, "distance to the target in pixels")
	cmd.Flags().Float64Var(&width, "width", 100, "target width in pixels")
	return cmd
}
