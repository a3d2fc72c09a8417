// File: cmd/path.go
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/ghostcursor/internal/config"
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"github.com/xkilldash9x/ghostcursor/internal/persona"
	"github.com/xkilldash9x/ghostcursor/internal/sampler"
	"github.com/xkilldash9x/ghostcursor/internal/trajectory"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// pathOutput is the document printed by the path command.
type pathOutput struct {
	Seed    string                `json:"seed,omitempty"`
	Persona string                `json:"persona,omitempty"`
	From    geometry.Vector2D     `json:"from"`
	To      geometry.Vector2D     `json:"to"`
	Length  float64               `json:"length"`
	Points  []geometry.TimedPoint `json:"points"`
	Meta    *persona.Meta         `json:"meta,omitempty"`
}

type pathFlags struct {
	from, to   string
	width      float64
	spread     float64
	speed      float64
	timestamps bool
	pretty     bool
}

func newPathCmd() *cobra.Command {
	var f pathFlags
	cmd := &cobra.Command{
		Use:   "path --to X,Y",
		Short: "Print a humanlike trajectory as JSON",
		Long: `Generates the pointer trajectory between two points without touching a
browser. With a persona the path takes on its curvature; with --seed the
output is reproducible.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			out, err := runPath(cfg, f, cmd.Flags().Changed("spread"))
			if err != nil {
				return err
			}

			var data []byte
			if f.pretty {
				data, err = json.MarshalIndent(out, "", "  ")
			} else {
				data, err = json.Marshal(out)
			}
			if err != nil {
				return fmt.Errorf("failed to encode path: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().StringVar(&f.from, "from", "0,0", "start point as X,Y")
	cmd.Flags().StringVar(&f.to, "to", "", "end point as X,Y")
	cmd.Flags().Float64Var(&f.width, "width", 0, "target width for the step model (default 100)")
	cmd.Flags().Float64Var(&f.spread, "spread", 0, "fixed curve spread, replacing the distance derived one")
	cmd.Flags().Float64Var(&f.speed, "speed", 0, "movement speed, higher is fewer points (default random)")
	cmd.Flags().BoolVar(&f.timestamps, "timestamps", false, "attach a timestamp to every point")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "indent the JSON output")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runPath(cfg config.Interface, f pathFlags, spreadSet bool) (*pathOutput, error) {
	from, err := parsePoint(f.from)
	if err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	to, err := parsePoint(f.to)
	if err != nil {
		return nil, fmt.Errorf("--to: %w", err)
	}

	cc := cfg.Cursor()
	rng := newSource(cc.Seed)
	opts := trajectory.Options{
		MoveSpeed:     f.speed,
		TargetWidth:   f.width,
		UseTimestamps: f.timestamps,
	}
	if spreadSet {
		opts.SpreadOverride = trajectory.Spread(f.spread)
	}

	out := &pathOutput{Seed: cc.Seed, From: from, To: to}
	if cc.Persona != "" {
		catalog, err := loadCatalog(cc)
		if err != nil {
			return nil, err
		}
		compiled, err := catalog.Compile(cc.Persona, rng, from.Dist(to), f.width)
		if err != nil {
			return nil, err
		}
		opts.SpreadScale = compiled.Path.SpreadMultiplier
		out.Persona = cc.Persona
		out.Meta = &compiled.Meta
	}

	out.Points = trajectory.New(rng).Path(from, to, opts)
	out.Length = trajectory.Length(out.Points)
	return out, nil
}

// parsePoint reads "X,Y". Negative coordinates are clamped to zero.
func parsePoint(s string) (geometry.Vector2D, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.Vector2D{}, fmt.Errorf("point %q must be X,Y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geometry.Vector2D{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geometry.Vector2D{}, fmt.Errorf("point %q: %w", s, err)
	}
	return geometry.Vector2D{X: x, Y: y}.ClampPositive(), nil
}

// newSource seeds from seed when set, or from system entropy.
func newSource(seed string) sampler.Source {
	if seed == "" {
		return sampler.NewEntropySource()
	}
	return sampler.FromSession(seed)
}

// loadCatalog returns the built-in catalog, extended by the configured
// persona file if any.
func loadCatalog(cc config.CursorConfig) (*persona.Catalog, error) {
	if cc.PersonaFile == "" {
		return persona.Default(), nil
	}
	path, err := homedir.Expand(cc.PersonaFile)
	if err != nil {
		return nil, fmt.Errorf("invalid persona file path: %w", err)
	}
	return persona.LoadFile(path)
}
