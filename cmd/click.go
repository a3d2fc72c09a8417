// File: cmd/click.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/api/schemas"
	"github.com/xkilldash9x/ghostcursor/internal/browser"
	"github.com/xkilldash9x/ghostcursor/internal/config"
	"github.com/xkilldash9x/ghostcursor/internal/cursor"
	"github.com/xkilldash9x/ghostcursor/internal/observability"
)

// page is the part of a launched browser the click command needs.
type page interface {
	Navigate(ctx context.Context, url string) error
	Close() error
}

// launchBrowser starts Chrome. Tests replace it.
var launchBrowser = func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (page, cursor.Driver, error) {
	b, err := browser.Launch(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return b, b.Driver(), nil
}

type clickFlags struct {
	double   bool
	button   string
	count    int
	scroll   bool
	wander   bool
	headless bool
	dwell    time.Duration
}

func newClickCmd() *cobra.Command {
	var f clickFlags
	cmd := &cobra.Command{
		Use:   "click URL SELECTOR",
		Short: "Open a page in Chrome and click an element like a person",
		Long: `Launches Chrome, loads URL, then moves the pointer to the element matching
SELECTOR and clicks it. SELECTOR is CSS, or XPath when it starts with // or
xpath/. With --wander the pointer drifts for --dwell before the click.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("wander") {
				cfg.SetCursorWander(f.wander)
			}
			if cmd.Flags().Changed("headless") {
				cfg.SetBrowserHeadless(f.headless)
			}
			return runClick(cmd.Context(), cmd, cfg, args[0], args[1], f)
		},
	}

	cmd.Flags().BoolVar(&f.double, "double", false, "double click")
	cmd.Flags().StringVar(&f.button, "button", "", "mouse button: left, right or middle (default from config)")
	cmd.Flags().IntVar(&f.count, "count", 0, "click count reported with the press (default from config)")
	cmd.Flags().BoolVar(&f.scroll, "scroll-only", false, "scroll the element into view without clicking")
	cmd.Flags().BoolVar(&f.wander, "wander", false, "let the pointer drift before acting")
	cmd.Flags().BoolVar(&f.headless, "headless", true, "run Chrome without a window")
	cmd.Flags().DurationVar(&f.dwell, "dwell", 3*time.Second, "how long to wander before acting")
	return cmd
}

func runClick(ctx context.Context, cmd *cobra.Command, cfg *config.Config, url, selector string, f clickFlags) error {
	logger := observability.GetLogger()

	var opts cursor.ClickOptions
	if f.button != "" {
		button := schemas.MouseButton(f.button)
		if button.Bitfield() == 0 {
			return fmt.Errorf("--button must be left, right or middle, got %q", f.button)
		}
		opts.Button = &button
	}
	if f.count > 0 {
		opts.ClickCount = cursor.Ptr(f.count)
	}

	pg, driver, err := launchBrowser(ctx, cfg.Browser(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := pg.Close(); err != nil {
			logger.Warn("Failed to close browser cleanly.", zap.Error(err))
		}
	}()

	if err := pg.Navigate(ctx, url); err != nil {
		return err
	}

	c, err := newCursor(cfg, driver, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if cfg.Cursor().Wander && f.dwell > 0 {
		c.StartWandering(ctx, nil)
		select {
		case <-time.After(f.dwell):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	switch {
	case f.scroll:
		err = c.ScrollIntoView(ctx, selector, nil)
	case f.double:
		err = c.DoubleClick(ctx, selector, &opts)
	default:
		err = c.Click(ctx, selector, &opts)
	}
	if err != nil {
		return err
	}

	at := c.Location()
	verb := "clicked"
	if f.scroll {
		verb = "scrolled to"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s at (%.1f, %.1f)\n", verb, selector, at.X, at.Y)
	return err
}

// newCursor builds a cursor from the cursor section of cfg.
func newCursor(cfg config.Interface, driver cursor.Driver, logger *zap.Logger) (*cursor.Cursor, error) {
	cc := cfg.Cursor()
	opts := []cursor.Option{cursor.WithDefaults(cc.Defaults)}
	if cc.Seed != "" {
		opts = append(opts, cursor.WithSeed(cc.Seed))
	}
	if cc.Persona != "" {
		catalog, err := loadCatalog(cc)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cursor.WithPersonaID(catalog, cc.Persona))
	}
	return cursor.New(driver, logger, opts...)
}
