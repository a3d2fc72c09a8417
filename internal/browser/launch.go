// internal/browser/launch.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/internal/config"
)

const defaultShutdownTimeout = 10 * time.Second

// AllocatorOptions translates the browser configuration into chromedp exec
// allocator options.
func AllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	// Explicit defaults rather than chromedp.DefaultExecAllocatorOptions, so
	// headless mode stays under our control.
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("enable-automation", true),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
	}

	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.Viewport.Width > 0 && cfg.Viewport.Height > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.Viewport.Width, cfg.Viewport.Height))
	}
	if cfg.DisableCache {
		opts = append(opts,
			chromedp.Flag("disk-cache-size", "0"),
			chromedp.Flag("media-cache-size", "0"),
			chromedp.Flag("disable-cache", true),
		)
	}
	if cfg.IgnoreTLSErrors {
		opts = append(opts,
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.Flag("allow-insecure-localhost", true),
		)
	}

	// Extra flags, either "--name" or "--name=value".
	for _, arg := range cfg.Args {
		key, value, found := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if key == "" {
			continue
		}
		if found {
			opts = append(opts, chromedp.Flag(key, value))
		} else {
			opts = append(opts, chromedp.Flag(key, true))
		}
	}
	return opts
}

// Browser owns a Chrome process and the single tab the cursor drives.
type Browser struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

// Launch starts Chrome and opens a tab sized to the configured viewport.
func Launch(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Browser, error) {
	logger = logger.Named("browser")

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, AllocatorOptions(cfg)...)
	sugar := logger.Sugar()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)

	b := &Browser{
		cfg:         cfg,
		logger:      logger,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
	}

	// The first Run starts the process and attaches to the initial tab.
	startup := []chromedp.Action{}
	if cfg.Viewport.Width > 0 && cfg.Viewport.Height > 0 {
		startup = append(startup, chromedp.EmulateViewport(int64(cfg.Viewport.Width), int64(cfg.Viewport.Height)))
	}
	if err := chromedp.Run(tabCtx, startup...); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Info("Browser started.",
		zap.Bool("headless", cfg.Headless),
		zap.Int("width", cfg.Viewport.Width),
		zap.Int("height", cfg.Viewport.Height))
	return b, nil
}

// Navigate loads url in the tab and waits for the load event.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	opCtx := ctx
	if b.cfg.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, b.cfg.NavigationTimeout)
		defer cancel()
	}
	runCtx, cancel := CombineContext(b.tabCtx, opCtx)
	defer cancel()

	b.logger.Debug("Navigating.", zap.String("url", url))
	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// Driver returns a cursor driver bound to the tab.
func (b *Browser) Driver() *CDPDriver {
	return NewCDPDriver(b.tabCtx, b.logger)
}

// Close shuts the browser down, waiting up to the configured shutdown
// timeout for the process to exit. It is safe to call more than once.
func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		timeout := b.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}

		// chromedp.Cancel blocks until the browser exits.
		done := make(chan error, 1)
		go func() {
			done <- chromedp.Cancel(b.tabCtx)
		}()

		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				b.closeErr = fmt.Errorf("closing browser: %w", err)
			}
		case <-time.After(timeout):
			b.logger.Warn("Browser shutdown timed out. Proceeding forcefully.", zap.Duration("timeout", timeout))
		}

		b.tabCancel()
		b.allocCancel()
		b.logger.Debug("Browser shutdown complete.")
	})
	return b.closeErr
}
