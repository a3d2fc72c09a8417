// internal/browser/launch_test.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/ghostcursor/internal/config"
)

// hasOption reports whether the allocator built from opts prints substring.
// Exec allocator options are closures, so the configured allocator is the
// only handle a test has on them. No browser is started.
func hasOption(t *testing.T, opts []chromedp.ExecAllocatorOption, substring string) bool {
	t.Helper()
	ctx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()
	return strings.Contains(fmt.Sprintf("%+v", chromedp.FromContext(ctx).Allocator), substring)
}

func TestAllocatorOptions(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		cfg := config.NewDefaultConfig().Browser()
		opts := AllocatorOptions(cfg)

		assert.True(t, hasOption(t, opts, "no-sandbox"))
		assert.True(t, hasOption(t, opts, "enable-automation"))
		assert.True(t, hasOption(t, opts, "headless:true"))
		assert.True(t, hasOption(t, opts, "window-size:1920,1080"))
		assert.False(t, hasOption(t, opts, "disk-cache-size"))
		assert.False(t, hasOption(t, opts, "ignore-certificate-errors"))
	})

	t.Run("HeadlessDisabled", func(t *testing.T) {
		opts := AllocatorOptions(config.BrowserConfig{Headless: false})
		assert.False(t, hasOption(t, opts, "headless:true"))
	})

	t.Run("CacheDisabled", func(t *testing.T) {
		opts := AllocatorOptions(config.BrowserConfig{DisableCache: true})
		assert.True(t, hasOption(t, opts, "disk-cache-size"))
		assert.True(t, hasOption(t, opts, "media-cache-size"))
		assert.True(t, hasOption(t, opts, "disable-cache"))
	})

	t.Run("IgnoreTLSErrors", func(t *testing.T) {
		opts := AllocatorOptions(config.BrowserConfig{IgnoreTLSErrors: true})
		assert.True(t, hasOption(t, opts, "ignore-certificate-errors"))
		assert.True(t, hasOption(t, opts, "allow-insecure-localhost"))
	})

	t.Run("Identity", func(t *testing.T) {
		opts := AllocatorOptions(config.BrowserConfig{
			UserAgent:   "ghost/1.0",
			UserDataDir: "/tmp/ghost-profile",
		})
		assert.True(t, hasOption(t, opts, "ghost/1.0"))
		assert.True(t, hasOption(t, opts, "/tmp/ghost-profile"))
	})

	t.Run("WithCustomArgs", func(t *testing.T) {
		opts := AllocatorOptions(config.BrowserConfig{
			Args: []string{"--custom-arg1", "--lang=de-DE", "--"},
		})
		assert.True(t, hasOption(t, opts, "custom-arg1:true"))
		assert.True(t, hasOption(t, opts, "lang:de-DE"))
	})
}
