// internal/browser/context.go
package browser

import (
	"context"
)

// CombineContext returns a context derived from tabCtx that is also canceled
// when opCtx is done. Values come from tabCtx only, which is what chromedp
// needs: the tab context carries the CDP target, the operational context
// carries the caller's deadline and cancellation.
func CombineContext(tabCtx, opCtx context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(tabCtx)
	stop := context.AfterFunc(opCtx, cancel)
	return combined, func() {
		stop()
		cancel()
	}
}
