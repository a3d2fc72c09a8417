// internal/browser/selector.go
package browser

import (
	"strings"

	"github.com/chromedp/chromedp"
)

const xpathPrefix = "xpath/"

// parseSelector decides how chromedp should interpret selector. An explicit
// "xpath/" prefix or a leading "//" or "(//" selects an XPath search,
// anything else is a CSS query.
func parseSelector(selector string) (string, chromedp.QueryOption) {
	s := strings.TrimSpace(selector)
	if rest, ok := strings.CutPrefix(s, xpathPrefix); ok {
		return rest, chromedp.BySearch
	}
	if strings.HasPrefix(s, "//") || strings.HasPrefix(s, "(//") {
		return s, chromedp.BySearch
	}
	return s, chromedp.ByQuery
}

// isXPath reports whether parseSelector would search by XPath.
func isXPath(selector string) bool {
	s := strings.TrimSpace(selector)
	return strings.HasPrefix(s, xpathPrefix) || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "(//")
}
