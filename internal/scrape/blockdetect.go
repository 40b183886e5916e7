package scrape

import (
	"fmt"
	"net/http"
	"strings"
)

// BlockType describes the kind of anti-bot block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockRateLimit  BlockType = "rate_limit"
	BlockDenied     BlockType = "denied"
	BlockJSShell    BlockType = "js_shell"
)

// BlockedError reports a fetch rejected by anti-bot protection. Scrapers
// return it instead of a plain error so callers can tell blocks apart with
// errors.As, even through wrapping.
type BlockedError struct {
	Scraper string
	Type    BlockType
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: blocked (%s)", e.Scraper, e.Type)
}

// DetectBlock checks an HTTP response for signs of anti-bot protection.
// Blocked pages must not reach the extractor: a CAPTCHA page contains no
// AUM signal and wastes tokens.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	// Cloudflare: 403/503 with cf-* headers.
	if resp.StatusCode == 403 || resp.StatusCode == 503 {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-cache-status") != "" {
			return true, BlockCloudflare
		}
		if resp.Header.Get("server") == "cloudflare" {
			return true, BlockCloudflare
		}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return true, BlockRateLimit
	}

	lower := strings.ToLower(string(body))

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") {
		return true, BlockCloudflare
	}

	for _, marker := range []string{"captcha", "recaptcha", "hcaptcha", "are you a robot"} {
		if strings.Contains(lower, marker) {
			return true, BlockCaptcha
		}
	}

	for _, marker := range []string{"rate limit", "too many requests"} {
		if strings.Contains(lower, marker) {
			return true, BlockRateLimit
		}
	}

	for _, marker := range []string{"access denied", "você foi bloqueado", "you have been blocked"} {
		if strings.Contains(lower, marker) {
			return true, BlockDenied
		}
	}

	// JS-only shell: very small body that demands JavaScript.
	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return true, BlockJSShell
		}
		if strings.Contains(lower, "meta http-equiv=\"refresh\"") {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}
