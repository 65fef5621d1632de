package clickstream

import (
	"strings"

	"github.com/linkwarden/linkwarden/internal/model"
)

// Device classes reported in analytics breakdowns.
const (
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceBot     = "Bot"
)

// ClassifyDevice returns a coarse device class for a user agent.
// Unrecognized or empty agents map to Unknown.
func ClassifyDevice(ua string) string {
	if ua == "" {
		return model.Unknown
	}
	lower := strings.ToLower(ua)

	switch {
	case containsAny(lower, "bot", "crawler", "spider", "curl/", "wget/"):
		return DeviceBot
	case containsAny(lower, "ipad", "tablet", "kindle", "silk/"):
		return DeviceTablet
	case containsAny(lower, "mobile", "iphone", "android", "windows phone"):
		return DeviceMobile
	case containsAny(lower, "windows nt", "macintosh", "x11", "linux", "cros"):
		return DeviceDesktop
	}
	return model.Unknown
}

// ClassifyBrowser returns a browser family for a user agent.
// Order matters: Chrome's token appears in Edge and Opera agents, and
// Safari's token appears in nearly everything WebKit.
func ClassifyBrowser(ua string) string {
	if ua == "" {
		return model.Unknown
	}
	lower := strings.ToLower(ua)

	switch {
	case strings.Contains(lower, "edg/"), strings.Contains(lower, "edge/"):
		return "Edge"
	case strings.Contains(lower, "opr/"), strings.Contains(lower, "opera"):
		return "Opera"
	case strings.Contains(lower, "firefox/"):
		return "Firefox"
	case strings.Contains(lower, "chrome/"), strings.Contains(lower, "crios/"):
		return "Chrome"
	case strings.Contains(lower, "safari/"):
		return "Safari"
	}
	return model.Unknown
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
