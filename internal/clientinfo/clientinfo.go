// internal/clientinfo/clientinfo.go
//
// Per-request client metadata: the originating IP address and a parsed
// user-agent fingerprint.
//
// Context
// -------
// The audit trail records who called what from where.  "Where" is the
// left-most parseable address in X-Forwarded-For (the client as seen by
// the outermost proxy), falling back to X-Real-Ip and finally to the
// socket peer in r.RemoteAddr.  "With what" is the raw User-Agent header
// plus a uasurfer fingerprint, so reports can group by browser family
// and device class without reparsing.
//
// Dependencies
//   - github.com/avct/uasurfer (UA parsing)
package clientinfo

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/avct/uasurfer"
)

// UA is a parsed user-agent fingerprint.
type UA struct {
	Raw     string `json:"raw"`
	Browser string `json:"browser"`
	Version string `json:"version"`
	OS      string `json:"os"`
	Device  string `json:"device"`
	IsBot   bool   `json:"is_bot"`
}

// Info is the client metadata attached to every audit record.
type Info struct {
	IP string `json:"ip"`
	UA UA     `json:"ua"`
}

// FromRequest collects the client address and user-agent fingerprint
// for one request.
func FromRequest(r *http.Request) Info {
	return Info{
		IP: ClientIP(r),
		UA: ParseUA(r.UserAgent()),
	}
}

// ClientIP extracts the left-most parseable address from
// X-Forwarded-For or X-Real-Ip, falling back to r.RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ParseUA converts a raw User-Agent header into a UA fingerprint.
func ParseUA(raw string) UA {
	u := uasurfer.Parse(raw)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	return UA{
		Raw:     raw,
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version: trimVersion(u.Browser.Version),
		OS:      osName,
		Device:  deviceTypeToString(u.DeviceType),
		IsBot:   u.IsBot(),
	}
}

// trimVersion builds "major.minor.patch" and removes trailing ".0".
func trimVersion(v uasurfer.Version) string {
	out := strings.Join([]string{
		strconv.Itoa(v.Major),
		strconv.Itoa(v.Minor),
		strconv.Itoa(v.Patch),
	}, ".")
	for strings.HasSuffix(out, ".0") {
		out = strings.TrimSuffix(out, ".0")
	}
	if out == "" {
		return "0"
	}
	return out
}

// deviceTypeToString maps uasurfer.DeviceType to a user-friendly string.
func deviceTypeToString(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}
