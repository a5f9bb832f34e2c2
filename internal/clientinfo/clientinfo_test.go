// internal/clientinfo/clientinfo_test.go
package clientinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.6367.60 Safari/537.36"

func TestClientIP(t *testing.T) {
	cases := []struct {
		name   string
		xff    string
		xrip   string
		remote string
		want   string
	}{
		{"forwarded chain", "203.0.113.7, 10.0.0.1", "", "10.0.0.2:4711", "203.0.113.7"},
		{"unparseable forwarded entries skipped", "unknown, 203.0.113.7", "", "10.0.0.2:4711", "203.0.113.7"},
		{"x-real-ip fallback", "", "198.51.100.3", "10.0.0.2:4711", "198.51.100.3"},
		{"remote addr fallback", "", "", "192.0.2.9:55000", "192.0.2.9"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = c.remote
			if c.xff != "" {
				req.Header.Set("X-Forwarded-For", c.xff)
			}
			if c.xrip != "" {
				req.Header.Set("X-Real-Ip", c.xrip)
			}
			if got := ClientIP(req); got != c.want {
				t.Fatalf("ClientIP = %q, want %q", got, c.want)
			}
		})
	}
}

func TestParseUA(t *testing.T) {
	ua := ParseUA(chromeUA)
	if ua.Browser != "Chrome" {
		t.Fatalf("browser = %q", ua.Browser)
	}
	if ua.OS != "Windows" {
		t.Fatalf("os = %q", ua.OS)
	}
	if ua.Device != "Desktop" {
		t.Fatalf("device = %q", ua.Device)
	}
	if ua.IsBot {
		t.Fatal("desktop Chrome is not a bot")
	}
	if ua.Raw != chromeUA {
		t.Fatal("raw header must be preserved")
	}
}

func TestParseUA_Empty(t *testing.T) {
	ua := ParseUA("")
	if ua.Browser == "" {
		// uasurfer names the unknown browser; just assert no panic and
		// a sane zero value.
		t.Log("empty UA parsed to empty browser")
	}
	if ua.Version == "" {
		t.Fatal("version should fall back to a zero string")
	}
}
