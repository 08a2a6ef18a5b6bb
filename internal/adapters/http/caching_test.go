package http

import "testing"

func TestCacheControlFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/v1/health", "public, max-age=10"},
		{"/get_mural_data", "public, max-age=300"},
		{"/v1/murals", "public, max-age=300"},
		{"/v1/viewer/sessions/abc/clusters", "no-store"},
		{"/blob/123", "private, no-store"},
		{"/static/js/config.js", "no-cache"},
		{"/static/js/logic.js", "public, max-age=3600"},
		{"/", "public, max-age=3600"},
		{"/docs", ""},
	}
	for _, tt := range tests {
		if got := cacheControlFor(tt.path); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.path, tt.want, got)
		}
	}
}
