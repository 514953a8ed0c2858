package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusWriter_DefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}
	if _, err := sw.Write([]byte("ok")); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sw.Status() != http.StatusOK {
		t.Errorf("status = %d, want 200", sw.Status())
	}
}

func TestStatusWriter_KeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}
	sw.WriteHeader(422)
	sw.WriteHeader(500)
	if sw.Status() != 422 {
		t.Errorf("status = %d, want first written 422", sw.Status())
	}
}

func TestRemoteIP(t *testing.T) {
	cases := []struct {
		name string
		set  func(r *http.Request)
		want string
	}{
		{"forwarded chain", func(r *http.Request) { r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8") }, "1.2.3.4"},
		{"real ip", func(r *http.Request) { r.Header.Set("X-Real-IP", "9.9.9.9") }, "9.9.9.9"},
		{"remote addr", func(r *http.Request) { r.RemoteAddr = "10.0.0.1:5555" }, "10.0.0.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.set(r)
			if got := remoteIP(r); got != tc.want {
				t.Errorf("remoteIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRoutePattern_FallsBackToPath(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/nope", nil)
	if got := routePattern(r); got != "/nope" {
		t.Errorf("routePattern = %q, want /nope", got)
	}
}
