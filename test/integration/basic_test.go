package integration

import (
	"net/http/httptest"
	"testing"
)

func TestHealthz(t *testing.T) {
	app, _, _ := newTestServer(t)

	resp, body := doJSON(t, app, "GET", "/healthz", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestRootRedirectsToUI(t *testing.T) {
	app, _, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/ui" {
		t.Errorf("expected redirect to /ui, got %s", loc)
	}
}

func TestUnknownRoute(t *testing.T) {
	app, _, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/v1/nope", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
