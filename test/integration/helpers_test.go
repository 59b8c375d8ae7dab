// Package integration exercises the REST API and web UI through the full
// server wiring, in process.
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/serjsysoev/pipefold/pkg/api"
	"github.com/serjsysoev/pipefold/pkg/store"
	"github.com/serjsysoev/pipefold/web"
)

// newTestServer wires a fresh store, API server, and web UI the same way
// serve mode does, and returns the Fiber app plus the backing store.
func newTestServer(t *testing.T) (*fiber.App, *store.Store, *api.Server) {
	t.Helper()
	s := store.New()
	srv := api.New(s)
	web.New(s).Register(srv.App())
	return srv.App(), s, srv
}

// doJSON sends a JSON request to the app and decodes the JSON response.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}

	raw, _ := io.ReadAll(resp.Body)
	decoded := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("%s %s returned non-JSON body: %s", method, path, raw)
		}
	}
	return resp, decoded
}

// createPipeline registers a pipeline through the REST API and fails the
// test on any non-200 response.
func createPipeline(t *testing.T, app *fiber.App, id, source string) map[string]interface{} {
	t.Helper()

	resp, body := doJSON(t, app, "POST", "/v1/pipelines?pipelineId="+id, map[string]interface{}{
		"source": source,
	})
	if resp.StatusCode != 200 {
		t.Fatalf("createPipeline %s failed with status %d: %v", id, resp.StatusCode, body)
	}
	return body
}

// errorStatus digs the status string out of an error envelope.
func errorStatus(t *testing.T, body map[string]interface{}) string {
	t.Helper()

	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no error envelope: %v", body)
	}
	status, _ := errObj["status"].(string)
	return status
}
