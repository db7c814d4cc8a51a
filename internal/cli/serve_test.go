package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/buildinfo"
	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
	"github.com/matzehuels/boxlayout/pkg/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := session.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	srv := newServer(
		session.NewManager(store, layout.DefaultConfig(), logger),
		pipeline.NewRunner(nil, nil, logger),
		logger,
	)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

const seedBody = `{
	"name": "billing",
	"script": {"edits": [
		{"op": "add_node", "id": "app", "width": 60, "height": 20},
		{"op": "add_node", "id": "db", "width": 40, "height": 20, "links": [{"connector": "c1", "parent": "app"}]}
	]}
}`

func createSession(t *testing.T, ts *httptest.Server) sessionResponse {
	t.Helper()
	resp := do(t, ts, http.MethodPost, "/sessions", seedBody)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /sessions status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	return decode[sessionResponse](t, resp)
}

func TestServeCreateAndGet(t *testing.T) {
	ts := newTestServer(t)
	created := createSession(t, ts)

	if created.Name != "billing" || created.Edits != 2 || created.Nodes != 2 {
		t.Errorf("created = %+v, want billing with 2 edits and 2 nodes", created.Info)
	}
	if len(created.Layout.Connectors) != 1 {
		t.Errorf("connectors = %d, want 1", len(created.Layout.Connectors))
	}

	resp := do(t, ts, http.MethodGet, "/sessions/"+created.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	got := decode[sessionResponse](t, resp)
	if got.ID != created.ID {
		t.Errorf("ID = %q, want %q", got.ID, created.ID)
	}

	list := decode[[]session.Info](t, do(t, ts, http.MethodGet, "/sessions", ""))
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %+v, want the created session", list)
	}
}

func TestServeEdits(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts).ID

	resp := do(t, ts, http.MethodPost, "/sessions/"+id+"/edits",
		`{"edits": [{"op": "add_node", "id": "cache", "width": 30, "height": 20, "links": [{"connector": "c2", "parent": "app"}]}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body := decode[editsResponse](t, resp)
	if len(body.Results) != 1 || len(body.Results[0].Actions) == 0 {
		t.Errorf("results = %+v, want one edit with actions", body.Results)
	}
	if body.Error != nil {
		t.Errorf("error = %+v, want none", body.Error)
	}

	script := decode[struct {
		Edits []json.RawMessage `json:"edits"`
	}](t, do(t, ts, http.MethodGet, "/sessions/"+id+"/script", ""))
	if len(script.Edits) != 3 {
		t.Errorf("script edits = %d, want 3", len(script.Edits))
	}
}

func TestServeEditsStopAtFailure(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts).ID

	resp := do(t, ts, http.MethodPost, "/sessions/"+id+"/edits", `{"edits": [
		{"op": "resize_node", "id": "db", "width": 50, "height": 20},
		{"op": "add_connector", "id": "c9", "source": "db", "target": "ghost"},
		{"op": "remove_node", "id": "db"}
	]}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	body := decode[editsResponse](t, resp)
	if len(body.Results) != 1 {
		t.Errorf("results = %d, want 1", len(body.Results))
	}
	if body.Error == nil || body.Error.Code != errors.ErrCodeNotFound {
		t.Errorf("error = %+v, want %s", body.Error, errors.ErrCodeNotFound)
	}

	got := decode[sessionResponse](t, do(t, ts, http.MethodGet, "/sessions/"+id, ""))
	if got.Edits != 3 || got.Nodes != 2 {
		t.Errorf("after failure = %+v, want 3 edits and 2 nodes", got.Info)
	}
}

func TestServeErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   errors.Code
	}{
		{"unknown session", http.MethodGet, "/sessions/nope", "", http.StatusNotFound, errors.ErrCodeSessionNotFound},
		{"unknown session edits", http.MethodPost, "/sessions/nope/edits", `{"edits": []}`, http.StatusNotFound, errors.ErrCodeSessionNotFound},
		{"bad body", http.MethodPost, "/sessions", `{"name":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad seed", http.MethodPost, "/sessions", `{"script": {"edits": [{"op": "explode"}]}}`, http.StatusBadRequest, errors.ErrCodeInvalidScript},
		{"delete unknown", http.MethodDelete, "/sessions/nope", "", http.StatusNotFound, errors.ErrCodeSessionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			body := decode[map[string]errorBody](t, resp)
			if got := body["error"].Code; got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestServeSaveDeleteLoad(t *testing.T) {
	ts := newTestServer(t)
	created := createSession(t, ts)
	id := created.ID

	if resp := do(t, ts, http.MethodPost, "/sessions/"+id+"/save", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if resp := do(t, ts, http.MethodDelete, "/sessions/"+id, ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if resp := do(t, ts, http.MethodGet, "/sessions/"+id, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	resp := do(t, ts, http.MethodPost, "/sessions/"+id+"/load", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	loaded := decode[sessionResponse](t, resp)
	if loaded.Edits != 2 || loaded.Name != "billing" {
		t.Errorf("loaded = %+v, want billing with 2 edits", loaded.Info)
	}

	want, _ := json.Marshal(created.Layout)
	got, _ := json.Marshal(loaded.Layout)
	if !bytes.Equal(got, want) {
		t.Errorf("loaded layout differs:\n got %s\nwant %s", got, want)
	}
}

func TestServeSVG(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts).ID

	resp := do(t, ts, http.MethodGet, "/sessions/"+id+"/svg?detailed=true", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(data, []byte("<svg")) {
		t.Errorf("body is not SVG: %.80s", data)
	}
}

func TestServeVersion(t *testing.T) {
	ts := newTestServer(t)
	got := decode[buildinfo.Info](t, do(t, ts, http.MethodGet, "/version", ""))
	if got != buildinfo.Get() {
		t.Errorf("version = %+v, want %+v", got, buildinfo.Get())
	}
}
