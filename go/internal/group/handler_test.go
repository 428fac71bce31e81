package group

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/grouptick/grouptick/go/clients/identity"
	"github.com/grouptick/grouptick/go/internal/ids"
)

func newTestRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(identity.CallerMiddleware)
	r.Mount("/groups", NewHandler(app).Routes())
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, caller, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(identity.CallerHeader, caller)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreateGroup(t *testing.T) {
	app := NewApp(newFakeGroupRepo(), &fakeTimerLister{}, testResolver())
	router := newTestRouter(app)

	rec := doRequest(t, router, http.MethodPost, "/groups", "alice",
		`{"name":"study hall","members":["bob"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool                `json:"success"`
		Data    CreateGroupResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data.GroupID) != ids.CodeLength {
		t.Errorf("group_id = %q", resp.Data.GroupID)
	}
}

func TestHandlerCreateGroupStatusMapping(t *testing.T) {
	repo := newFakeGroupRepo()
	app := NewApp(repo, &fakeTimerLister{}, testResolver())
	router := newTestRouter(app)

	if rec := doRequest(t, router, http.MethodPost, "/groups", "alice", `{"name":"taken"}`); rec.Code != http.StatusCreated {
		t.Fatal(rec.Code)
	}

	tests := []struct {
		name   string
		caller string
		body   string
		want   int
	}{
		{"no caller", "", `{"name":"x"}`, http.StatusUnauthorized},
		{"missing name", "alice", `{}`, http.StatusBadRequest},
		{"unknown member", "alice", `{"name":"y","members":["nobody"]}`, http.StatusBadRequest},
		{"duplicate name", "bob", `{"name":"taken"}`, http.StatusConflict},
		{"malformed body", "alice", `{"name":`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/groups", tc.caller, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestHandlerGetGroup(t *testing.T) {
	app := NewApp(newFakeGroupRepo(), &fakeTimerLister{}, testResolver())
	router := newTestRouter(app)

	g, err := app.CreateGroup(context.Background(), "alice", CreateGroupRequest{Name: "study hall"})
	if err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, router, http.MethodGet, "/groups/"+g.ID, "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if rec := doRequest(t, router, http.MethodGet, "/groups/"+g.ID, "bob", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("non-member fetch: status = %d, want 403", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/groups/NOSUCHGROUP1", "alice", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown group: status = %d, want 404", rec.Code)
	}
}

func TestHandlerListGroups(t *testing.T) {
	app := NewApp(newFakeGroupRepo(), &fakeTimerLister{}, testResolver())
	router := newTestRouter(app)

	if _, err := app.CreateGroup(context.Background(), "alice", CreateGroupRequest{Name: "one"}); err != nil {
		t.Fatal(err)
	}
	if _, err := app.CreateGroup(context.Background(), "bob", CreateGroupRequest{Name: "two"}); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, router, http.MethodGet, "/groups", "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Data []Summary `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Name != "one" {
		t.Errorf("summaries = %+v, want just alice's group", resp.Data)
	}
}
