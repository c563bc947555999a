package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/darksworm/argofleet/pkg/errors"
	"github.com/darksworm/argofleet/pkg/model"
	"github.com/tidwall/gjson"
)

func TestCreateProjectPostsManifest(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/v1/projects" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotBody, _ = json.Marshal(decodeJSON(t, r))
		w.Write([]byte(`{"metadata":{"name":"my-project"}}`))
	}))
	defer server.Close()

	svc := NewProjectService(server.URL, "tok")
	body, err := svc.Create(context.Background(), model.MutationRequest{
		ProjectName: "my-project",
		Namespace:   "my-ns",
		SourceRepo:  "https://git.example.com/repo.git",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gjson.GetBytes(body, "metadata.name").String() != "my-project" {
		t.Errorf("unexpected response body: %s", body)
	}
	if got := gjson.GetBytes(gotBody, "project.metadata.name").String(); got != "my-project" {
		t.Errorf("manifest project name = %q", got)
	}
	if got := gjson.GetBytes(gotBody, "project.spec.destinations.0.namespace").String(); got != "my-ns" {
		t.Errorf("manifest namespace = %q", got)
	}
	if got := gjson.GetBytes(gotBody, "project.spec.sourceRepos.0").String(); got != "https://git.example.com/repo.git" {
		t.Errorf("manifest sourceRepos = %q", got)
	}
}

func TestCreateProjectPassesErrorBodyThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"already exists","message":"project my-project already exists"}`))
	}))
	defer server.Close()

	svc := NewProjectService(server.URL, "tok")
	body, err := svc.Create(context.Background(), model.MutationRequest{ProjectName: "my-project"})
	if err != nil {
		t.Fatalf("application-level error must not be thrown: %v", err)
	}
	if !HasErrorField(body) {
		t.Errorf("expected error shape passed through, got %s", body)
	}
}

func TestDeleteProjectThreeWayOutcome(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantDeleted bool
		wantErr     bool
		wantMessage string
	}{
		{
			name:        "2xx deletes",
			status:      200,
			body:        `{}`,
			wantDeleted: true,
		},
		{
			name:   "500 is a soft false",
			status: 500,
			body:   `upstream error`,
		},
		{
			name:        "permission denial rejects with server message",
			status:      403,
			body:        `{"error":"forbidden","message":"permission denied: projects, delete, my-project"}`,
			wantErr:     true,
			wantMessage: "permission denied: projects, delete, my-project",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != "DELETE" || r.URL.Path != "/api/v1/projects/my-project" {
					t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			deleted, err := NewProjectService(server.URL, "tok").Delete(context.Background(), "my-project")

			if deleted != tt.wantDeleted {
				t.Errorf("deleted = %v, want %v", deleted, tt.wantDeleted)
			}
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected hard failure")
				}
				fe := apperrors.AsFleetError(err)
				if !fe.IsCategory(apperrors.ErrorPermission) {
					t.Errorf("expected permission category, got %s", fe.Category)
				}
				if fe.Message != tt.wantMessage {
					t.Errorf("message = %q, want %q verbatim", fe.Message, tt.wantMessage)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// decodeJSON reads a request body into a generic map
func decodeJSON(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
	return body
}
