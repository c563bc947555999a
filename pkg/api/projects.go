package api

import (
	"context"
	"encoding/json"
	"net/url"

	cblog "github.com/charmbracelet/log"
	apperrors "github.com/darksworm/argofleet/pkg/errors"
	"github.com/darksworm/argofleet/pkg/model"
)

// ProjectService provides ArgoCD project operations against one instance
type ProjectService struct {
	client *Client
}

// NewProjectService creates a new project service
func NewProjectService(baseURL, token string) *ProjectService {
	return &ProjectService{client: NewClient(baseURL, token)}
}

// NewProjectServiceWithClient creates a project service around an existing client
func NewProjectServiceWithClient(client *Client) *ProjectService {
	return &ProjectService{client: client}
}

// projectManifest builds the AppProject create payload for a mutation request
func projectManifest(req model.MutationRequest) map[string]interface{} {
	return map[string]interface{}{
		"project": map[string]interface{}{
			"metadata": map[string]interface{}{
				"name": req.ProjectName,
			},
			"spec": map[string]interface{}{
				"description": "Created by argofleet",
				"sourceRepos": []string{req.SourceRepo},
				"destinations": []interface{}{
					map[string]interface{}{
						"server":    "https://kubernetes.default.svc",
						"namespace": req.Namespace,
					},
				},
			},
		},
	}
}

// Create posts the project manifest and returns the raw decoded body whether
// it represents success or one of the server's error shapes. Callers inspect
// the body; this layer only fails on transport errors.
func (s *ProjectService) Create(ctx context.Context, req model.MutationRequest) (json.RawMessage, error) {
	resp, err := s.client.Post(ctx, "/api/v1/projects", projectManifest(req))
	if err != nil {
		return nil, err
	}

	cblog.With("component", "api", "op", "create-project").Debug("project create response",
		"project", req.ProjectName, "status", resp.StatusCode)

	return resp.Body, nil
}

// Delete removes a project, preserving the three-way outcome: true on 2xx,
// false on a neutral failure status (retryable by the caller), and an error
// carrying the server's message verbatim when the body is a permission
// denial.
func (s *ProjectService) Delete(ctx context.Context, projectName string) (bool, error) {
	resp, err := s.client.Delete(ctx, "/api/v1/projects/"+url.PathEscape(projectName))
	if err != nil {
		return false, err
	}

	switch out := Classify(resp); out.Kind {
	case OutcomeOK:
		return true, nil
	case OutcomeHardFailure:
		return false, apperrors.PermissionDenied(out.Message).
			WithContext("project", projectName).
			WithContext("status", out.StatusCode)
	default:
		cblog.With("component", "api", "op", "delete-project").Warn("project delete soft failure",
			"project", projectName, "status", resp.StatusCode)
		return false, nil
	}
}
