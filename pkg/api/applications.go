package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	cblog "github.com/charmbracelet/log"
	appcontext "github.com/darksworm/argofleet/pkg/context"
	apperrors "github.com/darksworm/argofleet/pkg/errors"
	"github.com/darksworm/argofleet/pkg/model"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ApplicationService provides ArgoCD application operations against one
// instance. The instance's registry name travels with the service so sync
// messages and located app data can say where they came from.
type ApplicationService struct {
	client   *Client
	instance string
}

// NewApplicationService creates a new application service
func NewApplicationService(baseURL, token, instanceName string) *ApplicationService {
	return &ApplicationService{
		client:   NewClient(baseURL, token),
		instance: instanceName,
	}
}

// NewApplicationServiceWithClient creates an application service around an
// existing client
func NewApplicationServiceWithClient(client *Client, instanceName string) *ApplicationService {
	return &ApplicationService{client: client, instance: instanceName}
}

// applicationManifest builds the Application create payload for a mutation request
func applicationManifest(req model.MutationRequest) map[string]interface{} {
	sourcePath := req.SourcePath
	if sourcePath == "" {
		sourcePath = "."
	}

	metadata := map[string]interface{}{
		"name": req.AppName,
	}
	if req.LabelValue != "" {
		metadata["labels"] = map[string]string{"app": req.LabelValue}
	}

	return map[string]interface{}{
		"metadata": metadata,
		"spec": map[string]interface{}{
			"project": req.ProjectName,
			"source": map[string]interface{}{
				"repoURL":        req.SourceRepo,
				"path":           sourcePath,
				"targetRevision": "HEAD",
			},
			"destination": map[string]interface{}{
				"server":    "https://kubernetes.default.svc",
				"namespace": req.Namespace,
			},
			"syncPolicy": map[string]interface{}{
				"automated": map[string]interface{}{
					"prune":    true,
					"selfHeal": true,
				},
			},
		},
	}
}

// Create posts the application manifest and returns the raw decoded body,
// success or error shape alike. Same pass-through contract as project
// creation: only transport failures become errors.
func (s *ApplicationService) Create(ctx context.Context, req model.MutationRequest) (json.RawMessage, error) {
	resp, err := s.client.Post(ctx, "/api/v1/applications", applicationManifest(req))
	if err != nil {
		return nil, err
	}

	cblog.With("component", "api", "op", "create-app").Debug("application create response",
		"app", req.AppName, "status", resp.StatusCode)

	return resp.Body, nil
}

// Delete removes an application with the same three-way outcome as project
// deletion: true on 2xx, false on a neutral failure, error with the server's
// message verbatim on a permission-denial body.
func (s *ApplicationService) Delete(ctx context.Context, appName string) (bool, error) {
	resp, err := s.client.Delete(ctx, "/api/v1/applications/"+url.PathEscape(appName))
	if err != nil {
		return false, err
	}

	switch out := Classify(resp); out.Kind {
	case OutcomeOK:
		return true, nil
	case OutcomeHardFailure:
		return false, apperrors.PermissionDenied(out.Message).
			WithContext("app", appName).
			WithContext("status", out.StatusCode)
	default:
		cblog.With("component", "api", "op", "delete-app").Warn("application delete soft failure",
			"app", appName, "status", resp.StatusCode)
		return false, nil
	}
}

// Sync requests a sync and always reports the outcome as data: Success on
// 2xx, Failure on any other status, 403 included. Permission denials are
// deliberately swallowed into the Failure status here, unlike the delete
// operations. Only transport failures return an error.
func (s *ApplicationService) Sync(ctx context.Context, appName string) (model.SyncResult, error) {
	ctx, cancel := appcontext.WithSyncTimeout(ctx)
	defer cancel()

	path := fmt.Sprintf("/api/v1/applications/%s/sync", url.PathEscape(appName))
	resp, err := s.client.Post(ctx, path, map[string]interface{}{})
	if err != nil {
		return model.SyncResult{}, err
	}

	if resp.OK() {
		return model.SyncResult{
			Status:  model.SyncSuccess,
			Message: fmt.Sprintf("Re-synced %s on %s", appName, s.instance),
		}, nil
	}

	cblog.With("component", "api", "op", "sync").Warn("sync failed",
		"app", appName, "instance", s.instance, "status", resp.StatusCode)

	return model.SyncResult{
		Status:  model.SyncFailure,
		Message: fmt.Sprintf("Failed to resync %s on %s", appName, s.instance),
	}, nil
}

// FindByName probes the deterministic ordered candidate names and returns
// the first application the instance answers for, decorated with the
// instance name. Candidates that miss keep the probe going; only when every
// candidate fails does the last transport error (or a not-found) surface.
func (s *ApplicationService) FindByName(ctx context.Context, candidates []string) (model.AppData, error) {
	var lastErr error

	for _, candidate := range candidates {
		resp, err := s.client.Get(ctx, "/api/v1/applications?name="+url.QueryEscape(candidate))
		if err != nil {
			lastErr = err
			continue
		}
		if !resp.OK() {
			continue
		}
		if !gjson.GetBytes(resp.Body, "metadata.name").Exists() {
			continue
		}

		decorated, err := sjson.SetBytes(resp.Body, "instance", s.instance)
		if err != nil {
			return model.AppData{}, apperrors.Wrap(err, apperrors.ErrorInternal, "DECORATE_FAILED",
				"Failed to decorate application payload")
		}

		return model.AppData{Instance: s.instance, Payload: decorated}, nil
	}

	if lastErr != nil {
		return model.AppData{}, lastErr
	}
	return model.AppData{}, apperrors.New(apperrors.ErrorAPI, "APP_NOT_FOUND",
		fmt.Sprintf("no application matched on %s", s.instance)).
		WithContext("candidates", candidates)
}

// ListBySelector lists applications matching a label selector. Every item
// in the response is decorated with the instance name individually.
func (s *ApplicationService) ListBySelector(ctx context.Context, selector string) ([]model.AppData, error) {
	resp, err := s.client.Get(ctx, "/api/v1/applications?selector="+url.QueryEscape(selector))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apperrors.New(apperrors.ErrorAPI, "LIST_FAILED",
			fmt.Sprintf("application list failed on %s", s.instance)).
			WithContext("status", resp.StatusCode).
			WithContext("selector", selector)
	}

	items := gjson.GetBytes(resp.Body, "items").Array()
	apps := make([]model.AppData, 0, len(items))
	for _, item := range items {
		decorated, err := sjson.SetBytes([]byte(item.Raw), "instance", s.instance)
		if err != nil {
			continue
		}
		apps = append(apps, model.AppData{Instance: s.instance, Payload: decorated})
	}

	return apps, nil
}

// AppName extracts the application name from located app data
func AppName(data model.AppData) string {
	return gjson.GetBytes(data.Payload, "metadata.name").String()
}
