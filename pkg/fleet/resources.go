package fleet

import (
	"context"

	cblog "github.com/charmbracelet/log"
	"github.com/darksworm/argofleet/pkg/api"
	apperrors "github.com/darksworm/argofleet/pkg/errors"
	"github.com/darksworm/argofleet/pkg/model"
)

// CreateResources provisions a project and an application referencing it on
// one instance, as a single logical transaction: acquire a token, create the
// project, create the application. There is no rollback; if the application
// create fails after the project create succeeded, the orphan project is
// left behind and logged. Known limitation, not auto-corrected.
func (f *Fleet) CreateResources(ctx context.Context, req model.MutationRequest) error {
	log := cblog.With("component", "mutator", "instance", req.BaseURL)

	token, err := f.login(ctx, req.BaseURL)
	if err != nil {
		return err
	}
	req.Token = token

	body, err := api.NewProjectService(req.BaseURL, token).Create(ctx, req)
	if err != nil {
		return err
	}
	if api.HasErrorField(body) {
		return apperrors.New(apperrors.ErrorAPI, "PROJECT_CREATE_FAILED", api.ErrorMessage(body)).
			WithContext("project", req.ProjectName)
	}
	log.Info("Created project", "project", req.ProjectName)

	body, err = api.NewApplicationService(req.BaseURL, token, "").Create(ctx, req)
	if err != nil {
		log.Warn("Application create failed after project create; orphan project remains",
			"project", req.ProjectName, "app", req.AppName)
		return err
	}
	if api.HasErrorField(body) {
		log.Warn("Application create rejected after project create; orphan project remains",
			"project", req.ProjectName, "app", req.AppName)
		return apperrors.New(apperrors.ErrorAPI, "APP_CREATE_FAILED", api.ErrorMessage(body)).
			WithContext("app", req.AppName).
			WithContext("project", req.ProjectName)
	}
	log.Info("Created application", "app", req.AppName, "project", req.ProjectName)

	return nil
}

// DeleteProject resolves the named instance, authenticates, and deletes the
// project there. The three-way outcome of the underlying delete is passed
// through unchanged.
func (f *Fleet) DeleteProject(ctx context.Context, instanceName, projectName string) (bool, error) {
	inst, err := f.registry.FindInstance(instanceName)
	if err != nil {
		return false, err
	}
	token, err := f.login(ctx, inst.URL)
	if err != nil {
		return false, err
	}
	return api.NewProjectService(inst.URL, token).Delete(ctx, projectName)
}

// DeleteApp resolves the named instance, authenticates, and deletes the
// application there, with the same three-way contract as DeleteProject.
func (f *Fleet) DeleteApp(ctx context.Context, instanceName, appName string) (bool, error) {
	inst, err := f.registry.FindInstance(instanceName)
	if err != nil {
		return false, err
	}
	token, err := f.login(ctx, inst.URL)
	if err != nil {
		return false, err
	}
	return api.NewApplicationService(inst.URL, token, inst.Name).Delete(ctx, appName)
}
