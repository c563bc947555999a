package cmd

import (
	"fmt"

	"github.com/darksworm/argofleet/pkg/model"
	"github.com/spf13/cobra"
)

func newCreateCommand() *cobra.Command {
	var (
		instanceName string
		req          model.MutationRequest
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project and an application on one instance",
		Long: `Create provisions a project and an application referencing it on the named
instance. The two creates are one logical transaction without rollback: if
the application create fails after the project was created, the project is
left behind.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFleet()
			if err != nil {
				return printError(err)
			}

			inst, err := f.Registry().FindInstance(instanceName)
			if err != nil {
				return printError(err)
			}
			req.BaseURL = inst.URL

			if err := f.CreateResources(cmd.Context(), req); err != nil {
				return printError(err)
			}
			return printJSON(map[string]interface{}{
				"created":  true,
				"instance": inst.Name,
				"project":  req.ProjectName,
				"app":      req.AppName,
			})
		},
	}

	cmd.Flags().StringVar(&instanceName, "instance", "", "Registry name of the target instance")
	cmd.Flags().StringVar(&req.ProjectName, "project", "", "Project name to create")
	cmd.Flags().StringVar(&req.Namespace, "namespace", "", "Destination namespace")
	cmd.Flags().StringVar(&req.SourceRepo, "repo", "", "Source repository URL")
	cmd.Flags().StringVar(&req.SourcePath, "path", "", "Path within the source repository")
	cmd.Flags().StringVar(&req.LabelValue, "label", "", "Value for the app label")
	cmd.Flags().StringVar(&req.AppName, "app", "", "Application name to create")
	_ = cmd.MarkFlagRequired("instance")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("namespace")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("app")

	return cmd
}

func newDeleteProjectCommand() *cobra.Command {
	var instanceName, projectName string

	cmd := &cobra.Command{
		Use:   "delete-project",
		Short: "Delete a project on one instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFleet()
			if err != nil {
				return printError(err)
			}

			deleted, err := f.DeleteProject(cmd.Context(), instanceName, projectName)
			if err != nil {
				return printError(err)
			}
			if !deleted {
				return printError(fmt.Errorf("project %s not deleted on %s; retry later", projectName, instanceName))
			}
			return printJSON(map[string]interface{}{"deleted": true, "project": projectName})
		},
	}

	cmd.Flags().StringVar(&instanceName, "instance", "", "Registry name of the target instance")
	cmd.Flags().StringVar(&projectName, "project", "", "Project name to delete")
	_ = cmd.MarkFlagRequired("instance")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newDeleteAppCommand() *cobra.Command {
	var instanceName, appName string

	cmd := &cobra.Command{
		Use:   "delete-app",
		Short: "Delete an application on one instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFleet()
			if err != nil {
				return printError(err)
			}

			deleted, err := f.DeleteApp(cmd.Context(), instanceName, appName)
			if err != nil {
				return printError(err)
			}
			if !deleted {
				return printError(fmt.Errorf("application %s not deleted on %s; retry later", appName, instanceName))
			}
			return printJSON(map[string]interface{}{"deleted": true, "app": appName})
		},
	}

	cmd.Flags().StringVar(&instanceName, "instance", "", "Registry name of the target instance")
	cmd.Flags().StringVar(&appName, "app", "", "Application name to delete")
	_ = cmd.MarkFlagRequired("instance")
	_ = cmd.MarkFlagRequired("app")

	return cmd
}
