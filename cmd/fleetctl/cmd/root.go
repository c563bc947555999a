package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/darksworm/argofleet/pkg/api"
	"github.com/darksworm/argofleet/pkg/auth"
	"github.com/darksworm/argofleet/pkg/config"
	"github.com/darksworm/argofleet/pkg/fleet"
	"github.com/darksworm/argofleet/pkg/trust"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "fleetctl",
	Short: "fleetctl - operate applications across a fleet of ArgoCD instances",
	Long: `fleetctl talks to every ArgoCD instance in your fleet configuration:
it finds which instance(s) host an application, re-syncs it everywhere it
lives, and creates or deletes projects and applications on a chosen instance.

Results are printed as JSON on stdout; logs go to a file (ARGOFLEET_LOG_FILE).`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the fleet configuration file")

	rootCmd.AddCommand(newFindCommand())
	rootCmd.AddCommand(newGetCommand())
	rootCmd.AddCommand(newResyncCommand())
	rootCmd.AddCommand(newCreateCommand())
	rootCmd.AddCommand(newDeleteAppCommand())
	rootCmd.AddCommand(newDeleteProjectCommand())
}

// loadFleet resolves configuration once and builds the fleet client
func loadFleet() (*fleet.Fleet, error) {
	var (
		registry *config.Registry
		err      error
	)
	if configPath != "" {
		registry, err = config.LoadRegistryFromPath(configPath)
	} else {
		registry, err = config.LoadRegistry()
	}
	if err != nil {
		return nil, err
	}

	prefs, err := config.LoadPrefs()
	if err != nil {
		return nil, err
	}

	if opts := registry.TLS(); !opts.IsZero() {
		httpClient, err := trust.NewHTTPClient(opts)
		if err != nil {
			return nil, err
		}
		auth.SetHTTPClient(httpClient)
		api.SetHTTPClient(httpClient)
	}

	return fleet.New(registry, prefs), nil
}

// printJSON writes the command result as indented JSON on stdout
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printError reports a command failure on stderr
func printError(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}
