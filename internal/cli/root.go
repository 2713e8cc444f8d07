package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-cms-client/internal/app"
	"github.com/samvad-hq/samvad-cms-client/internal/config"
	"github.com/samvad-hq/samvad-cms-client/internal/logger"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var profileName string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cmsctl",
	Short: "Talk to CMS service endpoints from the command line",
	Long: `cmsctl issues REST calls against CMS service endpoints using named
connection profiles from the profiles file.

Get started:
  cmsctl login                       Open a session for the selected profile
  cmsctl get node/42                 Fetch a resource
  cmsctl post node -d @node.json     Create a resource
  cmsctl logout                      Drop the stored session`,
	Version: fmt.Sprintf("%s (built %s)", version, buildTime),
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "P", "", "Connection profile to use")
}

// SetVersion sets the version info
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// newApp loads config, initializes logging and assembles the app layer.
// Callers must defer both logger.Close and App.Close.
func newApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if _, err := logger.Init(cfg); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := app.New(cfg, logger.Adapter{})
	if err != nil {
		return nil, err
	}
	return a, nil
}
