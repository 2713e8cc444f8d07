package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-cms-client/internal/app"
	"github.com/samvad-hq/samvad-cms-client/internal/logger"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Open a session for the selected profile",
	Long: `Login posts the profile's credentials to its login endpoint and stores
the returned session cookie. Later calls with that profile attach the
cookie automatically until it expires or logout drops it.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Close()
	defer a.Close()

	p, err := a.Profile(profileName)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Login(ctx, p); err != nil {
		return errors.New(app.DescribeError(err))
	}
	fmt.Printf("session opened for profile %s\n", p.Name)
	return nil
}
