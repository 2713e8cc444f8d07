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

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop the stored session for the selected profile",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(_ *cobra.Command, _ []string) error {
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

	if err := a.Logout(ctx, p); err != nil {
		return errors.New(app.DescribeError(err))
	}
	fmt.Printf("session dropped for profile %s\n", p.Name)
	return nil
}
