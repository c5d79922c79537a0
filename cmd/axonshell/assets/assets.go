// Package assets implements the `axonshell assets` command tree: streaming
// asset exports, counts, and field discovery for devices and users.
package assets

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	axonius "github.com/axonius-community/go-axonius"
	"github.com/axonius-community/go-axonius/internal/profile"
)

// connFlags are the connection flags shared by every assets subcommand.
type connFlags struct {
	profileFile string
	profileName string
	assetType   string
}

func (c *connFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&c.profileFile, "profile-file", profile.DefaultPath(), "Path to the connection profile file")
	cmd.PersistentFlags().StringVar(&c.profileName, "profile", "", "Named profile to use (default: top-level profile)")
	cmd.PersistentFlags().StringVarP(&c.assetType, "type", "t", "devices", "Asset type: devices or users")
}

// connect builds a client from the profile and returns the service for the
// selected asset type.
func (c *connFlags) connect() (*axonius.Client, axonius.AssetService, error) {
	p, err := profile.Load(c.profileFile, c.profileName)
	if err != nil {
		return nil, nil, err
	}

	client, err := axonius.NewClient(
		axonius.WithBaseURL(p.URL),
		axonius.WithAPIKey(p.APIKey, p.APISecret),
	)
	if err != nil {
		return nil, nil, err
	}

	switch c.assetType {
	case string(axonius.AssetDevices):
		return client, client.Devices, nil
	case string(axonius.AssetUsers):
		return client, client.Users, nil
	default:
		return nil, nil, fmt.Errorf("unknown asset type %q: want devices or users", c.assetType)
	}
}

// requestID tags every request of one CLI invocation for server-side tracing.
func requestID() axonius.RequestOption {
	return axonius.WithRequestID("axonshell-" + uuid.NewString())
}

// NewCmd creates the `assets` command with its subcommands.
func NewCmd() *cobra.Command {
	conn := &connFlags{}

	cmd := &cobra.Command{
		Use:           "assets",
		Short:         "Work with device and user assets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	conn.register(cmd)

	cmd.AddCommand(newGetCmd(conn))
	cmd.AddCommand(newCountCmd(conn))
	cmd.AddCommand(newFieldsCmd(conn))

	return cmd
}
