package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/egorlepa/splitroute/internal/platform"
	"github.com/egorlepa/splitroute/internal/split"
)

// version is set at build time via ldflags.
var version = "dev"

type rootOptions struct {
	vpnConfig string
	add       string
	remove    string
	list      bool
	settings  string
	logLevel  string
}

func NewRootCmd() *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:           "splitroute",
		Short:         "Configures VPN split tunneling for specific domains",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, &opts)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	f := root.Flags()
	f.StringVarP(&opts.vpnConfig, "config", "c", "", "OpenVPN config `FILE`")
	f.StringVarP(&opts.add, "add", "a", "", "comma-separated list of `DOMAINS` to route through the VPN")
	f.StringVarP(&opts.remove, "remove", "r", "", "comma-separated list of `DOMAINS` to remove from VPN routing")
	f.BoolVarP(&opts.list, "list", "l", false, "list the currently routed domains")
	_ = root.MarkFlagRequired("config")

	pf := root.PersistentFlags()
	pf.StringVar(&opts.settings, "settings", platform.ConfigFile, "splitroute settings file")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newVersionCmd(),
		newCheckCmd(&opts),
	)

	return root
}

// runRoot dispatches to exactly one action: list, then add, then remove.
// Operation failures are reported on stderr and do not fail the command.
func runRoot(cmd *cobra.Command, opts *rootOptions) error {
	list := opts.list
	add := cmd.Flags().Changed("add")
	remove := cmd.Flags().Changed("remove")
	if !list && !add && !remove {
		return nil
	}

	ops, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	switch {
	case list:
		if err := ops.List(opts.vpnConfig); err != nil {
			fmt.Fprintf(stderr, "Failed to list routed domains: %v\n", err)
		}
	case add:
		if err := ops.Add(ctx, opts.vpnConfig, split.SplitDomains(opts.add)); err != nil {
			fmt.Fprintf(stderr, "Failed to set up VPN routing: %v\n", err)
			return nil
		}
		fmt.Fprintln(stdout, "VPN routing setup successfully!")
	case remove:
		if err := ops.Remove(ctx, opts.vpnConfig, split.SplitDomains(opts.remove)); err != nil {
			fmt.Fprintf(stderr, "Failed to remove VPN routing: %v\n", err)
			return nil
		}
		fmt.Fprintln(stdout, "VPN routing removed successfully!")
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// SetVersion sets the version string (called from main).
func SetVersion(v string) {
	version = v
}
