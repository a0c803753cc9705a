package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/egorlepa/splitroute/internal/healthcheck"
	"github.com/egorlepa/splitroute/internal/platform"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var (
		vpnConfig string
		domain    string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that this host can set up split routing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			checker := healthcheck.New(cfg, newResolver(cfg, logger), platform.Exec{})

			allPassed := printResults(out, checker.RunChecks(cmd.Context(), vpnConfig))

			if domain != "" {
				fmt.Fprintln(out)
				if !printDomainProbe(cmd.Context(), out, checker, vpnConfig, domain) {
					allPassed = false
				}
			}

			if !allPassed {
				return fmt.Errorf("some checks failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&vpnConfig, "config", "c", "", "OpenVPN config `FILE` to inspect")
	cmd.Flags().StringVarP(&domain, "domain", "d", "", "domain to probe")
	return cmd
}

func printResults(w io.Writer, results []healthcheck.Result) bool {
	allPassed := true
	for _, r := range results {
		if r.Passed {
			printPass(w, r.Name+": "+r.Detail)
		} else {
			printFail(w, r.Name+": "+r.Detail)
			allPassed = false
		}
	}
	return allPassed
}

// printDomainProbe returns true if every resolved address has a kernel route.
func printDomainProbe(ctx context.Context, w io.Writer, checker *healthcheck.Checker, vpnConfig, domain string) bool {
	res, err := checker.ProbeDomain(ctx, vpnConfig, domain)
	if err != nil {
		printFail(w, fmt.Sprintf("probe %s: %v", domain, err))
		return false
	}
	if len(res.IPs) == 0 {
		printWarn(w, fmt.Sprintf("%s has no A records", domain))
		return true
	}

	ok := true
	for _, ip := range res.IPs {
		var where []string
		if res.InKernel[ip] {
			where = append(where, "kernel")
		}
		if res.InConfig[ip] {
			where = append(where, "config")
		}
		msg := fmt.Sprintf("%s %s", domain, ip)
		switch {
		case res.InKernel[ip]:
			printPass(w, msg+" routed ("+strings.Join(where, ", ")+")")
		case res.InConfig[ip]:
			printWarn(w, msg+" only in config")
		default:
			printFail(w, msg+" not routed")
			ok = false
		}
	}
	return ok
}

func printPass(w io.Writer, msg string) {
	fmt.Fprintf(w, "  \033[32m✓\033[0m %s\n", msg)
}

func printFail(w io.Writer, msg string) {
	fmt.Fprintf(w, "  \033[31m✗\033[0m %s\n", msg)
}

func printWarn(w io.Writer, msg string) {
	fmt.Fprintf(w, "  \033[33m!\033[0m %s\n", msg)
}
