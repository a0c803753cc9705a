// Package split implements the add, remove and list operations on a VPN
// client config.
package split

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/egorlepa/splitroute/internal/ovpn"
	"github.com/egorlepa/splitroute/internal/routing"
)

// Resolver turns domains into IPv4 address strings.
type Resolver interface {
	ResolveAll(ctx context.Context, domains []string) ([]string, error)
}

// Launcher (re)starts the VPN client with a config file.
type Launcher interface {
	Restart(ctx context.Context, configPath string) error
}

// Options tune the operations. The zero value only differs from the
// defaults by not restarting the VPN client.
type Options struct {
	Interface string // tunnel interface for host routes

	// PersistRoutes writes route lines into the config on add, in addition
	// to installing kernel routes.
	PersistRoutes bool
	// UninstallOnRemove deletes kernel routes for dropped lines on remove.
	UninstallOnRemove bool
	// Restart spawns the VPN client after a successful add.
	Restart bool
}

// Service runs the operations. It keeps no state between calls.
type Service struct {
	resolver  Resolver
	installer routing.Installer
	launcher  Launcher
	opts      Options
	out       io.Writer
	logger    *slog.Logger
}

// New creates a Service. Human-readable output goes to out.
func New(resolver Resolver, installer routing.Installer, launcher Launcher, opts Options, out io.Writer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver:  resolver,
		installer: installer,
		launcher:  launcher,
		opts:      opts,
		out:       out,
		logger:    logger,
	}
}

// Add resolves domains, makes sure the config carries route-nopull, installs
// a host route for every address whose route line is not already in the
// config, saves the config and restarts the VPN client. An address shared by
// several domains is installed once per call.
//
// The first failure aborts: nothing is written and the client is not
// restarted, but routes installed so far stay in place.
func (s *Service) Add(ctx context.Context, configPath string, domains []string) error {
	ips, err := s.resolver.ResolveAll(ctx, domains)
	if err != nil {
		return err
	}

	f, err := ovpn.Load(configPath)
	if err != nil {
		return err
	}

	if f.EnsureNoPull() {
		s.logger.Info("added route-nopull", "config", configPath)
	}

	installed := make(map[string]bool)
	for _, ip := range ips {
		if installed[ip] || f.HasRoute(ip) {
			continue
		}
		if err := s.installer.Add(ctx, ip, s.opts.Interface); err != nil {
			return err
		}
		installed[ip] = true
		s.logger.Info("installed host route", "ip", ip, "interface", s.opts.Interface, "backend", s.installer.Name())

		if s.opts.PersistRoutes {
			f.AppendLine(ovpn.RouteLine(ip))
		}
	}

	if err := f.Save(); err != nil {
		return err
	}

	if !s.opts.Restart {
		return nil
	}
	return s.launcher.Restart(ctx, configPath)
}

// Remove resolves domains afresh and drops every route line naming one of
// the addresses. Kernel routes are only touched with UninstallOnRemove.
func (s *Service) Remove(ctx context.Context, configPath string, domains []string) error {
	ips, err := s.resolver.ResolveAll(ctx, domains)
	if err != nil {
		return err
	}

	f, err := ovpn.Load(configPath)
	if err != nil {
		return err
	}

	removed := f.RemoveRoutes(ips)
	for _, line := range removed {
		fmt.Fprintf(s.out, "Removing route: %s\n", line)
	}

	if err := f.Save(); err != nil {
		return err
	}

	if s.opts.UninstallOnRemove {
		s.uninstall(ctx, ips, removed)
	}
	return nil
}

// List prints every route line of the config verbatim.
func (s *Service) List(configPath string) error {
	f, err := ovpn.Load(configPath)
	if err != nil {
		return err
	}
	for _, r := range f.Routes() {
		fmt.Fprintln(s.out, r)
	}
	return nil
}

// uninstall deletes kernel routes for the addresses that appeared in a
// dropped line. Failures are logged and skipped.
func (s *Service) uninstall(ctx context.Context, ips, removed []string) {
	done := make(map[string]bool)
	for _, ip := range ips {
		if done[ip] || !namedIn(ip, removed) {
			continue
		}
		done[ip] = true
		if err := s.installer.Remove(ctx, ip, s.opts.Interface); err != nil {
			s.logger.Warn("host route removal failed", "ip", ip, "error", err)
			continue
		}
		s.logger.Info("removed host route", "ip", ip, "interface", s.opts.Interface)
	}
}

func namedIn(ip string, lines []string) bool {
	for _, l := range lines {
		if slices.Contains(strings.Fields(l), ip) {
			return true
		}
	}
	return false
}

// SplitDomains splits a comma-separated domain list. Items are neither
// trimmed nor deduplicated.
func SplitDomains(list string) []string {
	return strings.Split(list, ",")
}
