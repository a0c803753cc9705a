// Package healthcheck verifies that the host can carry out split routing:
// helper binaries, the tunnel interface, the resolver and the VPN config.
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/egorlepa/splitroute/internal/config"
	"github.com/egorlepa/splitroute/internal/dns"
	"github.com/egorlepa/splitroute/internal/ovpn"
	"github.com/egorlepa/splitroute/internal/platform"
)

// Result represents a single health check outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// ProbeResult represents the result of a domain probe.
type ProbeResult struct {
	Domain   string
	IPs      []string
	InConfig map[string]bool // IP -> route line present in the VPN config
	InKernel map[string]bool // IP -> host route present on the tunnel interface
}

// Resolver is the lookup used for the resolver check and domain probes.
type Resolver interface {
	Resolve(ctx context.Context, domain string) ([]string, error)
}

// Checker runs the checks. LookPath and SysNetDir can be replaced in tests.
type Checker struct {
	LookPath  func(file string) (string, error)
	SysNetDir string

	cfg      *config.Config
	resolver Resolver
	cmd      platform.Commander
}

// New creates a Checker for the given settings.
func New(cfg *config.Config, resolver Resolver, cmd platform.Commander) *Checker {
	return &Checker{
		LookPath:  lookPath,
		SysNetDir: "/sys/class/net",
		cfg:       cfg,
		resolver:  resolver,
		cmd:       cmd,
	}
}

// RunChecks performs all health checks and returns the results. vpnConfig
// may be empty to skip the config check.
func (c *Checker) RunChecks(ctx context.Context, vpnConfig string) []Result {
	var results []Result

	for _, bin := range c.requiredBinaries() {
		results = append(results, c.checkBinary(bin))
	}
	results = append(results, c.checkInterface())
	results = append(results, c.checkResolver(ctx))
	if vpnConfig != "" {
		results = append(results, checkVPNConfig(vpnConfig))
	}
	return results
}

// ProbeDomain resolves a domain and checks whether each address is routed,
// both in the VPN config and in the kernel table.
func (c *Checker) ProbeDomain(ctx context.Context, vpnConfig, domain string) (*ProbeResult, error) {
	ips, err := c.resolver.Resolve(ctx, domain)
	if err != nil && !errors.Is(err, dns.ErrNoRecords) {
		return nil, err
	}

	result := &ProbeResult{
		Domain:   domain,
		IPs:      ips,
		InConfig: make(map[string]bool),
		InKernel: make(map[string]bool),
	}

	var f *ovpn.File
	if vpnConfig != "" {
		if f, err = ovpn.Load(vpnConfig); err != nil {
			return nil, err
		}
	}

	iface := c.cfg.Tunnel.Interface
	for _, ip := range ips {
		if f != nil {
			result.InConfig[ip] = f.HasRoute(ip)
		}
		out, err := c.cmd.Run(ctx, "ip", "route", "show", ip+"/32", "dev", iface)
		result.InKernel[ip] = err == nil && out != ""
	}
	return result, nil
}

func (c *Checker) requiredBinaries() []string {
	var bins []string
	if c.cfg.Tunnel.Backend != "netlink" {
		bins = append(bins, "ip")
	}
	if c.cfg.OpenVPN.Restart {
		bins = append(bins, c.cfg.OpenVPN.Binary)
	}
	if c.cfg.Sudo != "" {
		bins = append(bins, c.cfg.Sudo)
	}
	return bins
}

func (c *Checker) checkBinary(name string) Result {
	r := Result{Name: name}
	path, err := c.LookPath(name)
	if err != nil {
		r.Detail = "not found"
		return r
	}
	r.Passed = true
	r.Detail = path
	return r
}

// checkInterface treats "unknown" as up; tun devices commonly report it.
func (c *Checker) checkInterface() Result {
	iface := c.cfg.Tunnel.Interface
	r := Result{Name: "interface " + iface}
	data, err := os.ReadFile(filepath.Join(c.SysNetDir, iface, "operstate"))
	if err != nil {
		r.Detail = "missing (is the VPN connected?)"
		return r
	}
	state := strings.TrimSpace(string(data))
	r.Detail = state
	r.Passed = state == "up" || state == "unknown"
	return r
}

func (c *Checker) checkResolver(ctx context.Context) Result {
	r := Result{Name: "resolver"}
	ips, err := c.resolver.Resolve(ctx, "example.com")
	if err != nil {
		r.Detail = err.Error()
		return r
	}
	r.Passed = true
	r.Detail = fmt.Sprintf("%s -> %d addresses", c.cfg.Resolver.URL, len(ips))
	return r
}

func checkVPNConfig(path string) Result {
	r := Result{Name: "vpn config"}
	f, err := ovpn.Load(path)
	if err != nil {
		r.Detail = err.Error()
		return r
	}
	routes := len(f.Routes())
	if !strings.Contains(f.Content(), ovpn.NoPullDirective) {
		r.Detail = fmt.Sprintf("%d routes, route-nopull missing", routes)
		return r
	}
	r.Passed = true
	r.Detail = fmt.Sprintf("%d routes, route-nopull set", routes)
	return r
}

// lookPath searches PATH, then the sbin directories that are often missing
// from an unprivileged user's PATH.
func lookPath(name string) (string, error) {
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}
	for _, dir := range []string{"/usr/local/sbin", "/usr/sbin", "/sbin"} {
		p := filepath.Join(dir, name)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s not found", name)
}
