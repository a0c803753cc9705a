package config

import (
	"time"

	"github.com/egorlepa/splitroute/internal/platform"
)

// Config is the tool's own settings file. It is unrelated to the VPN client
// configuration file the tool edits.
type Config struct {
	LogLevel string `yaml:"log_level"`
	Sudo     string `yaml:"sudo"` // elevation helper; empty runs commands directly

	Resolver ResolverConfig `yaml:"resolver"`
	Tunnel   TunnelConfig   `yaml:"tunnel"`
	OpenVPN  OpenVPNConfig  `yaml:"openvpn"`
}

// ResolverConfig holds DNS-over-HTTPS settings.
type ResolverConfig struct {
	URL      string `yaml:"url"`
	Timeout  string `yaml:"timeout"` // empty = no client timeout
	Attempts uint   `yaml:"attempts"`
}

// TimeoutDuration parses the HTTP timeout. Empty or invalid values mean none.
func (r ResolverConfig) TimeoutDuration() time.Duration {
	if r.Timeout == "" {
		return 0
	}
	dur, err := time.ParseDuration(r.Timeout)
	if err != nil || dur < 0 {
		return 0
	}
	return dur
}

// TunnelConfig holds host route settings.
type TunnelConfig struct {
	Interface string `yaml:"interface"`
	Backend   string `yaml:"backend"` // "ip" or "netlink"

	// PersistRoutes also writes route lines into the VPN config on add.
	PersistRoutes bool `yaml:"persist_routes"`
	// UninstallOnRemove deletes kernel host routes on remove.
	UninstallOnRemove bool `yaml:"uninstall_on_remove"`
}

// OpenVPNConfig holds VPN client process settings.
type OpenVPNConfig struct {
	Binary  string `yaml:"binary"`
	Restart bool   `yaml:"restart"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		LogLevel: "warn",
		Sudo:     platform.DefaultSudo,
		Resolver: ResolverConfig{
			URL:      platform.DefaultResolverURL,
			Attempts: 1,
		},
		Tunnel: TunnelConfig{
			Interface: platform.DefaultTunnelInterface,
			Backend:   "ip",
		},
		OpenVPN: OpenVPNConfig{
			Binary:  platform.DefaultOpenVPN,
			Restart: true,
		},
	}
}
