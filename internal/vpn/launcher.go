// Package vpn starts the VPN client process with an edited config.
package vpn

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/egorlepa/splitroute/internal/platform"
)

// Launcher spawns the OpenVPN client in the background.
type Launcher struct {
	Binary string // e.g., "openvpn"
	Sudo   string // elevation helper, may be empty

	cmd    platform.Commander
	logger *slog.Logger
}

// NewLauncher creates a Launcher that spawns binary through cmd.
func NewLauncher(cmd platform.Commander, binary, sudo string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{Binary: binary, Sudo: sudo, cmd: cmd, logger: logger}
}

// Restart spawns `<sudo> <binary> --config <configPath>` and returns right
// away. A previously running client is left alone; only spawn errors are
// reported.
func (l *Launcher) Restart(_ context.Context, configPath string) error {
	name, args := platform.Elevate(l.Sudo, l.Binary, "--config", configPath)
	l.logger.Debug("starting vpn client", "cmd", name, "args", args)
	if err := l.cmd.Start(name, args...); err != nil {
		return fmt.Errorf("start %s: %w", l.Binary, err)
	}
	return nil
}
