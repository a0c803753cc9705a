package routing

import (
	"context"

	"github.com/egorlepa/splitroute/internal/platform"
)

// IPRoute changes routes by running iproute2 through the elevation helper:
//
//	sudo ip route add <ip>/32 dev <iface>
//	sudo ip route del <ip>/32 dev <iface>
//
// It does not verify that the route took effect.
type IPRoute struct {
	cmd  platform.Commander
	sudo string
}

// NewIPRoute creates an iproute2 installer. sudo may be empty.
func NewIPRoute(cmd platform.Commander, sudo string) *IPRoute {
	return &IPRoute{cmd: cmd, sudo: sudo}
}

func (r *IPRoute) Name() string { return "ip" }

func (r *IPRoute) Add(ctx context.Context, ip, iface string) error {
	return r.run(ctx, "add", ip, iface)
}

func (r *IPRoute) Remove(ctx context.Context, ip, iface string) error {
	return r.run(ctx, "del", ip, iface)
}

func (r *IPRoute) run(ctx context.Context, op, ip, iface string) error {
	name, args := platform.Elevate(r.sudo, "ip", "route", op, hostPrefix(ip), "dev", iface)
	if _, err := r.cmd.Run(ctx, name, args...); err != nil {
		return &InstallError{IP: ip, Op: op, Err: err}
	}
	return nil
}
