// Package routing installs host routes for resolved addresses on the VPN
// tunnel interface.
package routing

import (
	"context"
	"fmt"

	"github.com/egorlepa/splitroute/internal/platform"
)

// Installer adds and deletes /32 host routes on a tunnel interface.
type Installer interface {
	// Name returns the backend identifier.
	Name() string

	// Add installs a host route for ip via iface.
	Add(ctx context.Context, ip, iface string) error

	// Remove deletes the host route for ip via iface.
	Remove(ctx context.Context, ip, iface string) error
}

// InstallError reports a failed route change for one address.
type InstallError struct {
	IP  string
	Op  string // "add" or "del"
	Err error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("failed to %s route for IP %s: %v", e.Op, e.IP, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// New returns the installer for the configured backend.
func New(backend string, cmd platform.Commander, sudo string) (Installer, error) {
	switch backend {
	case "", "ip":
		return NewIPRoute(cmd, sudo), nil
	case "netlink":
		nl, err := NewNetlink()
		if err != nil {
			return nil, err
		}
		return nl, nil
	default:
		return nil, fmt.Errorf("unknown route backend %q", backend)
	}
}

func hostPrefix(ip string) string { return ip + "/32" }
