package routing

import (
	"context"
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// Netlink changes routes in-process over rtnetlink. The tool itself needs
// CAP_NET_ADMIN; no elevation helper is involved.
type Netlink struct{}

// NewNetlink creates a netlink installer.
func NewNetlink() (*Netlink, error) {
	return &Netlink{}, nil
}

func (n *Netlink) Name() string { return "netlink" }

func (n *Netlink) Add(_ context.Context, ip, iface string) error {
	route, err := hostRoute(ip, iface)
	if err != nil {
		return &InstallError{IP: ip, Op: "add", Err: err}
	}
	if err := netlink.RouteAdd(route); err != nil {
		return &InstallError{IP: ip, Op: "add", Err: err}
	}
	return nil
}

func (n *Netlink) Remove(_ context.Context, ip, iface string) error {
	route, err := hostRoute(ip, iface)
	if err != nil {
		return &InstallError{IP: ip, Op: "del", Err: err}
	}
	if err := netlink.RouteDel(route); err != nil {
		return &InstallError{IP: ip, Op: "del", Err: err}
	}
	return nil
}

func hostRoute(ip, iface string) (*netlink.Route, error) {
	_, dst, err := net.ParseCIDR(hostPrefix(ip))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", ip, err)
	}
	link, err := netlink.LinkByName(iface)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", iface, err)
	}
	return &netlink.Route{
		LinkIndex: link.Attrs().Index,
		Dst:       dst,
		Scope:     netlink.SCOPE_LINK,
	}, nil
}
