//go:build !linux

package routing

import (
	"context"
	"errors"
)

var errNetlinkUnsupported = errors.New("netlink route backend is only available on linux")

// Netlink is unavailable on this platform.
type Netlink struct{}

// NewNetlink always fails outside linux.
func NewNetlink() (*Netlink, error) {
	return nil, errNetlinkUnsupported
}

func (n *Netlink) Name() string { return "netlink" }

func (n *Netlink) Add(context.Context, string, string) error { return errNetlinkUnsupported }

func (n *Netlink) Remove(context.Context, string, string) error { return errNetlinkUnsupported }
