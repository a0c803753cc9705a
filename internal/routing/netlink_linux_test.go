package routing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egorlepa/splitroute/internal/routing"
)

func TestNetlinkBackend(t *testing.T) {
	inst, err := routing.New("netlink", nil, "")
	require.NoError(t, err)
	require.Equal(t, "netlink", inst.Name())
}

func TestNetlinkUnknownLink(t *testing.T) {
	nl, err := routing.NewNetlink()
	require.NoError(t, err)

	err = nl.Add(context.Background(), "1.2.3.4", "splitroute-missing0")
	var installErr *routing.InstallError
	require.ErrorAs(t, err, &installErr)
	require.Equal(t, "1.2.3.4", installErr.IP)
	require.Contains(t, err.Error(), "splitroute-missing0")
}

func TestNetlinkBadAddress(t *testing.T) {
	nl, err := routing.NewNetlink()
	require.NoError(t, err)

	err = nl.Remove(context.Background(), "not-an-ip", "lo")
	require.ErrorContains(t, err, "parse not-an-ip")
}
