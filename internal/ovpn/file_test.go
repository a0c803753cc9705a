package ovpn_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egorlepa/splitroute/internal/ovpn"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.ovpn")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRouteLine(t *testing.T) {
	require.Equal(t, "route 93.184.216.34 255.255.255.255 net_gateway", ovpn.RouteLine("93.184.216.34"))
}

func TestEnsureNoPullIdempotent(t *testing.T) {
	path := writeConfig(t, "client\ndev tun\n")

	for range 2 {
		f, err := ovpn.Load(path)
		require.NoError(t, err)
		f.EnsureNoPull()
		require.NoError(t, f.Save())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "client\ndev tun\nroute-nopull\n", string(data))
	require.Equal(t, 1, strings.Count(string(data), "route-nopull"))
}

func TestEnsureNoPullAlreadyPresent(t *testing.T) {
	f, err := ovpn.Load(writeConfig(t, "client\n# route-nopull is set below\n"))
	require.NoError(t, err)

	require.False(t, f.EnsureNoPull())
	require.False(t, f.Modified())
}

func TestEnsureNoPullMissingTrailingNewline(t *testing.T) {
	f, err := ovpn.Load(writeConfig(t, "client\ndev tun"))
	require.NoError(t, err)

	require.True(t, f.EnsureNoPull())
	require.Equal(t, "client\ndev tun\nroute-nopull\n", f.Content())
}

func TestHasRoute(t *testing.T) {
	f, err := ovpn.Load(writeConfig(t, "client\nroute 1.2.3.4 255.255.255.255 net_gateway\r\nroute 5.6.7.8 255.255.255.255 net_gateway"))
	require.NoError(t, err)

	require.True(t, f.HasRoute("1.2.3.4"))
	require.True(t, f.HasRoute("5.6.7.8"))
	require.False(t, f.HasRoute("1.2.3.40"))
	require.False(t, f.HasRoute("2.3.4"))
}

func TestRoutes(t *testing.T) {
	content := strings.Join([]string{
		"client",
		"route 10.0.0.1 255.255.255.255 net_gateway",
		"route-nopull",
		"remote vpn.example.com 1194",
		"route 10.0.0.2 255.255.255.255 net_gateway",
		"",
	}, "\n")
	f, err := ovpn.Load(writeConfig(t, content))
	require.NoError(t, err)

	require.Equal(t, []string{
		"route 10.0.0.1 255.255.255.255 net_gateway",
		"route 10.0.0.2 255.255.255.255 net_gateway",
	}, f.Routes())
	require.False(t, f.Modified())
}

func TestRemoveRoutes(t *testing.T) {
	content := "client\n" +
		"route 93.184.216.34 255.255.255.255 net_gateway\n" +
		"route 8.8.8.8 255.255.255.255 net_gateway\n" +
		"remote 93.184.216.34 1194\n"
	path := writeConfig(t, content)

	f, err := ovpn.Load(path)
	require.NoError(t, err)
	removed := f.RemoveRoutes([]string{"93.184.216.34"})
	require.Equal(t, []string{"route 93.184.216.34 255.255.255.255 net_gateway"}, removed)
	require.NoError(t, f.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "client\n"+
		"route 8.8.8.8 255.255.255.255 net_gateway\n"+
		"remote 93.184.216.34 1194\n", string(data))
}

func TestRemoveRoutesDoesNotOverDelete(t *testing.T) {
	content := "route 1.2.3.4 255.255.255.255 net_gateway\n" +
		"route 11.2.3.4 255.255.255.255 net_gateway\n" +
		"route 1.2.3.45 255.255.255.255 net_gateway\n"
	f, err := ovpn.Load(writeConfig(t, content))
	require.NoError(t, err)

	removed := f.RemoveRoutes([]string{"1.2.3.4"})
	require.Equal(t, []string{"route 1.2.3.4 255.255.255.255 net_gateway"}, removed)
	require.Equal(t, "route 11.2.3.4 255.255.255.255 net_gateway\n"+
		"route 1.2.3.45 255.255.255.255 net_gateway\n", f.Content())
}

func TestRemoveRoutesAddsTrailingNewline(t *testing.T) {
	f, err := ovpn.Load(writeConfig(t, "client\ndev tun"))
	require.NoError(t, err)

	require.Empty(t, f.RemoveRoutes([]string{"1.1.1.1"}))
	require.Equal(t, "client\ndev tun\n", f.Content())
}

func TestSavePreservesMode(t *testing.T) {
	path := writeConfig(t, "client\n")
	f, err := ovpn.Load(path)
	require.NoError(t, err)
	f.AppendLine("route 1.1.1.1 255.255.255.255 net_gateway")
	require.NoError(t, f.Save())
	require.False(t, f.Modified())

	st, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), st.Mode().Perm())
}

func TestLoadMissing(t *testing.T) {
	_, err := ovpn.Load(filepath.Join(t.TempDir(), "nope.ovpn"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
