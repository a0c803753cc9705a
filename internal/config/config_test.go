package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/egorlepa/splitroute/internal/config"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, config.Defaults(), *cfg)
	require.Equal(t, "tun0", cfg.Tunnel.Interface)
	require.Equal(t, "https://dns.google/resolve", cfg.Resolver.URL)
	require.True(t, cfg.OpenVPN.Restart)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
sudo: ""
tunnel:
  interface: tun7
  persist_routes: true
resolver:
  timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "", cfg.Sudo)
	require.Equal(t, "tun7", cfg.Tunnel.Interface)
	require.Equal(t, "ip", cfg.Tunnel.Backend)
	require.True(t, cfg.Tunnel.PersistRoutes)
	require.Equal(t, 3*time.Second, cfg.Resolver.TimeoutDuration())
	require.Equal(t, "openvpn", cfg.OpenVPN.Binary)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tunnel:\n  backend: carrier-pigeon\n"), 0644))

	_, err := config.Load(path)
	require.ErrorContains(t, err, "carrier-pigeon")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tunnel: [\n"), 0644))

	_, err := config.Load(path)
	require.ErrorContains(t, err, "parse config")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := config.Defaults()
	cfg.Tunnel.Backend = "netlink"
	cfg.Resolver.Attempts = 3

	require.NoError(t, config.Save(path, &cfg))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, *loaded)
}

func TestTimeoutDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"garbage", 0},
		{"-1s", 0},
		{"1500ms", 1500 * time.Millisecond},
	}
	for _, tt := range tests {
		r := config.ResolverConfig{Timeout: tt.in}
		require.Equal(t, tt.want, r.TimeoutDuration(), tt.in)
	}
}
