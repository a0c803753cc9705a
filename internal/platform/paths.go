package platform

const (
	// Base directories.
	ConfigDir = "/etc/splitroute"

	// Tool settings.
	ConfigFile = ConfigDir + "/config.yaml"

	// Routing defaults.
	DefaultTunnelInterface = "tun0"
	DefaultResolverURL     = "https://dns.google/resolve"

	// External binaries.
	DefaultSudo    = "sudo"
	DefaultOpenVPN = "openvpn"
)
