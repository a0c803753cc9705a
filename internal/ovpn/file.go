// Package ovpn edits the route directives of an OpenVPN client config file.
//
// The file is treated as plain text. Only three kinds of lines matter:
//
//	route-nopull
//	route <ip> 255.255.255.255 net_gateway
//	anything else (kept verbatim)
package ovpn

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

const (
	// NoPullDirective stops the server from pushing routes.
	NoPullDirective = "route-nopull"

	routeKeyword = "route"
)

// RouteLine returns the host route directive for ip.
func RouteLine(ip string) string {
	return fmt.Sprintf("%s %s 255.255.255.255 net_gateway", routeKeyword, ip)
}

// File is an in-memory copy of a VPN config file.
type File struct {
	path    string
	content string
	mode    os.FileMode
	dirty   bool
}

// Load reads the whole config file.
func Load(path string) (*File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read vpn config: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vpn config: %w", err)
	}
	return &File{path: path, content: string(data), mode: st.Mode().Perm()}, nil
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Content returns the current (possibly edited) text.
func (f *File) Content() string { return f.content }

// Modified reports whether the content differs from what was loaded or last saved.
func (f *File) Modified() bool { return f.dirty }

// Lines splits the content into lines without their terminators.
func (f *File) Lines() []string {
	if f.content == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(f.content, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// EnsureNoPull appends a route-nopull line unless the directive already
// appears anywhere in the file. Reports whether the content changed.
func (f *File) EnsureNoPull() bool {
	if strings.Contains(f.content, NoPullDirective) {
		return false
	}
	f.AppendLine(NoPullDirective)
	return true
}

// HasLine reports whether line is present as a whole line.
func (f *File) HasLine(line string) bool {
	return slices.Contains(f.Lines(), line)
}

// HasRoute reports whether the host route line for ip is present.
func (f *File) HasRoute(ip string) bool {
	return f.HasLine(RouteLine(ip))
}

// AppendLine adds line at the end of the file, terminating the previous
// last line first if needed.
func (f *File) AppendLine(line string) {
	if f.content != "" && !strings.HasSuffix(f.content, "\n") {
		f.content += "\n"
	}
	f.content += line + "\n"
	f.dirty = true
}

// Routes returns every line whose first token is "route", verbatim and in
// file order.
func (f *File) Routes() []string {
	var routes []string
	for _, l := range f.Lines() {
		if isRoute(l) {
			routes = append(routes, l)
		}
	}
	return routes
}

// RemoveRoutes drops route lines that name any of ips as a field and returns
// the dropped lines. Every kept line is rewritten with a trailing newline.
func (f *File) RemoveRoutes(ips []string) []string {
	var (
		kept    strings.Builder
		removed []string
	)
	for _, l := range f.Lines() {
		if isRoute(l) && mentionsAny(l, ips) {
			removed = append(removed, l)
			continue
		}
		kept.WriteString(l)
		kept.WriteByte('\n')
	}
	f.content = kept.String()
	f.dirty = true
	return removed
}

// Save writes the content back if it was modified.
func (f *File) Save() error {
	if !f.dirty {
		return nil
	}
	if err := os.WriteFile(f.path, []byte(f.content), f.mode); err != nil {
		return fmt.Errorf("write vpn config: %w", err)
	}
	f.dirty = false
	return nil
}

func isRoute(line string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && fields[0] == routeKeyword
}

// mentionsAny matches whole fields so that 1.2.3.4 does not match 11.2.3.4.
func mentionsAny(line string, ips []string) bool {
	for _, field := range strings.Fields(line) {
		if slices.Contains(ips, field) {
			return true
		}
	}
	return false
}
