// Package discovery announces the HTTP viewer on the local network over
// mDNS and finds viewers announced by other airpaint instances.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service airpaint viewers register under.
const ServiceType = "_airpaint._tcp"

// ErrLoopback is returned when asked to advertise a listener that only
// accepts connections from this host.
var ErrLoopback = errors.New("listener is bound to a loopback address")

// Advertiser keeps an mDNS announcement alive until Shutdown.
type Advertiser struct {
	server *mdns.Server
}

// NewService builds the mDNS zone for a viewer listening on port. An empty
// instance uses the host name; nil ips are resolved from the host name.
func NewService(instance string, port int, ips []net.IP, info []string) (*mdns.MDNSService, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}

	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, ips, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	return service, nil
}

// listenerIPs returns the addresses to announce for a listener: its own IP,
// or nil for every host address when it listens on all interfaces.
func listenerIPs(addr *net.TCPAddr) ([]net.IP, error) {
	switch {
	case addr.IP == nil || addr.IP.IsUnspecified():
		return nil, nil
	case addr.IP.IsLoopback():
		return nil, fmt.Errorf("%w: %s", ErrLoopback, addr)
	default:
		return []net.IP{addr.IP}, nil
	}
}

// Advertise announces the viewer listening on addr until Shutdown is called.
// Loopback listeners are refused since no other host could reach them.
func Advertise(instance string, addr *net.TCPAddr, info []string) (*Advertiser, error) {
	ips, err := listenerIPs(addr)
	if err != nil {
		return nil, err
	}
	service, err := NewService(instance, addr.Port, ips, info)
	if err != nil {
		return nil, err
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return &Advertiser{server: server}, nil
}

// Shutdown withdraws the announcement.
func (a *Advertiser) Shutdown() error {
	return a.server.Shutdown()
}

// Viewer is a discovered airpaint viewer.
type Viewer struct {
	Name string
	URL  string
	Info []string
}

// viewerFromEntry converts an mDNS answer into a Viewer.
func viewerFromEntry(e *mdns.ServiceEntry) (Viewer, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Viewer{}, false
	}
	name := strings.TrimSuffix(e.Name, "."+ServiceType+".local.")
	return Viewer{
		Name: name,
		URL:  fmt.Sprintf("http://%s:%d/", e.AddrV4.String(), e.Port),
		Info: e.InfoFields,
	}, true
}

// Browse queries the network for viewers until timeout or ctx ends.
func Browse(ctx context.Context, timeout time.Duration) ([]Viewer, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errCh := make(chan error, 1)
	go func() {
		errCh <- mdns.Query(params)
		close(entries)
	}()

	seen := make(map[string]bool)
	var viewers []Viewer
	for {
		select {
		case <-ctx.Done():
			return viewers, ctx.Err()
		case e, ok := <-entries:
			if !ok {
				return viewers, <-errCh
			}
			v, ok := viewerFromEntry(e)
			if !ok || seen[v.URL] {
				continue
			}
			seen[v.URL] = true
			viewers = append(viewers, v)
		}
	}
}
