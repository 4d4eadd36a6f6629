// ABOUTME: mDNS service discovery for the radio dev server
// ABOUTME: The server advertises itself; players browse for it when no URL is configured
package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
	"go.uber.org/zap"

	"github.com/Resonate-Protocol/gtaradio-go/internal/version"
)

// ServiceType is the DNS-SD service the dev server registers
const ServiceType = "_gtaradio._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
	Logger      *zap.SugaredLogger
}

// Manager handles mDNS operations
type Manager struct {
	config  Config
	logger  *zap.SugaredLogger
	ctx     context.Context
	cancel  context.CancelFunc
	servers chan *ServerInfo
}

// ServerInfo describes a discovered server
type ServerInfo struct {
	Name string
	Host string
	Port int
}

// URL returns the server's HTTP base URL
func (s *ServerInfo) URL() string {
	return "http://" + net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if config.ServiceName == "" {
		config.ServiceName = "gtaradio"
	}

	return &Manager{
		config:  config,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		servers: make(chan *ServerInfo, 10),
	}
}

// serviceTXT is the TXT record published with the service
func serviceTXT() []string {
	return []string{"path=/api", "version=" + version.Version}
}

// Advertise advertises the dev server via mDNS until Stop
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		serviceTXT(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	m.logger.Infow("advertising mDNS service", "name", m.config.ServiceName, "port", m.config.Port, "type", ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse searches for radio servers until Stop
func (m *Manager) Browse() {
	go m.browseLoop()
}

// browseLoop continuously browses for servers
func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)

		go func() {
			for entry := range entries {
				if entry.AddrV4 == nil {
					continue
				}
				server := &ServerInfo{
					Name: entry.Name,
					Host: entry.AddrV4.String(),
					Port: entry.Port,
				}

				m.logger.Infow("discovered server", "name", server.Name, "url", server.URL())

				select {
				case m.servers <- server:
				case <-m.ctx.Done():
					return
				default:
					// Nobody is waiting; later queries will find it again
				}
			}
		}()

		params := mdns.DefaultParams(ServiceType)
		params.Domain = "local"
		params.Timeout = 3 * time.Second
		params.Entries = entries
		params.DisableIPv6 = true

		if err := mdns.Query(params); err != nil {
			m.logger.Debugw("mDNS query failed", "error", err)
		}
		close(entries)
	}
}

// Servers returns the channel of discovered servers
func (m *Manager) Servers() <-chan *ServerInfo {
	return m.servers
}

// Discover browses until the first server answers or timeout elapses
func (m *Manager) Discover(timeout time.Duration) (*ServerInfo, error) {
	m.Browse()
	select {
	case s := <-m.servers:
		return s, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no server found after %s", timeout)
	case <-m.ctx.Done():
		return nil, m.ctx.Err()
	}
}

// Stop stops the discovery manager
func (m *Manager) Stop() {
	m.cancel()
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
