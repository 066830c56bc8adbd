package lights

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"unilight/config"
	"unilight/internal/batch"
)

const (
	goveeControlPort = 4003
	goveeListenAddr  = "0.0.0.0:4002"
	goveeScanAddr    = "239.255.255.250:4001"
	goveeScanTopic   = "reserve"

	// Device responses fit well under this; anything larger is truncated.
	goveeReadBufferSize = 1024
)

// goveeClient is the one socket a discovery pass shares across every device
// handle it produces. The LAN protocol has no correlation identifier: a
// request is matched to a response purely by "next datagram in wins", so mu
// keeps at most one exchange in flight on the socket at a time.
type goveeClient struct {
	mu      sync.Mutex
	conn    *net.UDPConn
	timeout time.Duration
}

func newGoveeClient(listenAddr string, timeout time.Duration) (*goveeClient, error) {
	laddr, err := net.ResolveUDPAddr("udp4", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w: %w", listenAddr, ErrConfig, err)
	}
	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w: %w", listenAddr, ErrTransport, err)
	}
	return &goveeClient{conn: conn, timeout: timeout}, nil
}

func (c *goveeClient) close() error {
	return c.conn.Close()
}

// readDeadline is the configured scan timeout, tightened by the context
// deadline when that comes first.
func (c *goveeClient) readDeadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.timeout)
	if t, ok := ctx.Deadline(); ok && t.Before(deadline) {
		deadline = t
	}
	return deadline
}

// send fires a command without waiting for a reply. turn, brightness and
// colorwc are all fire-and-forget on the wire.
func (c *goveeClient) send(addr *net.UDPAddr, cmd string, payload any) error {
	data, err := json.Marshal(goveeRequest{Msg: goveeCommand{Cmd: cmd, Data: payload}})
	if err != nil {
		return fmt.Errorf("encode %s: %w: %w", cmd, ErrProtocol, err)
	}
	if _, err := c.conn.WriteToUDP(data, addr); err != nil {
		return fmt.Errorf("send %s to %s: %w: %w", cmd, addr, ErrTransport, err)
	}
	return nil
}

// exchange sends a command and blocks for the single matching reply. The
// lock spans send and receive; see the goveeClient comment.
func (c *goveeClient) exchange(ctx context.Context, addr *net.UDPAddr, cmd string, payload any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(addr, cmd, payload); err != nil {
		return nil, err
	}

	if err := c.conn.SetReadDeadline(c.readDeadline(ctx)); err != nil {
		return nil, fmt.Errorf("set deadline: %w: %w", ErrTransport, err)
	}
	buf := make([]byte, goveeReadBufferSize)
	n, _, err := c.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, fmt.Errorf("recv %s from %s: %w: %w", cmd, addr, ErrTransport, err)
	}

	var resp goveeResponse
	if err := json.Unmarshal(buf[:n], &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w: %w", cmd, ErrProtocol, err)
	}
	if resp.Msg.Cmd != cmd {
		return nil, fmt.Errorf("got %q response to %q: %w", resp.Msg.Cmd, cmd, ErrProtocol)
	}
	return resp.Msg.Data, nil
}

// scan probes the LAN multicast group and collects every device that
// answers within the timeout window.
func (c *goveeClient) scan(ctx context.Context) ([]goveeLanDevice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	maddr, err := net.ResolveUDPAddr("udp4", goveeScanAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w: %w", goveeScanAddr, ErrConfig, err)
	}
	if err := c.send(maddr, goveeCmdScan, goveeScanPayload{Topic: goveeScanTopic}); err != nil {
		return nil, err
	}

	deadline := c.readDeadline(ctx)
	seen := make(map[string]bool)
	var devices []goveeLanDevice
	buf := make([]byte, goveeReadBufferSize)

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}
		step := time.Now().Add(time.Second)
		if deadline.Before(step) {
			step = deadline
		}
		if err := c.conn.SetReadDeadline(step); err != nil {
			return devices, fmt.Errorf("set deadline: %w: %w", ErrTransport, err)
		}
		n, _, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return devices, fmt.Errorf("recv scan reply: %w: %w", ErrTransport, err)
		}

		var resp goveeResponse
		if err := json.Unmarshal(buf[:n], &resp); err != nil || resp.Msg.Cmd != goveeCmdScan {
			continue
		}
		var dev goveeLanDevice
		if err := json.Unmarshal(resp.Msg.Data, &dev); err != nil {
			continue
		}
		if dev.IP == "" || seen[dev.IP] {
			continue
		}
		seen[dev.IP] = true
		devices = append(devices, dev)
	}
	return devices, nil
}

// GoveeLight is one Govee device on the LAN, bound to the pass's shared
// client socket.
type GoveeLight struct {
	client  *goveeClient
	addr    *net.UDPAddr
	localID string

	on         bool
	brightness uint8
	red        uint8
	green      uint8
	blue       uint8
}

// newGoveeLight builds the handle and immediately reads the device's status
// to populate the cache. A device that cannot answer that first devStatus
// is not constructed.
func newGoveeLight(ctx context.Context, client *goveeClient, address string) (*GoveeLight, error) {
	addr, err := parseGoveeAddr(address)
	if err != nil {
		return nil, err
	}
	l := &GoveeLight{
		client:  client,
		addr:    addr,
		localID: addr.IP.String(),
	}
	if err := l.RefreshState(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func parseGoveeAddr(address string) (*net.UDPAddr, error) {
	host := address
	port := goveeControlPort
	if h, p, err := net.SplitHostPort(address); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("device address %q: bad port: %w", address, ErrConfig)
		}
		host, port = h, n
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, fmt.Errorf("device address %q: %w", address, ErrConfig)
	}
	return &net.UDPAddr{IP: ip, Port: port}, nil
}

func (l *GoveeLight) RefreshState(ctx context.Context) error {
	data, err := l.client.exchange(ctx, l.addr, goveeCmdDevStatus, struct{}{})
	if err != nil {
		return err
	}
	var status goveeDevStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return fmt.Errorf("decode devStatus: %w: %w", ErrProtocol, err)
	}
	l.on = bool(status.OnOff)
	l.brightness = status.Brightness
	l.red = status.Color.R
	l.green = status.Color.G
	l.blue = status.Color.B
	return nil
}

func (l *GoveeLight) SetOn(ctx context.Context, on bool) error {
	if err := l.client.send(l.addr, goveeCmdTurn, goveeTurnPayload{Value: intBool(on)}); err != nil {
		return err
	}
	l.on = on
	return nil
}

func (l *GoveeLight) SetColor(ctx context.Context, red, green, blue uint8) error {
	payload := goveeColorPayload{Color: goveeColor{R: red, G: green, B: blue}}
	if err := l.client.send(l.addr, goveeCmdColor, payload); err != nil {
		return err
	}
	l.red, l.green, l.blue = red, green, blue
	return nil
}

func (l *GoveeLight) SetBrightness(ctx context.Context, level uint8) error {
	if level > 100 {
		level = 100
	}
	if err := l.client.send(l.addr, goveeCmdBrightness, goveeBrightnessPayload{Value: level}); err != nil {
		return err
	}
	l.brightness = level
	return nil
}

func (l *GoveeLight) ID() string {
	return fmt.Sprintf("govee::%s", l.localID)
}

func (l *GoveeLight) Name() string {
	return fmt.Sprintf("Govee Light (%s)", l.localID)
}

func (l *GoveeLight) IsOn() bool          { return l.on }
func (l *GoveeLight) Red() uint8          { return l.red }
func (l *GoveeLight) Green() uint8        { return l.green }
func (l *GoveeLight) Blue() uint8         { return l.blue }
func (l *GoveeLight) Brightness() uint8   { return l.brightness }
func (l *GoveeLight) SupportsColor() bool { return true }

// GoveeIntegration discovers Govee devices over the LAN API.
type GoveeIntegration struct {
	listenAddr string
	logger     *slog.Logger
}

func NewGoveeIntegration() *GoveeIntegration {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return &GoveeIntegration{
		listenAddr: goveeListenAddr,
		logger:     logger,
	}
}

func (g *GoveeIntegration) Name() string {
	return "govee"
}

func (g *GoveeIntegration) Preflight(cfg *config.Config) bool {
	return cfg.Govee.Enabled
}

// Discover builds one light per configured (and, with scan enabled,
// multicast-discovered) address. Unreachable devices are logged and
// skipped; only failure to set up the socket itself is an error.
func (g *GoveeIntegration) Discover(ctx context.Context, cfg *config.Config) ([]Light, error) {
	client, err := newGoveeClient(g.listenAddr, cfg.Govee.Timeout())
	if err != nil {
		return nil, fmt.Errorf("govee: %w: %w", ErrDiscovery, err)
	}

	addresses := append([]string(nil), cfg.Govee.Addresses...)
	if cfg.Govee.Scan {
		found, err := client.scan(ctx)
		if err != nil {
			g.logger.Warn("govee multicast scan failed", "error", err)
		}
		for _, dev := range found {
			if !containsHost(addresses, dev.IP) {
				addresses = append(addresses, dev.IP)
			}
		}
	}

	b := batch.New[Light]()
	for _, address := range addresses {
		address := address
		b.Push(func(ctx context.Context) Light {
			light, err := newGoveeLight(ctx, client, address)
			if err != nil {
				g.logger.Warn("skipping govee device", "address", address, "error", err)
				return nil
			}
			return light
		})
	}

	var found []Light
	for _, light := range b.Run(ctx) {
		if light != nil {
			found = append(found, light)
		}
	}

	// The socket stays open as long as any light may use it; with no
	// lights it would just leak.
	if len(found) == 0 {
		_ = client.close()
	}
	return found, nil
}

func containsHost(addresses []string, host string) bool {
	for _, a := range addresses {
		if a == host {
			return true
		}
		if h, _, err := net.SplitHostPort(a); err == nil && h == host {
			return true
		}
	}
	return false
}
