package netcheck

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Defaults for the probing monitor.
const (
	DefaultProbeAddr     = "1.1.1.1:443"
	DefaultProbeInterval = 15 * time.Second
	DefaultProbeTimeout  = 3 * time.Second
)

// Dialer is the subset of net.Dialer the monitor needs; substituted in tests.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// MonitorConfig holds configuration for the connectivity monitor.
type MonitorConfig struct {
	// ProbeAddr is the TCP address dialed to establish connectivity.
	ProbeAddr string

	// ProbeInterval is how often the probe runs.
	ProbeInterval time.Duration

	// ProbeTimeout bounds a single probe dial.
	ProbeTimeout time.Duration

	// Dialer overrides the network dialer. Nil uses a plain net.Dialer.
	Dialer Dialer
}

// Monitor is the production Checker. It probes a dial target in the
// background and caches the last result in an atomic flag, so IsConnected
// is a synchronous read with no I/O - the server-side analog of an OS path
// monitor.
type Monitor struct {
	addr     string
	interval time.Duration
	timeout  time.Duration
	dialer   Dialer
	logger   *slog.Logger

	connected atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewMonitor creates a connectivity monitor. Zero-value config fields fall
// back to the package defaults. The monitor starts optimistic (connected)
// until the first probe completes. If logger is nil, a default logger is used.
func NewMonitor(cfg MonitorConfig, logger *slog.Logger) *Monitor {
	if cfg.ProbeAddr == "" {
		cfg.ProbeAddr = DefaultProbeAddr
	}
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = DefaultProbeInterval
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &net.Dialer{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Monitor{
		addr:     cfg.ProbeAddr,
		interval: cfg.ProbeInterval,
		timeout:  cfg.ProbeTimeout,
		dialer:   cfg.Dialer,
		logger:   logger.With(slog.String("component", "netcheck_monitor")),
		done:     make(chan struct{}),
	}
	m.connected.Store(true)
	return m
}

// Ensure Monitor implements Checker.
var _ Checker = (*Monitor)(nil)

// IsConnected implements Checker. It reads the cached probe result.
func (m *Monitor) IsConnected() bool {
	return m.connected.Load()
}

// Start launches the background probe loop. It probes once immediately so
// the cached state reflects reality before the first interval elapses.
// Subsequent calls are no-ops.
func (m *Monitor) Start() {
	m.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel

		go func() {
			defer close(m.done)

			m.probe(ctx)

			ticker := time.NewTicker(m.interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					m.probe(ctx)
				}
			}
		}()
	})
}

// Stop terminates the probe loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
			<-m.done
		}
	})
}

// probe dials the target once and updates the cached state.
func (m *Monitor) probe(ctx context.Context) {
	dialCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	conn, err := m.dialer.DialContext(dialCtx, "tcp", m.addr)
	if err != nil {
		if m.connected.Swap(false) {
			m.logger.Warn("connectivity lost",
				slog.String("probe_addr", m.addr),
				slog.String("error", err.Error()))
		}
		return
	}

	if closeErr := conn.Close(); closeErr != nil {
		m.logger.Debug("failed to close probe connection",
			slog.String("error", closeErr.Error()))
	}

	if !m.connected.Swap(true) {
		m.logger.Info("connectivity restored",
			slog.String("probe_addr", m.addr))
	}
}
