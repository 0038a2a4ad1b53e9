package connectivity

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/aroundegypt/internal/metrics"
)

const (
	DefaultProbeSchedule = "@every 30s"
	defaultProbeTimeout  = 5 * time.Second
)

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	ProbeURL string
	Schedule string        // cron spec, "@every 30s" style descriptors allowed
	Timeout  time.Duration // per probe
}

// Monitor probes a URL on a schedule and remembers whether it answered.
// Any HTTP response counts as reachable; only transport failures do not.
type Monitor struct {
	cfg        MonitorConfig
	httpClient *http.Client
	logger     *zap.Logger

	connected atomic.Bool
	override  atomic.Pointer[bool]

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewMonitor(cfg MonitorConfig, logger *zap.Logger) *Monitor {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultProbeSchedule
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultProbeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Monitor{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		cron:       cron.New(),
	}
	// Assume reachable until the first probe says otherwise.
	m.connected.Store(true)
	metrics.Connected.Set(1)
	return m
}

// IsConnected returns the override if one is set, else the last probe result.
func (m *Monitor) IsConnected() bool {
	if o := m.override.Load(); o != nil {
		return *o
	}
	return m.connected.Load()
}

// SetOverride forces IsConnected to return connected until ClearOverride.
func (m *Monitor) SetOverride(connected bool) {
	m.override.Store(&connected)
	m.logger.Info("Connectivity override set", zap.Bool("connected", connected))
}

func (m *Monitor) ClearOverride() {
	m.override.Store(nil)
	m.logger.Info("Connectivity override cleared")
}

// Overridden reports whether an override is active.
func (m *Monitor) Overridden() bool {
	return m.override.Load() != nil
}

// Check probes once and stores the result.
func (m *Monitor) Check(ctx context.Context) bool {
	ok := m.probe(ctx)
	if prev := m.connected.Swap(ok); prev != ok {
		m.logger.Info("Connectivity changed", zap.Bool("connected", ok), zap.String("probe_url", m.cfg.ProbeURL))
	}
	if ok {
		metrics.Connected.Set(1)
	} else {
		metrics.Connected.Set(0)
	}
	return ok
}

func (m *Monitor) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.cfg.ProbeURL, nil)
	if err != nil {
		m.logger.Warn("Invalid connectivity probe request", zap.Error(err))
		return false
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.logger.Debug("Connectivity probe failed", zap.Error(err))
		return false
	}
	resp.Body.Close()
	return true
}

// Start runs an initial probe and then probes on the configured schedule.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return nil
	}

	if _, err := m.cron.AddFunc(m.cfg.Schedule, func() { m.Check(ctx) }); err != nil {
		return fmt.Errorf("invalid probe schedule '%s': %w", m.cfg.Schedule, err)
	}

	m.Check(ctx)
	m.cron.Start()
	m.isRunning = true

	m.logger.Info("Connectivity monitor started",
		zap.String("probe_url", m.cfg.ProbeURL),
		zap.String("schedule", m.cfg.Schedule),
	)
	return nil
}

// Stop halts scheduled probes and waits for a running probe to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isRunning {
		return
	}
	<-m.cron.Stop().Done()
	m.isRunning = false
}
