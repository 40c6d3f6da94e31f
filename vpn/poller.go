package vpn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stojanovic-vukas/vpn-demo/common"
)

// TelemetryPoller refreshes remaining-traffic information on a fixed
// cadence while a session is authenticated. The poller never stops
// itself: ticks with no access token are skipped silently, as are
// fetch failures, and the next tick simply tries again. Telemetry
// failures are never surfaced to the user.
type TelemetryPoller struct {
	mu       sync.Mutex
	interval time.Duration
	running  bool
	stopChan chan struct{}

	token   func() string
	fetch   func(ctx context.Context) (RemainingTraffic, error)
	publish func(display string)
	log     common.Logger
}

// NewTelemetryPoller creates a poller over the given callbacks.
// token reports the current access token ("" while logged out), fetch
// performs one traffic request, and publish receives the formatted
// display string on success.
func NewTelemetryPoller(interval time.Duration, token func() string, fetch func(ctx context.Context) (RemainingTraffic, error), publish func(string)) *TelemetryPoller {
	return &TelemetryPoller{
		interval: interval,
		stopChan: make(chan struct{}),
		token:    token,
		fetch:    fetch,
		publish:  publish,
		log:      common.GetLogger(),
	}
}

// Start begins the polling loop.
func (p *TelemetryPoller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	p.log.Trace("Telemetry poller started (interval: %v)", p.interval)

	go p.runLoop()
}

// Stop stops the polling loop.
func (p *TelemetryPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.log.Trace("Telemetry poller stopped")
}

// IsRunning returns whether the poller loop is currently active.
func (p *TelemetryPoller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// runLoop is the main polling loop. The ticker keeps its schedule
// independent of any single request's latency.
func (p *TelemetryPoller) runLoop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick performs one poll. No token means no fetch; failures are
// swallowed and retried on the next tick.
func (p *TelemetryPoller) tick() {
	if p.token() == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), common.BackendCallTimeout)
	defer cancel()

	traffic, err := p.fetch(ctx)
	if err != nil || !traffic.IsSuccess {
		return
	}

	p.publish(FormatRemainingTraffic(traffic))
}

// FormatRemainingTraffic renders a traffic quota for display.
func FormatRemainingTraffic(t RemainingTraffic) string {
	if t.IsUnlimited {
		return "Unlimited"
	}
	return fmt.Sprintf("Bytes remaining: %d\nBytes used: %d", t.Remaining, t.Used)
}
