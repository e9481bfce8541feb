/*
scheduler.go - Open shift monitor

PURPOSE:
  Periodically looks for shifts that were clocked in but never clocked
  out. An open shift is measured against "now" until someone closes it,
  so a forgotten clock-out keeps growing the week's hours. The monitor
  logs a warning per stale shift so an admin can correct the record.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - A shift is stale once it has been open longer than MaxOpen
  - Each stale shift is reported once per process, not on every tick
  - Read-only: the monitor never closes or edits a record

CONFIGURATION:
  - CheckInterval: How often to check (default: 15 minutes)
  - MaxOpen:       Open duration that triggers a warning (default: 16 hours)

USAGE:
  monitor := NewOpenShiftMonitor(handler, 16*time.Hour)
  monitor.Start()
  // ... later
  monitor.Stop()

SEE ALSO:
  - handlers.go: ClockOut and CreateRecord fix a stale shift
  - store/sqlite/payroll.go: OpenShifts
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/payroll-engine/attendance"
)

// OpenShiftMonitor warns about shifts left open too long.
type OpenShiftMonitor struct {
	Handler       *Handler
	CheckInterval time.Duration
	MaxOpen       time.Duration

	ticker   *time.Ticker
	stop     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	reported map[string]bool
}

// NewOpenShiftMonitor creates a monitor over the handler's store and clock.
func NewOpenShiftMonitor(handler *Handler, maxOpen time.Duration) *OpenShiftMonitor {
	if maxOpen <= 0 {
		maxOpen = 16 * time.Hour
	}
	return &OpenShiftMonitor{
		Handler:       handler,
		CheckInterval: 15 * time.Minute,
		MaxOpen:       maxOpen,
		reported:      make(map[string]bool),
	}
}

// Start begins the monitor. Calling Start twice is a no-op.
func (m *OpenShiftMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticker != nil {
		return
	}

	m.ticker = time.NewTicker(m.CheckInterval)
	m.stop = make(chan struct{})
	m.wg.Add(1)

	go m.run(m.ticker.C, m.stop)

	m.Handler.log.Info("open shift monitor started",
		"check_interval", m.CheckInterval.String(),
		"max_open", m.MaxOpen.String())
}

// Stop stops the monitor and waits for an in-flight check.
func (m *OpenShiftMonitor) Stop() {
	m.mu.Lock()
	if m.ticker == nil {
		m.mu.Unlock()
		return
	}
	m.ticker.Stop()
	close(m.stop)
	m.ticker = nil
	m.mu.Unlock()

	m.wg.Wait()
	m.Handler.log.Info("open shift monitor stopped")
}

func (m *OpenShiftMonitor) run(tick <-chan time.Time, stop <-chan struct{}) {
	defer m.wg.Done()

	// Run immediately on start
	m.RunNow(context.Background())

	for {
		select {
		case <-tick:
			m.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow checks once and returns the shifts reported on this pass.
func (m *OpenShiftMonitor) RunNow(ctx context.Context) []attendance.RawRecord {
	now := m.Handler.clock.Now()

	stale, err := m.Handler.Store.OpenShifts(ctx, now.Add(-m.MaxOpen))
	if err != nil {
		m.Handler.log.ErrorContext(ctx, "failed to list open shifts", "error", err)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var fresh []attendance.RawRecord
	open := make(map[string]bool, len(stale))
	for _, rec := range stale {
		open[rec.ID] = true
		if m.reported[rec.ID] {
			continue
		}
		m.reported[rec.ID] = true
		fresh = append(fresh, rec)

		m.Handler.log.WarnContext(ctx, "shift open too long",
			"employee_id", string(rec.EmployeeID),
			"record_id", rec.ID,
			"clock_in", rec.ClockIn,
			"open_for", now.Sub(rec.ClockIn).Round(time.Minute).String())
	}

	// Closed shifts drop out so a reopened ID would be reported again.
	for id := range m.reported {
		if !open[id] {
			delete(m.reported, id)
		}
	}

	return fresh
}
