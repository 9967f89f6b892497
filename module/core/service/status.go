package service

import (
	"context"
	"sync"
	"time"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

// StatusProbe reports the device's current health. Implementations should
// return quickly; the poller calls Status on every tick.
type StatusProbe interface {
	Status() domain.DeviceStatus
}

// StatusPoller samples a StatusProbe on a fixed interval, independently of
// GPS sampling, and publishes each report onto the dispatcher. OnlineChanged
// fires only on transitions so the uploader is not poked on every tick.
type StatusPoller struct {
	probe      StatusProbe
	interval   time.Duration
	dispatcher *Dispatcher

	// OnlineChanged, if set, is called when connectivity flips.
	OnlineChanged func(online bool)

	mu         sync.Mutex
	cancel     context.CancelFunc
	done       chan struct{}
	lastOnline *bool
}

func NewStatusPoller(probe StatusProbe, interval time.Duration, dispatcher *Dispatcher) *StatusPoller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StatusPoller{probe: probe, interval: interval, dispatcher: dispatcher}
}

// Run starts the polling loop. Calling Run while already running is a no-op.
func (p *StatusPoller) Run() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx)
}

// Stop halts the loop and waits for the in-flight tick, if any, to finish.
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *StatusPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *StatusPoller) poll() {
	status := p.probe.Status()
	if status.At.IsZero() {
		status.At = time.Now()
	}

	p.mu.Lock()
	changed := p.lastOnline == nil || *p.lastOnline != status.Online
	online := status.Online
	p.lastOnline = &online
	onChange := p.OnlineChanged
	p.mu.Unlock()

	if p.dispatcher != nil {
		p.dispatcher.Dispatch(EventDeviceStatus, status)
	}
	if changed && onChange != nil {
		onChange(status.Online)
	}
}
