package uploader

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dispatchly/courier-tracking/module/core/domain"
	"github.com/dispatchly/courier-tracking/module/core/internal/repository/database"
)

// Batch is one drained slice of the outbound queue. It leaves the uploader
// only on a positive acknowledgment or after exhausting its attempts.
type Batch struct {
	SessionID string
	Locations []domain.Coordinate
	Attempts  int
}

// Sender ships one batch to the telemetry backend. A nil error is a
// positive acknowledgment; anything else triggers requeue-and-retry.
type Sender interface {
	Send(ctx context.Context, batch *Batch, meta *Metadata) error
}

// Metadata accompanies every batch on the wire.
type Metadata struct {
	Stats      domain.TrackingStatistics `json:"stats"`
	DeviceInfo map[string]string         `json:"device_info,omitempty"`
	Timestamp  time.Time                 `json:"timestamp"`
}

// Config tunes the retry schedule and the flush cadence.
type Config struct {
	BaseDelay     time.Duration
	BackoffFactor float64
	MaxAttempts   int
	FlushInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	if c.BackoffFactor <= 1 {
		c.BackoffFactor = 2
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 5 * time.Second
	}
	return c
}

type sessionQueue struct {
	pending []domain.Coordinate
	// retrying is a previously drained batch that failed to send. It sits
	// at the front of the queue: it goes out again before newer samples,
	// and its samples are never re-drained into another batch.
	retrying *Batch
	nextTry  time.Time
}

// Uploader batches accepted samples per session and ships them with
// exponential backoff. Send failures never touch the sampling path; after
// MaxAttempts a batch is logged, dead-lettered and removed so the queue
// stays bounded.
type Uploader struct {
	cfg         Config
	sender      Sender
	deadLetters database.DeadLetterStore

	mu        sync.Mutex
	queues    map[string]*sessionQueue
	online    bool
	statsFn   func() domain.TrackingStatistics
	device    map[string]string
	onDropped func(sessionID string, samples int)
	flushCh   chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

func New(cfg Config, sender Sender, deadLetters database.DeadLetterStore) *Uploader {
	ctx, cancel := context.WithCancel(context.Background())
	u := &Uploader{
		cfg:         cfg.withDefaults(),
		sender:      sender,
		deadLetters: deadLetters,
		queues:      make(map[string]*sessionQueue),
		online:      true,
		flushCh:     make(chan struct{}, 1),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	go u.flushLoop()
	return u
}

// SetMetadata installs the stats snapshot source and static device info
// attached to every batch.
func (u *Uploader) SetMetadata(statsFn func() domain.TrackingStatistics, device map[string]string) {
	u.mu.Lock()
	u.statsFn = statsFn
	u.device = device
	u.mu.Unlock()
}

// SetDropHandler installs fn, called once per batch that exhausts its
// retries and is removed from the queue. Failed attempts that will still
// be retried stay internal; only the final drop surfaces.
func (u *Uploader) SetDropHandler(fn func(sessionID string, samples int)) {
	u.mu.Lock()
	u.onDropped = fn
	u.mu.Unlock()
}

// SetOnline reports connectivity. Going online nudges a flush.
func (u *Uploader) SetOnline(online bool) {
	u.mu.Lock()
	u.online = online
	u.mu.Unlock()
	if online {
		u.signal()
	}
}

// Enqueue adds one accepted sample to the session's outbound queue.
// Never blocks.
func (u *Uploader) Enqueue(sessionID string, sample domain.Coordinate) {
	u.mu.Lock()
	q := u.queue(sessionID)
	q.pending = append(q.pending, sample)
	u.mu.Unlock()
	u.signal()
}

// Flush nudges the flush loop. Asynchronous; callers never wait on the
// network.
func (u *Uploader) Flush(sessionID string) {
	u.signal()
}

// QueuedCount reports pending samples for a session, retrying batch
// included.
func (u *Uploader) QueuedCount(sessionID string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	q, ok := u.queues[sessionID]
	if !ok {
		return 0
	}
	n := len(q.pending)
	if q.retrying != nil {
		n += len(q.retrying.Locations)
	}
	return n
}

// Close stops the flush loop after the current pass completes.
func (u *Uploader) Close() {
	u.cancel()
	<-u.done
}

func (u *Uploader) queue(sessionID string) *sessionQueue {
	q, ok := u.queues[sessionID]
	if !ok {
		q = &sessionQueue{}
		u.queues[sessionID] = q
	}
	return q
}

func (u *Uploader) signal() {
	select {
	case u.flushCh <- struct{}{}:
	default:
	}
}

func (u *Uploader) flushLoop() {
	defer close(u.done)
	ticker := time.NewTicker(u.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-u.ctx.Done():
			return
		case <-u.flushCh:
		case <-ticker.C:
		}
		u.flushAll()
	}
}

func (u *Uploader) flushAll() {
	u.mu.Lock()
	if !u.online {
		u.mu.Unlock()
		return
	}
	ids := make([]string, 0, len(u.queues))
	for id := range u.queues {
		ids = append(ids, id)
	}
	u.mu.Unlock()

	for _, id := range ids {
		u.flushSession(id)
	}
}

func (u *Uploader) flushSession(sessionID string) {
	for {
		batch, meta := u.takeBatch(sessionID)
		if batch == nil {
			return
		}

		batch.Attempts++
		err := u.sender.Send(u.ctx, batch, meta)
		if err == nil {
			continue
		}

		if batch.Attempts >= u.cfg.MaxAttempts {
			log.WithFields(log.Fields{
				"session_id": sessionID,
				"samples":    len(batch.Locations),
				"attempts":   batch.Attempts,
			}).Error("upload batch dropped after exhausting retries")
			u.deadLetter(batch)
			u.notifyDropped(sessionID, len(batch.Locations))
			continue
		}

		delay := u.backoffDelay(batch.Attempts)
		log.WithFields(log.Fields{
			"session_id": sessionID,
			"attempt":    batch.Attempts,
			"retry_in":   delay,
		}).Warnf("upload failed: %v", err)
		u.requeue(sessionID, batch, delay)
		return
	}
}

// takeBatch drains the session queue atomically: a retrying batch goes
// first and is never merged with newer samples.
func (u *Uploader) takeBatch(sessionID string) (*Batch, *Metadata) {
	u.mu.Lock()
	defer u.mu.Unlock()

	q, ok := u.queues[sessionID]
	if !ok {
		return nil, nil
	}

	var batch *Batch
	if q.retrying != nil {
		if time.Now().Before(q.nextTry) {
			return nil, nil
		}
		batch = q.retrying
		q.retrying = nil
	} else if len(q.pending) > 0 {
		batch = &Batch{SessionID: sessionID, Locations: q.pending}
		q.pending = nil
	} else {
		// Fully drained; drop the entry so the map stays bounded across
		// session churn.
		delete(u.queues, sessionID)
		return nil, nil
	}

	meta := &Metadata{DeviceInfo: u.device, Timestamp: time.Now()}
	if u.statsFn != nil {
		meta.Stats = u.statsFn()
	}
	return batch, meta
}

func (u *Uploader) requeue(sessionID string, batch *Batch, delay time.Duration) {
	u.mu.Lock()
	q := u.queue(sessionID)
	q.retrying = batch
	q.nextTry = time.Now().Add(delay)
	u.mu.Unlock()

	// signal is non-blocking and harmless after Close
	time.AfterFunc(delay, u.signal)
}

func (u *Uploader) backoffDelay(attempts int) time.Duration {
	delay := u.cfg.BaseDelay
	for i := 1; i < attempts; i++ {
		delay = time.Duration(float64(delay) * u.cfg.BackoffFactor)
	}
	return delay
}

func (u *Uploader) notifyDropped(sessionID string, samples int) {
	u.mu.Lock()
	fn := u.onDropped
	u.mu.Unlock()
	if fn != nil {
		fn(sessionID, samples)
	}
}

func (u *Uploader) deadLetter(batch *Batch) {
	if u.deadLetters == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := u.deadLetters.SaveDroppedBatch(ctx, batch.SessionID, batch.Locations, batch.Attempts); err != nil {
		log.Errorf("dead-letter dropped batch: %v", err)
	}
}
