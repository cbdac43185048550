package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

var ErrFeedClosed = errors.New("change feed closed")

// Loader rebuilds the progress view of one habit from the datastore.
type Loader interface {
	Load(ctx context.Context, userID, habitID string) (*domain.HabitProgress, error)
}

type RefreshState int

const (
	StateIdle RefreshState = iota
	StateScheduled
	StateRecomputing
)

func (s RefreshState) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateRecomputing:
		return "recomputing"
	default:
		return "idle"
	}
}

type CoordinatorConfig struct {
	Debounce   time.Duration
	RetryDelay time.Duration
	Workers    int
	QueueSize  int
}

func (c CoordinatorConfig) withDefaults() CoordinatorConfig {
	if c.Debounce <= 0 {
		c.Debounce = 500 * time.Millisecond
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	return c
}

type habitKey struct {
	userID  string
	habitID string
}

type habitSlot struct {
	state   RefreshState
	pending bool
	view    atomic.Pointer[domain.HabitProgress]
}

// RefreshCoordinator keeps one live progress view per (user, habit). Change
// notifications are debounced per habit; a burst arriving inside the window
// collapses into a single recomputation, and a habit never has more than one
// recomputation in flight.
type RefreshCoordinator struct {
	loader Loader
	cfg    CoordinatorConfig
	jobs   chan habitKey
	quit   chan struct{}
	once   sync.Once

	mu    sync.Mutex
	slots map[habitKey]*habitSlot

	subMu   sync.RWMutex
	subs    map[int]func(domain.ProgressUpdate)
	nextSub int
}

func NewRefreshCoordinator(loader Loader, cfg CoordinatorConfig) *RefreshCoordinator {
	cfg = cfg.withDefaults()
	return &RefreshCoordinator{
		loader: loader,
		cfg:    cfg,
		jobs:   make(chan habitKey, cfg.QueueSize),
		quit:   make(chan struct{}),
		slots:  make(map[habitKey]*habitSlot),
		subs:   make(map[int]func(domain.ProgressUpdate)),
	}
}

// Start launches the recompute workers. They stop when ctx is done.
func (c *RefreshCoordinator) Start(ctx context.Context) {
	log.WithField("workers", c.cfg.Workers).Info("[REFRESH] coordinator started")

	for i := 0; i < c.cfg.Workers; i++ {
		go func() {
			for {
				select {
				case key := <-c.jobs:
					c.recompute(ctx, key)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		<-ctx.Done()
		c.once.Do(func() { close(c.quit) })
		log.Info("[REFRESH] coordinator shutting down")
	}()
}

// Notify tells the coordinator that the tracking data of a habit changed.
func (c *RefreshCoordinator) Notify(userID, habitID string) {
	key := habitKey{userID: userID, habitID: habitID}

	c.mu.Lock()
	defer c.mu.Unlock()

	slot := c.slot(key)
	switch slot.state {
	case StateIdle:
		c.schedule(key, slot)
	case StateScheduled:
		// collapsed into the pending window
	case StateRecomputing:
		slot.pending = true
	}
}

// Listen feeds every change of the feed into Notify until ctx is done.
func (c *RefreshCoordinator) Listen(ctx context.Context, feed domain.ChangeFeed) error {
	changes, err := feed.Subscribe(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case change, ok := <-changes:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrFeedClosed
			}
			if change.UserID == "" || change.HabitID == "" {
				log.WithField("change", change).Warn("[REFRESH] ignoring change without user or habit")
				continue
			}
			c.Notify(change.UserID, change.HabitID)
		case <-ctx.Done():
			return nil
		}
	}
}

// View returns the last published view of a habit, if any.
func (c *RefreshCoordinator) View(userID, habitID string) (*domain.HabitProgress, bool) {
	c.mu.Lock()
	slot, ok := c.slots[habitKey{userID: userID, habitID: habitID}]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	view := slot.view.Load()
	return view, view != nil
}

// Prime seeds the view of a habit that has never been published, typically
// from a synchronous build or a persisted snapshot. Subscribers are not told.
func (c *RefreshCoordinator) Prime(view *domain.HabitProgress) {
	if view == nil {
		return
	}

	c.mu.Lock()
	slot := c.slot(habitKey{userID: view.UserID, habitID: view.HabitID})
	c.mu.Unlock()

	slot.view.CompareAndSwap(nil, view)
}

func (c *RefreshCoordinator) State(userID, habitID string) RefreshState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if slot, ok := c.slots[habitKey{userID: userID, habitID: habitID}]; ok {
		return slot.state
	}
	return StateIdle
}

// OnProgressUpdated registers fn for every published view. The returned
// function unsubscribes it.
func (c *RefreshCoordinator) OnProgressUpdated(fn func(domain.ProgressUpdate)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

// Updates streams published views until ctx is done, then closes the
// channel. Updates that find the buffer full are dropped.
func (c *RefreshCoordinator) Updates(ctx context.Context, buffer int) <-chan domain.ProgressUpdate {
	ch := make(chan domain.ProgressUpdate, buffer)

	var mu sync.Mutex
	closed := false

	unsubscribe := c.OnProgressUpdated(func(u domain.ProgressUpdate) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- u:
		default:
			log.WithField("habit_id", u.HabitID).Warn("[REFRESH] subscriber too slow, update dropped")
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch
}

func (c *RefreshCoordinator) slot(key habitKey) *habitSlot {
	slot, ok := c.slots[key]
	if !ok {
		slot = &habitSlot{}
		c.slots[key] = slot
	}
	return slot
}

// schedule must be called with c.mu held.
func (c *RefreshCoordinator) schedule(key habitKey, slot *habitSlot) {
	slot.state = StateScheduled
	time.AfterFunc(c.cfg.Debounce, func() { c.fire(key) })
}

func (c *RefreshCoordinator) fire(key habitKey) {
	c.mu.Lock()
	slot := c.slot(key)
	slot.state = StateRecomputing
	c.mu.Unlock()

	select {
	case c.jobs <- key:
	case <-c.quit:
	}
}

func (c *RefreshCoordinator) recompute(ctx context.Context, key habitKey) {
	logger := log.WithFields(log.Fields{"user_id": key.userID, "habit_id": key.habitID})

	view, err := c.loader.Load(ctx, key.userID, key.habitID)
	if err != nil && !errors.Is(err, domain.ErrHabitNotFound) {
		logger.WithError(err).Warnf("[REFRESH] recomputation failed, retrying in %s", c.cfg.RetryDelay)

		select {
		case <-time.After(c.cfg.RetryDelay):
			view, err = c.loader.Load(ctx, key.userID, key.habitID)
		case <-ctx.Done():
			c.finish(key)
			return
		}
	}

	switch {
	case errors.Is(err, domain.ErrHabitNotFound):
		logger.Info("[REFRESH] habit is gone, dropping its view")
		c.forget(key)
		return
	case err != nil:
		logger.WithError(err).Error("[REFRESH] recomputation failed twice, serving stale view")
		if last, ok := c.View(key.userID, key.habitID); ok {
			c.publish(key, last.WithStale(true))
		}
	default:
		c.publish(key, view)
	}

	c.finish(key)
}

func (c *RefreshCoordinator) publish(key habitKey, view *domain.HabitProgress) {
	c.mu.Lock()
	slot := c.slot(key)
	c.mu.Unlock()

	slot.view.Store(view)

	c.subMu.RLock()
	subs := make([]func(domain.ProgressUpdate), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.RUnlock()

	update := domain.ProgressUpdate{UserID: key.userID, HabitID: key.habitID, Progress: view}
	for _, fn := range subs {
		fn(update)
	}
}

func (c *RefreshCoordinator) finish(key habitKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot := c.slot(key)
	if slot.pending {
		slot.pending = false
		c.schedule(key, slot)
		return
	}
	slot.state = StateIdle
}

// forget drops a deleted habit, unless a change arrived meanwhile.
func (c *RefreshCoordinator) forget(key habitKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot := c.slot(key)
	if slot.pending {
		slot.pending = false
		c.schedule(key, slot)
		return
	}
	delete(c.slots, key)
}
