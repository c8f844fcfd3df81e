package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cybergodev/jwtcodec"
	"github.com/cybergodev/jwtcodec/internal/logger"
)

var (
	// ErrManagerClosed is returned by every Manager method after Close.
	ErrManagerClosed = errors.New("workspace manager is closed")

	// ErrInvalidID is returned for ids that are not UUIDs.
	ErrInvalidID = errors.New("invalid workspace id")
)

// Default manager settings.
const (
	DefaultTTL             = 24 * time.Hour
	DefaultCleanupInterval = 5 * time.Minute
)

// Config configures a Manager.
type Config struct {
	// TTL is refreshed on every write. Zero keeps workspaces forever.
	TTL time.Duration

	// CleanupInterval is the period of the background Store.Cleanup run.
	// Zero or negative disables it.
	CleanupInterval time.Duration
}

// DefaultManagerConfig returns the default TTL and cleanup interval.
func DefaultManagerConfig() Config {
	return Config{
		TTL:             DefaultTTL,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// Manager applies editor operations to stored workspaces.
type Manager struct {
	store  Store
	codec  *jwtcodec.Codec
	config Config
	log    *logger.Logger
	now    func() time.Time

	// update serializes load-modify-save cycles.
	update sync.Mutex

	mu     sync.RWMutex
	closed bool

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	cleanupWg     sync.WaitGroup
}

// NewManager creates a manager over store and starts the cleanup goroutine
// when config.CleanupInterval is positive. A nil log discards output.
func NewManager(store Store, codec *jwtcodec.Codec, config Config, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	m := &Manager{
		store:       store,
		codec:       codec,
		config:      config,
		log:         log.For(logger.ComponentWorkspace),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		m.startAutoCleanup()
	}
	return m
}

// Create stores a new empty workspace.
func (m *Manager) Create(ctx context.Context) (*State, error) {
	if err := m.checkClosed(); err != nil {
		return nil, err
	}

	m.update.Lock()
	defer m.update.Unlock()
	if err := m.checkClosed(); err != nil {
		return nil, err
	}

	state := &State{ID: uuid.NewString(), UpdatedAt: m.now().UTC()}
	if err := m.store.Save(ctx, state, m.config.TTL); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	m.log.Debug("workspace created", "id", state.ID)
	return state, nil
}

// Get loads the workspace id.
func (m *Manager) Get(ctx context.Context, id string) (*State, error) {
	if err := m.checkClosed(); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	return m.store.Load(ctx, id)
}

// Decode sets the workspace token and decodes it. A token that does not
// decode is not an error: the returned state carries the message.
func (m *Manager) Decode(ctx context.Context, id, token string) (*State, error) {
	return m.modify(ctx, id, "decode", func(s *State, now time.Time) error {
		return s.Decode(m.codec, token, now)
	})
}

// Encode sets the workspace texts and re-encodes the token. Texts that do not
// parse are not an error: the returned state carries the message.
func (m *Manager) Encode(ctx context.Context, id, headerText, payloadText string) (*State, error) {
	return m.modify(ctx, id, "encode", func(s *State, now time.Time) error {
		return s.Encode(m.codec, headerText, payloadText, now)
	})
}

// Clear resets the workspace.
func (m *Manager) Clear(ctx context.Context, id string) (*State, error) {
	return m.modify(ctx, id, "clear", func(s *State, now time.Time) error {
		s.Clear(now)
		return nil
	})
}

// Delete removes the workspace.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.checkClosed(); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}

	m.update.Lock()
	defer m.update.Unlock()
	if err := m.checkClosed(); err != nil {
		return err
	}

	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.log.Debug("workspace deleted", "id", id)
	return nil
}

// Size reports the number of stored workspaces, expired ones included until
// the next cleanup.
func (m *Manager) Size(ctx context.Context) (int, error) {
	if err := m.checkClosed(); err != nil {
		return 0, err
	}
	return m.store.Size(ctx)
}

// Close stops the cleanup goroutine, waits for in-flight writes and closes
// the store.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	if m.cleanupTicker != nil {
		m.cleanupTicker.Stop()
		close(m.stopCleanup)
		m.cleanupWg.Wait()
	}

	m.update.Lock()
	defer m.update.Unlock()
	return m.store.Close()
}

func (m *Manager) modify(ctx context.Context, id, op string, apply func(*State, time.Time) error) (*State, error) {
	if err := m.checkClosed(); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	// update is held across load and save; Close takes it before closing
	// the store, so a writer never reaches a closed store.
	m.update.Lock()
	defer m.update.Unlock()
	if err := m.checkClosed(); err != nil {
		return nil, err
	}

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(state, m.now().UTC()); err != nil {
		m.log.Debug("workspace operation rejected input", "id", id, "op", op, "error", err)
	}

	if err := m.store.Save(ctx, state, m.config.TTL); err != nil {
		return nil, fmt.Errorf("%s workspace: %w", op, err)
	}
	return state, nil
}

func (m *Manager) checkClosed() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrManagerClosed
	}
	return nil
}

func (m *Manager) startAutoCleanup() {
	m.cleanupTicker = time.NewTicker(m.config.CleanupInterval)
	m.cleanupWg.Add(1)

	go func() {
		defer m.cleanupWg.Done()

		for {
			select {
			case <-m.cleanupTicker.C:
				m.performCleanup()
			case <-m.stopCleanup:
				return
			}
		}
	}()
}

func (m *Manager) performCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), m.config.CleanupInterval)
	defer cancel()

	n, err := m.store.Cleanup(ctx)
	if err != nil {
		m.log.Warn("workspace cleanup failed", "error", err)
		return
	}
	if n > 0 {
		m.log.Info("expired workspaces removed", "count", n)
	}
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
