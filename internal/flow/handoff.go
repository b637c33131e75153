package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

var handoffTracer = otel.Tracer("medicore.internal.flow.handoff")

// ErrNoHandoff indicates no pending booking exists for the session. The
// payment page is unreachable without one.
var ErrNoHandoff = errors.New("flow: no pending booking for session")

// Handoff carries a freshly booked appointment from the booking page to the
// payment page. Lifecycle: created once on successful booking, read on
// payment-page load, cleared when payment confirmation succeeds.
type Handoff struct {
	AppointmentID string `json:"appointmentId"`
	Draft         Draft  `json:"draft"`
}

// HandoffStore holds at most one pending booking per session.
type HandoffStore interface {
	Put(ctx context.Context, sessionID string, h *Handoff) error
	Get(ctx context.Context, sessionID string) (*Handoff, error)
	Clear(ctx context.Context, sessionID string) error
}

// RedisHandoffStore keeps pending bookings in Redis with a TTL standing in
// for the browser session scope. Abandoned handoffs expire on their own.
type RedisHandoffStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisHandoffStore creates a Redis-backed handoff store.
func NewRedisHandoffStore(redisClient *redis.Client, ttl time.Duration) *RedisHandoffStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisHandoffStore{redis: redisClient, ttl: ttl}
}

func (s *RedisHandoffStore) key(sessionID string) string {
	return "handoff:" + sessionID
}

// Put stores the pending booking for the session.
func (s *RedisHandoffStore) Put(ctx context.Context, sessionID string, h *Handoff) error {
	ctx, span := handoffTracer.Start(ctx, "handoff.put")
	defer span.End()

	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("flow: marshal handoff: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("flow: store handoff: %w", err)
	}
	return nil
}

// Get returns the pending booking, or ErrNoHandoff when none exists.
func (s *RedisHandoffStore) Get(ctx context.Context, sessionID string) (*Handoff, error) {
	ctx, span := handoffTracer.Start(ctx, "handoff.get")
	defer span.End()

	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNoHandoff
	}
	if err != nil {
		return nil, fmt.Errorf("flow: load handoff: %w", err)
	}
	var h Handoff
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("flow: unmarshal handoff: %w", err)
	}
	return &h, nil
}

// Clear removes the pending booking for the session.
func (s *RedisHandoffStore) Clear(ctx context.Context, sessionID string) error {
	ctx, span := handoffTracer.Start(ctx, "handoff.clear")
	defer span.End()

	if err := s.redis.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("flow: clear handoff: %w", err)
	}
	return nil
}

// MemoryHandoffStore is an in-process HandoffStore for tests and single
// process deployments.
type MemoryHandoffStore struct {
	mu      sync.Mutex
	entries map[string]*Handoff
}

// NewMemoryHandoffStore creates an empty in-memory handoff store.
func NewMemoryHandoffStore() *MemoryHandoffStore {
	return &MemoryHandoffStore{entries: make(map[string]*Handoff)}
}

// Put stores the pending booking for the session.
func (s *MemoryHandoffStore) Put(_ context.Context, sessionID string, h *Handoff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *h
	s.entries[sessionID] = &copied
	return nil
}

// Get returns the pending booking, or ErrNoHandoff when none exists.
func (s *MemoryHandoffStore) Get(_ context.Context, sessionID string) (*Handoff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrNoHandoff
	}
	copied := *h
	return &copied, nil
}

// Clear removes the pending booking for the session.
func (s *MemoryHandoffStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
