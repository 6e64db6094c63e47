package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chantierpro/finance/internal/clock"
	"github.com/chantierpro/finance/internal/integration/domain"
	"github.com/google/uuid"
)

type MemoryStore struct {
	mu      sync.RWMutex
	sealer  *Sealer
	records map[domain.Provider]record
}

func NewMemoryStore(sealer *Sealer) *MemoryStore {
	return &MemoryStore{
		sealer:  sealer,
		records: make(map[domain.Provider]record),
	}
}

func (s *MemoryStore) Load(_ context.Context, provider domain.Provider) (domain.Connection, error) {
	s.mu.RLock()
	rec, ok := s.records[provider]
	s.mu.RUnlock()
	if !ok {
		return domain.Connection{}, domain.ErrNotConnected
	}
	return open(s.sealer, rec)
}

func (s *MemoryStore) Save(_ context.Context, conn domain.Connection) error {
	rec, err := seal(s.sealer, conn)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[conn.Provider] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, provider domain.Provider) error {
	s.mu.Lock()
	delete(s.records, provider)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]domain.Connection, error) {
	s.mu.RLock()
	recs := make([]record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool { return recs[i].Provider < recs[j].Provider })
	out := make([]domain.Connection, 0, len(recs))
	for _, rec := range recs {
		conn, err := open(s.sealer, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, conn)
	}
	return out, nil
}

type lease struct {
	token   string
	expires time.Time
}

// MemoryLocker is the single-process SyncLocker.
type MemoryLocker struct {
	mu     sync.Mutex
	clock  clock.Clock
	leases map[domain.Provider]lease
}

func NewMemoryLocker(c clock.Clock) *MemoryLocker {
	if c == nil {
		c = clock.New()
	}
	return &MemoryLocker{clock: c, leases: make(map[domain.Provider]lease)}
}

func (l *MemoryLocker) TryLock(_ context.Context, provider domain.Provider, ttl time.Duration) (string, bool, error) {
	if ttl <= 0 {
		return "", false, errLockTTL
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if held, ok := l.leases[provider]; ok && now.Before(held.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.leases[provider] = lease{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

func (l *MemoryLocker) Release(_ context.Context, provider domain.Provider, token string) error {
	if token == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if held, ok := l.leases[provider]; ok && held.token == token {
		delete(l.leases, provider)
	}
	return nil
}
