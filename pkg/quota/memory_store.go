package quota

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and local development.
// One record per user, mirroring the backend's row-per-user shape.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
	now     func() time.Time
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]*Record),
		now:     time.Now,
	}
}

// Put seeds or replaces a record. Test helper; the production path never
// creates rows from Go, provisioning happens at purchase time.
func (s *MemoryStore) Put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recCopy := rec
	s.records[rec.UserID] = &recCopy
}

// Get returns a copy of the stored record for assertions in tests.
func (s *MemoryStore) Get(userID uuid.UUID) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[userID]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

func (s *MemoryStore) ActiveByUser(ctx context.Context, userID uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok || rec.Status != StatusActive {
		return nil, ErrRecordNotFound
	}
	recCopy := *rec
	return &recCopy, nil
}

func (s *MemoryStore) ByToken(ctx context.Context, token string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec := s.findByToken(token); rec != nil {
		recCopy := *rec
		return &recCopy, nil
	}
	return nil, ErrRecordNotFound
}

func (s *MemoryStore) SetCycle(ctx context.Context, userID uuid.UUID, cycle Cycle, limit int, resetUsed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok || rec.Status != StatusActive {
		return ErrRecordNotFound
	}

	start, end := cycle.Start, cycle.End
	rec.CycleStart = &start
	rec.CycleEnd = &end
	rec.MonthlyLimit = limit
	if resetUsed {
		rec.UsedThisCycle = 0
	}
	rec.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemoryStore) ResetUsage(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok || rec.Status != StatusActive {
		return ErrRecordNotFound
	}
	rec.UsedThisCycle = 0
	rec.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemoryStore) ConsumeOne(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok || rec.Status != StatusActive {
		return 0, ErrRecordNotFound
	}
	if rec.UsedThisCycle >= rec.MonthlyLimit {
		return 0, ErrQuotaExhausted
	}
	rec.UsedThisCycle++
	rec.UpdatedAt = s.now().UTC()
	return rec.MonthlyLimit - rec.UsedThisCycle, nil
}

func (s *MemoryStore) SaveMirror(ctx context.Context, userID uuid.UUID, m Mirror) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok {
		// Matches the postgres store: the mirror UPDATE touches zero rows
		// for users that were never provisioned, and that is not an error.
		return nil
	}
	rec.IsSubscribed = m.IsSubscribed
	rec.ProductID = m.ProductID
	if m.Plan != nil {
		rec.Plan = *m.Plan
	}
	checkedAt := m.CheckedAt
	rec.LastCheckedAt = &checkedAt
	rec.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemoryStore) ApplyLifecycle(ctx context.Context, token string, change LifecycleChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findByToken(token)
	if rec == nil {
		return ErrRecordNotFound
	}

	if change.Status != nil {
		rec.Status = *change.Status
	}
	if change.AutoRenew != nil {
		rec.AutoRenew = *change.AutoRenew
	}
	if change.CancelledAt != nil {
		rec.CancelledAt = change.CancelledAt
	}
	if change.PausedAt != nil {
		rec.PausedAt = change.PausedAt
	}
	if change.EndedAt != nil {
		rec.EndedAt = change.EndedAt
	}
	if change.NewCycle != nil {
		start, end := change.NewCycle.Start, change.NewCycle.End
		rec.CycleStart = &start
		rec.CycleEnd = &end
		rec.UsedThisCycle = 0
	}
	if change.NewLimit != nil {
		rec.MonthlyLimit = *change.NewLimit
	}
	if change.NewPlan != nil {
		rec.Plan = *change.NewPlan
	}
	rec.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemoryStore) findByToken(token string) *Record {
	for _, rec := range s.records {
		if rec.PurchaseToken == token {
			return rec
		}
	}
	return nil
}
