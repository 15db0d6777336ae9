package buyers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store is the persistence contract for buyer records and their audit
// trail. Create, Update, and Delete must each be atomic across the
// record write and the history write: a record change must never land
// without its audit entry or vice versa. Update is a compare-and-swap
// against the stored updatedAt value, not against any cached copy.
type Store interface {
	Get(ctx context.Context, id string) (*Buyer, error)
	List(ctx context.Context, filter ListFilter) ([]*Buyer, int, error)
	Create(ctx context.Context, buyer *Buyer, entry *HistoryEntry) error
	Update(ctx context.Context, buyer *Buyer, expectedUpdatedAt time.Time, entry *HistoryEntry) error
	Delete(ctx context.Context, id string) error
	// CreateMany bulk-inserts records, silently skipping rows that would
	// violate the per-owner phone uniqueness constraint. Returns the
	// number actually inserted. No history entries are written.
	CreateMany(ctx context.Context, records []*Buyer) (int, error)
	HistoryList(ctx context.Context, buyerID string, limit int) ([]*HistoryEntry, error)
}

// MemoryStore keeps buyers in process memory. It mirrors the
// transactional semantics of the Postgres store and backs the service
// tests plus local development without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	buyers  map[string]*Buyer
	history map[string][]*HistoryEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buyers:  make(map[string]*Buyer),
		history: make(map[string][]*HistoryEntry),
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Buyer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	buyer, ok := m.buyers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return buyer.Clone(), nil
}

func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]*Buyer, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*Buyer, 0, len(m.buyers))
	for _, b := range m.buyers {
		if matchesFilter(b, filter) {
			matched = append(matched, b.Clone())
		}
	}

	asc := filter.Sort == "asc"
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].ID < matched[j].ID
		}
		if asc {
			return matched[i].UpdatedAt.Before(matched[j].UpdatedAt)
		}
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	total := len(matched)
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= total {
			return []*Buyer{}, total, nil
		}
		end := start + filter.PageSize
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func matchesFilter(b *Buyer, filter ListFilter) bool {
	if filter.City != "" && string(b.City) != filter.City {
		return false
	}
	if filter.PropertyType != "" && string(b.PropertyType) != filter.PropertyType {
		return false
	}
	if filter.Status != "" && string(b.Status) != filter.Status {
		return false
	}
	if filter.Timeline != "" && string(b.Timeline) != filter.Timeline {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(b.FullName), needle) &&
			!strings.Contains(b.Phone, filter.Search) &&
			!strings.Contains(strings.ToLower(b.Email), needle) {
			return false
		}
	}
	return true
}

func (m *MemoryStore) Create(ctx context.Context, buyer *Buyer, entry *HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buyers[buyer.ID] = buyer.Clone()
	m.appendHistory(entry)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, buyer *Buyer, expectedUpdatedAt time.Time, entry *HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.buyers[buyer.ID]
	if !ok {
		return ErrNotFound
	}
	if !stored.UpdatedAt.Equal(expectedUpdatedAt) {
		return ErrConflict
	}
	m.buyers[buyer.ID] = buyer.Clone()
	m.appendHistory(entry)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.buyers[id]; !ok {
		return ErrNotFound
	}
	// History goes first so audit rows never outlive their record.
	delete(m.history, id)
	delete(m.buyers, id)
	return nil
}

func (m *MemoryStore) CreateMany(ctx context.Context, records []*Buyer) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(m.buyers))
	for _, b := range m.buyers {
		seen[b.OwnerID+"\x00"+b.Phone] = true
	}

	inserted := 0
	for _, b := range records {
		key := b.OwnerID + "\x00" + b.Phone
		if seen[key] {
			continue
		}
		seen[key] = true
		m.buyers[b.ID] = b.Clone()
		inserted++
	}
	return inserted, nil
}

func (m *MemoryStore) HistoryList(ctx context.Context, buyerID string, limit int) ([]*HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.history[buyerID]
	out := make([]*HistoryEntry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		clone := *entries[i]
		out = append(out, &clone)
	}
	return out, nil
}

func (m *MemoryStore) appendHistory(entry *HistoryEntry) {
	clone := *entry
	m.history[entry.BuyerID] = append(m.history[entry.BuyerID], &clone)
}
