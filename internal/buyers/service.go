package buyers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/propstack/buyer-leads/pkg/logging"
)

const defaultHistoryLimit = 5

// maxHistoryLimit bounds caller-supplied history page sizes.
const maxHistoryLimit = 50

// Service is the mutation engine: it validates candidates, enforces
// ownership and the optimistic-concurrency check, and pairs every
// mutation with its audit entry through the store's transactional
// contract.
type Service struct {
	store        Store
	logger       *logging.Logger
	historyLimit int
	importMax    int
	now          func() time.Time
}

// NewService wires a service around a store. historyLimit <= 0 falls
// back to the default page size; importMax <= 0 to the 200-row cap.
func NewService(store Store, logger *logging.Logger, historyLimit, importMax int) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	if importMax <= 0 {
		importMax = importRowCap
	}
	return &Service{
		store:        store,
		logger:       logger,
		historyLimit: historyLimit,
		importMax:    importMax,
		// timestamptz keeps microseconds; stamp at the same precision
		// so the concurrency token round-trips through the store.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Create validates the candidate with ownership forced to the acting
// user, persists it, and writes a synthetic "created" audit entry in
// the same transaction. Returns the persisted record.
func (s *Service) Create(ctx context.Context, candidate map[string]any, actorID string) (*Buyer, error) {
	candidate["ownerId"] = actorID

	buyer, verr := Validate(candidate)
	if verr != nil {
		return nil, verr
	}

	now := s.now()
	buyer.ID = uuid.NewString()
	buyer.CreatedAt = now
	buyer.UpdatedAt = now

	entry := &HistoryEntry{
		ID:        uuid.NewString(),
		BuyerID:   buyer.ID,
		ChangedBy: actorID,
		ChangedAt: now,
		Diff:      map[string]any{"created": buyer},
	}

	if err := s.store.Create(ctx, buyer, entry); err != nil {
		return nil, err
	}

	s.logger.Info("buyer created", "id", buyer.ID, "owner_id", buyer.OwnerID)
	return buyer, nil
}

// Update applies a concurrency-checked edit. The ownership check runs
// before validation; a stale expectedUpdatedAt is rejected with
// ErrConflict rather than merged. The store re-checks the token at
// write time, so two racing updates cannot both win.
func (s *Service) Update(ctx context.Context, id string, candidate map[string]any, expectedUpdatedAt time.Time, actorID string) (*Buyer, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != actorID {
		return nil, ErrForbidden
	}
	if !existing.UpdatedAt.Equal(expectedUpdatedAt) {
		return nil, ErrConflict
	}

	// Ownership is immutable: whatever the caller sent, the stored
	// owner wins.
	candidate["ownerId"] = existing.OwnerID

	buyer, verr := Validate(candidate)
	if verr != nil {
		return nil, verr
	}

	buyer.ID = existing.ID
	buyer.CreatedAt = existing.CreatedAt
	buyer.UpdatedAt = s.now()

	entry := &HistoryEntry{
		ID:        uuid.NewString(),
		BuyerID:   buyer.ID,
		ChangedBy: actorID,
		ChangedAt: buyer.UpdatedAt,
		Diff:      diffBuyers(existing, buyer),
	}

	if err := s.store.Update(ctx, buyer, expectedUpdatedAt, entry); err != nil {
		return nil, err
	}

	s.logger.Info("buyer updated", "id", buyer.ID, "changed_fields", len(entry.Diff))
	return buyer, nil
}

// Delete removes a record and its audit trail. History rows are removed
// first so they never outlive their owning record.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != actorID {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("buyer deleted", "id", id, "owner_id", existing.OwnerID)
	return nil
}

// Get fetches a single record.
func (s *Service) Get(ctx context.Context, id string) (*Buyer, error) {
	return s.store.Get(ctx, id)
}

// List returns a filtered, sorted page of records plus the total count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Buyer, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}
	return s.store.List(ctx, filter)
}

// History returns the most recent audit entries for a record, newest
// first. A non-positive limit falls back to the configured page size.
func (s *Service) History(ctx context.Context, buyerID string, limit int) ([]*HistoryEntry, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.store.HistoryList(ctx, buyerID, limit)
}
