package buyers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the pool surface the store needs; satisfied by
// *pgxpool.Pool and by pgxmock in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore persists buyers and their audit trail in PostgreSQL.
// Each mutation runs in a single transaction covering the record write
// and the history write, so neither can land without the other.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		panic("buyers: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

const buyerColumns = `id, owner_id, full_name, email, phone, city, property_type, bhk,
	purpose, budget_min, budget_max, timeline, source, status, notes, tags,
	created_at, updated_at`

func (s *PostgresStore) Get(ctx context.Context, id string) (*Buyer, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+buyerColumns+` FROM buyers WHERE id = $1`, id)
	buyer, err := scanBuyer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("buyers: select failed: %w", err)
	}
	return buyer, nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]*Buyer, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM buyers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("buyers: count failed: %w", err)
	}

	order := " ORDER BY updated_at DESC"
	if filter.Sort == "asc" {
		order = " ORDER BY updated_at ASC"
	}

	query := `SELECT ` + buyerColumns + ` FROM buyers` + where + order
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.PageSize, (page-1)*filter.PageSize)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("buyers: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Buyer
	for rows.Next() {
		buyer, err := scanBuyer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("buyers: scan failed: %w", err)
		}
		out = append(out, buyer)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("buyers: list failed: %w", err)
	}
	return out, total, nil
}

func buildWhere(filter ListFilter) (string, []any) {
	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.City != "" {
		clauses = append(clauses, "city = "+arg(filter.City))
	}
	if filter.PropertyType != "" {
		clauses = append(clauses, "property_type = "+arg(filter.PropertyType))
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = "+arg(filter.Status))
	}
	if filter.Timeline != "" {
		clauses = append(clauses, "timeline = "+arg(filter.Timeline))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		clauses = append(clauses, "(full_name ILIKE "+arg(pattern)+
			" OR phone LIKE "+arg(pattern)+
			" OR email ILIKE "+arg(pattern)+")")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *PostgresStore) Create(ctx context.Context, buyer *Buyer, entry *HistoryEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("buyers: begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insert = `
		INSERT INTO buyers (id, owner_id, full_name, email, phone, city, property_type, bhk,
			purpose, budget_min, budget_max, timeline, source, status, notes, tags,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	if _, err := tx.Exec(ctx, insert, buyerArgs(buyer)...); err != nil {
		return fmt.Errorf("buyers: insert failed: %w", err)
	}

	if err := insertHistory(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("buyers: commit failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, buyer *Buyer, expectedUpdatedAt time.Time, entry *HistoryEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("buyers: begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Compare-and-swap on the stored updated_at, not on any copy read
	// earlier in the request. Zero rows means the token went stale (or
	// the row disappeared) between the caller's read and this write.
	const update = `
		UPDATE buyers
		SET full_name = $1, email = $2, phone = $3, city = $4, property_type = $5,
			bhk = $6, purpose = $7, budget_min = $8, budget_max = $9, timeline = $10,
			source = $11, status = $12, notes = $13, tags = $14, updated_at = $15
		WHERE id = $16 AND updated_at = $17
	`
	tag, err := tx.Exec(ctx, update,
		buyer.FullName,
		nullIfEmpty(buyer.Email),
		buyer.Phone,
		buyer.City,
		buyer.PropertyType,
		nullIfEmpty(string(buyer.BHK)),
		buyer.Purpose,
		buyer.BudgetMin,
		buyer.BudgetMax,
		buyer.Timeline,
		buyer.Source,
		buyer.Status,
		nullIfEmpty(buyer.Notes),
		tagsValue(buyer.Tags),
		buyer.UpdatedAt,
		buyer.ID,
		expectedUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("buyers: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM buyers WHERE id = $1)`, buyer.ID).Scan(&exists); err != nil {
			return fmt.Errorf("buyers: conflict check failed: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}

	if err := insertHistory(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("buyers: commit failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("buyers: begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// History first: audit rows must never outlive their record.
	if _, err := tx.Exec(ctx, `DELETE FROM buyer_history WHERE buyer_id = $1`, id); err != nil {
		return fmt.Errorf("buyers: history delete failed: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM buyers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("buyers: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("buyers: commit failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateMany(ctx context.Context, records []*Buyer) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO buyers (id, owner_id, full_name, email, phone, city, property_type, bhk,
		purpose, budget_min, budget_max, timeline, source, status, notes, tags,
		created_at, updated_at) VALUES `)

	args := make([]any, 0, len(records)*18)
	for i, b := range records {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < 18; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*18+j+1)
		}
		sb.WriteString(")")
		args = append(args, buyerArgs(b)...)
	}
	sb.WriteString(" ON CONFLICT (owner_id, phone) DO NOTHING")

	tag, err := s.pool.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("buyers: bulk insert failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) HistoryList(ctx context.Context, buyerID string, limit int) ([]*HistoryEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, buyer_id, changed_by, changed_at, diff
		FROM buyer_history
		WHERE buyer_id = $1
		ORDER BY changed_at DESC
		LIMIT $2
	`, buyerID, limit)
	if err != nil {
		return nil, fmt.Errorf("buyers: history query failed: %w", err)
	}
	defer rows.Close()

	var out []*HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var diffRaw []byte
		if err := rows.Scan(&entry.ID, &entry.BuyerID, &entry.ChangedBy, &entry.ChangedAt, &diffRaw); err != nil {
			return nil, fmt.Errorf("buyers: history scan failed: %w", err)
		}
		if len(diffRaw) > 0 {
			if err := json.Unmarshal(diffRaw, &entry.Diff); err != nil {
				return nil, fmt.Errorf("buyers: history diff decode failed: %w", err)
			}
		}
		out = append(out, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("buyers: history query failed: %w", err)
	}
	return out, nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, entry *HistoryEntry) error {
	diffJSON, err := json.Marshal(entry.Diff)
	if err != nil {
		return fmt.Errorf("buyers: diff encode failed: %w", err)
	}
	const insert = `
		INSERT INTO buyer_history (id, buyer_id, changed_by, changed_at, diff)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insert, entry.ID, entry.BuyerID, entry.ChangedBy, entry.ChangedAt, diffJSON); err != nil {
		return fmt.Errorf("buyers: history insert failed: %w", err)
	}
	return nil
}

func buyerArgs(b *Buyer) []any {
	return []any{
		b.ID,
		b.OwnerID,
		b.FullName,
		nullIfEmpty(b.Email),
		b.Phone,
		b.City,
		b.PropertyType,
		nullIfEmpty(string(b.BHK)),
		b.Purpose,
		b.BudgetMin,
		b.BudgetMax,
		b.Timeline,
		b.Source,
		b.Status,
		nullIfEmpty(b.Notes),
		tagsValue(b.Tags),
		b.CreatedAt,
		b.UpdatedAt,
	}
}

func scanBuyer(row pgx.Row) (*Buyer, error) {
	var b Buyer
	var email, bhk, notes *string
	if err := row.Scan(
		&b.ID,
		&b.OwnerID,
		&b.FullName,
		&email,
		&b.Phone,
		&b.City,
		&b.PropertyType,
		&bhk,
		&b.Purpose,
		&b.BudgetMin,
		&b.BudgetMax,
		&b.Timeline,
		&b.Source,
		&b.Status,
		&notes,
		&b.Tags,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if email != nil {
		b.Email = *email
	}
	if bhk != nil {
		b.BHK = BHK(*bhk)
	}
	if notes != nil {
		b.Notes = *notes
	}
	return &b, nil
}

// tagsValue keeps the tags column non-null: a nil slice would encode
// as SQL NULL and trip the NOT NULL constraint.
func tagsValue(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
