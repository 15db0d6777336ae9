package buyers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// importRowCap is the default ceiling on data rows per upload.
const importRowCap = 200

// exportColumns is the fixed projection for CSV export and the
// recognized header set for import.
var exportColumns = []string{
	"fullName", "email", "phone", "city", "propertyType", "bhk",
	"purpose", "budgetMin", "budgetMax", "timeline", "source",
	"status", "notes", "tags",
}

// ImportCSV parses a comma-delimited upload, normalizes display labels
// to storage codes, validates every row, and performs a single
// all-or-nothing bulk insert. If any row fails validation nothing is
// written and every (row, violation) pair comes back in an ImportError;
// rows are numbered from 2 to match spreadsheet conventions. Rows that
// would collide with the phone uniqueness constraint are skipped at
// insert time, not reported. Bulk creation writes no audit entries.
func (s *Service) ImportCSV(ctx context.Context, payload []byte, actorID string) (int, error) {
	// Spreadsheets often wrap cells in stray single quotes; strip them
	// everywhere before parsing.
	text := strings.ReplaceAll(string(payload), "'", "")

	reader := csv.NewReader(strings.NewReader(text))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, &ParseError{Err: err}
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return 0, &ParseError{Err: err}
	}

	if len(rows) > s.importMax {
		return 0, ErrTooManyRows
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var rowErrors []RowError
	candidates := make([]*Buyer, 0, len(rows))

	for idx, row := range rows {
		candidate := buildImportCandidate(columns, row, actorID)
		buyer, verr := Validate(candidate)
		if verr != nil {
			for _, v := range verr.Violations {
				rowErrors = append(rowErrors, RowError{
					Row:     idx + 2, // 1-indexed plus header row
					Field:   v.Field,
					Message: v.Message,
				})
			}
			continue
		}
		candidates = append(candidates, buyer)
	}

	if len(rowErrors) > 0 {
		return 0, &ImportError{Rows: rowErrors}
	}

	now := s.now()
	for _, b := range candidates {
		b.ID = uuid.NewString()
		b.CreatedAt = now
		b.UpdatedAt = now
	}

	inserted, err := s.store.CreateMany(ctx, candidates)
	if err != nil {
		return 0, fmt.Errorf("buyers: bulk insert failed: %w", err)
	}

	s.logger.Info("buyers imported", "rows", len(candidates), "inserted", inserted)
	return inserted, nil
}

func buildImportCandidate(columns map[string]int, row []string, actorID string) map[string]any {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	candidate := map[string]any{
		"fullName":     cell("fullName"),
		"email":        cell("email"),
		"phone":        cell("phone"),
		"city":         CityFromLabel(cell("city")),
		"propertyType": PropertyTypeFromLabel(cell("propertyType")),
		"purpose":      PurposeFromLabel(cell("purpose")),
		"timeline":     TimelineFromLabel(cell("timeline")),
		"source":       SourceFromLabel(cell("source")),
		"status":       StatusFromLabel(cell("status")),
		"notes":        cell("notes"),
		"ownerId":      actorID,
	}

	if bhk := cell("bhk"); bhk != "" {
		candidate["bhk"] = BHKFromLabel(bhk)
	}
	if min := toIntOrNull(cell("budgetMin")); min != nil {
		candidate["budgetMin"] = *min
	}
	if max := toIntOrNull(cell("budgetMax")); max != nil {
		candidate["budgetMax"] = *max
	}
	if tags := cell("tags"); tags != "" {
		parts := strings.Split(tags, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				list = append(list, trimmed)
			}
		}
		if len(list) > 0 {
			candidate["tags"] = list
		}
	}

	return candidate
}

// toIntOrNull coerces a budget cell: blank or non-numeric means absent,
// anything numeric is floored to an integer.
func toIntOrNull(value string) *int64 {
	value = strings.TrimSpace(strings.Trim(value, `"`))
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int64(math.Floor(f))
	return &n
}

// ExportCSV renders the filtered record set back to the tabular label
// form: storage codes invert to display labels, phones are wrapped in
// literal quotes to defeat spreadsheet numeric coercion, absent budgets
// render empty, and tags join on commas. Purely a projection.
func (s *Service) ExportCSV(ctx context.Context, filter ListFilter) ([]byte, error) {
	filter.Page = 0
	filter.PageSize = 0 // no row cap on export

	records, _, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("buyers: export query failed: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportColumns); err != nil {
		return nil, fmt.Errorf("buyers: export write failed: %w", err)
	}
	for _, b := range records {
		row := []string{
			b.FullName,
			b.Email,
			"'" + b.Phone + "'",
			b.City.Label(),
			b.PropertyType.Label(),
			b.BHK.Label(),
			b.Purpose.Label(),
			formatBudget(b.BudgetMin),
			formatBudget(b.BudgetMax),
			b.Timeline.Label(),
			b.Source.Label(),
			b.Status.Label(),
			b.Notes,
			strings.Join(b.Tags, ","),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("buyers: export write failed: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("buyers: export write failed: %w", err)
	}
	return buf.Bytes(), nil
}

func formatBudget(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
