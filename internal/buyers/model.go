package buyers

import "time"

// Buyer is a lead record tracked by the sales team. UpdatedAt doubles as
// the optimistic-concurrency token: every successful write advances it,
// and updates are rejected unless the caller presents the current value.
type Buyer struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"ownerId"`
	FullName     string       `json:"fullName"`
	Email        string       `json:"email,omitempty"`
	Phone        string       `json:"phone"`
	City         City         `json:"city"`
	PropertyType PropertyType `json:"propertyType"`
	BHK          BHK          `json:"bhk,omitempty"`
	Purpose      Purpose      `json:"purpose"`
	BudgetMin    *int64       `json:"budgetMin,omitempty"`
	BudgetMax    *int64       `json:"budgetMax,omitempty"`
	Timeline     Timeline     `json:"timeline"`
	Source       Source       `json:"source"`
	Status       Status       `json:"status"`
	Notes        string       `json:"notes,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Clone returns a deep copy so stored records never alias caller slices.
func (b *Buyer) Clone() *Buyer {
	if b == nil {
		return nil
	}
	out := *b
	if b.BudgetMin != nil {
		v := *b.BudgetMin
		out.BudgetMin = &v
	}
	if b.BudgetMax != nil {
		v := *b.BudgetMax
		out.BudgetMax = &v
	}
	if b.Tags != nil {
		out.Tags = append([]string(nil), b.Tags...)
	}
	return &out
}

// Fields renders the record back into the loose key/value form accepted
// by Validate. Used by the update path and by idempotence checks.
func (b *Buyer) Fields() map[string]any {
	fields := map[string]any{
		"fullName":     b.FullName,
		"phone":        b.Phone,
		"city":         string(b.City),
		"propertyType": string(b.PropertyType),
		"purpose":      string(b.Purpose),
		"timeline":     string(b.Timeline),
		"source":       string(b.Source),
		"status":       string(b.Status),
		"ownerId":      b.OwnerID,
	}
	if b.Email != "" {
		fields["email"] = b.Email
	}
	if b.BHK != "" {
		fields["bhk"] = string(b.BHK)
	}
	if b.BudgetMin != nil {
		fields["budgetMin"] = *b.BudgetMin
	}
	if b.BudgetMax != nil {
		fields["budgetMax"] = *b.BudgetMax
	}
	if b.Notes != "" {
		fields["notes"] = b.Notes
	}
	if len(b.Tags) > 0 {
		fields["tags"] = append([]string(nil), b.Tags...)
	}
	return fields
}

// FieldChange is one side-by-side value pair in an audit diff.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// HistoryEntry is an immutable audit record of one mutation. Creation
// writes a synthetic entry whose diff holds the full record under the
// "created" key; updates hold a FieldChange per changed field.
type HistoryEntry struct {
	ID        string         `json:"id"`
	BuyerID   string         `json:"buyerId"`
	ChangedBy string         `json:"changedBy"`
	ChangedAt time.Time      `json:"changedAt"`
	Diff      map[string]any `json:"diff"`
}

// ListFilter narrows and orders buyer reads. A zero PageSize disables
// pagination (used by the export pipeline).
type ListFilter struct {
	City         string
	PropertyType string
	Status       string
	Timeline     string
	Search       string
	Sort         string // "asc" or "desc" by updatedAt; desc by default
	Page         int
	PageSize     int
}
