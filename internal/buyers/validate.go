package buyers

import (
	"fmt"
	"math"
	"net/mail"

	"github.com/google/uuid"
)

// Validate checks a loosely-typed candidate record and returns either a
// fully-typed normalized Buyer or the ordered list of violations. Keys
// holding nil or an empty string are treated as "not provided" and
// stripped before any checks run. Validate is pure: identical input
// always yields the identical verdict, and validating the Fields() of a
// normalized record reproduces that record.
func Validate(candidate map[string]any) (*Buyer, *ValidationError) {
	fields := make(map[string]any, len(candidate))
	for key, value := range candidate {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		fields[key] = value
	}

	var violations []Violation
	fail := func(field, message string) {
		violations = append(violations, Violation{Field: field, Message: message})
	}

	b := &Buyer{}

	if name, ok, typeOK := stringField(fields, "fullName"); !typeOK {
		fail("fullName", "fullName must be a string")
	} else if !ok {
		fail("fullName", "fullName is required")
	} else if len([]rune(name)) < 2 || len([]rune(name)) > 80 {
		fail("fullName", "fullName must be between 2 and 80 characters")
	} else {
		b.FullName = name
	}

	if email, ok, typeOK := stringField(fields, "email"); !typeOK {
		fail("email", "email must be a string")
	} else if ok {
		if _, err := mail.ParseAddress(email); err != nil {
			fail("email", "email must be a valid email address")
		} else {
			b.Email = email
		}
	}

	if phone, ok, typeOK := stringField(fields, "phone"); !typeOK {
		fail("phone", "phone must be a string")
	} else if !ok {
		fail("phone", "phone is required")
	} else if len(phone) < 10 || len(phone) > 15 {
		fail("phone", "phone must be between 10 and 15 characters")
	} else {
		b.Phone = phone
	}

	if city, ok, typeOK := stringField(fields, "city"); !typeOK {
		fail("city", "city must be a string")
	} else if !ok {
		fail("city", "city is required")
	} else if !City(city).Valid() {
		fail("city", fmt.Sprintf("%q is not a valid city", city))
	} else {
		b.City = City(city)
	}

	if pt, ok, typeOK := stringField(fields, "propertyType"); !typeOK {
		fail("propertyType", "propertyType must be a string")
	} else if !ok {
		fail("propertyType", "propertyType is required")
	} else if !PropertyType(pt).Valid() {
		fail("propertyType", fmt.Sprintf("%q is not a valid propertyType", pt))
	} else {
		b.PropertyType = PropertyType(pt)
	}

	if bhk, ok, typeOK := stringField(fields, "bhk"); !typeOK {
		fail("bhk", "bhk must be a string")
	} else if ok {
		if !BHK(bhk).Valid() {
			fail("bhk", fmt.Sprintf("%q is not a valid bhk", bhk))
		} else {
			b.BHK = BHK(bhk)
		}
	}

	if purpose, ok, typeOK := stringField(fields, "purpose"); !typeOK {
		fail("purpose", "purpose must be a string")
	} else if !ok {
		fail("purpose", "purpose is required")
	} else if !Purpose(purpose).Valid() {
		fail("purpose", fmt.Sprintf("%q is not a valid purpose", purpose))
	} else {
		b.Purpose = Purpose(purpose)
	}

	if min, ok, typeOK := intField(fields, "budgetMin"); !typeOK {
		fail("budgetMin", "budgetMin must be a non-negative integer")
	} else if ok {
		if min < 0 {
			fail("budgetMin", "budgetMin must be a non-negative integer")
		} else {
			b.BudgetMin = &min
		}
	}

	if max, ok, typeOK := intField(fields, "budgetMax"); !typeOK {
		fail("budgetMax", "budgetMax must be a non-negative integer")
	} else if ok {
		if max < 0 {
			fail("budgetMax", "budgetMax must be a non-negative integer")
		} else {
			b.BudgetMax = &max
		}
	}

	if timeline, ok, typeOK := stringField(fields, "timeline"); !typeOK {
		fail("timeline", "timeline must be a string")
	} else if !ok {
		fail("timeline", "timeline is required")
	} else if !Timeline(timeline).Valid() {
		fail("timeline", fmt.Sprintf("%q is not a valid timeline", timeline))
	} else {
		b.Timeline = Timeline(timeline)
	}

	if source, ok, typeOK := stringField(fields, "source"); !typeOK {
		fail("source", "source must be a string")
	} else if !ok {
		fail("source", "source is required")
	} else if !Source(source).Valid() {
		fail("source", fmt.Sprintf("%q is not a valid source", source))
	} else {
		b.Source = Source(source)
	}

	if status, ok, typeOK := stringField(fields, "status"); !typeOK {
		fail("status", "status must be a string")
	} else if !ok {
		b.Status = StatusNew
	} else if !Status(status).Valid() {
		fail("status", fmt.Sprintf("%q is not a valid status", status))
	} else {
		b.Status = Status(status)
	}

	if notes, ok, typeOK := stringField(fields, "notes"); !typeOK {
		fail("notes", "notes must be a string")
	} else if ok {
		if len([]rune(notes)) > 1000 {
			fail("notes", "notes must be at most 1000 characters")
		} else {
			b.Notes = notes
		}
	}

	if tags, ok, typeOK := tagsField(fields); !typeOK {
		fail("tags", "tags must be a list of strings")
	} else if ok {
		b.Tags = tags
	}

	if owner, ok, typeOK := stringField(fields, "ownerId"); !typeOK {
		fail("ownerId", "ownerId must be a string")
	} else if !ok {
		fail("ownerId", "ownerId is required")
	} else if _, err := uuid.Parse(owner); err != nil {
		fail("ownerId", "ownerId must be a valid UUID")
	} else {
		b.OwnerID = owner
	}

	// Cross-field business rules run after the per-field checks so the
	// violation order matches the field order above.
	if b.BudgetMin != nil && b.BudgetMax != nil && *b.BudgetMax < *b.BudgetMin {
		fail("budgetMax", "budgetMax must be greater than or equal to budgetMin")
	}

	if b.PropertyType.RequiresBHK() && b.BHK == "" {
		fail("bhk", "BHK is required when propertyType is Apartment or Villa")
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return b, nil
}

// stringField reads a string key. The second result reports presence,
// the third whether the value had an acceptable type.
func stringField(fields map[string]any, key string) (string, bool, bool) {
	value, present := fields[key]
	if !present {
		return "", false, true
	}
	s, ok := value.(string)
	if !ok {
		return "", false, false
	}
	return s, true, true
}

// intField reads an integer key. JSON numbers arrive as float64; only
// integral values are accepted here. The import pipeline floors its
// cells before they reach the validator.
func intField(fields map[string]any, key string) (int64, bool, bool) {
	value, present := fields[key]
	if !present {
		return 0, false, true
	}
	switch n := value.(type) {
	case int:
		return int64(n), true, true
	case int64:
		return n, true, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false, false
		}
		return int64(n), true, true
	default:
		return 0, false, false
	}
}

func tagsField(fields map[string]any) ([]string, bool, bool) {
	value, present := fields["tags"]
	if !present {
		return nil, false, true
	}
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), true, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false, false
			}
			out = append(out, s)
		}
		return out, true, true
	default:
		return nil, false, false
	}
}
