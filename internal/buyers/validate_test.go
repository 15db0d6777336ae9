package buyers

import (
	"reflect"
	"testing"
)

const testOwnerID = "3f2f7a84-0f25-4d9e-9a9f-0b8f6a1f2c3d"

func validCandidate() map[string]any {
	return map[string]any{
		"fullName":     "Ravi Sharma",
		"phone":        "9876543210",
		"city":         "Chandigarh",
		"propertyType": "Apartment",
		"bhk":          "Two",
		"purpose":      "Buy",
		"timeline":     "M0_3",
		"source":       "Website",
		"ownerId":      testOwnerID,
	}
}

func TestValidateMinimalRecord(t *testing.T) {
	b, verr := Validate(validCandidate())
	if verr != nil {
		t.Fatalf("unexpected violations: %v", verr)
	}
	if b.FullName != "Ravi Sharma" || b.Phone != "9876543210" {
		t.Errorf("unexpected normalized record: %+v", b)
	}
	if b.Status != StatusNew {
		t.Errorf("expected status to default to New, got %s", b.Status)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	_, verr := Validate(map[string]any{})
	if verr == nil {
		t.Fatal("expected violations for empty candidate")
	}
	want := map[string]bool{
		"fullName": true, "phone": true, "city": true,
		"propertyType": true, "purpose": true, "timeline": true,
		"source": true, "ownerId": true,
	}
	for _, v := range verr.Violations {
		delete(want, v.Field)
	}
	for field := range want {
		t.Errorf("missing required-field violation for %s", field)
	}
}

func TestValidateStripsNilAndEmpty(t *testing.T) {
	c := validCandidate()
	c["email"] = ""
	c["notes"] = nil
	b, verr := Validate(c)
	if verr != nil {
		t.Fatalf("unexpected violations: %v", verr)
	}
	if b.Email != "" || b.Notes != "" {
		t.Errorf("stripped fields leaked into record: %+v", b)
	}
}

func TestValidateFullNameBounds(t *testing.T) {
	c := validCandidate()
	c["fullName"] = "A"
	if _, verr := Validate(c); verr == nil || verr.Violations[0].Field != "fullName" {
		t.Error("expected fullName length violation")
	}
}

func TestValidateEmailOptionalButChecked(t *testing.T) {
	c := validCandidate()
	c["email"] = "not-an-email"
	_, verr := Validate(c)
	if verr == nil {
		t.Fatal("expected email violation")
	}
	if verr.Violations[0].Field != "email" {
		t.Errorf("expected email violation first, got %s", verr.Violations[0].Field)
	}

	c["email"] = "ravi@example.com"
	b, verr := Validate(c)
	if verr != nil {
		t.Fatalf("unexpected violations: %v", verr)
	}
	if b.Email != "ravi@example.com" {
		t.Errorf("email not carried: %q", b.Email)
	}
}

func TestValidatePhoneBounds(t *testing.T) {
	c := validCandidate()
	c["phone"] = "12345"
	if _, verr := Validate(c); verr == nil || verr.Violations[0].Field != "phone" {
		t.Error("expected phone length violation")
	}
}

func TestValidateBudgetCrossRule(t *testing.T) {
	c := validCandidate()
	c["budgetMin"] = 5000000
	c["budgetMax"] = 4000000
	_, verr := Validate(c)
	if verr == nil {
		t.Fatal("expected budget violation")
	}
	v := verr.Violations[0]
	if v.Field != "budgetMax" {
		t.Errorf("expected violation on budgetMax, got %s", v.Field)
	}
	if v.Message != "budgetMax must be greater than or equal to budgetMin" {
		t.Errorf("unexpected message: %q", v.Message)
	}

	// Equal budgets are allowed.
	c["budgetMax"] = 5000000
	if _, verr := Validate(c); verr != nil {
		t.Errorf("equal budgets should pass: %v", verr)
	}
}

func TestValidateBHKCrossRule(t *testing.T) {
	c := validCandidate()
	delete(c, "bhk")
	_, verr := Validate(c)
	if verr == nil {
		t.Fatal("expected bhk violation for Apartment")
	}
	v := verr.Violations[0]
	if v.Field != "bhk" {
		t.Errorf("expected violation on bhk, got %s", v.Field)
	}
	if v.Message != "BHK is required when propertyType is Apartment or Villa" {
		t.Errorf("unexpected message: %q", v.Message)
	}

	// Non-residential types do not need a bhk.
	c["propertyType"] = "Plot"
	if _, verr := Validate(c); verr != nil {
		t.Errorf("Plot without bhk should pass: %v", verr)
	}
}

func TestValidateBudgetNumbers(t *testing.T) {
	// JSON numbers decode as float64; integral values are budgets,
	// fractional ones are rejected rather than silently floored.
	c := validCandidate()
	c["budgetMin"] = float64(1000000)
	b, verr := Validate(c)
	if verr != nil {
		t.Fatalf("unexpected violations: %v", verr)
	}
	if b.BudgetMin == nil || *b.BudgetMin != 1000000 {
		t.Errorf("expected budget 1000000, got %v", b.BudgetMin)
	}

	c["budgetMin"] = float64(1000000.9)
	_, verr = Validate(c)
	if verr == nil {
		t.Fatal("expected violation for fractional budget")
	}
	if verr.Violations[0].Field != "budgetMin" {
		t.Errorf("expected budgetMin violation, got %s", verr.Violations[0].Field)
	}
}

func TestValidateTagsFromJSON(t *testing.T) {
	c := validCandidate()
	c["tags"] = []any{"hot", "follow-up"}
	b, verr := Validate(c)
	if verr != nil {
		t.Fatalf("unexpected violations: %v", verr)
	}
	if !reflect.DeepEqual(b.Tags, []string{"hot", "follow-up"}) {
		t.Errorf("unexpected tags: %v", b.Tags)
	}

	c["tags"] = []any{"hot", 7}
	if _, verr := Validate(c); verr == nil {
		t.Error("expected violation for non-string tag")
	}
}

func TestValidateInvalidEnumNamesValue(t *testing.T) {
	c := validCandidate()
	c["timeline"] = "someday"
	_, verr := Validate(c)
	if verr == nil {
		t.Fatal("expected timeline violation")
	}
	if verr.Violations[0].Message != `"someday" is not a valid timeline` {
		t.Errorf("unexpected message: %q", verr.Violations[0].Message)
	}
}

func TestValidateOwnerMustBeUUID(t *testing.T) {
	c := validCandidate()
	c["ownerId"] = "agent-7"
	if _, verr := Validate(c); verr == nil || verr.Violations[0].Field != "ownerId" {
		t.Error("expected ownerId violation")
	}
}

// Re-validating the normalized form of an accepted record must
// reproduce that record exactly.
func TestValidateIdempotent(t *testing.T) {
	c := validCandidate()
	c["email"] = "ravi@example.com"
	c["budgetMin"] = 4000000
	c["budgetMax"] = 6000000
	c["notes"] = "prefers sector 21"
	c["tags"] = []string{"hot"}

	first, verr := Validate(c)
	if verr != nil {
		t.Fatalf("first pass: %v", verr)
	}
	second, verr := Validate(first.Fields())
	if verr != nil {
		t.Fatalf("second pass: %v", verr)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("validation not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}
