package buyers

// diffBuyers computes the per-field audit diff between the stored record
// and its replacement. Equality is by value per field type: strings and
// enum codes compare directly, budgets compare through their pointers,
// and tags compare element-wise so an identical list never shows up as a
// change. Identity, ownership, and the timestamps are not diffable.
func diffBuyers(old, new *Buyer) map[string]any {
	diff := make(map[string]any)

	if old.FullName != new.FullName {
		diff["fullName"] = FieldChange{Old: old.FullName, New: new.FullName}
	}
	if old.Email != new.Email {
		diff["email"] = FieldChange{Old: old.Email, New: new.Email}
	}
	if old.Phone != new.Phone {
		diff["phone"] = FieldChange{Old: old.Phone, New: new.Phone}
	}
	if old.City != new.City {
		diff["city"] = FieldChange{Old: old.City, New: new.City}
	}
	if old.PropertyType != new.PropertyType {
		diff["propertyType"] = FieldChange{Old: old.PropertyType, New: new.PropertyType}
	}
	if old.BHK != new.BHK {
		diff["bhk"] = FieldChange{Old: old.BHK, New: new.BHK}
	}
	if old.Purpose != new.Purpose {
		diff["purpose"] = FieldChange{Old: old.Purpose, New: new.Purpose}
	}
	if !int64PtrEqual(old.BudgetMin, new.BudgetMin) {
		diff["budgetMin"] = FieldChange{Old: int64PtrValue(old.BudgetMin), New: int64PtrValue(new.BudgetMin)}
	}
	if !int64PtrEqual(old.BudgetMax, new.BudgetMax) {
		diff["budgetMax"] = FieldChange{Old: int64PtrValue(old.BudgetMax), New: int64PtrValue(new.BudgetMax)}
	}
	if old.Timeline != new.Timeline {
		diff["timeline"] = FieldChange{Old: old.Timeline, New: new.Timeline}
	}
	if old.Source != new.Source {
		diff["source"] = FieldChange{Old: old.Source, New: new.Source}
	}
	if old.Status != new.Status {
		diff["status"] = FieldChange{Old: old.Status, New: new.Status}
	}
	if old.Notes != new.Notes {
		diff["notes"] = FieldChange{Old: old.Notes, New: new.Notes}
	}
	if !stringSliceEqual(old.Tags, new.Tags) {
		diff["tags"] = FieldChange{Old: old.Tags, New: new.Tags}
	}

	return diff
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func int64PtrValue(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
