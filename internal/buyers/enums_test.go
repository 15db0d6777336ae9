package buyers

import "testing"

func TestTimelineLabelRoundTrip(t *testing.T) {
	cases := map[string]string{
		"0-3m":      "M0_3",
		"3-6m":      "M3_6",
		"6+m":       "GT6",
		"Exploring": "Exploring",
	}
	for label, code := range cases {
		if got := TimelineFromLabel(label); got != code {
			t.Errorf("TimelineFromLabel(%q) = %q, want %q", label, got, code)
		}
		if got := Timeline(code).Label(); got != label {
			t.Errorf("Timeline(%q).Label() = %q, want %q", code, got, label)
		}
	}
}

func TestSourceLabelRoundTrip(t *testing.T) {
	if got := SourceFromLabel("Walk-in"); got != "Walk_in" {
		t.Errorf("SourceFromLabel(Walk-in) = %q, want Walk_in", got)
	}
	if got := SourceWalkIn.Label(); got != "Walk-in" {
		t.Errorf("SourceWalkIn.Label() = %q, want Walk-in", got)
	}
	if got := SourceFromLabel("Referral"); got != "Referral" {
		t.Errorf("SourceFromLabel(Referral) = %q", got)
	}
}

func TestUnknownLabelPassesThrough(t *testing.T) {
	// Unrecognized labels survive normalization unchanged so the
	// validator can name them in its diagnostic.
	if got := TimelineFromLabel("someday"); got != "someday" {
		t.Errorf("TimelineFromLabel(someday) = %q", got)
	}
	if got := SourceFromLabel("Billboard"); got != "Billboard" {
		t.Errorf("SourceFromLabel(Billboard) = %q", got)
	}
	if Timeline("someday").Valid() {
		t.Error("expected passthrough timeline to be invalid")
	}
}

func TestEnumValidity(t *testing.T) {
	if !City("Zirakpur").Valid() {
		t.Error("Zirakpur should be a valid city")
	}
	if City("Delhi").Valid() {
		t.Error("Delhi should not be a valid city")
	}
	if !Status("Negotiation").Valid() {
		t.Error("Negotiation should be a valid status")
	}
	if Status("Closed").Valid() {
		t.Error("Closed should not be a valid status")
	}
	if !BHK("Studio").Valid() {
		t.Error("Studio should be a valid bhk")
	}
}

func TestRequiresBHK(t *testing.T) {
	if !PropertyApartment.RequiresBHK() || !PropertyVilla.RequiresBHK() {
		t.Error("Apartment and Villa require a bhk")
	}
	if PropertyPlot.RequiresBHK() || PropertyOffice.RequiresBHK() || PropertyRetail.RequiresBHK() {
		t.Error("Plot, Office, and Retail must not require a bhk")
	}
}
