package buyers

// Categorical fields are stored as stable codes and presented as display
// labels. FromLabel helpers normalize incoming labels to codes and return
// unknown input unchanged so validation can reject it with a precise
// field diagnostic instead of the mapping silently dropping data.

// City is the catchment area of a buyer.
type City string

const (
	CityChandigarh City = "Chandigarh"
	CityMohali     City = "Mohali"
	CityZirakpur   City = "Zirakpur"
	CityPanchkula  City = "Panchkula"
	CityOther      City = "Other"
)

var cities = map[City]bool{
	CityChandigarh: true,
	CityMohali:     true,
	CityZirakpur:   true,
	CityPanchkula:  true,
	CityOther:      true,
}

func (c City) Valid() bool { return cities[c] }

// Label returns the display form of the city.
func (c City) Label() string { return string(c) }

// CityFromLabel maps a display label to its storage code.
func CityFromLabel(label string) string { return label }

// PropertyType classifies the property a buyer is after.
type PropertyType string

const (
	PropertyApartment PropertyType = "Apartment"
	PropertyVilla     PropertyType = "Villa"
	PropertyPlot      PropertyType = "Plot"
	PropertyOffice    PropertyType = "Office"
	PropertyRetail    PropertyType = "Retail"
)

var propertyTypes = map[PropertyType]bool{
	PropertyApartment: true,
	PropertyVilla:     true,
	PropertyPlot:      true,
	PropertyOffice:    true,
	PropertyRetail:    true,
}

func (p PropertyType) Valid() bool { return propertyTypes[p] }

func (p PropertyType) Label() string { return string(p) }

// PropertyTypeFromLabel maps a display label to its storage code.
func PropertyTypeFromLabel(label string) string { return label }

// RequiresBHK reports whether the property type needs a bedroom count.
func (p PropertyType) RequiresBHK() bool {
	return p == PropertyApartment || p == PropertyVilla
}

// BHK is the bedroom count category.
type BHK string

const (
	BHKOne    BHK = "One"
	BHKTwo    BHK = "Two"
	BHKThree  BHK = "Three"
	BHKFour   BHK = "Four"
	BHKStudio BHK = "Studio"
)

var bhks = map[BHK]bool{
	BHKOne:    true,
	BHKTwo:    true,
	BHKThree:  true,
	BHKFour:   true,
	BHKStudio: true,
}

func (b BHK) Valid() bool { return bhks[b] }

func (b BHK) Label() string { return string(b) }

// BHKFromLabel maps a display label to its storage code.
func BHKFromLabel(label string) string { return label }

// Purpose is buy vs rent.
type Purpose string

const (
	PurposeBuy  Purpose = "Buy"
	PurposeRent Purpose = "Rent"
)

var purposes = map[Purpose]bool{
	PurposeBuy:  true,
	PurposeRent: true,
}

func (p Purpose) Valid() bool { return purposes[p] }

func (p Purpose) Label() string { return string(p) }

// PurposeFromLabel maps a display label to its storage code.
func PurposeFromLabel(label string) string { return label }

// Timeline is the purchase horizon. Codes differ from display labels.
type Timeline string

const (
	TimelineZeroToThree Timeline = "M0_3"
	TimelineThreeToSix  Timeline = "M3_6"
	TimelineOverSix     Timeline = "GT6"
	TimelineExploring   Timeline = "Exploring"
)

var timelineLabels = map[Timeline]string{
	TimelineZeroToThree: "0-3m",
	TimelineThreeToSix:  "3-6m",
	TimelineOverSix:     "6+m",
	TimelineExploring:   "Exploring",
}

var timelineCodes = map[string]Timeline{
	"0-3m":      TimelineZeroToThree,
	"3-6m":      TimelineThreeToSix,
	"6+m":       TimelineOverSix,
	"Exploring": TimelineExploring,
}

func (t Timeline) Valid() bool { _, ok := timelineLabels[t]; return ok }

func (t Timeline) Label() string {
	if label, ok := timelineLabels[t]; ok {
		return label
	}
	return string(t)
}

// TimelineFromLabel maps a display label to its storage code.
func TimelineFromLabel(label string) string {
	if code, ok := timelineCodes[label]; ok {
		return string(code)
	}
	return label
}

// Source records where the lead came from.
type Source string

const (
	SourceWebsite  Source = "Website"
	SourceReferral Source = "Referral"
	SourceWalkIn   Source = "Walk_in"
	SourceOther    Source = "Other"
)

var sourceLabels = map[Source]string{
	SourceWebsite:  "Website",
	SourceReferral: "Referral",
	SourceWalkIn:   "Walk-in",
	SourceOther:    "Other",
}

var sourceCodes = map[string]Source{
	"Website":  SourceWebsite,
	"Referral": SourceReferral,
	"Walk-in":  SourceWalkIn,
	"Other":    SourceOther,
}

func (s Source) Valid() bool { _, ok := sourceLabels[s]; return ok }

func (s Source) Label() string {
	if label, ok := sourceLabels[s]; ok {
		return label
	}
	return string(s)
}

// SourceFromLabel maps a display label to its storage code.
func SourceFromLabel(label string) string {
	if code, ok := sourceCodes[label]; ok {
		return string(code)
	}
	return label
}

// Status is the pipeline stage of a lead.
type Status string

const (
	StatusNew         Status = "New"
	StatusQualified   Status = "Qualified"
	StatusContacted   Status = "Contacted"
	StatusVisited     Status = "Visited"
	StatusNegotiation Status = "Negotiation"
	StatusConverted   Status = "Converted"
	StatusDropped     Status = "Dropped"
)

var statuses = map[Status]bool{
	StatusNew:         true,
	StatusQualified:   true,
	StatusContacted:   true,
	StatusVisited:     true,
	StatusNegotiation: true,
	StatusConverted:   true,
	StatusDropped:     true,
}

func (s Status) Valid() bool { return statuses[s] }

func (s Status) Label() string { return string(s) }

// StatusFromLabel maps a display label to its storage code.
func StatusFromLabel(label string) string { return label }
