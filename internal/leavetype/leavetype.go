package leavetype

// Gender values recognized by gender-restricted leave types.
const (
	GenderFemale = "Female"
	GenderMale   = "Male"
)

// Definition is immutable reference data for one kind of leave. The catalog
// is declared at compile time and never mutated at runtime.
type Definition struct {
	ID                    string
	Label                 string
	ShortCode             string
	AnnualQuotaDays       int
	CarryForward          bool
	MaxCarryForwardDays   int    // only meaningful when CarryForward is true
	GenderRestriction     string // empty means no restriction
	RequiresSpecialReason bool
}

const (
	CasualLeave       = "Casual Leave"
	SickLeave         = "Sick Leave"
	EarnedLeave       = "Earned Leave"
	MenstruationLeave = "Menstruation Leave"
	SpecialLeave      = "Special Leave"
)

var definitions = []Definition{
	{
		ID:              CasualLeave,
		Label:           "Casual Leave",
		ShortCode:       "CL",
		AnnualQuotaDays: 6,
	},
	{
		ID:              SickLeave,
		Label:           "Sick Leave",
		ShortCode:       "SL",
		AnnualQuotaDays: 6,
	},
	{
		ID:                  EarnedLeave,
		Label:               "Earned Leave",
		ShortCode:           "EL",
		AnnualQuotaDays:     18,
		CarryForward:        true,
		MaxCarryForwardDays: 30,
	},
	{
		ID:                MenstruationLeave,
		Label:             "Menstruation Leave",
		ShortCode:         "ML",
		AnnualQuotaDays:   12,
		GenderRestriction: GenderFemale,
	},
	{
		ID:                    SpecialLeave,
		Label:                 "Special Leave",
		ShortCode:             "SpL",
		AnnualQuotaDays:       1,
		RequiresSpecialReason: true,
	},
}

// SpecialLeaveReasons are the canonical justifications accepted for Special
// Leave. Free text is still allowed; this list feeds UI dropdowns.
var SpecialLeaveReasons = []string{
	"Birthday",
	"Parent's Birthday",
	"Spouse Birthday",
	"Child's Birthday",
	"Other",
}
