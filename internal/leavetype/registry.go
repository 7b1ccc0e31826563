package leavetype

import (
	"fmt"
	"strings"

	leavetypeerrors "github.com/LabelNest/NestHR/internal/leavetype/errors"
)

// Registry exposes the static leave type catalog through pure queries.
// All methods are side-effect free and safe for concurrent use.
type Registry struct {
	defs []Definition
}

func NewRegistry() *Registry {
	return &Registry{defs: definitions}
}

// ListForGender returns the definitions applicable to the given gender,
// in catalog order. Unrestricted types always pass; restricted types pass
// only on an exact gender match.
func (r *Registry) ListForGender(gender string) []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		if d.GenderRestriction != "" && d.GenderRestriction != gender {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Get returns the definition for the given leave type id.
func (r *Registry) Get(id string) (Definition, error) {
	for _, d := range r.defs {
		if d.ID == id {
			return d, nil
		}
	}
	return Definition{}, leavetypeerrors.ErrLeaveTypeNotFound
}

// AnnualQuota maps each applicable leave type id to its yearly day quota.
func (r *Registry) AnnualQuota(gender string) map[string]int {
	quota := make(map[string]int)
	for _, d := range r.ListForGender(gender) {
		quota[d.ID] = d.AnnualQuotaDays
	}
	return quota
}

// TotalDays is the sum of quotas across all types applicable to the gender.
func (r *Registry) TotalDays(gender string) int {
	total := 0
	for _, d := range r.ListForGender(gender) {
		total += d.AnnualQuotaDays
	}
	return total
}

// SummaryText renders the allotment the way the dashboard displays it,
// e.g. "32 days total (6 CL + 6 SL + 18 EL + 1 SpL)".
func (r *Registry) SummaryText(gender string) string {
	defs := r.ListForGender(gender)
	parts := make([]string, 0, len(defs))
	for _, d := range defs {
		parts = append(parts, fmt.Sprintf("%d %s", d.AnnualQuotaDays, d.ShortCode))
	}
	return fmt.Sprintf("%d days total (%s)", r.TotalDays(gender), strings.Join(parts, " + "))
}
