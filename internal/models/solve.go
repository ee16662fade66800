package models

import (
	"time"
)

// Filters narrows the candidate pool before allocation. Each facet is
// optional: a nil slice means "no filter on this facet", while an empty
// non-nil slice filters the pool to the empty set. A candidate failing any
// active facet is excluded from the assignable pool entirely and never
// counts toward fairness accounting.
type Filters struct {
	Focuses          *[]Focus          `json:"focuses,omitempty"`
	AgeBuckets       *[]string         `json:"age_buckets,omitempty"`
	Backgrounds      *[]string         `json:"backgrounds,omitempty"`
	DocumentStatuses *[]DocumentStatus `json:"document_statuses,omitempty"`
}

// Active reports whether any facet is set
func (f *Filters) Active() bool {
	if f == nil {
		return false
	}
	return f.Focuses != nil || f.AgeBuckets != nil || f.Backgrounds != nil || f.DocumentStatuses != nil
}

// Allows reports whether the candidate passes every active facet
func (f *Filters) Allows(c *Candidate) bool {
	if f == nil {
		return true
	}
	if f.Focuses != nil && !containsFocus(*f.Focuses, c.Focus) {
		return false
	}
	if f.AgeBuckets != nil && !containsString(*f.AgeBuckets, c.AgeBucket) {
		return false
	}
	if f.Backgrounds != nil && !containsString(*f.Backgrounds, c.Background) {
		return false
	}
	if f.DocumentStatuses != nil && !containsStatus(*f.DocumentStatuses, c.DocumentStatus) {
		return false
	}
	return true
}

func containsFocus(haystack []Focus, needle Focus) bool {
	for _, f := range haystack {
		if f.Matches(needle) {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsStatus(haystack []DocumentStatus, needle DocumentStatus) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// ExperienceTarget is a soft target for the experienced/newcomer split
// among assigned seats. The two values are relative weights and need not
// sum to 1.
type ExperienceTarget struct {
	Experienced float64 `json:"experienced"`
	Newcomer    float64 `json:"newcomer"`
}

// FairnessTargets are soft distributional goals used only to break ties
// among eligible candidates. The allocator never violates capacity or
// filters to satisfy them.
type FairnessTargets struct {
	// Gender maps a gender category to a relative target weight. Weights
	// need not sum to 1; they are normalized before scoring.
	Gender map[string]float64 `json:"gender,omitempty"`

	// Experience is the target split between experienced candidates and
	// newcomers. A zero or negative weight sum disables the target.
	Experience *ExperienceTarget `json:"experience,omitempty"`
}

// SolveRequest is the payload for one allocation run. Capacities must
// contain at least one positive value.
type SolveRequest struct {
	Capacities map[string]int   `json:"capacities"`
	Filters    *Filters         `json:"filters,omitempty"`
	Fairness   *FairnessTargets `json:"fairness,omitempty"`
}

// GroupMetrics summarizes one group's fill and composition
type GroupMetrics struct {
	Capacity   int                `json:"capacity"`
	Filled     int                `json:"filled"`
	Gender     map[string]int     `json:"gender,omitempty"`
	Experience map[Experience]int `json:"experience,omitempty"`
}

// SolutionMetrics summarizes a whole solution
type SolutionMetrics struct {
	Groups          map[string]GroupMetrics `json:"groups"`
	TotalSeats      int                     `json:"total_seats"`
	TotalAssigned   int                     `json:"total_assigned"`
	TotalUnassigned int                     `json:"total_unassigned"`
	TotalExcluded   int                     `json:"total_excluded"`
}

// Solution is the output of one allocator run. The request's capacities,
// filters and fairness targets are snapshotted so conflict detection can
// re-evaluate eligibility later without the original request. Solutions
// are never mutated after creation.
type Solution struct {
	ID         string              `json:"id"`
	CreatedAt  time.Time           `json:"created_at"`
	Capacities map[string]int      `json:"capacities"`
	Filters    *Filters            `json:"filters,omitempty"`
	Fairness   *FairnessTargets    `json:"fairness,omitempty"`

	// Assignments maps group id to the ordered list of assigned candidate
	// ids. Order is assignment order; conflict detection relies on it.
	Assignments map[string][]string `json:"assignments"`

	// Unassigned lists eligible candidates that no group had room for.
	Unassigned []string `json:"unassigned"`

	// Excluded lists candidates removed from consideration by filters.
	// They are reported here for visibility but never appear in
	// Unassigned and never count toward fairness.
	Excluded []string `json:"excluded"`

	Metrics SolutionMetrics `json:"metrics"`
}

// AssignedCount returns the total number of assigned seats
func (s *Solution) AssignedCount() int {
	n := 0
	for _, ids := range s.Assignments {
		n += len(ids)
	}
	return n
}

// GroupOf returns the group a candidate is assigned to, or "" if none
func (s *Solution) GroupOf(candidateID string) string {
	for groupID, ids := range s.Assignments {
		for _, id := range ids {
			if id == candidateID {
				return groupID
			}
		}
	}
	return ""
}

// ConflictReason classifies a detected conflict
type ConflictReason string

const (
	// ReasonCapacityExceeded flags candidates that no longer fit under a
	// group's current capacity.
	ReasonCapacityExceeded ConflictReason = "capacity_exceeded"

	// ReasonIneligible flags candidates no longer present in the pool or
	// no longer passing the solution's filters.
	ReasonIneligible ConflictReason = "candidate_ineligible"

	// ReasonDoubleBooked flags candidates that are also assigned in
	// another stored solution.
	ReasonDoubleBooked ConflictReason = "double_booked"
)

// Conflict is a detected violation between a previously computed solution
// and the current state of candidates and groups.
type Conflict struct {
	CandidateID string         `json:"candidate_id"`
	GroupID     string         `json:"group_id"`
	Reason      ConflictReason `json:"reason"`

	// OtherSolutionID is set for double_booked conflicts
	OtherSolutionID string `json:"other_solution_id,omitempty"`
}
