package solver

import (
	"sort"

	"github.com/stagecrew/onboard-engine/internal/models"
)

// groupSlot is one group's remaining capacity during a solve
type groupSlot struct {
	ID       string
	Capacity int
}

// genderTargets holds gender target weights normalized to shares
type genderTargets map[string]float64

// experienceTargets holds the experienced/newcomer split normalized to shares
type experienceTargets struct {
	Experienced float64
	Newcomer    float64
}

// Problem is a validated, normalized allocation problem. It contains the
// eligible candidate set (post-filter) and the group capacity table, plus
// fairness targets reduced to relative shares. Building a Problem has no
// side effects.
type Problem struct {
	// Eligible candidates sorted by ascending id for deterministic
	// iteration.
	Eligible []models.Candidate

	// Excluded candidate ids removed by filters, sorted ascending.
	// Reported for visibility; never assigned, never counted for
	// fairness.
	Excluded []string

	// Groups sorted by ascending id; only groups with capacity > 0.
	Groups []groupSlot

	Gender     genderTargets
	Experience *experienceTargets
}

// BuildProblem validates and normalizes a solve request against the
// candidate pool. knownGroups, when non-empty, is the set of valid group
// ids; capacities referencing an unknown group are rejected.
func BuildProblem(pool []models.Candidate, req models.SolveRequest, knownGroups map[string]bool) (*Problem, error) {
	if len(req.Capacities) == 0 {
		return nil, ErrNoCapacity
	}

	positive := 0
	for id, capacity := range req.Capacities {
		if capacity < 0 {
			return nil, newValidationError("capacities", "group %q has negative capacity %d", id, capacity)
		}
		if len(knownGroups) > 0 && !knownGroups[id] {
			return nil, newValidationError("capacities", "unknown group %q", id)
		}
		if capacity > 0 {
			positive++
		}
	}
	if positive == 0 {
		return nil, ErrNoCapacity
	}

	gender, err := normalizeGender(req.Fairness)
	if err != nil {
		return nil, err
	}
	experience, err := normalizeExperience(req.Fairness)
	if err != nil {
		return nil, err
	}

	p := &Problem{
		Gender:     gender,
		Experience: experience,
	}

	for _, c := range pool {
		if req.Filters.Allows(&c) {
			p.Eligible = append(p.Eligible, c)
		} else {
			p.Excluded = append(p.Excluded, c.ID)
		}
	}
	sort.Slice(p.Eligible, func(i, j int) bool { return p.Eligible[i].ID < p.Eligible[j].ID })
	sort.Strings(p.Excluded)

	for id, capacity := range req.Capacities {
		if capacity > 0 {
			p.Groups = append(p.Groups, groupSlot{ID: id, Capacity: capacity})
		}
	}
	sort.Slice(p.Groups, func(i, j int) bool { return p.Groups[i].ID < p.Groups[j].ID })

	return p, nil
}

// normalizeGender converts gender target weights to relative shares.
// Returns nil when no usable target is present.
func normalizeGender(targets *models.FairnessTargets) (genderTargets, error) {
	if targets == nil || len(targets.Gender) == 0 {
		return nil, nil
	}

	sum := 0.0
	for category, weight := range targets.Gender {
		if weight < 0 {
			return nil, newValidationError("fairness.gender", "category %q has negative weight %v", category, weight)
		}
		sum += weight
	}
	if sum == 0 {
		return nil, nil
	}

	shares := make(genderTargets, len(targets.Gender))
	for category, weight := range targets.Gender {
		shares[category] = weight / sum
	}
	return shares, nil
}

// normalizeExperience converts the experienced/newcomer weights to shares.
// A zero or negative weight sum disables the target.
func normalizeExperience(targets *models.FairnessTargets) (*experienceTargets, error) {
	if targets == nil || targets.Experience == nil {
		return nil, nil
	}

	t := targets.Experience
	if t.Experienced < 0 || t.Newcomer < 0 {
		return nil, newValidationError("fairness.experience", "weights must be non-negative")
	}

	sum := t.Experienced + t.Newcomer
	if sum <= 0 {
		return nil, nil
	}

	return &experienceTargets{
		Experienced: t.Experienced / sum,
		Newcomer:    t.Newcomer / sum,
	}, nil
}
