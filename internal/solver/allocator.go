package solver

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stagecrew/onboard-engine/internal/models"
)

// Config tunes the allocator's fairness weighting
type Config struct {
	// GenderWeight and ExperienceWeight scale the two fairness deficits
	// when combining them into a single score. Equal weights by default.
	GenderWeight     float64
	ExperienceWeight float64
}

// DefaultConfig returns the default allocator configuration
func DefaultConfig() Config {
	return Config{GenderWeight: 1.0, ExperienceWeight: 1.0}
}

// Allocator computes candidate-to-group assignments. It is a greedy
// constructive solver: groups are filled in ascending-id order, one seat
// at a time, always seating the eligible unassigned candidate with the
// highest fairness score. Capacity and filters are hard constraints;
// fairness targets only order preference among eligible candidates.
//
// Allocation is synchronous, CPU-bound and deterministic: identical
// inputs produce identical assignment mappings. The allocator holds no
// state between solves and is safe for concurrent use.
type Allocator struct {
	cfg Config

	// knownGroups, when non-empty, is the catalog of valid group ids.
	// Requests referencing other ids are rejected.
	knownGroups map[string]bool
}

// NewAllocator creates an allocator with the given config
func NewAllocator(cfg Config) *Allocator {
	if cfg.GenderWeight == 0 && cfg.ExperienceWeight == 0 {
		cfg = DefaultConfig()
	}
	return &Allocator{cfg: cfg}
}

// SetKnownGroups installs the group catalog used to validate requests.
// Passing an empty slice disables catalog validation.
func (a *Allocator) SetKnownGroups(ids []string) {
	if len(ids) == 0 {
		a.knownGroups = nil
		return
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	a.knownGroups = known
}

// Solve computes an assignment of candidates to groups for one request.
// An empty eligible pool is a legitimate outcome and yields a valid empty
// solution; only malformed input is an error.
func (a *Allocator) Solve(pool []models.Candidate, req models.SolveRequest) (*models.Solution, error) {
	problem, err := BuildProblem(pool, req, a.knownGroups)
	if err != nil {
		return nil, err
	}

	bal := newBalancer(problem, a.cfg.GenderWeight, a.cfg.ExperienceWeight)

	assigned := make(map[string]bool, len(problem.Eligible))
	assignments := make(map[string][]string, len(problem.Groups))
	compositions := make(map[string]*composition, len(problem.Groups))

	for _, group := range problem.Groups {
		comp := newComposition()
		compositions[group.ID] = comp

		for seat := 0; seat < group.Capacity; seat++ {
			next := a.pickNext(problem.Eligible, assigned, bal, comp)
			if next == nil {
				break
			}
			assigned[next.ID] = true
			assignments[group.ID] = append(assignments[group.ID], next.ID)
			comp.add(next)
		}

		if len(assignments[group.ID]) > group.Capacity {
			return nil, fmt.Errorf("%w: group %q filled %d of %d seats",
				ErrInvariantViolation, group.ID, len(assignments[group.ID]), group.Capacity)
		}
	}

	var unassigned []string
	for _, c := range problem.Eligible {
		if !assigned[c.ID] {
			unassigned = append(unassigned, c.ID)
		}
	}

	sol := &models.Solution{
		ID:          uuid.New().String(),
		CreatedAt:   time.Now().UTC(),
		Capacities:  req.Capacities,
		Filters:     req.Filters,
		Fairness:    req.Fairness,
		Assignments: assignments,
		Unassigned:  unassigned,
		Excluded:    problem.Excluded,
	}
	sol.Metrics = a.computeMetrics(problem, sol, compositions)

	slog.Debug("solve completed",
		"solution_id", sol.ID,
		"eligible", len(problem.Eligible),
		"assigned", sol.Metrics.TotalAssigned,
		"unassigned", len(sol.Unassigned),
		"excluded", len(sol.Excluded),
	)

	return sol, nil
}

// pickNext selects the highest-scoring eligible unassigned candidate.
// Eligible is sorted ascending by id and ties keep the first seen, so
// equal scores resolve to the lowest candidate id.
func (a *Allocator) pickNext(eligible []models.Candidate, assigned map[string]bool, bal *balancer, comp *composition) *models.Candidate {
	var best *models.Candidate
	bestScore := 0.0

	for i := range eligible {
		c := &eligible[i]
		if assigned[c.ID] {
			continue
		}
		score := bal.score(c, comp)
		if best == nil || score > bestScore {
			best = c
			bestScore = score
		}
	}

	return best
}

func (a *Allocator) computeMetrics(problem *Problem, sol *models.Solution, compositions map[string]*composition) models.SolutionMetrics {
	metrics := models.SolutionMetrics{
		Groups:          make(map[string]models.GroupMetrics, len(problem.Groups)),
		TotalUnassigned: len(sol.Unassigned),
		TotalExcluded:   len(sol.Excluded),
	}

	for _, group := range problem.Groups {
		comp := compositions[group.ID]
		gm := models.GroupMetrics{
			Capacity: group.Capacity,
			Filled:   comp.total,
		}
		if len(comp.gender) > 0 {
			gm.Gender = comp.gender
		}
		if comp.total > 0 {
			gm.Experience = map[models.Experience]int{
				models.Experienced: comp.experienced,
				models.Newcomer:    comp.newcomers,
			}
		}
		metrics.Groups[group.ID] = gm
		metrics.TotalSeats += group.Capacity
		metrics.TotalAssigned += comp.total
	}

	return metrics
}

// sortedGroupIDs returns assignment group ids in ascending order
func sortedGroupIDs(assignments map[string][]string) []string {
	ids := make([]string, 0, len(assignments))
	for id := range assignments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
