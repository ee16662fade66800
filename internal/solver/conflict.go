package solver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/stagecrew/onboard-engine/internal/models"
)

// Commitment records that a candidate is already seated in another
// stored solution.
type Commitment struct {
	SolutionID string
	GroupID    string
}

// Snapshot is the current candidate/group state a stored solution is
// re-evaluated against. It is assembled by the Detector in the service
// path; tests construct it directly.
type Snapshot struct {
	// Capacities holds the current capacity per group id. Groups missing
	// from the map fall back to the capacity recorded in the solution.
	Capacities map[string]int

	// Pool is the current candidate pool.
	Pool []models.Candidate

	// Committed maps candidate ids to their commitment in another
	// solution, if any.
	Committed map[string]Commitment
}

// DetectConflicts re-evaluates a stored solution against the current
// state and reports discrepancies. It is advisory: the solution is never
// mutated, and calling it twice against the same snapshot yields the same
// conflicts.
//
// Per group, capacity conflicts are emitted first: when the still-valid
// assigned candidates exceed the current capacity, the excess is flagged
// in reverse assignment order so earlier commitments are preserved.
// Eligibility conflicts follow for candidates no longer present or no
// longer passing the solution's filters, then double-booked conflicts for
// candidates also seated in another solution.
func DetectConflicts(sol *models.Solution, snap Snapshot) []models.Conflict {
	current := make(map[string]*models.Candidate, len(snap.Pool))
	for i := range snap.Pool {
		current[snap.Pool[i].ID] = &snap.Pool[i]
	}

	var conflicts []models.Conflict

	for _, groupID := range sortedGroupIDs(sol.Assignments) {
		assignedIDs := sol.Assignments[groupID]

		// Split into still-valid and no-longer-eligible, preserving
		// assignment order.
		var valid, ineligible []string
		for _, id := range assignedIDs {
			cand, ok := current[id]
			if ok && sol.Filters.Allows(cand) {
				valid = append(valid, id)
			} else {
				ineligible = append(ineligible, id)
			}
		}

		capacity, ok := snap.Capacities[groupID]
		if !ok {
			capacity = sol.Capacities[groupID]
		}

		if excess := len(valid) - capacity; excess > 0 {
			for i := len(valid) - 1; i >= len(valid)-excess; i-- {
				conflicts = append(conflicts, models.Conflict{
					CandidateID: valid[i],
					GroupID:     groupID,
					Reason:      models.ReasonCapacityExceeded,
				})
			}
		}

		for _, id := range ineligible {
			conflicts = append(conflicts, models.Conflict{
				CandidateID: id,
				GroupID:     groupID,
				Reason:      models.ReasonIneligible,
			})
		}

		for _, id := range assignedIDs {
			if other, ok := snap.Committed[id]; ok {
				conflicts = append(conflicts, models.Conflict{
					CandidateID:     id,
					GroupID:         groupID,
					Reason:          models.ReasonDoubleBooked,
					OtherSolutionID: other.SolutionID,
				})
			}
		}
	}

	return conflicts
}

// SolutionSource resolves stored solutions for conflict detection
type SolutionSource interface {
	Get(ctx context.Context, id string) (*models.Solution, error)
	List(ctx context.Context) ([]*models.Solution, error)
}

// StateSource supplies the current candidate pool and group state
type StateSource interface {
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
}

// Detector resolves a solution id and re-evaluates the stored solution
// against the current repository state.
type Detector struct {
	solutions SolutionSource
	state     StateSource
}

// NewDetector creates a conflict detector
func NewDetector(solutions SolutionSource, state StateSource) *Detector {
	return &Detector{solutions: solutions, state: state}
}

// Detect reports conflicts for the stored solution with the given id.
// Returns the store's not-found error unchanged when the id is unknown.
func (d *Detector) Detect(ctx context.Context, solutionID string) ([]models.Conflict, error) {
	sol, err := d.solutions.Get(ctx, solutionID)
	if err != nil {
		return nil, err
	}

	pool, err := d.state.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate pool: %w", err)
	}

	groups, err := d.state.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}

	capacities := make(map[string]int, len(groups))
	for _, g := range groups {
		capacities[g.ID] = g.Capacity
	}

	committed, err := d.committedElsewhere(ctx, sol.ID)
	if err != nil {
		return nil, err
	}

	conflicts := DetectConflicts(sol, Snapshot{
		Capacities: capacities,
		Pool:       pool,
		Committed:  committed,
	})

	slog.Debug("conflict detection completed",
		"solution_id", solutionID,
		"conflicts", len(conflicts),
	)

	return conflicts, nil
}

// committedElsewhere indexes candidates assigned in other stored
// solutions. When a candidate appears in several, the oldest solution
// wins so repeated queries stay deterministic.
func (d *Detector) committedElsewhere(ctx context.Context, excludeID string) (map[string]Commitment, error) {
	others, err := d.solutions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list solutions: %w", err)
	}

	sort.Slice(others, func(i, j int) bool {
		if !others[i].CreatedAt.Equal(others[j].CreatedAt) {
			return others[i].CreatedAt.Before(others[j].CreatedAt)
		}
		return others[i].ID < others[j].ID
	})

	committed := make(map[string]Commitment)
	for _, other := range others {
		if other.ID == excludeID {
			continue
		}
		for _, groupID := range sortedGroupIDs(other.Assignments) {
			for _, candID := range other.Assignments[groupID] {
				if _, ok := committed[candID]; !ok {
					committed[candID] = Commitment{SolutionID: other.ID, GroupID: groupID}
				}
			}
		}
	}

	return committed, nil
}
