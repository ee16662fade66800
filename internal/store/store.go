package store

import (
	"context"
	"errors"

	"github.com/stagecrew/onboard-engine/internal/models"
)

// ErrSolutionNotFound is returned when a solution id is unknown to the
// store, either because it was never stored or because retention evicted
// it.
var ErrSolutionNotFound = errors.New("solution not found")

// SolutionStore maps opaque solution identifiers to solutions for later
// retrieval by conflict detection. Implementations must support
// concurrent Put/Get from overlapping solve and conflict requests: each
// Put is atomic and visible to subsequent Gets of the same id. Stored
// solutions are never mutated; implementations return values that are
// safe for the caller to read without further synchronization.
type SolutionStore interface {
	// Put stores a solution under its id, replacing any previous value.
	Put(ctx context.Context, sol *models.Solution) error

	// Get returns the stored solution or ErrSolutionNotFound.
	Get(ctx context.Context, id string) (*models.Solution, error)

	// List returns all stored solutions in unspecified order.
	List(ctx context.Context) ([]*models.Solution, error)

	// Delete removes a solution. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases store resources.
	Close() error
}

// cloneSolution returns a deep copy so stored values never alias caller
// memory.
func cloneSolution(sol *models.Solution) *models.Solution {
	cp := *sol

	if sol.Capacities != nil {
		cp.Capacities = make(map[string]int, len(sol.Capacities))
		for k, v := range sol.Capacities {
			cp.Capacities[k] = v
		}
	}

	if sol.Assignments != nil {
		cp.Assignments = make(map[string][]string, len(sol.Assignments))
		for k, v := range sol.Assignments {
			cp.Assignments[k] = append([]string(nil), v...)
		}
	}

	cp.Unassigned = append([]string(nil), sol.Unassigned...)
	cp.Excluded = append([]string(nil), sol.Excluded...)

	if sol.Filters != nil {
		f := *sol.Filters
		if sol.Filters.Focuses != nil {
			focuses := append([]models.Focus(nil), *sol.Filters.Focuses...)
			f.Focuses = &focuses
		}
		if sol.Filters.AgeBuckets != nil {
			buckets := append([]string(nil), *sol.Filters.AgeBuckets...)
			f.AgeBuckets = &buckets
		}
		if sol.Filters.Backgrounds != nil {
			backgrounds := append([]string(nil), *sol.Filters.Backgrounds...)
			f.Backgrounds = &backgrounds
		}
		if sol.Filters.DocumentStatuses != nil {
			statuses := append([]models.DocumentStatus(nil), *sol.Filters.DocumentStatuses...)
			f.DocumentStatuses = &statuses
		}
		cp.Filters = &f
	}

	if sol.Fairness != nil {
		ft := *sol.Fairness
		if sol.Fairness.Gender != nil {
			ft.Gender = make(map[string]float64, len(sol.Fairness.Gender))
			for k, v := range sol.Fairness.Gender {
				ft.Gender[k] = v
			}
		}
		if sol.Fairness.Experience != nil {
			exp := *sol.Fairness.Experience
			ft.Experience = &exp
		}
		cp.Fairness = &ft
	}

	if sol.Metrics.Groups != nil {
		cp.Metrics.Groups = make(map[string]models.GroupMetrics, len(sol.Metrics.Groups))
		for k, v := range sol.Metrics.Groups {
			gm := v
			if v.Gender != nil {
				gm.Gender = make(map[string]int, len(v.Gender))
				for gk, gv := range v.Gender {
					gm.Gender[gk] = gv
				}
			}
			if v.Experience != nil {
				gm.Experience = make(map[models.Experience]int, len(v.Experience))
				for ek, ev := range v.Experience {
					gm.Experience[ek] = ev
				}
			}
			cp.Metrics.Groups[k] = gm
		}
	}

	return &cp
}
