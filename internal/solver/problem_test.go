package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stagecrew/onboard-engine/internal/models"
)

func TestBuildProblem_Capacities(t *testing.T) {
	pool := testPool()

	t.Run("rejects empty capacities", func(t *testing.T) {
		_, err := BuildProblem(pool, models.SolveRequest{}, nil)
		require.ErrorIs(t, err, ErrNoCapacity)
	})

	t.Run("rejects all-zero capacities", func(t *testing.T) {
		req := models.SolveRequest{Capacities: map[string]int{"stage": 0, "lighting": 0}}
		_, err := BuildProblem(pool, req, nil)
		require.ErrorIs(t, err, ErrNoCapacity)
	})

	t.Run("rejects negative capacity", func(t *testing.T) {
		req := models.SolveRequest{Capacities: map[string]int{"stage": -1}}
		_, err := BuildProblem(pool, req, nil)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "capacities", verr.Field)
	})

	t.Run("rejects unknown group when catalog configured", func(t *testing.T) {
		req := models.SolveRequest{Capacities: map[string]int{"stage": 2, "catering": 1}}
		known := map[string]bool{"stage": true, "lighting": true}

		_, err := BuildProblem(pool, req, known)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Reason, "catering")
	})

	t.Run("drops zero-capacity groups from the slot table", func(t *testing.T) {
		req := models.SolveRequest{Capacities: map[string]int{"stage": 2, "lighting": 0}}
		p, err := BuildProblem(pool, req, nil)

		require.NoError(t, err)
		require.Len(t, p.Groups, 1)
		require.Equal(t, "stage", p.Groups[0].ID)
	})

	t.Run("orders groups by ascending id", func(t *testing.T) {
		req := models.SolveRequest{Capacities: map[string]int{"wardrobe": 1, "lighting": 1, "stage": 1}}
		p, err := BuildProblem(pool, req, nil)

		require.NoError(t, err)
		require.Equal(t, "lighting", p.Groups[0].ID)
		require.Equal(t, "stage", p.Groups[1].ID)
		require.Equal(t, "wardrobe", p.Groups[2].ID)
	})
}

func TestBuildProblem_Filters(t *testing.T) {
	pool := []models.Candidate{
		newCandidate("c1", models.FocusActing, "F"),
		newCandidate("c2", models.FocusTech, "M"),
		newCandidate("c3", models.FocusBoth, "F"),
	}
	capacities := map[string]int{"stage": 5}

	t.Run("nil filters keep everyone eligible", func(t *testing.T) {
		p, err := BuildProblem(pool, models.SolveRequest{Capacities: capacities}, nil)

		require.NoError(t, err)
		require.Len(t, p.Eligible, 3)
		require.Empty(t, p.Excluded)
	})

	t.Run("focus filter excludes non-matching candidates", func(t *testing.T) {
		focuses := []models.Focus{models.FocusActing}
		req := models.SolveRequest{
			Capacities: capacities,
			Filters:    &models.Filters{Focuses: &focuses},
		}

		p, err := BuildProblem(pool, req, nil)

		require.NoError(t, err)
		// c3 has focus "both" and matches any requested focus
		require.Len(t, p.Eligible, 2)
		require.Equal(t, []string{"c2"}, p.Excluded)
	})

	t.Run("empty filter slice excludes the whole pool", func(t *testing.T) {
		focuses := []models.Focus{}
		req := models.SolveRequest{
			Capacities: capacities,
			Filters:    &models.Filters{Focuses: &focuses},
		}

		p, err := BuildProblem(pool, req, nil)

		require.NoError(t, err)
		require.Empty(t, p.Eligible)
		require.Len(t, p.Excluded, 3)
	})

	t.Run("eligible candidates are sorted by id", func(t *testing.T) {
		shuffled := []models.Candidate{pool[2], pool[0], pool[1]}
		p, err := BuildProblem(shuffled, models.SolveRequest{Capacities: capacities}, nil)

		require.NoError(t, err)
		require.Equal(t, "c1", p.Eligible[0].ID)
		require.Equal(t, "c2", p.Eligible[1].ID)
		require.Equal(t, "c3", p.Eligible[2].ID)
	})
}

func TestBuildProblem_Fairness(t *testing.T) {
	pool := testPool()
	capacities := map[string]int{"stage": 2}

	t.Run("normalizes gender weights to shares", func(t *testing.T) {
		req := models.SolveRequest{
			Capacities: capacities,
			Fairness:   &models.FairnessTargets{Gender: map[string]float64{"F": 2, "M": 2}},
		}

		p, err := BuildProblem(pool, req, nil)

		require.NoError(t, err)
		require.InDelta(t, 0.5, p.Gender["F"], 1e-9)
		require.InDelta(t, 0.5, p.Gender["M"], 1e-9)
	})

	t.Run("rejects negative gender weight", func(t *testing.T) {
		req := models.SolveRequest{
			Capacities: capacities,
			Fairness:   &models.FairnessTargets{Gender: map[string]float64{"F": -1}},
		}

		_, err := BuildProblem(pool, req, nil)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("all-zero gender weights disable the target", func(t *testing.T) {
		req := models.SolveRequest{
			Capacities: capacities,
			Fairness:   &models.FairnessTargets{Gender: map[string]float64{"F": 0, "M": 0}},
		}

		p, err := BuildProblem(pool, req, nil)

		require.NoError(t, err)
		require.Nil(t, p.Gender)
	})

	t.Run("zero-sum experience target is treated as absent", func(t *testing.T) {
		req := models.SolveRequest{
			Capacities: capacities,
			Fairness: &models.FairnessTargets{
				Experience: &models.ExperienceTarget{Experienced: 0, Newcomer: 0},
			},
		}

		p, err := BuildProblem(pool, req, nil)

		require.NoError(t, err)
		require.Nil(t, p.Experience)
	})

	t.Run("rejects negative experience weight", func(t *testing.T) {
		req := models.SolveRequest{
			Capacities: capacities,
			Fairness: &models.FairnessTargets{
				Experience: &models.ExperienceTarget{Experienced: -1, Newcomer: 2},
			},
		}

		_, err := BuildProblem(pool, req, nil)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}
