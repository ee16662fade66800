package solver

import (
	"github.com/stagecrew/onboard-engine/internal/models"
)

// composition tracks the category counts of a group's assigned seats.
// The balancer reads it; only the allocator writes it.
type composition struct {
	total       int
	gender      map[string]int
	experienced int
	newcomers   int
}

func newComposition() *composition {
	return &composition{gender: make(map[string]int)}
}

func (c *composition) add(cand *models.Candidate) {
	c.total++
	c.gender[cand.Gender]++
	if cand.Experience == models.Experienced {
		c.experienced++
	} else {
		c.newcomers++
	}
}

func (c *composition) genderShare(category string) float64 {
	if c.total == 0 {
		return 0
	}
	return float64(c.gender[category]) / float64(c.total)
}

func (c *composition) experienceShare(e models.Experience) float64 {
	if c.total == 0 {
		return 0
	}
	if e == models.Experienced {
		return float64(c.experienced) / float64(c.total)
	}
	return float64(c.newcomers) / float64(c.total)
}

// balancer scores how desirable it is to seat a candidate next, given the
// group's current composition and the problem's fairness targets. Scores
// are relative deficits (target share minus current share), so a candidate
// from an under-represented category scores higher. Gender and experience
// deficits combine additively under configurable weights.
//
// The balancer is pure: scoring never mutates group state. Without
// fairness targets every candidate scores zero and assignment falls back
// to ascending candidate id.
type balancer struct {
	gender           genderTargets
	experience       *experienceTargets
	genderWeight     float64
	experienceWeight float64
}

func newBalancer(p *Problem, genderWeight, experienceWeight float64) *balancer {
	return &balancer{
		gender:           p.Gender,
		experience:       p.Experience,
		genderWeight:     genderWeight,
		experienceWeight: experienceWeight,
	}
}

// score returns the fairness desirability of adding cand to a group with
// the given composition. Recomputed after every assignment so the
// distribution converges toward the targets as seats fill.
func (b *balancer) score(cand *models.Candidate, comp *composition) float64 {
	score := 0.0

	if b.gender != nil {
		deficit := b.gender[cand.Gender] - comp.genderShare(cand.Gender)
		score += b.genderWeight * deficit
	}

	if b.experience != nil {
		target := b.experience.Newcomer
		if cand.Experience == models.Experienced {
			target = b.experience.Experienced
		}
		deficit := target - comp.experienceShare(cand.Experience)
		score += b.experienceWeight * deficit
	}

	return score
}
