package core

import (
	"fmt"

	"mazecore/pkg/domain"
)

// NoArm marks the absence of an arm value: no incoming arm for the first
// cage of a day, or no avoid-first constraint for a trial sequence.
const NoArm domain.Arm = 0

// CagePlan is the minimum-switch arm assignment for one cage given a fixed
// incoming arm. Colors holds the chosen exit arm per animal in cage order;
// none of them is the animal's learning exit. Plans are computed fresh for
// each reversal day and discarded afterwards.
type CagePlan struct {
	Cost   int
	First  domain.Arm
	End    domain.Arm
	Colors []domain.Arm
}

// PlanCage runs the per-cage dynamic program. Each animal may take either of
// the two arms distinct from its learning exit; the cost of a sequence is the
// number of adjacent switches, including the boundary against the incoming
// arm when one is given. At most two states are live per position. Ties are
// resolved lowest arm first. An animal missing from learned is a programming
// error and aborts the plan.
func PlanCage(cage []domain.Animal, incoming domain.Arm, learned domain.ExitArmMap) (CagePlan, error) {
	m := len(cage)
	if m == 0 {
		return CagePlan{First: incoming, End: incoming}, nil
	}

	allowed := make([][2]domain.Arm, m)
	for i, a := range cage {
		forbidden, ok := learned[a.ID]
		if !ok {
			return CagePlan{}, fmt.Errorf("plan cage %s: animal %s has no learning exit arm", a.Cage, a.ID)
		}
		allowed[i] = forbidden.Others()
	}

	// dp[i][arm] holds (cost, predecessor) for the two allowed arms at
	// position i; slot 0 is unused so arms index directly.
	type cell struct {
		cost int
		prev domain.Arm
		live bool
	}
	dp := make([][4]cell, m)
	for _, arm := range allowed[0] {
		cost := 0
		if incoming != NoArm && arm != incoming {
			cost = 1
		}
		dp[0][arm] = cell{cost: cost, live: true}
	}
	for i := 1; i < m; i++ {
		for _, arm := range allowed[i] {
			var best cell
			for _, prev := range allowed[i-1] {
				cost := dp[i-1][prev].cost
				if arm != prev {
					cost++
				}
				if !best.live || cost < best.cost {
					best = cell{cost: cost, prev: prev, live: true}
				}
			}
			dp[i][arm] = best
		}
	}

	end := allowed[m-1][0]
	if alt := allowed[m-1][1]; dp[m-1][alt].cost < dp[m-1][end].cost {
		end = alt
	}
	colors := make([]domain.Arm, m)
	colors[m-1] = end
	for i := m - 1; i > 0; i-- {
		colors[i-1] = dp[i][colors[i]].prev
	}
	return CagePlan{Cost: dp[m-1][end].cost, First: colors[0], End: end, Colors: colors}, nil
}
