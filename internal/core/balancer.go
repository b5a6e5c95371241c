package core

import (
	"math/rand"

	"mazecore/pkg/domain"
)

// AssignExitArms computes each animal's learning-day exit arm. Global arm
// usage counts differ by at most 1, with any remainder absorbed by arm 1 then
// arm 2. Within each (genotype, sex, cage) group arms are assigned by cycling
// 1→2→3 from a scored rotation offset, substituting the largest remaining
// global quota whenever the rotation's arm is exhausted.
func AssignExitArms(animals []domain.Animal, rng *rand.Rand) domain.ExitArmMap {
	type group struct {
		members []domain.Animal
	}
	index := make(map[[3]string]int)
	var groups []*group
	for _, a := range animals {
		key := [3]string{a.Genotype, a.Sex, a.Cage}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, &group{})
		}
		groups[i].members = append(groups[i].members, a)
	}

	// Shuffle member order within each group and the group processing order.
	// This only moves which physical animal lands on a tie-broken slot; the
	// balance guarantee is unaffected. Groups are collected in first-seen
	// order above so seeded runs stay reproducible.
	for _, g := range groups {
		rng.Shuffle(len(g.members), func(i, j int) { g.members[i], g.members[j] = g.members[j], g.members[i] })
	}
	rng.Shuffle(len(groups), func(i, j int) { groups[i], groups[j] = groups[j], groups[i] })

	// Global targets: base = N/3, remainder to arm 1 then arm 2, never arm 3.
	n := len(animals)
	base := n / 3
	remaining := map[domain.Arm]int{
		domain.ArmOne:   base,
		domain.ArmTwo:   base,
		domain.ArmThree: base,
	}
	if n%3 >= 1 {
		remaining[domain.ArmOne]++
	}
	if n%3 >= 2 {
		remaining[domain.ArmTwo]++
	}

	exitArms := make(domain.ExitArmMap, n)
	for _, g := range groups {
		rotation := bestRotation(len(g.members), remaining)
		for i, a := range g.members {
			arm := rotation[i]
			if remaining[arm] <= 0 {
				arm = largestQuotaArm(remaining, rng)
			}
			remaining[arm]--
			exitArms[a.ID] = arm
		}
	}
	return exitArms
}

// bestRotation scores the three cyclic rotations of 1→2→3 of length m against
// the remaining quotas: fewest assignments beyond quota first, then largest
// overlap with quota. Score ties keep the lowest offset.
func bestRotation(m int, remaining map[domain.Arm]int) []domain.Arm {
	var best []domain.Arm
	var bestOver, bestPrefer int
	for offset := 0; offset < 3; offset++ {
		seq := make([]domain.Arm, m)
		counts := make(map[domain.Arm]int, 3)
		for j := 0; j < m; j++ {
			seq[j] = domain.Arm((j+offset)%3 + 1)
			counts[seq[j]]++
		}
		var over, prefer int
		for _, arm := range domain.Arms {
			if d := counts[arm] - remaining[arm]; d > 0 {
				over += d
			}
			prefer -= min(counts[arm], remaining[arm])
		}
		if best == nil || over < bestOver || (over == bestOver && prefer < bestPrefer) {
			best, bestOver, bestPrefer = seq, over, prefer
		}
	}
	return best
}

// largestQuotaArm picks the arm with the largest remaining quota, breaking
// ties with a uniform draw. Near the end of assignment every quota can be
// exhausted; the substituted arm then drives its quota negative, which is
// accepted so that every animal still receives an arm.
func largestQuotaArm(remaining map[domain.Arm]int, rng *rand.Rand) domain.Arm {
	bestQuota := remaining[domain.ArmOne]
	tied := []domain.Arm{domain.ArmOne}
	for _, arm := range domain.Arms[1:] {
		switch q := remaining[arm]; {
		case q > bestQuota:
			bestQuota = q
			tied = append(tied[:0], arm)
		case q == bestQuota:
			tied = append(tied, arm)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}
	return tied[rng.Intn(len(tied))]
}
