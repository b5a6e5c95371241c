package core

import "mazecore/pkg/domain"

// PackCages reorders whole cages and picks per-animal exit arms for one
// reversal day, minimizing total switches over the day's arm sequence
// including a wrap-around switch between the last and first arm. Cage
// membership and intra-cage order are preserved; cages are never split.
//
// The search fixes a day-start arm (3 options) and a first cage (one option
// per cage), then greedily appends the unplaced cage whose plan is cheapest
// given the running end arm. This is a heuristic, not an exhaustive
// permutation search. Tie-breaks are deterministic: cheapest-next ties keep
// the earliest cage in first-seen order, and the first (start arm, first
// cage) combination reaching the minimum wins.
//
// Returns the animals in final cage-pack order, the day's exit arm per
// animal ID, and the winning total switch cost.
func PackCages(animals []domain.Animal, learned domain.ExitArmMap) ([]domain.Animal, map[string]domain.Arm, int, error) {
	packs := cagePacks(animals)

	// Three plans per cage, one per candidate incoming arm.
	plans := make([][4]CagePlan, len(packs))
	for i, pack := range packs {
		for _, arm := range domain.Arms {
			plan, err := PlanCage(pack, arm, learned)
			if err != nil {
				return nil, nil, 0, err
			}
			plans[i][arm] = plan
		}
	}

	bestCost := -1
	var bestOrder []int
	var bestChosen []CagePlan

	for _, start := range domain.Arms {
		for first := range packs {
			order := make([]int, 0, len(packs))
			chosen := make([]CagePlan, 0, len(packs))
			used := make([]bool, len(packs))
			prevEnd := start
			total := 0

			current := first
			for len(order) < len(packs) {
				if current < 0 {
					current = cheapestNext(plans, used, prevEnd)
				}
				plan := plans[current][prevEnd]
				total += plan.Cost
				order = append(order, current)
				chosen = append(chosen, plan)
				used[current] = true
				prevEnd = plan.End
				current = -1
			}
			if prevEnd != start {
				total++ // wrap-around switch closing the day's cycle
			}
			if bestCost < 0 || total < bestCost {
				bestCost = total
				bestOrder = order
				bestChosen = chosen
			}
		}
	}

	ordered := make([]domain.Animal, 0, len(animals))
	exits := make(map[string]domain.Arm, len(animals))
	for pos, i := range bestOrder {
		colors := bestChosen[pos].Colors
		for j, a := range packs[i] {
			exits[a.ID] = colors[j]
			ordered = append(ordered, a)
		}
	}
	return ordered, exits, bestCost, nil
}

// cagePacks groups the roster by cage in first-seen order, keeping animal
// order within each cage.
func cagePacks(animals []domain.Animal) [][]domain.Animal {
	index := make(map[string]int)
	var packs [][]domain.Animal
	for _, a := range animals {
		i, ok := index[a.Cage]
		if !ok {
			i = len(packs)
			index[a.Cage] = i
			packs = append(packs, nil)
		}
		packs[i] = append(packs[i], a)
	}
	return packs
}

// cheapestNext returns the unplaced cage with the lowest plan cost for the
// given incoming arm, earliest cage first on ties.
func cheapestNext(plans [][4]CagePlan, used []bool, incoming domain.Arm) int {
	best := -1
	for i := range plans {
		if used[i] {
			continue
		}
		if best < 0 || plans[i][incoming].Cost < plans[best][incoming].Cost {
			best = i
		}
	}
	return best
}
