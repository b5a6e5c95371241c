package core

import (
	"math/rand"

	"mazecore/pkg/domain"
)

// trialSeqNodeBudget bounds the backtracking search per trial, so the total
// budget grows with the pool size. The pool holds only two distinct values
// and valid arrangements are found almost immediately when they exist; the
// bound guarantees termination on dead-end churn.
const trialSeqNodeBudget = 64

// TrialSequence builds the ordered start arms for one animal-day: n trials
// over armA and armB with counts differing by at most 1 (the odd trial going
// to either arm with equal probability), no three consecutive equal arms,
// and — when satisfiable — a first trial different from avoidFirst. Passing
// NoArm as avoidFirst disables the first-trial constraint.
//
// When the bounded backtracking finds no valid arrangement, the shuffled pool
// is returned as-is and the second result is true. That degradation is
// accepted behavior, not an error; callers surface it via Row.Fallback and
// metrics.
func TrialSequence(n int, armA, armB, avoidFirst domain.Arm, rng *rand.Rand) ([]domain.Arm, bool) {
	countA := n / 2
	countB := n / 2
	if n%2 == 1 {
		if rng.Intn(2) == 0 {
			countA++
		} else {
			countB++
		}
	}
	pool := make([]domain.Arm, 0, n)
	for i := 0; i < countA; i++ {
		pool = append(pool, armA)
	}
	for i := 0; i < countB; i++ {
		pool = append(pool, armB)
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	budget := trialSeqNodeBudget * n
	seq := make([]domain.Arm, 0, n)
	used := make([]bool, n)
	if arrange(pool, used, &seq, avoidFirst, &budget) {
		return seq, false
	}
	return pool, true
}

// arrange extends seq one pool element at a time, trying elements in their
// shuffled order and backtracking on dead ends. Every attempted extension
// consumes one unit of budget; an exhausted budget fails the whole search.
func arrange(pool []domain.Arm, used []bool, seq *[]domain.Arm, avoidFirst domain.Arm, budget *int) bool {
	if len(*seq) == len(pool) {
		return true
	}
	for i, cand := range pool {
		if used[i] {
			continue
		}
		if *budget <= 0 {
			return false
		}
		*budget--
		k := len(*seq)
		if k == 0 && avoidFirst != NoArm && cand == avoidFirst {
			continue
		}
		if k >= 2 && (*seq)[k-1] == cand && (*seq)[k-2] == cand {
			continue
		}
		used[i] = true
		*seq = append(*seq, cand)
		if arrange(pool, used, seq, avoidFirst, budget) {
			return true
		}
		*seq = (*seq)[:k]
		used[i] = false
	}
	return false
}
