package core

import (
	"fmt"
	"math/rand"
	"testing"

	"mazecore/pkg/domain"
)

func rosterOf(n int) []domain.Animal {
	animals := make([]domain.Animal, 0, n)
	for i := 0; i < n; i++ {
		animals = append(animals, domain.Animal{
			ID:       fmt.Sprintf("A-%03d", i+1),
			Tag:      fmt.Sprintf("tag%d", i+1),
			Sex:      []string{"Male", "Female"}[i%2],
			Genotype: []string{"WT", "KO"}[(i/2)%2],
			Cage:     fmt.Sprintf("C%d", i/3+1),
		})
	}
	return animals
}

func armCounts(m domain.ExitArmMap) map[domain.Arm]int {
	counts := make(map[domain.Arm]int, 3)
	for _, arm := range m {
		counts[arm]++
	}
	return counts
}

func TestAssignExitArmsCoversEveryAnimalOnce(t *testing.T) {
	for n := 1; n <= 25; n++ {
		animals := rosterOf(n)
		m := AssignExitArms(animals, rand.New(rand.NewSource(int64(n))))
		if len(m) != n {
			t.Fatalf("n=%d: expected %d assignments, got %d", n, n, len(m))
		}
		for _, a := range animals {
			arm, ok := m[a.ID]
			if !ok {
				t.Fatalf("n=%d: animal %s missing from exit arm map", n, a.ID)
			}
			if !arm.Valid() {
				t.Fatalf("n=%d: animal %s assigned invalid arm %d", n, a.ID, arm)
			}
		}
	}
}

func TestAssignExitArmsGlobalBalance(t *testing.T) {
	for n := 1; n <= 25; n++ {
		for seed := int64(0); seed < 5; seed++ {
			m := AssignExitArms(rosterOf(n), rand.New(rand.NewSource(seed)))
			counts := armCounts(m)

			base := n / 3
			want := map[domain.Arm]int{domain.ArmOne: base, domain.ArmTwo: base, domain.ArmThree: base}
			if n%3 >= 1 {
				want[domain.ArmOne]++
			}
			if n%3 >= 2 {
				want[domain.ArmTwo]++
			}
			for _, arm := range domain.Arms {
				if counts[arm] != want[arm] {
					t.Fatalf("n=%d seed=%d: arm %d count %d, want %d (counts %v)", n, seed, arm, counts[arm], want[arm], counts)
				}
			}
		}
	}
}

func TestAssignExitArmsDeterministicForSeed(t *testing.T) {
	animals := rosterOf(17)
	a := AssignExitArms(animals, rand.New(rand.NewSource(42)))
	b := AssignExitArms(animals, rand.New(rand.NewSource(42)))
	if len(a) != len(b) {
		t.Fatalf("assignment sizes differ: %d vs %d", len(a), len(b))
	}
	for id, arm := range a {
		if b[id] != arm {
			t.Fatalf("animal %s: %d vs %d for identical seed", id, arm, b[id])
		}
	}
}

func TestBestRotationPrefersQuotaFit(t *testing.T) {
	// With quota only on arm 3, the rotation starting at arm 3 must win.
	remaining := map[domain.Arm]int{domain.ArmOne: 0, domain.ArmTwo: 0, domain.ArmThree: 2}
	rotation := bestRotation(2, remaining)
	if rotation[0] != domain.ArmThree {
		t.Fatalf("expected rotation starting at arm 3, got %v", rotation)
	}
}

func TestLargestQuotaArmHandlesExhaustedQuotas(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	remaining := map[domain.Arm]int{domain.ArmOne: -2, domain.ArmTwo: -1, domain.ArmThree: -3}
	if arm := largestQuotaArm(remaining, rng); arm != domain.ArmTwo {
		t.Fatalf("expected arm 2 (largest remaining quota), got %d", arm)
	}
}
