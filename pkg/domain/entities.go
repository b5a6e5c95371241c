// Package domain defines the value types shared between the scheduling
// engine, its adapters, and the persistence backends.
package domain

import "strconv"

// Arm identifies one of the three maze arms.
type Arm int

// The three maze arms. There is no ordering semantics beyond identity; a
// "switch" is simply an inequality between two adjacent assignments.
const (
	ArmOne Arm = iota + 1
	ArmTwo
	ArmThree
)

// Arms lists the three maze arms in ascending order.
var Arms = [3]Arm{ArmOne, ArmTwo, ArmThree}

// Valid reports whether a is one of the three maze arms.
func (a Arm) Valid() bool { return a >= ArmOne && a <= ArmThree }

// Others returns the two arms different from a, in ascending order.
func (a Arm) Others() [2]Arm {
	var out [2]Arm
	i := 0
	for _, c := range Arms {
		if c != a {
			out[i] = c
			i++
		}
	}
	return out
}

// String renders the arm as its numeric label.
func (a Arm) String() string { return strconv.Itoa(int(a)) }

// Phase distinguishes the two experiment phases. Reversal days forbid reusing
// an animal's learning-day exit arm.
type Phase string

const (
	PhaseLearning Phase = "learning"
	PhaseReversal Phase = "reversal"
)

// Animal is a validated roster record. Records are produced by the roster
// parser (or supplied directly by API callers) and are read-only to the engine.
type Animal struct {
	ID       string `json:"id"`
	Tag      string `json:"tag"`
	Sex      string `json:"sex"`
	Genotype string `json:"genotype"`
	Cage     string `json:"cage"`
}

// ExitArmMap assigns each animal (by ID) its learning-day exit arm.
type ExitArmMap map[string]Arm

// Row is one animal's line in a day table: identity fields, the day's exit
// arm, and the ordered start-arm sequence. Fallback is set when the trial
// sequence generator could not honor every constraint and degraded to an
// unconstrained arrangement.
type Row struct {
	Animal    Animal `json:"animal"`
	ExitArm   Arm    `json:"exit_arm"`
	StartArms []Arm  `json:"start_arms"`
	Fallback  bool   `json:"fallback,omitempty"`
}

// Strings renders the row as tabular cells matching DayTable.Header.
func (r Row) Strings() []string {
	cells := make([]string, 0, 6+len(r.StartArms))
	cells = append(cells, r.Animal.ID, r.Animal.Tag, r.Animal.Sex, r.Animal.Genotype, r.Animal.Cage, r.ExitArm.String())
	for _, arm := range r.StartArms {
		cells = append(cells, arm.String())
	}
	return cells
}

// DayTable holds one experiment day's schedule. Immutable once returned.
type DayTable struct {
	Day    int      `json:"day"` // 1-based
	Phase  Phase    `json:"phase"`
	Header []string `json:"header"`
	Rows   []Row    `json:"rows"`
}

// ScheduleConfig carries the parameters of one schedule generation. When Seed
// is set the whole computation is reproducible; otherwise only the statistical
// balance guarantees hold.
type ScheduleConfig struct {
	LearningDays int    `json:"learning_days"`
	ReversalDays int    `json:"reversal_days"`
	TrialsPerDay int    `json:"trials_per_day"`
	Seed         *int64 `json:"seed,omitempty"`
}

// TotalDays returns the number of experiment days covered by the config.
func (c ScheduleConfig) TotalDays() int { return c.LearningDays + c.ReversalDays }
