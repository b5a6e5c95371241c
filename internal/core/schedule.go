package core

import (
	"fmt"

	"mazecore/pkg/domain"
)

// ScheduleResult is the output of one full schedule generation.
type ScheduleResult struct {
	// Days holds one table per experiment day, learning days first.
	Days []domain.DayTable
	// ExitArms is the balanced learning-day exit arm per animal ID.
	ExitArms domain.ExitArmMap
	// Fallbacks counts rows whose trial sequence degraded to the
	// unconstrained pool order.
	Fallbacks int
}

// GenerateSchedule builds the day-by-day trial tables for a whole experiment.
// Learning days use the balanced exit-arm map and the roster's original
// order; every reversal day independently re-optimizes cage order and
// per-animal exit arms starting from the same base roster, never from the
// previous day's output.
func GenerateSchedule(animals []domain.Animal, cfg domain.ScheduleConfig) (ScheduleResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return ScheduleResult{}, err
	}
	if err := ValidateRoster(animals); err != nil {
		return ScheduleResult{}, err
	}

	rng := newRNG(cfg.Seed)
	learned := AssignExitArms(animals, rng)
	result := ScheduleResult{Days: make([]domain.DayTable, 0, cfg.TotalDays()), ExitArms: learned}

	header := tableHeader(cfg.TrialsPerDay)
	for d := 0; d < cfg.TotalDays(); d++ {
		learning := d < cfg.LearningDays

		var today []domain.Animal
		var exits map[string]domain.Arm
		if learning {
			today = animals
			exits = learned
		} else {
			var err error
			today, exits, _, err = PackCages(animals, learned)
			if err != nil {
				return ScheduleResult{}, err
			}
		}

		rows := make([]domain.Row, 0, len(today))
		for _, a := range today {
			exitToday, ok := exits[a.ID]
			if !ok {
				return ScheduleResult{}, fmt.Errorf("day %d: animal %s has no exit arm", d+1, a.ID)
			}
			starts := exitToday.Others()
			// Trial 1 avoids the other phase's fixed value: the day's own
			// exit arm while learning, the learning exit arm on reversal.
			avoidFirst := exitToday
			if !learning {
				avoidFirst = learned[a.ID]
			}
			seq, degraded := TrialSequence(cfg.TrialsPerDay, starts[0], starts[1], avoidFirst, rng)
			if degraded {
				result.Fallbacks++
			}
			rows = append(rows, domain.Row{Animal: a, ExitArm: exitToday, StartArms: seq, Fallback: degraded})
		}

		phase := domain.PhaseReversal
		if learning {
			phase = domain.PhaseLearning
		}
		result.Days = append(result.Days, domain.DayTable{Day: d + 1, Phase: phase, Header: header, Rows: rows})
	}
	return result, nil
}

// ValidateConfig rejects invalid schedule parameters before any computation.
func ValidateConfig(cfg domain.ScheduleConfig) error {
	if cfg.TrialsPerDay < 1 {
		return ConfigError{Field: "trials_per_day", Reason: "must be at least 1"}
	}
	if cfg.LearningDays < 0 {
		return ConfigError{Field: "learning_days", Reason: "must not be negative"}
	}
	if cfg.ReversalDays < 0 {
		return ConfigError{Field: "reversal_days", Reason: "must not be negative"}
	}
	return nil
}

// ValidateRoster rejects empty rosters, missing required fields, and
// duplicate animal IDs.
func ValidateRoster(animals []domain.Animal) error {
	if len(animals) == 0 {
		return RosterError{Reason: "no animals"}
	}
	seen := make(map[string]struct{}, len(animals))
	for _, a := range animals {
		if a.ID == "" {
			return RosterError{Reason: "animal with empty ID"}
		}
		if a.Genotype == "" {
			return RosterError{Reason: fmt.Sprintf("animal %s has no genotype", a.ID)}
		}
		if a.Cage == "" {
			return RosterError{Reason: fmt.Sprintf("animal %s has no cage", a.ID)}
		}
		if _, dup := seen[a.ID]; dup {
			return RosterError{Reason: fmt.Sprintf("duplicate animal ID %s", a.ID)}
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}

func tableHeader(trials int) []string {
	header := []string{"AnimalID", "Tag", "Sex", "Genotype", "Cage", "ExitArm"}
	for i := 1; i <= trials; i++ {
		header = append(header, fmt.Sprintf("T%d", i))
	}
	return header
}
