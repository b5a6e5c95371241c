// Package roster parses free-form pasted animal rosters into validated
// domain records. The engine itself never sees raw text; this adapter owns
// all normalization and row rejection.
package roster

import (
	"strings"

	"mazecore/pkg/domain"
)

// hyphenReplacer folds the Unicode hyphen variants that spreadsheets paste
// into ASCII hyphen-minus.
var hyphenReplacer = strings.NewReplacer(
	"‑", "-", // non-breaking hyphen
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-", // minus
)

func normalize(s string) string {
	return strings.TrimSpace(hyphenReplacer.Replace(s))
}

// sexTokens anchor column detection: the free-form layout is
// AnimalID | Tag... | Sex | Genotype... | Cage(last), where Tag and Genotype
// may span several whitespace-separated tokens.
var sexTokens = map[string]bool{"Male": true, "Female": true}

// Parse extracts animal records from pasted text. Header lines and rows that
// cannot be anchored on a Sex token, or that end up without a genotype or
// cage, are skipped rather than guessed at.
func Parse(text string) []domain.Animal {
	var animals []domain.Animal
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.Contains(line, "AnimalID") && strings.Contains(line, "Sex") {
			continue
		}

		tokens := strings.Fields(line)
		if len(tokens) < 4 {
			continue
		}
		sexIdx := -1
		for i, tok := range tokens {
			if sexTokens[tok] {
				sexIdx = i
				break
			}
		}
		if sexIdx < 1 || len(tokens) < sexIdx+2 {
			continue
		}

		a := domain.Animal{
			ID:       normalize(tokens[0]),
			Tag:      normalize(strings.Join(tokens[1:sexIdx], " ")),
			Sex:      normalize(tokens[sexIdx]),
			Genotype: normalize(strings.Join(tokens[sexIdx+1:len(tokens)-1], " ")),
			Cage:     normalize(tokens[len(tokens)-1]),
		}
		if a.Genotype == "" || a.Cage == "" {
			continue
		}
		animals = append(animals, a)
	}
	return animals
}
