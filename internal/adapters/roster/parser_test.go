package roster

import "testing"

func TestParseAnchorsOnSexToken(t *testing.T) {
	text := "AnimalID\tTag\tSex\tGenotype\tCage\n" +
		"M-001 ear-L Male IL-17 KO 12\n" +
		"M-002 ear-R Female C57Bl/6J 12\n"

	animals := Parse(text)
	if len(animals) != 2 {
		t.Fatalf("expected 2 animals, got %d: %+v", len(animals), animals)
	}
	first := animals[0]
	if first.ID != "M-001" || first.Tag != "ear-L" || first.Sex != "Male" || first.Genotype != "IL-17 KO" || first.Cage != "12" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if animals[1].Genotype != "C57Bl/6J" {
		t.Fatalf("multi-token genotype mangled: %+v", animals[1])
	}
}

func TestParseMultiTokenTag(t *testing.T) {
	animals := Parse("M-003 left ear notch Male WT 7\n")
	if len(animals) != 1 {
		t.Fatalf("expected 1 animal, got %d", len(animals))
	}
	if animals[0].Tag != "left ear notch" {
		t.Fatalf("expected joined tag, got %q", animals[0].Tag)
	}
}

func TestParseNormalizesHyphens(t *testing.T) {
	// En dash and non-breaking hyphen fold to ASCII hyphen-minus.
	animals := Parse("M–004 tag‑a Female WT 3\n")
	if len(animals) != 1 {
		t.Fatalf("expected 1 animal, got %d", len(animals))
	}
	if animals[0].ID != "M-004" || animals[0].Tag != "tag-a" {
		t.Fatalf("hyphens not normalized: %+v", animals[0])
	}
}

func TestParseSkipsMalformedRows(t *testing.T) {
	text := "header AnimalID something Sex something\n" +
		"\n" +
		"too short row\n" +
		"Male leading sex token 5\n" + // sex token at index 0
		"M-005 tag Female 9\n" + // no genotype between sex and cage
		"M-006 tag Male WT 9\n"

	animals := Parse(text)
	if len(animals) != 1 {
		t.Fatalf("expected only the well-formed row, got %d: %+v", len(animals), animals)
	}
	if animals[0].ID != "M-006" {
		t.Fatalf("unexpected surviving row: %+v", animals[0])
	}
}
