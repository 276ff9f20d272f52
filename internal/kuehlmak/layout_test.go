package kuehlmak

import "testing"

const qwertyText = `q w e r t y u i o p
a s d f g h j k l ;
z x c v b n m , . /`

func TestParseLayoutRoundTrip(t *testing.T) {
	lay, err := ParseLayout(qwertyText)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	again, err := ParseLayout(lay.String())
	if err != nil {
		t.Fatalf("ParseLayout(String()): %v", err)
	}
	if lay.Primary != again.Primary || lay.Secondary != again.Secondary {
		t.Fatalf("round-trip mismatch: %v != %v", lay, again)
	}
}

func TestParseLayoutWrongShape(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"too few rows", "q w e r t y u i o p\na s d f g h j k l ;"},
		{"too few keys", "q w e r t y u i o\na s d f g h j k l ;\nz x c v b n m , . /"},
		{"duplicate glyph", "q w e r t y u i o p\na s d f g h j k l q\nz x c v b n m , . /"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLayout(tt.text); err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
		})
	}
}

func TestFilenameSubstitution(t *testing.T) {
	text := `q w e r t y u i o p
a s d f g h j k l ;
z x c v b n m , . /`
	lay, err := ParseLayout(text)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	name := lay.Filename()
	for _, r := range name[:len(name)-len(".kbl")] {
		switch r {
		case '/', '?', '<', '>', ':', ';', '\\', '|', '.', ',', '\'', '"':
			t.Fatalf("filename %q still contains unsafe rune %q", name, r)
		}
	}
	if name[len(name)-4:] != ".kbl" {
		t.Fatalf("filename %q missing .kbl extension", name)
	}
}

func TestSwapIsPermutation(t *testing.T) {
	lay, err := ParseLayout(qwertyText)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	before := lay.PrimaryGlyphs()
	lay.Swap(0, 5)
	lay.Swap(3, 20)
	after := lay.PrimaryGlyphs()

	beforeSet := make(map[rune]int)
	afterSet := make(map[rune]int)
	for _, r := range before {
		beforeSet[r]++
	}
	for _, r := range after {
		afterSet[r]++
	}
	if len(beforeSet) != len(afterSet) {
		t.Fatalf("swap changed the glyph set: %v vs %v", beforeSet, afterSet)
	}
	for r, n := range beforeSet {
		if afterSet[r] != n {
			t.Fatalf("swap is not a permutation: glyph %q count %d before, %d after", r, n, afterSet[r])
		}
	}
}

func TestSwapSelfNoOp(t *testing.T) {
	lay, err := ParseLayout(qwertyText)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	before := *lay
	lay.Swap(4, 4)
	if *lay != before {
		t.Fatalf("self-swap mutated the layout")
	}
}
