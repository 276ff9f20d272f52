package kuehlmak

import (
	"bufio"
	"fmt"
	"strings"
	"unicode"
)

// Layout is a fixed collection of 30 keys in row-major order (3 rows x 10
// columns), each carrying a primary (unshifted) and secondary (shifted)
// glyph, plus the thumb/space key at index ThumbIndex. No glyph appears on
// two different keys, and a key's two glyphs differ except on a 1-glyph
// non-letter key, which holds the same glyph in both slots (spec.md
// section 3, Layout).
//
// Row-major ordering over [0,30) is canonical; index ThumbIndex is reserved
// for the space glyph and never participates in glyph-uniqueness or
// case-pairing checks beyond holding ' ' in both slots.
type Layout struct {
	Primary   [NumKeys]rune
	Secondary [NumKeys]rune
}

// substitutionMap replaces filesystem-unsafe punctuation in a layout's
// filename encoding (spec.md section 6, "Layout filename encoding").
var substitutionMap = map[rune]rune{
	'/': 'Z', '?': 'S', '<': 'L', '>': 'G', ':': 'I', ';': 'J',
	'\\': 'X', '|': 'T', '.': 'O', ',': 'Q', '\'': 'V', '"': 'W',
}

// ParseLayout parses the three-row, ten-keys-per-row text format described
// in spec.md section 6: each key is 1 or 2 whitespace-separated glyphs
// (unshifted then shifted); a 1-glyph alphabetic key auto-generates its
// uppercase secondary, and a 1-glyph non-letter key uses the same glyph as
// its secondary. The thumb/space key is not part of the text format
// and is always set to ' '/' ' by the caller.
//
// Grounded on the teacher's NewLayoutFromFile (internal/keycraft/layout.go),
// narrowed from the split 3x12+6 board to this spec's fixed 3x10 block and
// restated in terms of two glyphs per key instead of a single shiftless rune.
func ParseLayout(text string) (*Layout, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading layout text: %w", err)
	}
	if len(lines) != 3 {
		return nil, fmt.Errorf("layout text must have exactly 3 non-empty rows, got %d", len(lines))
	}

	lay := &Layout{}
	lay.Primary[ThumbIndex] = ' '
	lay.Secondary[ThumbIndex] = ' '

	seen := make(map[rune]string, 60)
	mark := func(r rune, where string) error {
		if prev, ok := seen[r]; ok {
			return fmt.Errorf("duplicate glyph %q: first seen at %s, again at %s", r, prev, where)
		}
		seen[r] = where
		return nil
	}

	for row, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 10 {
			return nil, fmt.Errorf("row %d has %d keys, expected 10: %q", row+1, len(fields), line)
		}
		for col, field := range fields {
			idx := row*10 + col
			glyphs := []rune(field)
			where := fmt.Sprintf("row %d key %d", row+1, col+1)

			var primary, secondary rune
			switch len(glyphs) {
			case 1:
				primary = glyphs[0]
				if unicode.IsLetter(primary) {
					upper := unicode.ToUpper(primary)
					if upper == primary {
						return nil, fmt.Errorf("%s: glyph %q has no distinct uppercase form, specify secondary explicitly", where, primary)
					}
					secondary = upper
				} else {
					secondary = primary
				}
			case 2:
				primary, secondary = glyphs[0], glyphs[1]
			default:
				return nil, fmt.Errorf("%s: key %q must be 1 or 2 glyphs", where, field)
			}

			if err := mark(primary, where+" (primary)"); err != nil {
				return nil, err
			}
			if len(glyphs) == 2 || secondary != primary {
				if err := mark(secondary, where+" (secondary)"); err != nil {
					return nil, err
				}
			}

			lay.Primary[idx] = primary
			lay.Secondary[idx] = secondary
		}
	}

	return lay, nil
}

// String renders the layout back to the three-row text format (spec.md
// section 6), omitting the thumb key which isn't part of the text form.
func (l *Layout) String() string {
	var sb strings.Builder
	for row := range 3 {
		if row > 0 {
			sb.WriteRune('\n')
		}
		for col := range 10 {
			if col > 0 {
				sb.WriteRune(' ')
			}
			idx := row*10 + col
			p, s := l.Primary[idx], l.Secondary[idx]
			if s == p || (unicode.IsLetter(p) && unicode.ToUpper(p) == s) {
				sb.WriteRune(p)
			} else {
				sb.WriteRune(p)
				sb.WriteRune(s)
			}
		}
	}
	return sb.String()
}

// Filename returns the filesystem-safe filename for this layout (spec.md
// section 6, "Layout filename encoding"): the 30 primary glyphs in
// row-major order, '_' between rows, unsafe punctuation substituted, with
// a ".kbl" extension.
func (l *Layout) Filename() string {
	var sb strings.Builder
	for row := range 3 {
		if row > 0 {
			sb.WriteRune('_')
		}
		for col := range 10 {
			idx := row*10 + col
			r := l.Primary[idx]
			if sub, ok := substitutionMap[r]; ok {
				r = sub
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteString(".kbl")
	return sb.String()
}

// Clone returns an independent copy of the layout.
func (l *Layout) Clone() *Layout {
	out := *l
	return &out
}

// Swap exchanges the glyphs (primary and secondary together) at two key
// indices. Swapping a key with itself is a no-op.
func (l *Layout) Swap(i, j uint8) {
	if i == j {
		return
	}
	l.Primary[i], l.Primary[j] = l.Primary[j], l.Primary[i]
	l.Secondary[i], l.Secondary[j] = l.Secondary[j], l.Secondary[i]
}

// PrimaryGlyphs returns the 30 primary (non-thumb) glyphs in row-major
// order, used by layout_distance and the neighbor-permutation invariant.
func (l *Layout) PrimaryGlyphs() [NumKeys - 1]rune {
	var out [NumKeys - 1]rune
	copy(out[:], l.Primary[:NumKeys-1])
	return out
}

// IndexOf returns the key index holding a glyph as either its primary or
// secondary, and whether it was found.
func (l *Layout) IndexOf(r rune) (idx uint8, ok bool) {
	for i := uint8(0); i < NumKeys; i++ {
		if l.Primary[i] == r || l.Secondary[i] == r {
			return i, true
		}
	}
	return 0, false
}
