// Package scoreio implements the two score I/O operations of spec.md
// section 4.8: rendering a Scores block to a writer, and appending a
// discovered layout to an on-disk database keyed by its filename
// encoding. The database doubles as a popularity tally: each rediscovery
// of a layout appends one more '#' to its last line.
package scoreio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

// hashMarker is the single-byte popularity marker appended to a db
// entry's final line each time annealing rediscovers that layout.
const hashMarker = "#"

// WriteReport writes a layout's compact score block to w, optionally
// followed by the write_extra per-category n-gram dump (spec.md 4.8).
func WriteReport(w io.Writer, scores *kuehlmak.Scores, extra bool) error {
	if _, err := io.WriteString(w, scores.Write()); err != nil {
		return fmt.Errorf("writing score report: %w", err)
	}
	if extra {
		if _, err := io.WriteString(w, scores.WriteExtra()); err != nil {
			return fmt.Errorf("writing extra score report: %w", err)
		}
	}
	return nil
}

// AppendDB records a discovered layout in dir: the layout's Filename
// (spec.md section 6) names the file. If the file doesn't exist yet, it
// is created with the rendered layout, its scores, and a single '#'
// popularity marker as its final line, with no trailing newline. If it
// already exists, one more '#' byte is appended to that line. The count
// of '#' on the final line is the number of times annealing has
// rediscovered this layout.
//
// Two workers racing to create the same layout file must cause exactly
// one to win; the loser falls back to the append path (spec.md section
// 5, "Shared state"). This is implemented with O_EXCL: the loser's
// os.OpenFile call fails with os.ErrExist, and it retries as an append.
// The append itself relies on O_APPEND's atomicity for the single-byte
// write, matching spec.md section 5's "append-mode atomicity for
// subsequent single-character updates" rather than a read-modify-write
// that could race.
func AppendDB(dir string, layout *kuehlmak.Layout, scores *kuehlmak.Scores) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating db directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, layout.Filename())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err == nil {
		defer f.Close()
		bw := bufio.NewWriter(f)
		fmt.Fprintf(bw, "%s\n\n", layout.String())
		if err := WriteReport(bw, scores, false); err != nil {
			return err
		}
		bw.WriteString(hashMarker)
		return bw.Flush()
	}
	if !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("creating db entry %s: %w", path, err)
	}

	af, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("appending db entry %s: %w", path, err)
	}
	defer af.Close()
	if _, err := af.WriteString(hashMarker); err != nil {
		return fmt.Errorf("appending popularity marker to %s: %w", path, err)
	}
	return nil
}
