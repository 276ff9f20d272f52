package scoreio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

// DBEntry is one layout discovered in a ranked-layout database directory,
// paired with the popularity recorded in its trailing '#' marker line
// (AppendDB). Path is the file name joined onto the directory ScanDB was
// given.
type DBEntry struct {
	Path       string
	Layout     *kuehlmak.Layout
	Popularity int
}

// ScanDB reads every ".kbl" file in dir, parsing its layout from the first
// three non-empty lines (AppendDB's score report follows them) and the
// popularity recorded on its last line (a run of '#' characters and
// nothing else). Files whose last line isn't purely '#' -- no popularity
// marker yet, e.g. a layout dropped into the directory by hand -- are
// reported back as ignored rather than ranked, matching the original
// kuehlmak CLI's layouts_from_paths/layout_from_file (original_source/
// src/main.rs).
func ScanDB(dir string) (entries []DBEntry, ignored []string, err error) {
	infos, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading db directory %s: %w", dir, err)
	}

	for _, info := range infos {
		if info.IsDir() || filepath.Ext(info.Name()) != ".kbl" {
			continue
		}
		path := filepath.Join(dir, info.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("reading db entry %s: %w", path, err)
		}

		popularity := popularityOf(string(data))
		if popularity == 0 {
			ignored = append(ignored, path)
			continue
		}
		var rows []string
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				rows = append(rows, line)
			}
			if len(rows) == 3 {
				break
			}
		}
		layout, err := kuehlmak.ParseLayout(strings.Join(rows, "\n"))
		if err != nil {
			return nil, nil, fmt.Errorf("parsing db entry %s: %w", path, err)
		}
		entries = append(entries, DBEntry{Path: path, Layout: layout, Popularity: popularity})
	}
	return entries, ignored, nil
}

// popularityOf returns the number of '#' characters on text's last
// non-empty line, or 0 if that line contains any other character.
func popularityOf(text string) int {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) == 0 {
		return 0
	}
	last := lines[len(lines)-1]
	if last == "" {
		return 0
	}
	for _, r := range last {
		if r != '#' {
			return 0
		}
	}
	return len([]rune(last))
}
