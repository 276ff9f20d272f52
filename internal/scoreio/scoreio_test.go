package scoreio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

const qwertyText = `q w e r t y u i o p
a s d f g h j k l ;
z x c v b n m , . /`

func qwerty(t *testing.T) *kuehlmak.Layout {
	t.Helper()
	lay, err := kuehlmak.ParseLayout(qwertyText)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	return lay
}

func TestWriteReportIncludesExtraOnlyWhenRequested(t *testing.T) {
	lay := qwerty(t)
	scores := kuehlmak.NewScores(lay)
	scores.Verbose = map[string][]kuehlmak.NgramCount{
		"SFB": {{Ngram: "th", Count: 10}},
	}

	var plain bytes.Buffer
	if err := WriteReport(&plain, scores, false); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if strings.Contains(plain.String(), "th") {
		t.Fatal("WriteReport without extra unexpectedly included verbose n-gram data")
	}

	var full bytes.Buffer
	if err := WriteReport(&full, scores, true); err != nil {
		t.Fatalf("WriteReport(extra): %v", err)
	}
	if !strings.Contains(full.String(), "th") {
		t.Fatal("WriteReport with extra did not include verbose n-gram data")
	}
}

func TestAppendDBCreatesThenAccumulatesMarker(t *testing.T) {
	dir := t.TempDir()
	lay := qwerty(t)
	scores := kuehlmak.NewScores(lay)

	if err := AppendDB(dir, lay, scores); err != nil {
		t.Fatalf("AppendDB (create): %v", err)
	}
	path := filepath.Join(dir, lay.Filename())
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading db entry: %v", err)
	}
	if strings.Count(string(data), "#") != 1 {
		t.Fatalf("after creation, want exactly one '#', got %q", data)
	}

	for i := 0; i < 3; i++ {
		if err := AppendDB(dir, lay, scores); err != nil {
			t.Fatalf("AppendDB (append #%d): %v", i, err)
		}
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading db entry after appends: %v", err)
	}
	if got, want := strings.Count(string(data), "#"), 4; got != want {
		t.Fatalf("marker count after 3 rediscoveries = %d, want %d", got, want)
	}
}

func TestAppendDBNamesFileByLayoutFilename(t *testing.T) {
	dir := t.TempDir()
	lay := qwerty(t)
	scores := kuehlmak.NewScores(lay)
	if err := AppendDB(dir, lay, scores); err != nil {
		t.Fatalf("AppendDB: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, lay.Filename())); err != nil {
		t.Fatalf("expected db entry named after layout.Filename(): %v", err)
	}
}
