package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

const qwertyText = `q w e r t y u i o p
a s d f g h j k l ;
z x c v b n m , . /`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestLoadAndBuildParams(t *testing.T) {
	doc := `
corpus_path = "corpus.json"
board_type = "ortho"
space_thumb_hand = "left"
factor = 2.0

[weights.effort]
weight = 1.0
target = 0.5
has_target = true

[constraints]
top_keys = "qwe"
row_weight = 1.5
zxcv = true
zxcv_weight = 3.0
`
	path := writeTemp(t, "run.toml", doc)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CorpusPath != "corpus.json" {
		t.Errorf("CorpusPath = %q, want corpus.json", cfg.CorpusPath)
	}
	if cfg.Weights["effort"].Weight != 1.0 || !cfg.Weights["effort"].HasTarget {
		t.Errorf("weights.effort = %+v, want weight=1.0 has_target=true", cfg.Weights["effort"])
	}

	params, err := cfg.BuildParams(nil)
	if err != nil {
		t.Fatalf("BuildParams: %v", err)
	}
	if params.SpaceThumbHand != kuehlmak.Left {
		t.Errorf("SpaceThumbHand = %v, want Left", params.SpaceThumbHand)
	}
	if params.Factor != 2.0 {
		t.Errorf("Factor = %v, want 2.0", params.Factor)
	}
	if !params.Constraints.ZXCV || params.Constraints.ZXCVWeight != 3.0 {
		t.Errorf("constraints zxcv not carried through: %+v", params.Constraints)
	}
	if !params.Constraints.TopKeys['q'] {
		t.Errorf("top_keys %q not parsed into TopKeys set", cfg.Constraints.TopKeys)
	}
}

func TestForcedKeysWithoutInitialLayoutIsError(t *testing.T) {
	doc := `
corpus_path = "corpus.json"

[constraints.forced_keys]
q = 0
`
	path := writeTemp(t, "run.toml", doc)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := cfg.BuildParams(nil); err == nil {
		t.Fatal("expected error for forced_keys without an initial layout")
	}
}

func TestForcedKeysWithInitialLayoutSucceeds(t *testing.T) {
	doc := `
corpus_path = "corpus.json"
initial_layout_text = "` + qwertyInline() + `"

[constraints.forced_keys]
q = 5
`
	path := writeTemp(t, "run.toml", doc)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	initial, err := cfg.ResolveInitialLayout()
	if err != nil {
		t.Fatalf("ResolveInitialLayout: %v", err)
	}
	if initial == nil {
		t.Fatal("expected a resolved initial layout")
	}
	params, err := cfg.BuildParams(initial)
	if err != nil {
		t.Fatalf("BuildParams: %v", err)
	}
	if params.Constraints.ForcedKeys['q'] != 5 {
		t.Errorf("ForcedKeys['q'] = %d, want 5", params.Constraints.ForcedKeys['q'])
	}
}

func TestInitialLayoutTextWinsOverFile(t *testing.T) {
	fileText := `w q e r t y u i o p
a s d f g h j k l ;
z x c v b n m , . /`
	filePath := writeTemp(t, "other.kbl", fileText)
	cfg := &Config{
		InitialLayoutFile: filePath,
		InitialLayoutText: qwertyText,
	}
	lay, err := cfg.ResolveInitialLayout()
	if err != nil {
		t.Fatalf("ResolveInitialLayout: %v", err)
	}
	if lay == nil {
		t.Fatal("expected a resolved layout")
	}
	if lay.Primary[0] != 'q' {
		t.Errorf("Primary[0] = %q, want 'q' from the inline text, not the file's 'w'", lay.Primary[0])
	}
}

func TestLoadReferenceLayoutsReadsEachFileInOrder(t *testing.T) {
	first := writeTemp(t, "first.kbl", qwertyText)
	second := writeTemp(t, "second.kbl", qwertyText)

	cfg := &Config{ReferenceLayoutFiles: []string{first, second}}
	layouts, err := cfg.LoadReferenceLayouts()
	if err != nil {
		t.Fatalf("LoadReferenceLayouts: %v", err)
	}
	if len(layouts) != 2 {
		t.Fatalf("len(layouts) = %d, want 2", len(layouts))
	}
}

func TestBuildParamsCarriesNormalizeFlag(t *testing.T) {
	doc := `
corpus_path = "corpus.json"
normalize = true
`
	path := writeTemp(t, "run.toml", doc)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	params, err := cfg.BuildParams(nil)
	if err != nil {
		t.Fatalf("BuildParams: %v", err)
	}
	if !params.Normalize {
		t.Error("expected params.Normalize to be true")
	}
}

func TestInvalidSpaceThumbHandIsError(t *testing.T) {
	cfg := &Config{SpaceThumbHand: "sideways"}
	if _, err := cfg.BuildParams(nil); err == nil {
		t.Fatal("expected error for invalid space_thumb_hand")
	}
}

// qwertyInline returns qwertyText with newlines escaped for embedding as a
// TOML basic string.
func qwertyInline() string {
	out := ""
	for _, r := range qwertyText {
		if r == '\n' {
			out += `\n`
			continue
		}
		out += string(r)
	}
	return out
}
