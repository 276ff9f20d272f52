package main

import (
	"fmt"
	"os"
	"unicode"

	"github.com/urfave/cli/v2"

	"github.com/kuehlmak/kuehlmak/internal/config"
	"github.com/kuehlmak/kuehlmak/internal/corpus"
	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

// loadLayoutFromFlags reads and parses a layout file named by --layout.
func loadLayoutFromFlags(c *cli.Context) (*kuehlmak.Layout, error) {
	path := c.String("layout")
	if path == "" {
		return nil, fmt.Errorf("--layout is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout %s: %w", path, err)
	}
	return kuehlmak.ParseLayout(string(data))
}

// loadCorpusFromFlags loads and finalizes a Corpus named by --corpus.
func loadCorpusFromFlags(c *cli.Context) (*corpus.Corpus, error) {
	path := c.String("corpus")
	if path == "" {
		return nil, fmt.Errorf("--corpus is required")
	}
	name := path
	return corpus.NewFromFile(name, path)
}

// buildModelFromFlags resolves a Model from either --config (TOML run
// config) or the bare --board flag with default params, then applies
// --pins/--pins-file/--free on top. stats is only needed when the config
// enables robust normalisation, to evaluate the reference layouts that set
// each component's median/IQR.
func buildModelFromFlags(c *cli.Context, initial *kuehlmak.Layout, stats kuehlmak.TextStats) (*kuehlmak.Model, error) {
	var params kuehlmak.Params
	if cfgPath := c.String("config"); cfgPath != "" {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		params, err = cfg.BuildParams(initial)
		if err != nil {
			return nil, err
		}

		if params.Normalize {
			refLayouts, err := cfg.LoadReferenceLayouts()
			if err != nil {
				return nil, err
			}
			refModel, err := kuehlmak.NewModel(params)
			if err != nil {
				return nil, err
			}
			refStats, err := kuehlmak.ComputeReferenceStats(refModel, refLayouts, stats)
			if err != nil {
				return nil, fmt.Errorf("computing reference stats: %w", err)
			}
			params.ReferenceStats = refStats
		}
	} else {
		boardType, err := kuehlmak.ParseKeyboardType(c.String("board"))
		if err != nil {
			return nil, err
		}
		params = kuehlmak.NewDefaultParams(boardType)
	}

	pinned, err := resolvePinnedKeys(c, initial)
	if err != nil {
		return nil, err
	}
	params.PinnedKeys = pinned

	return kuehlmak.NewModel(params)
}

// resolvePinnedKeys implements --pins/--pins-file/--free (spec.md 4.6,
// "Pin/free key selection"), grounded on the teacher's
// SplitLayout.LoadPinsFromParams (internal/keycraft/optimisation.go):
// --pins/--pins-file name the glyphs that must stay put; --free names the
// glyphs allowed to move, pinning every other key. Returns nil (nothing
// pinned) when none of the three flags are set.
func resolvePinnedKeys(c *cli.Context, initial *kuehlmak.Layout) (map[uint8]bool, error) {
	pins := c.String("pins")
	free := c.String("free")

	if pinsFile := c.String("pins-file"); pinsFile != "" {
		if pins != "" {
			return nil, fmt.Errorf("--pins and --pins-file are mutually exclusive")
		}
		data, err := os.ReadFile(pinsFile)
		if err != nil {
			return nil, fmt.Errorf("reading pins file %s: %w", pinsFile, err)
		}
		pins = string(data)
	}

	if pins == "" && free == "" {
		return nil, nil
	}
	if pins != "" && free != "" {
		return nil, fmt.Errorf("--pins/--pins-file and --free are mutually exclusive")
	}
	if initial == nil {
		return nil, fmt.Errorf("--pins/--pins-file/--free require an initial layout")
	}

	if pins != "" {
		return pinnedFromGlyphs(initial, pins)
	}
	return pinnedFromFreeGlyphs(initial, free)
}

// pinnedFromGlyphs resolves each glyph in glyphs to its key index in
// initial, pinning that index.
func pinnedFromGlyphs(initial *kuehlmak.Layout, glyphs string) (map[uint8]bool, error) {
	pinned := make(map[uint8]bool)
	for _, r := range glyphs {
		if unicode.IsSpace(r) {
			continue
		}
		idx, ok := initial.IndexOf(r)
		if !ok {
			return nil, fmt.Errorf("pinned glyph %q is not in the initial layout", r)
		}
		pinned[idx] = true
	}
	return pinned, nil
}

// pinnedFromFreeGlyphs pins every key except those holding a glyph named in
// glyphs.
func pinnedFromFreeGlyphs(initial *kuehlmak.Layout, glyphs string) (map[uint8]bool, error) {
	free := make(map[uint8]bool)
	for _, r := range glyphs {
		if unicode.IsSpace(r) {
			continue
		}
		idx, ok := initial.IndexOf(r)
		if !ok {
			return nil, fmt.Errorf("free glyph %q is not in the initial layout", r)
		}
		free[idx] = true
	}

	pinned := make(map[uint8]bool, kuehlmak.NumKeys)
	for i := uint8(0); i < kuehlmak.NumKeys; i++ {
		if i == kuehlmak.ThumbIndex {
			continue
		}
		if !free[i] {
			pinned[i] = true
		}
	}
	return pinned, nil
}
