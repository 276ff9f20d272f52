// Package config loads the TOML run configuration that binds a corpus
// path, an optional initial layout, weights, targets, and constraints
// into a kuehlmak.Params plus the paths the CLI needs to build a Model
// and TextStats (spec.md section 6, "Config").
//
// Grounded on writerslogic-witnessd's internal/config (TOML struct tags,
// defaults-then-decode loading shape) from the example pack, since the
// teacher itself configures everything through flat key=value text files
// and flags rather than a single structured document.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

// WeightEntry is one named score component's weight/target pair, as
// written in TOML: `[weights.effort]\nweight = 1.0`.
type WeightEntry struct {
	Weight    float64 `toml:"weight"`
	Target    float64 `toml:"target"`
	HasTarget bool    `toml:"has_target"`
}

// ConstraintsEntry mirrors kuehlmak.ConstraintConfig in TOML-friendly
// form: rune sets as strings, forced keys as a string-keyed map.
type ConstraintsEntry struct {
	ReferenceLayoutFile string  `toml:"reference_layout_file"`
	Threshold           float64 `toml:"threshold"`
	RefWeight           float64 `toml:"ref_weight"`

	TopKeys    string  `toml:"top_keys"`
	MidKeys    string  `toml:"mid_keys"`
	BotKeys    string  `toml:"bot_keys"`
	RowWeight  float64 `toml:"row_weight"`

	HomingKeys   string  `toml:"homing_keys"`
	HomingWeight float64 `toml:"homing_weight"`

	ZXCV           bool    `toml:"zxcv"`
	ZXCVWeight     float64 `toml:"zxcv_weight"`
	NonAlpha       bool    `toml:"non_alpha"`
	NonAlphaWeight float64 `toml:"non_alpha_weight"`

	// ForcedKeys maps a glyph (as a single-rune string) to its required
	// key index.
	ForcedKeys map[string]uint8 `toml:"forced_keys"`
}

// Config is the decoded shape of a run-config TOML document.
type Config struct {
	CorpusPath string `toml:"corpus_path"`

	// InitialLayoutFile and InitialLayoutText are mutually exclusive ways
	// to supply the starting layout; InitialLayoutText wins if both are
	// set.
	InitialLayoutFile string `toml:"initial_layout_file"`
	InitialLayoutText string `toml:"initial_layout_text"`

	BoardType      string `toml:"board_type"`
	SpaceThumbHand string `toml:"space_thumb_hand"`
	Factor         float64 `toml:"factor"`

	// Normalize turns on robust score normalisation (spec.md's supplemented
	// "robust score normalisation" feature); ReferenceLayoutFiles names the
	// layouts whose component scores set the median/IQR used to rescale
	// every component before hinge/target weighting.
	Normalize            bool     `toml:"normalize"`
	ReferenceLayoutFiles []string `toml:"reference_layout_files"`

	Weights     map[string]WeightEntry `toml:"weights"`
	Constraints ConstraintsEntry       `toml:"constraints"`
}

// Load reads and decodes a TOML run configuration from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolveInitialLayout returns the configured initial layout, preferring
// inline text over a file path. Returns nil, nil if neither is set.
func (c *Config) ResolveInitialLayout() (*kuehlmak.Layout, error) {
	switch {
	case c.InitialLayoutText != "":
		lay, err := kuehlmak.ParseLayout(c.InitialLayoutText)
		if err != nil {
			return nil, fmt.Errorf("parsing initial_layout_text: %w", err)
		}
		return lay, nil
	case c.InitialLayoutFile != "":
		data, err := os.ReadFile(c.InitialLayoutFile)
		if err != nil {
			return nil, fmt.Errorf("reading initial_layout_file %s: %w", c.InitialLayoutFile, err)
		}
		lay, err := kuehlmak.ParseLayout(string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing initial_layout_file %s: %w", c.InitialLayoutFile, err)
		}
		return lay, nil
	default:
		return nil, nil
	}
}

// BuildParams resolves a Config into a kuehlmak.Params, applying
// defaults for anything left unconfigured. initial is the layout
// returned by ResolveInitialLayout; it may be nil only when the config
// has no forced keys (spec.md section 6, "absence of an initial layout
// with forced keys is an error"). Each forced key's position is the index
// given in the config's forced_keys map; it is not looked up in initial.
func (c *Config) BuildParams(initial *kuehlmak.Layout) (kuehlmak.Params, error) {
	boardType := kuehlmak.Ortho
	if c.BoardType != "" {
		bt, err := kuehlmak.ParseKeyboardType(c.BoardType)
		if err != nil {
			return kuehlmak.Params{}, err
		}
		boardType = bt
	}

	params := kuehlmak.NewDefaultParams(boardType)

	switch c.SpaceThumbHand {
	case "left":
		params.SpaceThumbHand = kuehlmak.Left
	case "right":
		params.SpaceThumbHand = kuehlmak.Right
	case "", "any":
		params.SpaceThumbHand = kuehlmak.AnyHand
	default:
		return kuehlmak.Params{}, fmt.Errorf("invalid space_thumb_hand %q", c.SpaceThumbHand)
	}

	if c.Factor > 0 {
		params.Factor = c.Factor
	}

	for name, w := range c.Weights {
		params.Weights[name] = kuehlmak.Weights{Weight: w.Weight, Target: w.Target, HasTarget: w.HasTarget}
	}

	constraints, err := c.buildConstraints(initial)
	if err != nil {
		return kuehlmak.Params{}, err
	}
	params.Constraints = constraints
	params.Normalize = c.Normalize

	return params, nil
}

// LoadReferenceLayouts reads and parses every file in ReferenceLayoutFiles,
// in order, for use with kuehlmak.ComputeReferenceStats.
func (c *Config) LoadReferenceLayouts() ([]*kuehlmak.Layout, error) {
	layouts := make([]*kuehlmak.Layout, 0, len(c.ReferenceLayoutFiles))
	for _, path := range c.ReferenceLayoutFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading reference layout %s: %w", path, err)
		}
		lay, err := kuehlmak.ParseLayout(string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing reference layout %s: %w", path, err)
		}
		layouts = append(layouts, lay)
	}
	return layouts, nil
}

func (c *Config) buildConstraints(initial *kuehlmak.Layout) (kuehlmak.ConstraintConfig, error) {
	ce := c.Constraints
	var out kuehlmak.ConstraintConfig

	if ce.ReferenceLayoutFile != "" {
		data, err := os.ReadFile(ce.ReferenceLayoutFile)
		if err != nil {
			return out, fmt.Errorf("reading reference_layout_file %s: %w", ce.ReferenceLayoutFile, err)
		}
		ref, err := kuehlmak.ParseLayout(string(data))
		if err != nil {
			return out, fmt.Errorf("parsing reference_layout_file %s: %w", ce.ReferenceLayoutFile, err)
		}
		out.ReferenceLayout = ref
		out.Threshold = ce.Threshold
		out.RefWeight = ce.RefWeight
	}

	out.TopKeys = runeSet(ce.TopKeys)
	out.MidKeys = runeSet(ce.MidKeys)
	out.BotKeys = runeSet(ce.BotKeys)
	out.RowWeight = ce.RowWeight

	out.HomingKeys = []rune(ce.HomingKeys)
	out.HomingWeight = ce.HomingWeight

	out.ZXCV = ce.ZXCV
	out.ZXCVWeight = ce.ZXCVWeight
	out.NonAlpha = ce.NonAlpha
	out.NonAlphaWeight = ce.NonAlphaWeight

	if len(ce.ForcedKeys) > 0 {
		if initial == nil {
			return out, fmt.Errorf("forced_keys configured without an initial layout")
		}
		out.ForcedKeys = make(map[rune]uint8, len(ce.ForcedKeys))
		for glyph, idx := range ce.ForcedKeys {
			rs := []rune(glyph)
			if len(rs) != 1 {
				return out, fmt.Errorf("forced_keys entry %q must be a single glyph", glyph)
			}
			out.ForcedKeys[rs[0]] = idx
		}
	}

	return out, nil
}

func runeSet(s string) map[rune]bool {
	if s == "" {
		return nil
	}
	out := make(map[rune]bool, len(s))
	for _, r := range s {
		out[r] = true
	}
	return out
}
