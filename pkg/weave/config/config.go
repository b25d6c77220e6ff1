// Package config loads and validates the YAML run configuration for a
// dataset build.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/densetext/wikiweave/pkg/weave"
	"github.com/densetext/wikiweave/pkg/weave/expand"
	"github.com/densetext/wikiweave/pkg/weave/internalerr"
	"github.com/densetext/wikiweave/pkg/weave/priority"
)

// Corpus source kinds accepted in the `corpus.source` field.
const (
	SourceSQLite  = "sqlite"
	SourceJSONDir = "jsondir"
)

// File is the raw YAML document. Optional integer limits are pointers so an
// omitted field is distinguishable from an explicit 0, which is a valid
// quota meaning "expand nothing".
type File struct {
	Corpus struct {
		Source string `yaml:"source"`
		Path   string `yaml:"path"`
	} `yaml:"corpus"`

	Expansion struct {
		TokenThreshold     int      `yaml:"token_threshold"`
		MinTokens          int      `yaml:"min_tokens"`
		MaxTokens          *int     `yaml:"max_tokens"`
		MaxLinkExpansions  *int     `yaml:"max_link_expansions"`
		MaxLinksPerArticle *int     `yaml:"max_links_per_article"`
		MaxDatasetLength   int      `yaml:"max_dataset_length"`
		IncludeStrategy    string   `yaml:"include_strategy"`
		PriorityStrategy   string   `yaml:"priority_strategy"`
		PenaltyMultiplier  *float64 `yaml:"penalty_multiplier"`
	} `yaml:"expansion"`

	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
}

// Load reads and parses a run configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	return &f, nil
}

// Resolve validates the document and maps it onto a build configuration.
// All validation happens here, before any corpus is opened.
func (f *File) Resolve() (weave.Config, error) {
	var cfg weave.Config

	switch f.Corpus.Source {
	case SourceSQLite, SourceJSONDir:
	case "":
		return cfg, fmt.Errorf("%w: corpus.source is required", internalerr.ErrInvalidConfig)
	default:
		return cfg, fmt.Errorf("%w: unknown corpus.source %q", internalerr.ErrInvalidConfig, f.Corpus.Source)
	}
	if f.Corpus.Path == "" {
		return cfg, fmt.Errorf("%w: corpus.path is required", internalerr.ErrInvalidConfig)
	}

	if f.Expansion.TokenThreshold < 0 {
		return cfg, fmt.Errorf("%w: token_threshold must not be negative", internalerr.ErrInvalidConfig)
	}
	if f.Expansion.MinTokens < 0 {
		return cfg, fmt.Errorf("%w: min_tokens must not be negative", internalerr.ErrInvalidConfig)
	}

	include := expand.Prepend
	if f.Expansion.IncludeStrategy != "" {
		var err error
		include, err = expand.ParseInclude(f.Expansion.IncludeStrategy)
		if err != nil {
			return cfg, err
		}
	}

	strategy := priority.Staged
	if f.Expansion.PriorityStrategy != "" {
		var err error
		strategy, err = priority.ParseStrategy(f.Expansion.PriorityStrategy)
		if err != nil {
			return cfg, err
		}
	}

	penalty := 0.0
	if f.Expansion.PenaltyMultiplier != nil {
		penalty = *f.Expansion.PenaltyMultiplier
		if penalty < 0 {
			return cfg, fmt.Errorf("%w: penalty_multiplier must not be negative", internalerr.ErrInvalidConfig)
		}
	}

	cfg = weave.Config{
		TokenThreshold:     f.Expansion.TokenThreshold,
		MinTokens:          f.Expansion.MinTokens,
		MaxTokens:          orUnlimited(f.Expansion.MaxTokens),
		MaxDatasetLength:   f.Expansion.MaxDatasetLength,
		MaxLinkExpansions:  orUnlimited(f.Expansion.MaxLinkExpansions),
		MaxLinksPerArticle: orUnlimited(f.Expansion.MaxLinksPerArticle),
		Include:            include,
		Priority:           strategy,
		PenaltyMultiplier:  penalty,
	}

	if cfg.MaxTokens != expand.Unlimited && cfg.MaxTokens < cfg.MinTokens {
		return cfg, fmt.Errorf("%w: max_tokens %d is below min_tokens %d", internalerr.ErrInvalidConfig, cfg.MaxTokens, cfg.MinTokens)
	}

	return cfg, nil
}

func orUnlimited(v *int) int {
	if v == nil {
		return expand.Unlimited
	}
	if *v < 0 {
		return expand.Unlimited
	}
	return *v
}
