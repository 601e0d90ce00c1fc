package policy

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/threadforge/internal/dedup"
	"github.com/vk/threadforge/internal/filter"
)

// Policy is the decoded, defaulted tuning for one run.
type Policy struct {
	Filter filter.Config
	Dedup  dedup.Config
}

// Default returns the policy used when no file is given.
func Default() Policy {
	return Policy{Filter: filter.Default(), Dedup: dedup.Default()}
}

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "filter"},
		{Type: "dedup"},
	},
}

// Load parses path and overlays it on the defaults. Every unknown block or
// attribute is a hard error; a tool that silently ignores half its policy
// file is worse than one that refuses to start.
func Load(path string) (Policy, error) {
	p := Default()

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return p, fmt.Errorf("parse policy %s: %w", path, diags)
	}

	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return p, fmt.Errorf("decode policy %s: %w", path, diags)
	}

	seen := map[string]bool{}
	for _, block := range content.Blocks {
		if seen[block.Type] {
			return p, fmt.Errorf("decode policy %s: duplicate %q block", path, block.Type)
		}
		seen[block.Type] = true

		var err error
		switch block.Type {
		case "filter":
			err = decodeFilter(block.Body, &p.Filter)
		case "dedup":
			err = decodeDedup(block.Body, &p.Dedup)
		}
		if err != nil {
			return p, fmt.Errorf("decode policy %s: %w", path, err)
		}
	}
	return p, nil
}

var filterSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "min_tokens"},
		{Name: "max_tokens"},
		{Name: "deleted_markers"},
		{Name: "bot_authors"},
	},
}

func decodeFilter(body hcl.Body, cfg *filter.Config) error {
	content, diags := body.Content(filterSchema)
	if diags.HasErrors() {
		return diags
	}
	for name, attr := range content.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return diags
		}
		var err error
		switch name {
		case "min_tokens":
			err = intAttr(val, &cfg.MinTokens)
		case "max_tokens":
			err = intAttr(val, &cfg.MaxTokens)
		case "deleted_markers":
			cfg.DeletedMarkers, err = stringListAttr(val)
		case "bot_authors":
			cfg.BotAuthors, err = stringListAttr(val)
		}
		if err != nil {
			return fmt.Errorf("attribute %q: %w", name, err)
		}
	}
	if cfg.MaxTokens > 0 && cfg.MinTokens > cfg.MaxTokens {
		return fmt.Errorf("min_tokens %d exceeds max_tokens %d", cfg.MinTokens, cfg.MaxTokens)
	}
	return nil
}

var dedupSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "scope"},
		{Name: "strip_markup"},
	},
}

func decodeDedup(body hcl.Body, cfg *dedup.Config) error {
	content, diags := body.Content(dedupSchema)
	if diags.HasErrors() {
		return diags
	}
	for name, attr := range content.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return diags
		}
		switch name {
		case "scope":
			if val.Type() != cty.String {
				return fmt.Errorf("attribute %q: expected string, got %s", name, val.Type().FriendlyName())
			}
			switch s := dedup.Scope(val.AsString()); s {
			case dedup.ScopeSubreddit, dedup.ScopeTree:
				cfg.Scope = s
			default:
				return fmt.Errorf("attribute %q: must be %q or %q", name, dedup.ScopeSubreddit, dedup.ScopeTree)
			}
		case "strip_markup":
			if err := gocty.FromCtyValue(val, &cfg.StripMarkup); err != nil {
				return fmt.Errorf("attribute %q: %w", name, err)
			}
		}
	}
	return nil
}

func intAttr(val cty.Value, dst *int) error {
	if val.Type() != cty.Number {
		return fmt.Errorf("expected number, got %s", val.Type().FriendlyName())
	}
	return gocty.FromCtyValue(val, dst)
}

func stringListAttr(val cty.Value) ([]string, error) {
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("expected list of strings, got %s", val.Type().FriendlyName())
	}
	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.Type() != cty.String {
			return nil, fmt.Errorf("expected string element, got %s", elem.Type().FriendlyName())
		}
		out = append(out, elem.AsString())
	}
	return out, nil
}
