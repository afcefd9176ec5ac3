// Package config holds the user-facing settings surface: feature
// toggles, custom intrinsic tags and schema bindings. Settings arrive
// as JSON from the editor; zero configuration gets working defaults.
package config

import (
	"fmt"

	"github.com/cfntools/cfnls/schema"
)

// DefaultTags are the CloudFormation intrinsic-function short forms
// recognized out of the box.
var DefaultTags = []string{
	"!Ref", "!GetAtt", "!Sub", "!Join", "!Select", "!Split",
	"!FindInMap", "!Base64", "!Cidr", "!ImportValue", "!GetAZs",
	"!Condition", "!If", "!Not", "!And", "!Or", "!Equals",
	"!Transform",
}

// Published JSON schemas for the two template dialects.
const (
	DefaultTemplateSchemaURL   = "https://raw.githubusercontent.com/awslabs/goformation/master/schema/cloudformation.schema.json"
	DefaultServerlessSchemaURL = "https://raw.githubusercontent.com/awslabs/goformation/master/schema/sam.schema.json"
)

type Config struct {
	Validate   bool     `json:"validate"`
	Hover      bool     `json:"hover"`
	Completion bool     `json:"completion"`
	CustomTags []string `json:"customTags"`

	// SpecURL overrides where the CloudFormation resource
	// specification is fetched from.
	SpecURL string `json:"resourceSpecURL"`

	// Schemas overrides the built-in schema bindings entirely when
	// non-empty.
	Schemas []SchemaSetting `json:"schemas"`
}

// SchemaSetting is one user-configured binding. Exactly one of Expr,
// Contains or Match selects the matcher; URI names the schema.
type SchemaSetting struct {
	URI      string `json:"uri"`
	Match    string `json:"match"`    // always | template | serverless
	Contains string `json:"contains"` // substring of document text
	Expr     string `json:"expr"`     // predicate over uri and text
}

// Default returns the configuration used when the editor sends none:
// every feature on, standard tags, built-in schema bindings.
func Default() Config {
	return Config{Validate: true, Hover: true, Completion: true}
}

// Tags returns the intrinsic tags to parse with: the standard set plus
// any user additions.
func (c Config) Tags() []string {
	if len(c.CustomTags) == 0 {
		return DefaultTags
	}
	tags := make([]string, 0, len(DefaultTags)+len(c.CustomTags))
	tags = append(tags, DefaultTags...)
	tags = append(tags, c.CustomTags...)
	return tags
}

// Bindings builds the schema bindings in resolution order. The
// serverless binding precedes the generic template binding so SAM
// documents get the SAM schema.
func (c Config) Bindings() ([]schema.Binding, error) {
	if len(c.Schemas) == 0 {
		return []schema.Binding{
			{Match: schema.MatchServerless, URI: DefaultServerlessSchemaURL},
			{Match: schema.MatchTemplate, URI: DefaultTemplateSchemaURL},
		}, nil
	}
	var out []schema.Binding
	for _, s := range c.Schemas {
		m, err := matcherFor(s)
		if err != nil {
			return nil, err
		}
		out = append(out, schema.Binding{Match: m, URI: s.URI})
	}
	return out, nil
}

func matcherFor(s SchemaSetting) (schema.Matcher, error) {
	switch {
	case s.Expr != "":
		return schema.MatchExpr(s.Expr)
	case s.Contains != "":
		return schema.MatchContains(s.Contains), nil
	}
	switch s.Match {
	case "always":
		return schema.MatchAlways, nil
	case "serverless":
		return schema.MatchServerless, nil
	case "template", "":
		return schema.MatchTemplate, nil
	default:
		return nil, fmt.Errorf("unknown schema match kind %q", s.Match)
	}
}
