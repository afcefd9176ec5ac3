package config

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if !cfg.Validate || !cfg.Hover || !cfg.Completion {
		t.Errorf("defaults should enable every feature: %+v", cfg)
	}
	if diff := cmp.Diff(DefaultTags, cfg.Tags()); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	bindings, err := cfg.Bindings()
	if err != nil {
		t.Fatal(err)
	}
	if len(bindings) != 2 || bindings[0].URI != DefaultServerlessSchemaURL {
		t.Errorf("default bindings = %+v", bindings)
	}
}

func TestDecodeOverDefaults(t *testing.T) {
	cfg := Default()
	raw := `{"validate": false, "customTags": ["!MyMacro"]}`
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Validate {
		t.Errorf("validate should be off")
	}
	if !cfg.Hover || !cfg.Completion {
		t.Errorf("absent settings should keep defaults: %+v", cfg)
	}
	tags := cfg.Tags()
	if tags[len(tags)-1] != "!MyMacro" {
		t.Errorf("custom tag missing: %v", tags)
	}
	if len(tags) != len(DefaultTags)+1 {
		t.Errorf("custom tags should extend the standard set: %d", len(tags))
	}
}

func TestBindingsFromSettings(t *testing.T) {
	cfg := Config{Schemas: []SchemaSetting{
		{URI: "a.yaml", Contains: "Serverless"},
		{URI: "b.yaml", Match: "always"},
	}}
	bindings, err := cfg.Bindings()
	if err != nil {
		t.Fatal(err)
	}
	if len(bindings) != 2 {
		t.Fatalf("bindings = %d, want 2", len(bindings))
	}
	if !bindings[0].Match("u", "has Serverless inside") {
		t.Errorf("contains matcher rejected matching text")
	}
	if bindings[0].Match("u", "nothing") {
		t.Errorf("contains matcher accepted unrelated text")
	}
	if !bindings[1].Match("u", "anything") {
		t.Errorf("always matcher rejected a document")
	}
}

func TestBindingsRejectUnknownMatch(t *testing.T) {
	cfg := Config{Schemas: []SchemaSetting{{URI: "a.yaml", Match: "bogus"}}}
	if _, err := cfg.Bindings(); err == nil {
		t.Errorf("unknown match kind should error")
	}
}

func TestBindingsRejectBadExpr(t *testing.T) {
	cfg := Config{Schemas: []SchemaSetting{{URI: "a.yaml", Expr: "1 +"}}}
	if _, err := cfg.Bindings(); err == nil {
		t.Errorf("bad expression should error")
	}
}
