package schema

import (
	"testing"

	"github.com/cfntools/cfnls/parse"
	"github.com/google/go-cmp/cmp"
)

const bucketSchema = `
type: object
properties:
  Resources:
    type: object
    additionalProperties:
      type: object
      required: [Type]
      properties:
        Type:
          type: string
          enum: [AWS::S3::Bucket, AWS::SQS::Queue]
        Properties:
          type: object
          properties:
            BucketName:
              type: string
              description: The bucket name.
            AccessControl:
              type: string
              enum: [Private, PublicRead]
`

func TestFromBytesKeepsPropertyOrder(t *testing.T) {
	s, err := FromBytes([]byte(bucketSchema))
	if err != nil {
		t.Fatal(err)
	}
	props := s.Property("Resources").
		AdditionalProperties.
		Property("Properties")
	var names []string
	for _, p := range props.Properties {
		names = append(names, p.Name)
	}
	want := []string{"BucketName", "AccessControl"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("property order mismatch (-want +got):\n%s", diff)
	}
}

func TestFromBytesJSON(t *testing.T) {
	s, err := FromBytes([]byte(`{"type": "object", "required": ["a"], "properties": {"a": {"type": "string", "pattern": "^x"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.Type != "object" || len(s.Required) != 1 {
		t.Fatalf("schema = %+v", s)
	}
	a := s.Property("a")
	ok, err := a.MatchPattern("xyz")
	if err != nil || !ok {
		t.Errorf("MatchPattern(xyz) = %v, %v", ok, err)
	}
	ok, _ = a.MatchPattern("abc")
	if ok {
		t.Errorf("MatchPattern(abc) = true, want false")
	}
}

func TestFromBytesClosed(t *testing.T) {
	s, err := FromBytes([]byte("type: object\nadditionalProperties: false\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !s.Closed {
		t.Errorf("Closed = false, want true")
	}
	if s.Sub("anything") != nil {
		t.Errorf("Sub on closed schema = non-nil")
	}
}

func TestAtWalksDocumentPath(t *testing.T) {
	s, err := FromBytes([]byte(bucketSchema))
	if err != nil {
		t.Fatal(err)
	}
	doc := parse.Parse([]byte(`Resources:
  Bucket:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: b
`))
	name := doc.Root.Get("Resources").Get("Bucket").Get("Properties").Get("BucketName")
	got := At(s, name)
	if got == nil || got.Description != "The bucket name." {
		t.Fatalf("At(BucketName) = %+v", got)
	}
	if At(s, doc.Root) != s {
		t.Errorf("At(root) should be the root schema")
	}
	missing := doc.Root.Get("Resources").Get("Bucket").Get("Type")
	if sub := At(s, missing); sub == nil || len(sub.Enum) != 2 {
		t.Errorf("At(Type) = %+v", sub)
	}
}

func TestFromBytesResolvesRefs(t *testing.T) {
	s, err := FromBytes([]byte(`{
  "type": "object",
  "additionalProperties": false,
  "patternProperties": {"^[A-Z][a-zA-Z0-9]*$": {"$ref": "#/definitions/Entry"}},
  "definitions": {
    "Entry": {"type": "object", "properties": {"Name": {"type": "string", "description": "The entry name."}}}
  }
}`))
	if err != nil {
		t.Fatal(err)
	}
	sub := s.Sub("Bucket")
	if sub == nil {
		t.Fatal("pattern property should govern a matching key")
	}
	name := sub.Property("Name")
	if name == nil || name.Description != "The entry name." {
		t.Fatalf("referenced definition not resolved: %+v", name)
	}
	if s.Sub("lower") != nil {
		t.Errorf("pattern should not match a lowercase key")
	}
	if !s.Closed {
		t.Errorf("Closed = false, want true")
	}
}

func TestFromBytesRecursiveRef(t *testing.T) {
	s, err := FromBytes([]byte(`{
  "$ref": "#/definitions/Node",
  "definitions": {"Node": {"type": "object", "properties": {"next": {"$ref": "#/definitions/Node"}}}}
}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.Property("next") != s {
		t.Errorf("recursive reference should share one schema value")
	}
}

func TestFromBytesBadRefs(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing target", `{"$ref": "#/definitions/Missing"}`},
		{"external ref", `{"$ref": "http://example.com/other.json#/a"}`},
		{"alias cycle", `{"$ref": "#/definitions/A", "definitions": {"A": {"$ref": "#/definitions/B"}, "B": {"$ref": "#/definitions/A"}}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromBytes([]byte(tc.src)); err == nil {
				t.Error("want a decode error")
			}
		})
	}
}

const shapeSchema = `
oneOf:
  - type: object
    properties:
      kind:
        const: circle
      radius:
        type: number
  - type: object
    properties:
      kind:
        const: square
      side:
        type: number
`

func TestResolveDiscriminatesOneOf(t *testing.T) {
	s, err := FromBytes([]byte(shapeSchema))
	if err != nil {
		t.Fatal(err)
	}
	doc := parse.Parse([]byte("kind: square\nside: 3\n"))
	got := Resolve(s, doc.Root)
	if got.Property("side") == nil {
		t.Errorf("resolved alternative lacks side, want square schema")
	}

	// no discriminating evidence falls back to the first alternative
	doc = parse.Parse([]byte("radius: 1\n"))
	got = Resolve(s, doc.Root)
	if got.Property("radius") == nil {
		t.Errorf("fallback should be the first alternative")
	}
}
