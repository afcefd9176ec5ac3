package parse

import (
	"strings"
	"testing"

	"github.com/cfntools/cfnls/ir"
	"github.com/google/go-cmp/cmp"
)

var testTags = []string{"!Ref", "!GetAtt", "!Sub", "!Join", "!If"}

func parseText(t *testing.T, src string) *Document {
	t.Helper()
	return Parse([]byte(src), Tags(testTags))
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		in   string
		typ  ir.Type
		text string
	}{
		{"hello", ir.StringType, "hello"},
		{"42", ir.NumberType, "42"},
		{"-3.5", ir.NumberType, "-3.5"},
		{"true", ir.BoolType, "true"},
		{"false", ir.BoolType, "false"},
		{"null", ir.NullType, "null"},
		{"~", ir.NullType, "~"},
		{`"quoted: text"`, ir.StringType, "quoted: text"},
		{`'it''s'`, ir.StringType, "it's"},
	}
	for _, tc := range tests {
		doc := parseText(t, tc.in)
		if len(doc.Errors) != 0 {
			t.Errorf("%q: unexpected errors %v", tc.in, doc.Errors)
			continue
		}
		if doc.Root == nil {
			t.Errorf("%q: nil root", tc.in)
			continue
		}
		if doc.Root.Type != tc.typ {
			t.Errorf("%q: type = %v, want %v", tc.in, doc.Root.Type, tc.typ)
		}
		if doc.Root.String != tc.text {
			t.Errorf("%q: text = %q, want %q", tc.in, doc.Root.String, tc.text)
		}
	}
}

const template = `AWSTemplateFormatVersion: "2010-09-09"
Resources:
  Bucket:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: my-bucket
      Tags:
        - Key: env
          Value: prod
`

func TestParseTemplate(t *testing.T) {
	doc := parseText(t, template)
	if len(doc.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", doc.Errors)
	}
	root := doc.Root
	if root.Type != ir.ObjectType {
		t.Fatalf("root type = %v, want object", root.Type)
	}
	bucket := root.Get("Resources").Get("Bucket")
	if got := bucket.Get("Type").String; got != "AWS::S3::Bucket" {
		t.Errorf("Type = %q", got)
	}
	tags := bucket.Get("Properties").Get("Tags")
	if tags.Type != ir.ArrayType || len(tags.Values) != 1 {
		t.Fatalf("Tags = %v with %d items", tags.Type, len(tags.Values))
	}
	val := tags.Values[0].Get("Value")
	if val.String != "prod" {
		t.Errorf("Tags[0].Value = %q", val.String)
	}
	if got, want := val.Path(), "$.Resources.Bucket.Properties.Tags[0].Value"; got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

func TestNodeAt(t *testing.T) {
	doc := parseText(t, template)
	tests := []struct {
		substr string
		path   string
		typ    ir.Type
	}{
		{"AWS::S3::Bucket", "$.Resources.Bucket.Type", ir.StringType},
		{"my-bucket", "$.Resources.Bucket.Properties.BucketName", ir.StringType},
		{"BucketName", "$.Resources.Bucket.Properties.BucketName", ir.StringType},
		{"prod", "$.Resources.Bucket.Properties.Tags[0].Value", ir.StringType},
	}
	for _, tc := range tests {
		off := strings.Index(template, tc.substr)
		if off < 0 {
			t.Fatalf("substring %q not found", tc.substr)
		}
		n := doc.NodeAt(off)
		if n == nil {
			t.Errorf("NodeAt(%q) = nil", tc.substr)
			continue
		}
		if n.Type != tc.typ {
			t.Errorf("NodeAt(%q) type = %v, want %v", tc.substr, n.Type, tc.typ)
		}
		if got := n.Path(); got != tc.path {
			t.Errorf("NodeAt(%q) path = %q, want %q", tc.substr, got, tc.path)
		}
	}
	if n := doc.NodeAt(len(template) + 5); n != nil {
		t.Errorf("NodeAt past end = %v, want nil", n)
	}
}

func TestParseTags(t *testing.T) {
	doc := parseText(t, "Value: !Ref MyParam\n")
	if len(doc.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", doc.Errors)
	}
	v := doc.Root.Get("Value")
	if v.Type != ir.TagType || v.Tag != "!Ref" {
		t.Fatalf("value = %v tag %q", v.Type, v.Tag)
	}
	if len(v.Values) != 1 || v.Values[0].String != "MyParam" {
		t.Fatalf("tag argument = %v", v.Values)
	}
	// the argument keeps the tagged position's path
	if got := v.Values[0].Path(); got != "$.Value" {
		t.Errorf("argument path = %q", got)
	}
}

func TestParseTagBlockArgument(t *testing.T) {
	doc := parseText(t, "Value: !Join\n  - \",\"\n  - [a, b]\n")
	if len(doc.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", doc.Errors)
	}
	v := doc.Root.Get("Value")
	if v.Type != ir.TagType || len(v.Values) != 1 {
		t.Fatalf("value = %v with %d args", v.Type, len(v.Values))
	}
	arg := v.Values[0]
	if arg.Type != ir.ArrayType || len(arg.Values) != 2 {
		t.Fatalf("argument = %v with %d items", arg.Type, len(arg.Values))
	}
}

func TestParseUnknownTagIsLiteral(t *testing.T) {
	doc := parseText(t, "Value: !Unknown thing\n")
	if len(doc.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", doc.Errors)
	}
	v := doc.Root.Get("Value")
	if v.Type != ir.StringType || v.String != "!Unknown thing" {
		t.Fatalf("value = %v %q", v.Type, v.String)
	}
}

func TestParseFlow(t *testing.T) {
	doc := parseText(t, "a: {x: 1, y: [true, null]}\n")
	if len(doc.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", doc.Errors)
	}
	a := doc.Root.Get("a")
	if a.Type != ir.ObjectType {
		t.Fatalf("a = %v", a.Type)
	}
	if got := a.Get("x"); got.Type != ir.NumberType || *got.Int64 != 1 {
		t.Errorf("x = %v", got)
	}
	y := a.Get("y")
	if y.Type != ir.ArrayType || len(y.Values) != 2 {
		t.Fatalf("y = %v", y)
	}
	if y.Values[0].Type != ir.BoolType || y.Values[1].Type != ir.NullType {
		t.Errorf("y items = %v, %v", y.Values[0].Type, y.Values[1].Type)
	}
}

func TestParseBlockScalars(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a: |\n  one\n  two\n", "one\ntwo\n"},
		{"a: |-\n  one\n  two\n", "one\ntwo"},
		{"a: >\n  one\n  two\n", "one two\n"},
		{"a: >-\n  one\n\n  two\n", "one\ntwo"},
	}
	for _, tc := range tests {
		doc := parseText(t, tc.in)
		if len(doc.Errors) != 0 {
			t.Errorf("%q: unexpected errors %v", tc.in, doc.Errors)
			continue
		}
		if got := doc.Root.Get("a").String; got != tc.want {
			t.Errorf("%q: text = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseErrorsRecovered(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msgs []string
	}{
		{
			name: "dangling key",
			in:   "a: 1\nb\n",
			msgs: []string{"could not find expected ':'"},
		},
		{
			name: "duplicate key",
			in:   "a: 1\na: 2\n",
			msgs: []string{`duplicate key "a"`},
		},
		{
			name: "tab indentation",
			in:   "a:\n\tb: 1\n",
			msgs: []string{"tab used for indentation"},
		},
		{
			name: "tag without argument",
			in:   "a: !Ref\n",
			msgs: []string{"expected an argument for tag !Ref"},
		},
		{
			name: "unterminated flow sequence",
			in:   "a: [1, 2\n",
			msgs: []string{"unterminated flow sequence"},
		},
		{
			name: "unterminated quoted scalar",
			in:   "a: \"oops\n",
			msgs: []string{"unterminated quoted scalar"},
		},
		{
			name: "bad indentation",
			in:   "a: 1\n   b: 2\n",
			msgs: []string{"bad indentation of a mapping entry"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := parseText(t, tc.in)
			var got []string
			for _, e := range doc.Errors {
				got = append(got, e.Msg)
			}
			if diff := cmp.Diff(tc.msgs, got); diff != "" {
				t.Errorf("errors mismatch (-want +got):\n%s", diff)
			}
			if doc.Root == nil {
				t.Errorf("no partial tree for %q", tc.in)
			}
		})
	}
}

func TestDanglingKeyKeepsTree(t *testing.T) {
	doc := parseText(t, "a: 1\nb\nc: 3\n")
	if !doc.Root.HasField("b") {
		t.Errorf("dangling key b missing from tree")
	}
	if doc.Root.Get("b") != nil {
		t.Errorf("dangling key b should have no value")
	}
	if got := doc.Root.Get("c"); got == nil || *got.Int64 != 3 {
		t.Errorf("entry after dangling key lost: %v", got)
	}
}

func TestSequenceAtKeyColumn(t *testing.T) {
	doc := parseText(t, "items:\n- 1\n- 2\nnext: ok\n")
	if len(doc.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", doc.Errors)
	}
	items := doc.Root.Get("items")
	if items.Type != ir.ArrayType || len(items.Values) != 2 {
		t.Fatalf("items = %v with %d values", items.Type, len(items.Values))
	}
	if got := doc.Root.Get("next"); got == nil || got.String != "ok" {
		t.Errorf("entry after sequence lost: %v", got)
	}
}

func TestLoneDashIsNullItem(t *testing.T) {
	doc := parseText(t, "items:\n  - 1\n  -\n")
	items := doc.Root.Get("items")
	if len(items.Values) != 2 {
		t.Fatalf("items = %d values, want 2", len(items.Values))
	}
	if items.Values[1].Type != ir.NullType {
		t.Errorf("lone dash item = %v, want null", items.Values[1].Type)
	}
}

func TestCommentsIgnored(t *testing.T) {
	doc := parseText(t, "# header\na: 1 # trailing\n# footer\n")
	if len(doc.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", doc.Errors)
	}
	if got := doc.Root.Get("a"); got == nil || *got.Int64 != 1 {
		t.Errorf("a = %v", got)
	}
	if doc.Root.Get("a").String != "1" {
		t.Errorf("trailing comment leaked into value: %q", doc.Root.Get("a").String)
	}
}
