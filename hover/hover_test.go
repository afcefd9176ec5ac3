package hover

import (
	"context"
	"strings"
	"testing"

	"github.com/cfntools/cfnls/cfnspec"
	"github.com/cfntools/cfnls/parse"
)

var testSpec = cfnspec.Static{
	"AWS::S3::Bucket": &cfnspec.Resource{
		Documentation: "https://docs.example/bucket",
		Properties: map[string]cfnspec.Property{
			"BucketName": {
				Documentation: "https://docs.example/bucket#name",
				PrimitiveType: "String",
				UpdateType:    "Replacement",
			},
			"Tags": {
				Documentation: "https://docs.example/bucket#tags",
				Type:          "List",
			},
		},
	},
}

const hoverTemplate = `Resources:
  Bucket:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: my-bucket
      Tags:
        - Key: env
          Value: prod
`

func hoverAt(t *testing.T, src, substr string) *Result {
	t.Helper()
	doc := parse.Parse([]byte(src))
	off := strings.Index(src, substr)
	if off < 0 {
		t.Fatalf("substring %q not found", substr)
	}
	res, err := Hover(context.Background(), doc, testSpec, off)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestHoverProperty(t *testing.T) {
	res := hoverAt(t, hoverTemplate, "BucketName")
	if res == nil {
		t.Fatal("no hover for BucketName")
	}
	for _, want := range []string{"BucketName", "AWS::S3::Bucket", "Type: String", "Replacement", "https://docs.example/bucket#name"} {
		if !strings.Contains(res.Contents, want) {
			t.Errorf("contents missing %q:\n%s", want, res.Contents)
		}
	}
}

func TestHoverPropertyValue(t *testing.T) {
	res := hoverAt(t, hoverTemplate, "my-bucket")
	if res == nil {
		t.Fatal("no hover for the property value")
	}
	if !strings.Contains(res.Contents, "BucketName") {
		t.Errorf("value hover should document its property:\n%s", res.Contents)
	}
}

func TestHoverNestedUnderProperty(t *testing.T) {
	// deep inside the Tags value still documents Tags
	res := hoverAt(t, hoverTemplate, "prod")
	if res == nil {
		t.Fatal("no hover inside Tags")
	}
	if !strings.Contains(res.Contents, "Tags") {
		t.Errorf("nested hover should document the top-level property:\n%s", res.Contents)
	}
}

func TestHoverResource(t *testing.T) {
	res := hoverAt(t, hoverTemplate, "AWS::S3::Bucket")
	if res == nil {
		t.Fatal("no hover for the resource type")
	}
	if !strings.Contains(res.Contents, "https://docs.example/bucket") {
		t.Errorf("resource hover missing documentation link:\n%s", res.Contents)
	}
}

func TestHoverAbsent(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		substr string
	}{
		{"unknown resource type", "Resources:\n  Q:\n    Type: AWS::Foo::Bar\n", "AWS::Foo::Bar"},
		{"no enclosing resource", "Outputs:\n  Name:\n    Value: x\n", "x"},
		{"unknown property", "Resources:\n  B:\n    Type: AWS::S3::Bucket\n    Properties:\n      Nope: 1\n", "Nope"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if res := hoverAt(t, tc.src, tc.substr); res != nil {
				t.Errorf("hover = %q, want nil", res.Contents)
			}
		})
	}
}

func TestHoverEmptyContainerBody(t *testing.T) {
	src := "Resources:\n  B:\n    Type: AWS::S3::Bucket\n    Properties:\n      Tags:\n"
	doc := parse.Parse([]byte(src))
	// offset past every child of the mapping
	res, err := Hover(context.Background(), doc, testSpec, len(src)-1)
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Errorf("hover in empty container body = %q, want nil", res.Contents)
	}
}

func TestSymbols(t *testing.T) {
	doc := parse.Parse([]byte(hoverTemplate))
	syms := Symbols(doc)
	if len(syms) != 1 || syms[0].Name != "Resources" {
		t.Fatalf("top-level symbols = %v", syms)
	}
	bucket := syms[0].Children
	if len(bucket) != 1 || bucket[0].Name != "Bucket" {
		t.Fatalf("Resources children = %v", bucket)
	}
	var names []string
	for _, c := range bucket[0].Children {
		names = append(names, c.Name)
	}
	if len(names) != 2 || names[0] != "Type" || names[1] != "Properties" {
		t.Errorf("Bucket children = %v", names)
	}
	tags := bucket[0].Children[1].Children[1]
	if tags.Name != "Tags" || len(tags.Children) != 1 || tags.Children[0].Name != "0" {
		t.Errorf("Tags outline = %+v", tags)
	}
}

func TestSymbolsOnPartialTree(t *testing.T) {
	doc := parse.Parse([]byte("a: 1\nb\n"))
	syms := Symbols(doc)
	if len(syms) != 2 {
		t.Fatalf("symbols = %d, want 2", len(syms))
	}
	if syms[1].Name != "b" {
		t.Errorf("dangling key missing from outline: %v", syms)
	}
}
