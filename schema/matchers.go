package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
)

// Matcher decides whether a binding applies to a document. It sees the
// document's text, not just its URI, so schema selection can key off
// content.
type Matcher func(uri, text string) bool

// MatchAlways accepts every document.
func MatchAlways(uri, text string) bool {
	return true
}

// MatchContains accepts documents whose text contains sub.
func MatchContains(sub string) Matcher {
	return func(uri, text string) bool {
		return strings.Contains(text, sub)
	}
}

var resourcesKey = regexp.MustCompile(`(?m)^(Resources|"Resources"|'Resources')\s*:`)

// MatchTemplate accepts CloudFormation-shaped documents: an explicit
// format version, or a top-level Resources section.
func MatchTemplate(uri, text string) bool {
	if strings.Contains(text, "AWSTemplateFormatVersion") {
		return true
	}
	return resourcesKey.MatchString(text)
}

// MatchServerless accepts SAM templates, which are CloudFormation
// templates carrying the serverless transform.
func MatchServerless(uri, text string) bool {
	return MatchTemplate(uri, text) &&
		strings.Contains(text, "AWS::Serverless-2016-10-31")
}

// MatchExpr compiles a user-configured predicate expression over the
// environment {uri, text}. Evaluation failures reject the document
// rather than failing the resolution.
func MatchExpr(src string) (Matcher, error) {
	env := map[string]any{"uri": "", "text": ""}
	program, err := expr.Compile(src, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: bad matcher expression %q: %v", ErrSchema, src, err)
	}
	return func(uri, text string) bool {
		out, err := expr.Run(program, map[string]any{"uri": uri, "text": text})
		if err != nil {
			return false
		}
		b, _ := out.(bool)
		return b
	}, nil
}
