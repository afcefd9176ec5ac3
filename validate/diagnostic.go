package validate

import "github.com/cfntools/cfnls/token"

// Source tags every diagnostic this engine produces.
const Source = "cfnls"

type Severity int

// The engine collapses every schema deviation to SeverityError: graded
// severities are intentionally discarded so each deviation is
// blocking. Documented behavior, not an accident of implementation.
const SeverityError Severity = 1

type Diagnostic struct {
	Range    token.Range
	Message  string
	Severity Severity
	Source   string
}
