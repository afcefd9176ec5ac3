package complete

import (
	"strings"

	"github.com/cfntools/cfnls/token"
)

// repair makes locally-invalid input parseable before suggestion
// lookup. Users trigger completion on lines that are not yet valid
// mapping entries; the parser wants a delimiter, so one is spliced in:
//
//   - an empty line or a bare sequence-item marker gets a throwaway
//     placeholder key at the cursor;
//   - a partial key gets a ':' at the end of its visible content;
//   - a line that already has a delimiter is left alone, and the query
//     offset shifts one character left, back onto the key side.
//
// It returns the (possibly spliced) text and the query offset.
func repair(src []byte, offset int) ([]byte, int) {
	pos := token.NewPosDoc(src)
	line, _ := pos.LineCol(offset)
	start, end := pos.LineSpan(line)
	lineText := string(src[start:end])

	if strings.Contains(lineText, ":") {
		if offset > 0 {
			return src, offset - 1
		}
		return src, offset
	}

	trimmed := strings.TrimSpace(lineText)
	if trimmed == "" || trimmed == "-" {
		out := make([]byte, 0, len(src)+len(placeholder))
		out = append(out, src[:offset]...)
		out = append(out, placeholder...)
		out = append(out, src[offset:]...)
		return out, offset
	}

	// splice the delimiter after the last visible character
	vend := end
	for vend > start && (src[vend-1] == ' ' || src[vend-1] == '\t') {
		vend--
	}
	out := make([]byte, 0, len(src)+1)
	out = append(out, src[:vend]...)
	out = append(out, ':')
	out = append(out, src[vend:]...)
	q := offset
	if q > vend {
		q = vend
	}
	if q > start {
		q--
	}
	return out, q
}

// placeholder is the throwaway key spliced into empty completion
// positions. It is filtered back out of suggestions and existing-key
// checks.
const placeholder = "holder:"

const placeholderKey = "holder"
