package parse

import (
	"github.com/cfntools/cfnls/ir"
	"github.com/cfntools/cfnls/token"
)

// Document is the result of one parse call: a best-effort syntax tree
// plus the parse errors recovered along the way. It is immutable after
// construction and owns the whole node graph.
type Document struct {
	Source []byte
	Pos    *token.PosDoc
	Root   *ir.Node
	Errors []*Error
}

// NodeAt returns the most specific node containing the byte offset, or
// nil when the document has no root or the offset falls outside it.
func (d *Document) NodeAt(off int) *ir.Node {
	if d.Root == nil {
		return nil
	}
	return d.Root.AtOffset(off)
}
