// Package ir holds the syntax tree produced by parsing a template
// document. Nodes carry exact byte offsets into the source text and
// parent back-references; the parse.Document owns the whole graph.
package ir

type Node struct {
	Type        Type
	Parent      *Node
	ParentIndex int
	ParentField string

	// Half-open byte interval [Start, End) in the source text.
	Start int
	End   int

	// Objects keep keys and values in parallel slices, in document
	// order. A Values entry may be nil when the key has no value yet.
	// Arrays use Values only. Tag nodes hold at most one argument in
	// Values.
	Fields []*Node
	Values []*Node

	// Tag is the custom tag literal including '!', set on TagType.
	Tag string

	String  string
	Bool    bool
	Float64 *float64
	Int64   *int64
}

func FromString(v string) *Node {
	return &Node{Type: StringType, String: v}
}

func FromInt(v int64) *Node {
	return &Node{Type: NumberType, Int64: &v}
}

func FromFloat(f float64) *Node {
	return &Node{Type: NumberType, Float64: &f}
}

func FromBool(v bool) *Node {
	return &Node{Type: BoolType, Bool: v}
}

func Null() *Node {
	return &Node{Type: NullType}
}

// AddField appends a key/value pair to an object node. val may be nil
// for a key with no value.
func (y *Node) AddField(key, val *Node) {
	i := len(y.Fields)
	key.Parent = y
	key.ParentIndex = i
	key.ParentField = key.String
	if val != nil {
		val.Parent = y
		val.ParentIndex = i
		val.ParentField = key.String
	}
	y.Fields = append(y.Fields, key)
	y.Values = append(y.Values, val)
}

// AppendValue appends an item to an array node or the argument slot
// of a tag node.
func (y *Node) AppendValue(v *Node) {
	v.Parent = y
	v.ParentIndex = len(y.Values)
	y.Values = append(y.Values, v)
}

// Get returns the value for field, or nil.
func (y *Node) Get(field string) *Node {
	for i := range y.Fields {
		if y.Fields[i].String == field {
			return y.Values[i]
		}
	}
	return nil
}

// HasField reports whether the object declares field, with or without
// a value.
func (y *Node) HasField(field string) bool {
	for i := range y.Fields {
		if y.Fields[i].String == field {
			return true
		}
	}
	return false
}

// IsKey reports whether y is the key node of an object property.
func (y *Node) IsKey() bool {
	p := y.Parent
	if p == nil || p.Type != ObjectType {
		return false
	}
	return y.ParentIndex < len(p.Fields) && p.Fields[y.ParentIndex] == y
}

func (y *Node) Root() *Node {
	res := y
	for res.Parent != nil {
		res = res.Parent
	}
	return res
}

// Visit walks the subtree pre- and post-order. Returning dive=false
// from the pre-order call skips the node's children.
func (y *Node) Visit(f func(y *Node, isPost bool) (bool, error)) error {
	dive, err := f(y, false)
	if err != nil {
		return err
	}
	if dive {
		for _, yf := range y.Fields {
			if err := yf.Visit(f); err != nil {
				return err
			}
		}
		for _, yv := range y.Values {
			if yv == nil {
				continue
			}
			if err := yv.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(y, true); err != nil {
		return err
	}
	return nil
}
