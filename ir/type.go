package ir

type Type int

const (
	NullType Type = iota
	NumberType
	StringType
	BoolType
	ObjectType
	ArrayType
	TagType
)

func (t Type) String() string {
	s, ok := map[Type]string{
		NullType:   "Null",
		NumberType: "Number",
		StringType: "String",
		BoolType:   "Bool",
		ObjectType: "Object",
		ArrayType:  "Array",
		TagType:    "Tag",
	}[t]
	if ok {
		return s
	}
	return "<unknown type>"
}

func (t Type) IsLeaf() bool {
	switch t {
	case ObjectType, ArrayType, TagType:
		return false
	default:
		return true
	}
}
