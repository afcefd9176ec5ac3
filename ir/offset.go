package ir

// Covers reports whether off falls in the node's half-open interval.
func (y *Node) Covers(off int) bool {
	return off >= y.Start && off < y.End
}

// ChildAt returns the direct child (key, value, item or tag argument)
// covering off, or nil. Sibling intervals are non-overlapping and
// ordered, so the first hit wins.
func (y *Node) ChildAt(off int) *Node {
	for _, yf := range y.Fields {
		if yf.Covers(off) {
			return yf
		}
	}
	for _, yv := range y.Values {
		if yv != nil && yv.Covers(off) {
			return yv
		}
	}
	return nil
}

// AtOffset returns the most specific node whose interval contains off,
// descending through children in interval order. It returns nil when
// off lies outside y.
func (y *Node) AtOffset(off int) *Node {
	if y == nil || !y.Covers(off) {
		return nil
	}
	res := y
	for {
		child := res.ChildAt(off)
		if child == nil {
			return res
		}
		res = child
	}
}
