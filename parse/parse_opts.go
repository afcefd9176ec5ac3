package parse

type parseOpts struct {
	tags []string
}

type ParseOption func(*parseOpts)

// Tags declares the custom tag literals (with the leading '!') the
// parser recognizes as single-argument function nodes. Any other tag
// is left as a literal scalar.
func Tags(tags []string) ParseOption {
	return func(o *parseOpts) { o.tags = tags }
}
