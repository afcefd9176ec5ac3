// Package token provides byte-offset addressing for parsed documents:
// mapping offsets to line/column positions and back.
//
// Columns in Position are counted in UTF-16 code units, matching what
// editor protocols expect. Byte offsets are the internal currency; the
// conversion happens only at the boundary.
package token
