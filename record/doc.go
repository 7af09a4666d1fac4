// Package record defines the fixed-schema Record and its self-describing
// binary encoding.
//
// Every encoded record carries its own structural description: a marker
// byte, the field count, and for each field a tag, a kind and the value.
// Text values are length-prefixed and numeric values are fixed width, so a
// record can be decoded without any schema state shared with the encoder
// that produced it.
//
// # Wire Format
//
//	[Marker:1][FieldCount:1]
//	  [Tag:1][Kind:1][Value]   (repeated FieldCount times)
//
// Value layout by kind:
//
//	KindInt64    8 bytes little-endian two's complement
//	KindFloat64  8 bytes little-endian IEEE-754 bits
//	KindString   [Len:4 little-endian][Len bytes]
//
// # Decode Failures
//
// Decoding distinguishes two failure classes:
//
//   - [ErrIncomplete]: the input ended before the record was complete.
//   - [ErrMalformed]: the bytes are present but structurally invalid
//     (bad marker, unknown or duplicate tag, oversized length prefix).
//
// Both are reported as a [*DecodeError] whose Offset tells how many bytes of
// the record were consumed before the failure. An ErrIncomplete with Offset 0
// means no byte of a next record exists at all, which callers scanning a
// sequence of records treat as a clean end of input.
package record
