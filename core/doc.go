// Package core provides the typed object model shared by the container
// scanner, the glyph map builder, and the content tokenizer. Objects are
// plain values decoded from raw bytes; nothing in this package touches the
// file or holds state between extractions.
package core
