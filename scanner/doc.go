// Package scanner locates stream bodies inside a raw document buffer and
// classifies their compression filters without resolving the container's
// cross-reference table. Discovery works by direct byte scanning for the
// stream and endstream markers, so the extracted ranges are byte-exact even
// when the surrounding structure is damaged. Streams whose boundaries cannot
// be located are skipped silently; that only reduces the ultimate text
// yield.
package scanner
