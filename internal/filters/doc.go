// Package filters implements the stream decode filters the container
// scanner can classify: Flate (with a zlib-then-raw-deflate recovery
// strategy and optional predictors), ASCIIHex, ASCII85, and CCITT fax for
// image streams. All functions are pure; the input slice is never modified.
package filters
