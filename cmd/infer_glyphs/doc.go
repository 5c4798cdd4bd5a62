// Package main provides a demo program which trains a single recognizer on
// synthetic glyph strings and then reads freshly generated ones, printing the
// recognized text next to the truth and the strip each character was read from.
package main
