// Package main provides a program for k-fold training of the text recognizer.
// It trains one fresh model per split on synthetic glyph strings, or on a
// directory of PNG images named by their label, and reports the fold whose
// model reaches the lowest validation loss.
package main
