// Package glyphs provides a synthetic text recognition dataset: digit strings
// rendered with a 3x5 bitmap font. Sample paths have the form "glyph:<digits>",
// so the same path always renders the same image.
package glyphs
