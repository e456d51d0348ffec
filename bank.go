package wasteland

import (
	"io"

	"github.com/bitrot-games/wasteland/raster"
)

var spritesConfig = raster.BankConfig{
	ImageCount:   10,
	ImageW:       16,
	ImageH:       16,
	Transparency: raster.SeparateStreamDirect,
}

var cursorsConfig = raster.BankConfig{
	ImageCount:   8,
	ImageW:       16,
	ImageH:       16,
	Transparency: raster.InterleavedSameStreamInverted,
}

var fontConfig = raster.BankConfig{
	ImageCount:   172,
	ImageW:       8,
	ImageH:       8,
	Transparency: raster.NoTransparency,
}

// ReadSprites reads the fixed 10-sprite, 16x16 bank from two streams: the
// sprite pixel data and its transparency masks.
func ReadSprites(data, mask io.Reader) ([]*raster.Raster, error) {
	return raster.ReadBank(spritesConfig, data, mask)
}

// WriteSprites writes a 10-sprite, 16x16 bank to its two streams.
func WriteSprites(data, mask io.Writer, sprites []*raster.Raster) error {
	return raster.WriteBank(spritesConfig, data, mask, sprites)
}

// ReadCursors reads the fixed 8-cursor, 16x16 bank from a single stream
// carrying both pixel data and (inverted, interleaved) transparency.
func ReadCursors(r io.Reader) ([]*raster.Raster, error) {
	return raster.ReadBank(cursorsConfig, r, nil)
}

// WriteCursors writes an 8-cursor, 16x16 bank to a single stream.
func WriteCursors(w io.Writer, cursors []*raster.Raster) error {
	return raster.WriteBank(cursorsConfig, w, nil, cursors)
}

// ReadFont reads the fixed 172-glyph, 8x8 font bank. Glyphs carry no
// transparency plane.
func ReadFont(r io.Reader) ([]*raster.Raster, error) {
	return raster.ReadBank(fontConfig, r, nil)
}

// WriteFont writes a 172-glyph, 8x8 font bank.
func WriteFont(w io.Writer, glyphs []*raster.Raster) error {
	return raster.WriteBank(fontConfig, w, nil, glyphs)
}
