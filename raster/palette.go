package raster

// RGB is a single palette entry.
type RGB struct {
	R, G, B byte
}

// Palette is the game's fixed 16-color EGA palette. Index 16 and above
// (and, within a transparency-bearing Raster, the high-nibble flags) mean
// transparent rather than selecting a color here.
var Palette = [16]RGB{
	{0x00, 0x00, 0x00},
	{0x00, 0x00, 0xaa},
	{0x00, 0xaa, 0x00},
	{0x00, 0xaa, 0xaa},
	{0xaa, 0x00, 0x00},
	{0xaa, 0x00, 0xaa},
	{0xaa, 0x55, 0x00},
	{0xaa, 0xaa, 0xaa},
	{0x55, 0x55, 0x50},
	{0x55, 0x55, 0xff},
	{0x55, 0xff, 0x55},
	{0x55, 0xff, 0xff},
	{0xff, 0x55, 0x55},
	{0xff, 0x55, 0xff},
	{0xff, 0xff, 0x55},
	{0xff, 0xff, 0xff},
}
