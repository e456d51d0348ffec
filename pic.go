// Package wasteland implements the binary asset codecs of the 1988 role
// playing game Wasteland: pixel-indexed pictures, sprite and cursor banks,
// fonts, tilesets, single-scene animations (CPA), and multi-scene animated
// picture archives (ALLPICS).
package wasteland

import (
	"fmt"
	"io"

	"github.com/bitrot-games/wasteland/raster"
	"github.com/bitrot-games/wasteland/wlerr"
)

// PicWidth and PicHeight are the fixed dimensions of a standalone PIC
// file: no header, just a nibble-packed, vertical-XOR-whitened raster.
const (
	PicWidth  = 288
	PicHeight = 128
)

// ReadPic reads a raw PIC image: width*height/2 bytes of nibble-packed
// pixels (high nibble first) followed by no trailer, then reverses the
// vertical-XOR whitening.
func ReadPic(r io.Reader) (*raster.Raster, error) {
	img := raster.New(PicWidth, PicHeight)
	if err := readNibblePlane(r, img); err != nil {
		return nil, err
	}
	img.VXorDecode()
	return img, nil
}

// WritePic writes img (which must be PicWidth x PicHeight) as a raw PIC
// image.
func WritePic(w io.Writer, img *raster.Raster) error {
	if img.Width != PicWidth || img.Height != PicHeight {
		return fmt.Errorf("wasteland: pic is %dx%d, want %dx%d: %w",
			img.Width, img.Height, PicWidth, PicHeight, wlerr.ErrBadArgument)
	}
	encoded := img.Clone()
	encoded.VXorEncode()
	return writeNibblePlane(w, encoded)
}

// readNibblePlane reads width*height/2 bytes into img, each byte's high
// nibble becoming the left pixel of a horizontal pair and the low nibble
// the right pixel.
func readNibblePlane(r io.Reader, img *raster.Raster) error {
	if img.Width%2 != 0 {
		return fmt.Errorf("wasteland: nibble-packed raster width %d is odd: %w", img.Width, wlerr.ErrBadArgument)
	}
	var buf [1]byte
	for y := 0; y < img.Height; y++ {
		row := y * img.Width
		for x := 0; x < img.Width; x += 2 {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return fmt.Errorf("wasteland: reading pic row %d: %w", y, wlerr.ErrUnexpectedEOF)
			}
			img.Pixels[row+x] = buf[0] >> 4
			img.Pixels[row+x+1] = buf[0] & 0x0f
		}
	}
	return nil
}

func writeNibblePlane(w io.Writer, img *raster.Raster) error {
	if img.Width%2 != 0 {
		return fmt.Errorf("wasteland: nibble-packed raster width %d is odd: %w", img.Width, wlerr.ErrBadArgument)
	}
	for y := 0; y < img.Height; y++ {
		row := y * img.Width
		for x := 0; x < img.Width; x += 2 {
			b := img.Pixels[row+x]<<4 | (img.Pixels[row+x+1] & 0x0f)
			if _, err := w.Write([]byte{b}); err != nil {
				return fmt.Errorf("wasteland: writing pic row %d: %w", y, wlerr.ErrWriteFailed)
			}
		}
	}
	return nil
}
