package raster

import (
	"fmt"
	"io"

	"github.com/bitrot-games/wasteland/wlerr"
)

// TransparencyMode selects how a BankConfig's images carry their
// transparency plane(s), per the bank-shape design note: sprites, cursors,
// and font share the "4 bit-planes, MSB-first, 8-pixel strips" skeleton
// but differ in how (or whether) a transparency plane rides along.
type TransparencyMode int

const (
	// NoTransparency banks (font) have no transparency plane at all.
	NoTransparency TransparencyMode = iota
	// SeparateStreamDirect banks (sprites) sample one shared transparency
	// bit per 8-pixel group, right after color bit-plane 3, writing it
	// un-inverted (1 = transparent) into a second stream.
	SeparateStreamDirect
	// InterleavedSameStreamInverted banks (cursors) sample one
	// transparency bit per color bit-plane (four independent planes),
	// inverted, interleaved into the same stream as the data.
	InterleavedSameStreamInverted
)

// BankConfig describes one of the fixed-shape bitplane banks.
type BankConfig struct {
	ImageCount   int
	ImageW       int
	ImageH       int
	Transparency TransparencyMode
}

func (c BankConfig) validate() error {
	if c.ImageCount <= 0 || c.ImageW <= 0 || c.ImageH <= 0 {
		return fmt.Errorf("raster: bank config has non-positive dimension: %w", wlerr.ErrBadArgument)
	}
	if c.ImageW%8 != 0 {
		return fmt.Errorf("raster: bank image width %d is not a multiple of 8: %w", c.ImageW, wlerr.ErrBadArgument)
	}
	return nil
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("raster: reading bank byte: %w", wlerr.ErrUnexpectedEOF)
	}
	return b[0], nil
}

func writeByte(w io.Writer, b byte) error {
	if _, err := w.Write([]byte{b}); err != nil {
		return fmt.Errorf("raster: writing bank byte: %w", wlerr.ErrWriteFailed)
	}
	return nil
}

// ReadBank reads cfg.ImageCount images from data (and, for
// SeparateStreamDirect banks, mask). mask is ignored for the other two
// transparency modes and may be nil.
func ReadBank(cfg BankConfig, data, mask io.Reader) ([]*Raster, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Transparency == SeparateStreamDirect && mask == nil {
		return nil, fmt.Errorf("raster: SeparateStreamDirect bank requires a mask stream: %w", wlerr.ErrBadArgument)
	}

	images := make([]*Raster, cfg.ImageCount)
	for i := range images {
		img := New(cfg.ImageW, cfg.ImageH)
		var err error
		switch cfg.Transparency {
		case NoTransparency:
			err = readPlaneBank(data, img)
		case SeparateStreamDirect:
			err = readSeparateMaskBank(data, mask, img)
		case InterleavedSameStreamInverted:
			err = readInterleavedMaskBank(data, img)
		}
		if err != nil {
			return nil, err
		}
		images[i] = img
	}
	return images, nil
}

// WriteBank writes images to data (and, for SeparateStreamDirect banks,
// mask) in the layout ReadBank expects. len(images) must equal
// cfg.ImageCount and every image must match cfg's dimensions.
func WriteBank(cfg BankConfig, data, mask io.Writer, images []*Raster) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if len(images) != cfg.ImageCount {
		return fmt.Errorf("raster: bank has %d images, config wants %d: %w", len(images), cfg.ImageCount, wlerr.ErrBadArgument)
	}
	if cfg.Transparency == SeparateStreamDirect && mask == nil {
		return fmt.Errorf("raster: SeparateStreamDirect bank requires a mask stream: %w", wlerr.ErrBadArgument)
	}

	for _, img := range images {
		if img.Width != cfg.ImageW || img.Height != cfg.ImageH {
			return fmt.Errorf("raster: bank image is %dx%d, config wants %dx%d: %w",
				img.Width, img.Height, cfg.ImageW, cfg.ImageH, wlerr.ErrBadArgument)
		}
		var err error
		switch cfg.Transparency {
		case NoTransparency:
			err = writePlaneBank(data, img)
		case SeparateStreamDirect:
			err = writeSeparateMaskBank(data, mask, img)
		case InterleavedSameStreamInverted:
			err = writeInterleavedMaskBank(data, img)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func readPlaneBank(r io.Reader, img *Raster) error {
	for bit := 0; bit < 4; bit++ {
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x += 8 {
				b, err := readByte(r)
				if err != nil {
					return err
				}
				orDataByte(img, x, y, uint(bit), b)
			}
		}
	}
	return nil
}

func writePlaneBank(w io.Writer, img *Raster) error {
	for bit := 0; bit < 4; bit++ {
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x += 8 {
				if err := writeByte(w, packDataByte(img, x, y, uint(bit))); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func readSeparateMaskBank(data, mask io.Reader, img *Raster) error {
	for bit := 0; bit < 4; bit++ {
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x += 8 {
				b, err := readByte(data)
				if err != nil {
					return err
				}
				orDataByte(img, x, y, uint(bit), b)

				if bit == 3 {
					m, err := readByte(mask)
					if err != nil {
						return err
					}
					orSharedMaskByte(img, x, y, m)
				}
			}
		}
	}
	return nil
}

func writeSeparateMaskBank(data, mask io.Writer, img *Raster) error {
	for bit := 0; bit < 4; bit++ {
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x += 8 {
				if err := writeByte(data, packDataByte(img, x, y, uint(bit))); err != nil {
					return err
				}
				if bit == 3 {
					if err := writeByte(mask, packSharedMaskByte(img, x, y)); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// descendingXGroups returns the 8-pixel-group starting x-offsets in the
// order cursors.c reads them: from high to low, i.e. {width-8, ..., 0}.
func descendingXGroups(width int) []int {
	groups := make([]int, 0, width/8)
	for x := width - 8; x >= 0; x -= 8 {
		groups = append(groups, x)
	}
	return groups
}

func readInterleavedMaskBank(r io.Reader, img *Raster) error {
	xGroups := descendingXGroups(img.Width)
	for bit := 0; bit < 4; bit++ {
		for y := 0; y < img.Height; y++ {
			for typ := 0; typ < 2; typ++ {
				for _, x := range xGroups {
					b, err := readByte(r)
					if err != nil {
						return err
					}
					if typ == 1 {
						orDataByte(img, x, y, uint(bit), b)
					} else {
						orInvertedMaskByte(img, x, y, uint(bit), b)
					}
				}
			}
		}
	}
	return nil
}

func writeInterleavedMaskBank(w io.Writer, img *Raster) error {
	xGroups := descendingXGroups(img.Width)
	for bit := 0; bit < 4; bit++ {
		for y := 0; y < img.Height; y++ {
			for typ := 0; typ < 2; typ++ {
				for _, x := range xGroups {
					var b byte
					if typ == 1 {
						b = packDataByte(img, x, y, uint(bit))
					} else {
						b = packInvertedMaskByte(img, x, y, uint(bit))
					}
					if err := writeByte(w, b); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// orDataByte ORs the 8 MSB-first bits of b, as color bit-plane `bit`, into
// the 8 pixels starting at (x, y).
func orDataByte(img *Raster, x, y int, bit uint, b byte) {
	row := y * img.Width
	for pixel := 0; pixel < 8; pixel++ {
		v := (b >> uint(7-pixel)) & 1
		img.Pixels[row+x+pixel] |= v << bit
	}
}

func packDataByte(img *Raster, x, y int, bit uint) byte {
	row := y * img.Width
	var b byte
	for pixel := 0; pixel < 8; pixel++ {
		v := (img.Pixels[row+x+pixel] >> bit) & 1
		b |= v << uint(7-pixel)
	}
	return b
}

// orSharedMaskByte ORs b's bits, un-inverted, into the single shared
// transparency flag (bit 4) of the 8 pixels starting at (x, y).
func orSharedMaskByte(img *Raster, x, y int, b byte) {
	row := y * img.Width
	for pixel := 0; pixel < 8; pixel++ {
		v := (b >> uint(7-pixel)) & 1
		img.Pixels[row+x+pixel] |= v << 4
	}
}

func packSharedMaskByte(img *Raster, x, y int) byte {
	row := y * img.Width
	var b byte
	for pixel := 0; pixel < 8; pixel++ {
		v := (img.Pixels[row+x+pixel] >> 4) & 1
		b |= v << uint(7-pixel)
	}
	return b
}

// orInvertedMaskByte ORs the complement of b's bits into the per-bitplane
// transparency flag at bit 4+bit of the 8 pixels starting at (x, y).
func orInvertedMaskByte(img *Raster, x, y int, bit uint, b byte) {
	row := y * img.Width
	for pixel := 0; pixel < 8; pixel++ {
		v := 1 - (b>>uint(7-pixel))&1
		img.Pixels[row+x+pixel] |= v << (4 + bit)
	}
}

func packInvertedMaskByte(img *Raster, x, y int, bit uint) byte {
	row := y * img.Width
	var b byte
	for pixel := 0; pixel < 8; pixel++ {
		v := 1 - (img.Pixels[row+x+pixel]>>(4+bit))&1
		b |= v << uint(7-pixel)
	}
	return b
}
