package raster

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bitrot-games/wasteland/wlerr"
)

var fontConfig = BankConfig{ImageCount: 172, ImageW: 8, ImageH: 8, Transparency: NoTransparency}
var spritesConfig = BankConfig{ImageCount: 10, ImageW: 16, ImageH: 16, Transparency: SeparateStreamDirect}
var cursorsConfig = BankConfig{ImageCount: 8, ImageW: 16, ImageH: 16, Transparency: InterleavedSameStreamInverted}

func TestFont_AllIndexOne_EncodesExactBytes(t *testing.T) {
	images := make([]*Raster, fontConfig.ImageCount)
	for i := range images {
		img := New(fontConfig.ImageW, fontConfig.ImageH)
		for p := range img.Pixels {
			img.Pixels[p] = 1
		}
		images[i] = img
	}

	var buf bytes.Buffer
	if err := WriteBank(fontConfig, &buf, nil, images); err != nil {
		t.Fatalf("WriteBank: %v", err)
	}
	if buf.Len() != 5504 {
		t.Fatalf("font bank is %d bytes, want 5504", buf.Len())
	}
	for g := 0; g < 172; g++ {
		base := g * 32
		for y := 0; y < 8; y++ {
			if got := buf.Bytes()[base+y]; got != 0xFF {
				t.Fatalf("glyph %d plane 0 row %d = %#x, want 0xff", g, y, got)
			}
		}
		for plane := 1; plane < 4; plane++ {
			for y := 0; y < 8; y++ {
				if got := buf.Bytes()[base+plane*8+y]; got != 0x00 {
					t.Fatalf("glyph %d plane %d row %d = %#x, want 0x00", g, plane, y, got)
				}
			}
		}
	}
}

func TestFont_RoundTrip(t *testing.T) {
	images := make([]*Raster, fontConfig.ImageCount)
	for i := range images {
		img := New(fontConfig.ImageW, fontConfig.ImageH)
		for p := range img.Pixels {
			img.Pixels[p] = byte((p + i) & 0x0f)
		}
		images[i] = img
	}
	var buf bytes.Buffer
	if err := WriteBank(fontConfig, &buf, nil, images); err != nil {
		t.Fatalf("WriteBank: %v", err)
	}
	got, err := ReadBank(fontConfig, &buf, nil)
	if err != nil {
		t.Fatalf("ReadBank: %v", err)
	}
	for i := range images {
		if !bytes.Equal(got[i].Pixels, images[i].Pixels) {
			t.Fatalf("glyph %d round trip mismatch", i)
		}
	}
}

// A fully transparent (index 0, high nibble set) sprite's shared mask
// plane is written un-inverted: transparency flag 1 -> mask bit 1 -> 0xff.
func TestSprites_AllTransparent_MaskIsAllOnes(t *testing.T) {
	images := make([]*Raster, spritesConfig.ImageCount)
	for i := range images {
		img := New(spritesConfig.ImageW, spritesConfig.ImageH)
		for p := range img.Pixels {
			img.Pixels[p] = 0x10
		}
		images[i] = img
	}

	var data, mask bytes.Buffer
	if err := WriteBank(spritesConfig, &data, &mask, images); err != nil {
		t.Fatalf("WriteBank: %v", err)
	}
	if mask.Len() != 320 {
		t.Fatalf("sprite mask stream is %d bytes, want 320", mask.Len())
	}
	for i, b := range mask.Bytes() {
		if b != 0xFF {
			t.Fatalf("mask byte %d = %#x, want 0xff", i, b)
		}
	}
}

func TestSprites_RoundTrip(t *testing.T) {
	images := make([]*Raster, spritesConfig.ImageCount)
	for i := range images {
		img := New(spritesConfig.ImageW, spritesConfig.ImageH)
		for p := range img.Pixels {
			if (p+i)%7 == 0 {
				img.Pixels[p] = 0x10 | byte(p&0x0f)
			} else {
				img.Pixels[p] = byte(p & 0x0f)
			}
		}
		images[i] = img
	}

	var data, mask bytes.Buffer
	if err := WriteBank(spritesConfig, &data, &mask, images); err != nil {
		t.Fatalf("WriteBank: %v", err)
	}
	got, err := ReadBank(spritesConfig, &data, &mask)
	if err != nil {
		t.Fatalf("ReadBank: %v", err)
	}
	for i := range images {
		for p := range images[i].Pixels {
			want := images[i].Pixels[p] & 0x1f
			gotPixel := got[i].Pixels[p] & 0x1f
			if gotPixel != want {
				t.Fatalf("sprite %d pixel %d = %#x, want %#x", i, p, gotPixel, want)
			}
		}
	}
}

func TestCursors_RoundTrip(t *testing.T) {
	images := make([]*Raster, cursorsConfig.ImageCount)
	for i := range images {
		img := New(cursorsConfig.ImageW, cursorsConfig.ImageH)
		for p := range img.Pixels {
			color := byte(p % 16)
			img.Pixels[p] = color
			if (p+i)%5 == 0 {
				img.Pixels[p] |= 0xf0
			}
		}
		images[i] = img
	}

	var buf bytes.Buffer
	if err := WriteBank(cursorsConfig, &buf, nil, images); err != nil {
		t.Fatalf("WriteBank: %v", err)
	}
	if buf.Len() != 2048 {
		t.Fatalf("cursor bank is %d bytes, want 2048", buf.Len())
	}
	got, err := ReadBank(cursorsConfig, &buf, nil)
	if err != nil {
		t.Fatalf("ReadBank: %v", err)
	}
	for i := range images {
		if !bytes.Equal(got[i].Pixels, images[i].Pixels) {
			t.Fatalf("cursor %d round trip mismatch:\ngot:  %v\nwant: %v", i, got[i].Pixels, images[i].Pixels)
		}
	}
}

func TestCursors_SolidPixel_HasAllTransparencyBitsClear(t *testing.T) {
	images := make([]*Raster, cursorsConfig.ImageCount)
	for i := range images {
		img := New(cursorsConfig.ImageW, cursorsConfig.ImageH)
		for p := range img.Pixels {
			img.Pixels[p] = 5
		}
		images[i] = img
	}
	var buf bytes.Buffer
	if err := WriteBank(cursorsConfig, &buf, nil, images); err != nil {
		t.Fatalf("WriteBank: %v", err)
	}
	got, err := ReadBank(cursorsConfig, &buf, nil)
	if err != nil {
		t.Fatalf("ReadBank: %v", err)
	}
	for i := range images {
		for p, b := range got[i].Pixels {
			if b != 5 {
				t.Fatalf("cursor %d pixel %d = %#x, want 0x05 (solid, no transparency bits)", i, p, b)
			}
		}
	}
}

func TestReadBank_SeparateStreamWithoutMaskIsBadArgument(t *testing.T) {
	_, err := ReadBank(spritesConfig, &bytes.Buffer{}, nil)
	if !errors.Is(err, wlerr.ErrBadArgument) {
		t.Fatalf("ReadBank without mask stream error = %v, want ErrBadArgument", err)
	}
}

func TestWriteBank_WrongImageCountIsBadArgument(t *testing.T) {
	err := WriteBank(fontConfig, &bytes.Buffer{}, nil, nil)
	if !errors.Is(err, wlerr.ErrBadArgument) {
		t.Fatalf("WriteBank with wrong image count error = %v, want ErrBadArgument", err)
	}
}

func TestReadBank_TruncatedStreamIsUnexpectedEOF(t *testing.T) {
	_, err := ReadBank(fontConfig, bytes.NewReader(make([]byte, 10)), nil)
	if !errors.Is(err, wlerr.ErrUnexpectedEOF) {
		t.Fatalf("ReadBank(truncated) error = %v, want ErrUnexpectedEOF", err)
	}
}
