package wasteland

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bitrot-games/wasteland/raster"
	"github.com/bitrot-games/wasteland/wlerr"
)

func TestPic_Identity(t *testing.T) {
	img := raster.New(PicWidth, PicHeight)
	for y := 0; y < PicHeight; y++ {
		for x := 0; x < PicWidth; x++ {
			img.Pixels[y*PicWidth+x] = byte((x + y) % 16)
		}
	}

	var buf bytes.Buffer
	if err := WritePic(&buf, img); err != nil {
		t.Fatalf("WritePic: %v", err)
	}
	if buf.Len() != PicWidth*PicHeight/2 {
		t.Fatalf("pic is %d bytes, want %d", buf.Len(), PicWidth*PicHeight/2)
	}

	got, err := ReadPic(&buf)
	if err != nil {
		t.Fatalf("ReadPic: %v", err)
	}
	if !bytes.Equal(got.Pixels, img.Pixels) {
		t.Fatalf("pic round trip mismatch")
	}
}

func TestPic_WrongDimensionsIsBadArgument(t *testing.T) {
	err := WritePic(&bytes.Buffer{}, raster.New(8, 8))
	if !errors.Is(err, wlerr.ErrBadArgument) {
		t.Fatalf("WritePic(wrong dims) error = %v, want ErrBadArgument", err)
	}
}

func TestPic_TruncatedStreamIsUnexpectedEOF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePic(&buf, raster.New(PicWidth, PicHeight)); err != nil {
		t.Fatalf("WritePic: %v", err)
	}
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-1])
	if _, err := ReadPic(truncated); !errors.Is(err, wlerr.ErrUnexpectedEOF) {
		t.Fatalf("ReadPic(truncated) error = %v, want ErrUnexpectedEOF", err)
	}
}
