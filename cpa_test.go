package wasteland

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bitrot-games/wasteland/raster"
	"github.com/bitrot-games/wasteland/wlerr"
)

func makeCpaBase() *raster.Raster {
	img := raster.New(PicWidth, PicHeight)
	for p := range img.Pixels {
		img.Pixels[p] = byte(p % 16)
	}
	return img
}

func TestCpa_RoundTrip(t *testing.T) {
	anim := &CpaAnimation{
		BaseFrame: makeCpaBase(),
		Frames: []CpaFrame{
			{
				Delay: 3,
				Updates: []CpaUpdate{
					{X: 0, Y: 0, Pixels: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
					{X: 8, Y: 0, Pixels: []byte{0, 0, 0, 0, 0, 0, 0, 1}},
				},
			},
			{
				Delay:   1,
				Updates: nil,
			},
		},
	}

	var buf bytes.Buffer
	if err := WriteCpa(&buf, anim); err != nil {
		t.Fatalf("WriteCpa: %v", err)
	}
	got, err := ReadCpa(&buf)
	if err != nil {
		t.Fatalf("ReadCpa: %v", err)
	}
	if !bytes.Equal(got.BaseFrame.Pixels, anim.BaseFrame.Pixels) {
		t.Fatalf("base frame round trip mismatch")
	}
	if len(got.Frames) != len(anim.Frames) {
		t.Fatalf("got %d frames, want %d", len(got.Frames), len(anim.Frames))
	}
	for i, frame := range anim.Frames {
		if got.Frames[i].Delay != frame.Delay {
			t.Fatalf("frame %d delay = %d, want %d", i, got.Frames[i].Delay, frame.Delay)
		}
		if len(got.Frames[i].Updates) != len(frame.Updates) {
			t.Fatalf("frame %d has %d updates, want %d", i, len(got.Frames[i].Updates), len(frame.Updates))
		}
		for j, update := range frame.Updates {
			gu := got.Frames[i].Updates[j]
			if gu.X != update.X || gu.Y != update.Y {
				t.Fatalf("frame %d update %d position = (%d,%d), want (%d,%d)", i, j, gu.X, gu.Y, update.X, update.Y)
			}
			if !bytes.Equal(gu.Pixels, update.Pixels) {
				t.Fatalf("frame %d update %d pixels = %v, want %v", i, j, gu.Pixels, update.Pixels)
			}
		}
	}
}

func TestCpa_ApplyFrame(t *testing.T) {
	img := raster.New(PicWidth, PicHeight)
	frame := CpaFrame{Updates: []CpaUpdate{{X: 8, Y: 1, Pixels: []byte{1, 1, 1, 1, 1, 1, 1, 1}}}}
	if err := ApplyCpaFrame(img, frame); err != nil {
		t.Fatalf("ApplyCpaFrame: %v", err)
	}
	base := 1*PicWidth + 8
	for j := 0; j < 8; j++ {
		if img.Pixels[base+j] != 1 {
			t.Fatalf("pixel %d = %#x, want 1", base+j, img.Pixels[base+j])
		}
	}
}

func TestCpa_WrongBaseDimensionsIsBadArgument(t *testing.T) {
	anim := &CpaAnimation{BaseFrame: raster.New(8, 8)}
	err := WriteCpa(&bytes.Buffer{}, anim)
	if !errors.Is(err, wlerr.ErrBadArgument) {
		t.Fatalf("WriteCpa(wrong dims) error = %v, want ErrBadArgument", err)
	}
}

func TestCpa_UnalignedUpdateIsBadArgument(t *testing.T) {
	anim := &CpaAnimation{
		BaseFrame: makeCpaBase(),
		Frames: []CpaFrame{
			{Updates: []CpaUpdate{{X: 1, Y: 0, Pixels: make([]byte, 8)}}},
		},
	}
	err := WriteCpa(&bytes.Buffer{}, anim)
	if !errors.Is(err, wlerr.ErrBadArgument) {
		t.Fatalf("WriteCpa(unaligned update) error = %v, want ErrBadArgument", err)
	}
}

func TestCpa_TruncatedStreamIsUnexpectedEOF(t *testing.T) {
	anim := &CpaAnimation{BaseFrame: makeCpaBase()}
	var buf bytes.Buffer
	if err := WriteCpa(&buf, anim); err != nil {
		t.Fatalf("WriteCpa: %v", err)
	}
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-1])
	_, err := ReadCpa(truncated)
	if !errors.Is(err, wlerr.ErrUnexpectedEOF) {
		t.Fatalf("ReadCpa(truncated) error = %v, want ErrUnexpectedEOF", err)
	}
}
