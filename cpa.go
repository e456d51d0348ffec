package wasteland

import (
	"fmt"
	"io"

	"github.com/bitrot-games/wasteland/internal/bitio"
	"github.com/bitrot-games/wasteland/internal/huffman"
	"github.com/bitrot-games/wasteland/internal/msq"
	"github.com/bitrot-games/wasteland/raster"
	"github.com/bitrot-games/wasteland/wlerr"
)

// cpaStride is the row pitch CPA update offsets are computed against. It is
// a format constant, not the raster width: a CPA frame is 288 pixels wide
// but offsets are measured as if rows were 320 pixels wide.
const cpaStride = 320

const cpaUpdateEnd = 0xFFFF
const cpaAnimationEnd = 0xFFFF

// CpaUpdate is one changed 8-pixel cell within a frame: the cell's new
// pixel values (one nibble per pixel, 8 of them), written directly into
// the raster at (X, Y) — not XORed, unlike a PicsUpdate.
type CpaUpdate struct {
	X, Y   int
	Pixels []byte // len 8, each 0-15
}

// CpaFrame is one step of a CPA animation: a delay (in the game's tick
// units) and the set of 8-pixel cells that changed since the previous
// frame.
type CpaFrame struct {
	Delay   uint16
	Updates []CpaUpdate
}

// CpaAnimation is a single-scene Wasteland animation: a base frame plus a
// script of incremental updates.
type CpaAnimation struct {
	BaseFrame *raster.Raster
	Frames    []CpaFrame
}

// ReadCpa reads a CPA animation: an MSQ-Compressed block holding a
// Huffman-coded, VXor-whitened 288x128 base frame, followed by a second
// MSQ block, of type CpaAnimation, holding the Huffman-coded animation
// script.
func ReadCpa(r io.Reader) (*CpaAnimation, error) {
	base, err := readCpaBaseFrame(r)
	if err != nil {
		return nil, err
	}
	frames, err := readCpaScript(r)
	if err != nil {
		return nil, err
	}
	return &CpaAnimation{BaseFrame: base, Frames: frames}, nil
}

func readCpaBaseFrame(r io.Reader) (*raster.Raster, error) {
	header, err := msq.ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if header.Type != msq.Compressed {
		return nil, fmt.Errorf("wasteland: cpa base frame block has type %s, want compressed: %w", header.Type, wlerr.ErrBadBlockType)
	}

	br := bitio.NewReader(r)
	tree, err := huffman.ReadNode(br)
	if err != nil {
		return nil, err
	}
	base := raster.New(PicWidth, PicHeight)
	if err := readNibblePlaneHuffman(br, tree, base); err != nil {
		return nil, err
	}
	base.VXorDecode()
	return base, nil
}

func readCpaScript(r io.Reader) ([]CpaFrame, error) {
	header, err := msq.ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if header.Type != msq.CpaAnimation {
		return nil, fmt.Errorf("wasteland: cpa script block has type %s, want cpa-animation: %w", header.Type, wlerr.ErrBadBlockType)
	}

	br := bitio.NewReader(r)
	tree, err := huffman.ReadNode(br)
	if err != nil {
		return nil, err
	}
	if _, err := huffman.ReadWordLE(br, tree); err != nil {
		return nil, err
	}

	var frames []CpaFrame
	for {
		delay, err := huffman.ReadWordLE(br, tree)
		if err != nil {
			return nil, err
		}
		if delay == cpaAnimationEnd {
			return frames, nil
		}
		frame := CpaFrame{Delay: delay}
		for {
			offset, err := huffman.ReadWordLE(br, tree)
			if err != nil {
				return nil, err
			}
			if offset == cpaUpdateEnd {
				break
			}
			raw, err := huffman.ReadBlock(br, tree, 4)
			if err != nil {
				return nil, err
			}
			pos := int(offset) * 8
			frame.Updates = append(frame.Updates, CpaUpdate{
				X:      pos % cpaStride,
				Y:      pos / cpaStride,
				Pixels: unpackNibbles(raw),
			})
		}
		frames = append(frames, frame)
	}
}

// WriteCpa writes anim as a CPA animation. anim.BaseFrame must be
// PicWidth x PicHeight.
func WriteCpa(w io.Writer, anim *CpaAnimation) error {
	if anim.BaseFrame.Width != PicWidth || anim.BaseFrame.Height != PicHeight {
		return fmt.Errorf("wasteland: cpa base frame is %dx%d, want %dx%d: %w",
			anim.BaseFrame.Width, anim.BaseFrame.Height, PicWidth, PicHeight, wlerr.ErrBadArgument)
	}
	if err := writeCpaBaseFrame(w, anim.BaseFrame); err != nil {
		return err
	}
	return writeCpaScript(w, anim.Frames)
}

func writeCpaBaseFrame(w io.Writer, base *raster.Raster) error {
	encoded := base.Clone()
	encoded.VXorEncode()
	payload := packNibblePlane(encoded)

	tree, idx, err := huffman.BuildTree(payload)
	if err != nil {
		return err
	}
	if err := msq.WriteHeader(w, msq.Header{Type: msq.Compressed, Disk: 0, Size: uint32(len(payload))}); err != nil {
		return err
	}
	bw := bitio.NewWriter(w)
	if err := huffman.WriteNode(bw, tree); err != nil {
		return err
	}
	for _, b := range payload {
		if err := huffman.WriteByte(bw, tree, idx, b); err != nil {
			return err
		}
	}
	return bw.FillByte(0)
}

func writeCpaScript(w io.Writer, frames []CpaFrame) error {
	var script []byte
	for _, frame := range frames {
		script = appendWordLE(script, frame.Delay)
		for _, update := range frame.Updates {
			if err := validateCpaUpdate(update); err != nil {
				return err
			}
			offset := (update.Y*cpaStride + update.X) / 8
			script = appendWordLE(script, uint16(offset))
			script = append(script, packNibbles(update.Pixels)...)
		}
		script = appendWordLE(script, cpaUpdateEnd)
	}
	script = appendWordLE(script, cpaAnimationEnd)
	script = appendWordLE(script, 0x0000)

	payload := append(appendWordLE(nil, uint16(len(script))), script...)
	tree, idx, err := huffman.BuildTree(payload)
	if err != nil {
		return err
	}
	if err := msq.WriteHeader(w, msq.Header{Type: msq.CpaAnimation, Size: uint32(len(payload))}); err != nil {
		return err
	}
	bw := bitio.NewWriter(w)
	if err := huffman.WriteNode(bw, tree); err != nil {
		return err
	}
	for _, b := range payload {
		if err := huffman.WriteByte(bw, tree, idx, b); err != nil {
			return err
		}
	}
	return bw.FillByte(0)
}

func validateCpaUpdate(u CpaUpdate) error {
	if len(u.Pixels) != 8 {
		return fmt.Errorf("wasteland: cpa update has %d pixels, want 8: %w", len(u.Pixels), wlerr.ErrBadArgument)
	}
	if (u.Y*cpaStride+u.X)%8 != 0 {
		return fmt.Errorf("wasteland: cpa update at (%d,%d) is not 8-pixel aligned: %w", u.X, u.Y, wlerr.ErrBadArgument)
	}
	return nil
}

func appendWordLE(buf []byte, word uint16) []byte {
	return append(buf, byte(word), byte(word>>8))
}

func unpackNibbles(raw []byte) []byte {
	out := make([]byte, len(raw)*2)
	for i, b := range raw {
		out[2*i] = b >> 4
		out[2*i+1] = b & 0x0f
	}
	return out
}

func packNibbles(nibbles []byte) []byte {
	out := make([]byte, len(nibbles)/2)
	for i := range out {
		out[i] = nibbles[2*i]<<4 | (nibbles[2*i+1] & 0x0f)
	}
	return out
}
