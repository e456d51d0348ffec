package wasteland

import (
	"errors"
	"fmt"
	"io"

	"github.com/bitrot-games/wasteland/internal/bitio"
	"github.com/bitrot-games/wasteland/internal/huffman"
	"github.com/bitrot-games/wasteland/internal/msq"
	"github.com/bitrot-games/wasteland/raster"
	"github.com/bitrot-games/wasteland/wlerr"
)

// PicsWidth and PicsHeight are the fixed dimensions of a PICS/ALLPICS base
// frame, smaller than a standalone 288x128 PIC.
const (
	PicsWidth  = 96
	PicsHeight = 84
)

const (
	picsInstructionSentinel = 0xFF
	picsUpdateSentinel      = 0xFFFF
)

// PicsInstruction is one scripted delay/update-set pairing within a scene.
type PicsInstruction struct {
	Delay  byte
	Update byte
}

// PicsInstructionSet is a run of instructions between sentinel bytes.
type PicsInstructionSet struct {
	Instructions []PicsInstruction
}

// PicsUpdate is one changed run of pixels: PixelXors holds one nibble XOR
// delta per pixel, applied starting at (X, Y).
type PicsUpdate struct {
	X, Y      int
	PixelXors []byte
}

// PicsUpdateSet is a run of updates between sentinel words. It may be
// empty: an empty set is a legitimate "nothing changed this step" entry.
type PicsUpdateSet struct {
	Updates []PicsUpdate
}

// PicsAnimation is one scene of a multi-scene ALLPICS archive: a base
// frame plus its instruction and update scripts.
type PicsAnimation struct {
	Base            *raster.Raster
	InstructionSets []PicsInstructionSet
	UpdateSets      []PicsUpdateSet
}

// ReadPicsAnimations reads a concatenation of PICS animations until the
// stream is exhausted. A clean EOF at the start of the next animation's
// base-frame block ends the sequence normally.
func ReadPicsAnimations(r io.Reader) ([]*PicsAnimation, error) {
	var anims []*PicsAnimation
	for {
		anim, err := readPicsAnimation(r)
		if errors.Is(err, io.EOF) {
			return anims, nil
		}
		if err != nil {
			return nil, err
		}
		anims = append(anims, anim)
	}
}

// ReadPicsAnimation reads a single PICS animation. Unlike ReadTiles and
// ReadCpa, the MSQ headers framing each half are read only to keep the
// stream's byte cursor aligned: their type and size fields are discarded,
// matching the original reader.
func ReadPicsAnimation(r io.Reader) (*PicsAnimation, error) {
	return readPicsAnimation(r)
}

func readPicsAnimation(r io.Reader) (*PicsAnimation, error) {
	if _, err := msq.ReadHeader(r); err != nil {
		return nil, err
	}
	br := bitio.NewReader(r)
	tree, err := huffman.ReadNode(br)
	if err != nil {
		return nil, err
	}
	base := raster.New(PicsWidth, PicsHeight)
	if err := readNibblePlaneHuffman(br, tree, base); err != nil {
		return nil, err
	}
	base.VXorDecode()

	if _, err := msq.ReadHeader(r); err != nil {
		return nil, fmt.Errorf("wasteland: reading pics script header: %w", wrapScriptEOF(err))
	}
	br2 := bitio.NewReader(r)
	tree2, err := huffman.ReadNode(br2)
	if err != nil {
		return nil, err
	}

	instrLen, err := huffman.ReadWordLE(br2, tree2)
	if err != nil {
		return nil, err
	}
	instrBytes, err := huffman.ReadBlock(br2, tree2, int(instrLen))
	if err != nil {
		return nil, err
	}
	updateLen, err := huffman.ReadWordLE(br2, tree2)
	if err != nil {
		return nil, err
	}
	updateBytes, err := huffman.ReadBlock(br2, tree2, int(updateLen))
	if err != nil {
		return nil, err
	}

	instructionSets, err := parseInstructionSets(instrBytes)
	if err != nil {
		return nil, err
	}
	updateSets, err := parseUpdateSets(updateBytes)
	if err != nil {
		return nil, err
	}

	return &PicsAnimation{
		Base:            base,
		InstructionSets: instructionSets,
		UpdateSets:      updateSets,
	}, nil
}

// wrapScriptEOF turns a clean end-of-stream mid-animation (after the base
// frame has already been read) into ErrUnexpectedEOF: a dangling base
// frame with no script is a truncated file, not a valid sequence end.
func wrapScriptEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("wasteland: pics animation ends after base frame: %w", wlerr.ErrUnexpectedEOF)
	}
	return err
}

// parseInstructionSets splits data on 0xFF sentinel bytes into instruction
// sets. Following the original reader, a sentinel only closes out a set
// that has at least one instruction in it: a sentinel reached before any
// instruction was accumulated (a leading sentinel, or two sentinels back
// to back) produces no set at all, it just resets the accumulator.
func parseInstructionSets(data []byte) ([]PicsInstructionSet, error) {
	var sets []PicsInstructionSet
	cur := PicsInstructionSet{}
	for i := 0; i < len(data); {
		if data[i] == picsInstructionSentinel {
			if len(cur.Instructions) > 0 {
				sets = append(sets, cur)
				cur = PicsInstructionSet{}
			}
			i++
			continue
		}
		if i+1 >= len(data) {
			return nil, fmt.Errorf("wasteland: pics instruction stream ends mid-entry: %w", wlerr.ErrUnexpectedEOF)
		}
		cur.Instructions = append(cur.Instructions, PicsInstruction{Delay: data[i], Update: data[i+1]})
		i += 2
	}
	if len(cur.Instructions) > 0 {
		sets = append(sets, cur)
	}
	return sets, nil
}

// parseUpdateSets splits data on 0xFFFF sentinel words into update sets.
// Unlike parseInstructionSets, a sentinel here always closes out a set even
// if it has zero updates: an empty set is a legitimate "nothing changed"
// entry, not an absent one.
func parseUpdateSets(data []byte) ([]PicsUpdateSet, error) {
	var sets []PicsUpdateSet
	cur := PicsUpdateSet{}
	for i := 0; i < len(data); {
		if i+1 >= len(data) {
			return nil, fmt.Errorf("wasteland: pics update stream ends mid-entry: %w", wlerr.ErrUnexpectedEOF)
		}
		lo, hi := data[i], data[i+1]
		word := uint16(hi)<<8 | uint16(lo)
		if word == picsUpdateSentinel {
			sets = append(sets, cur)
			cur = PicsUpdateSet{}
			i += 2
			continue
		}
		i += 2
		length := int(hi>>4) + 1
		position := int(uint16(hi&0x0f)<<8 | uint16(lo))
		if i+length > len(data) {
			return nil, fmt.Errorf("wasteland: pics update run of %d bytes runs past stream end: %w", length, wlerr.ErrUnexpectedEOF)
		}
		pixelIndex := position * 2
		cur.Updates = append(cur.Updates, PicsUpdate{
			X:         pixelIndex % PicsWidth,
			Y:         pixelIndex / PicsWidth,
			PixelXors: unpackNibbles(data[i : i+length]),
		})
		i += length
	}
	// A correctly terminated stream always closes its last set with a
	// sentinel inside the loop above, the same as the original reader: cur
	// is only non-empty here for a malformed stream whose final set was
	// never terminated.
	if len(cur.Updates) > 0 {
		sets = append(sets, cur)
	}
	return sets, nil
}

// WritePicsAnimations writes each element of anims as its own PICS
// animation, concatenated.
func WritePicsAnimations(w io.Writer, anims []*PicsAnimation) error {
	for _, anim := range anims {
		if err := WritePicsAnimation(w, anim); err != nil {
			return err
		}
	}
	return nil
}

// WritePicsAnimation writes anim. anim.Base must be PicsWidth x
// PicsHeight.
func WritePicsAnimation(w io.Writer, anim *PicsAnimation) error {
	if anim.Base.Width != PicsWidth || anim.Base.Height != PicsHeight {
		return fmt.Errorf("wasteland: pics base frame is %dx%d, want %dx%d: %w",
			anim.Base.Width, anim.Base.Height, PicsWidth, PicsHeight, wlerr.ErrBadArgument)
	}

	encoded := anim.Base.Clone()
	encoded.VXorEncode()
	basePayload := packNibblePlane(encoded)
	if err := writeHuffmanBlock(w, basePayload); err != nil {
		return err
	}

	instrBytes := encodeInstructionSets(anim.InstructionSets)
	updateBytes, err := encodeUpdateSets(anim.UpdateSets)
	if err != nil {
		return err
	}

	var script []byte
	script = appendWordLE(script, uint16(len(instrBytes)))
	script = append(script, instrBytes...)
	script = appendWordLE(script, uint16(len(updateBytes)))
	script = append(script, updateBytes...)

	return writeHuffmanBlock(w, script)
}

func writeHuffmanBlock(w io.Writer, payload []byte) error {
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

// encodeInstructionSets terminates every set (including the last) with a
// sentinel, so parseInstructionSets always sees a trailing sentinel to
// flush the final set through rather than relying on its end-of-data
// fallback. Sets with zero instructions contribute nothing: the format has
// no way to distinguish "an empty set here" from "no set here" (see
// parseInstructionSets), so they are silently skipped.
func encodeInstructionSets(sets []PicsInstructionSet) []byte {
	var out []byte
	for _, set := range sets {
		if len(set.Instructions) == 0 {
			continue
		}
		for _, instr := range set.Instructions {
			out = append(out, instr.Delay, instr.Update)
		}
		out = append(out, picsInstructionSentinel)
	}
	return out
}

// encodeUpdateSets terminates every set (including the last) with a
// sentinel, mirroring encodeInstructionSets: the original reader only ever
// pushes a set into its result from inside the sentinel branch, so an
// unterminated trailing set would be silently lost rather than decoded.
func encodeUpdateSets(sets []PicsUpdateSet) ([]byte, error) {
	var out []byte
	for _, set := range sets {
		for _, update := range set.Updates {
			pixels := len(update.PixelXors)
			if pixels < 2 || pixels > 32 || pixels%2 != 0 {
				return nil, fmt.Errorf("wasteland: pics update run of %d pixels is not an even count in 2-32: %w", pixels, wlerr.ErrBadArgument)
			}
			length := pixels / 2 // nibble-packed bytes on the wire
			pixelIndex := update.Y*PicsWidth + update.X
			if pixelIndex%2 != 0 {
				return nil, fmt.Errorf("wasteland: pics update at (%d,%d) is not pixel-pair aligned: %w", update.X, update.Y, wlerr.ErrBadArgument)
			}
			position := pixelIndex / 2
			out = append(out, byte(position&0xff), byte(length-1)<<4|byte((position>>8)&0x0f))
			out = append(out, packNibbles(update.PixelXors)...)
		}
		out = appendWordLE(out, picsUpdateSentinel)
	}
	return out, nil
}
