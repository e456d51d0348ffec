// Package msq implements the MSQ block framing shared by every Wasteland
// asset file: a short header that announces whether the block that
// follows is raw bytes, a Huffman-coded payload, or a CPA animation
// stream, plus (for the latter two) the payload's uncompressed size.
package msq

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bitrot-games/wasteland/wlerr"
)

// Type identifies which of the three MSQ block shapes a Header describes.
type Type int

const (
	// Uncompressed blocks carry their payload as raw bytes with no size
	// prefix; the header is 4 bytes: "msq0" or "msq1".
	Uncompressed Type = iota
	// Compressed blocks are Huffman-coded. The header is 8 bytes: a
	// little-endian uncompressed size followed by "msq" and a disk byte
	// (0 or 1).
	Compressed
	// CpaAnimation blocks are Huffman-coded CPA animation streams. The
	// header is 8 bytes: a little-endian size followed by the 4-byte
	// magic 08 67 01 00.
	CpaAnimation
)

func (t Type) String() string {
	switch t {
	case Uncompressed:
		return "uncompressed"
	case Compressed:
		return "compressed"
	case CpaAnimation:
		return "cpa-animation"
	default:
		return "unknown"
	}
}

// Header is a decoded MSQ block header.
type Header struct {
	Type Type
	Disk byte
	// Size is the uncompressed payload size in bytes. It is 0 for
	// Uncompressed blocks, which carry no size prefix.
	Size uint32
}

var cpaMagic = [4]byte{0x08, 0x67, 0x01, 0x00}

// ReadHeader reads and classifies the next MSQ header from r. A clean EOF
// before any bytes are read is returned unwrapped so callers looping over
// a sequence of blocks (tiles, pics animations) can detect end-of-stream;
// any other truncation is reported as wlerr.ErrUnexpectedEOF, and an
// unrecognized magic as wlerr.ErrBadMagic.
func ReadHeader(r io.Reader) (Header, error) {
	var first [4]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = fmt.Errorf("msq: reading header: %w", wlerr.ErrUnexpectedEOF)
		}
		return Header{}, err
	}

	if first[0] == 'm' && first[1] == 's' && first[2] == 'q' && (first[3] == '0' || first[3] == '1') {
		return Header{Type: Uncompressed, Disk: first[3] - '0'}, nil
	}

	size := binary.LittleEndian.Uint32(first[:])
	var second [4]byte
	if _, err := io.ReadFull(r, second[:]); err != nil {
		return Header{}, fmt.Errorf("msq: reading header: %w", wlerr.ErrUnexpectedEOF)
	}

	if second[0] == 'm' && second[1] == 's' && second[2] == 'q' && (second[3] == 0 || second[3] == 1) {
		return Header{Type: Compressed, Disk: second[3], Size: size}, nil
	}
	if second == cpaMagic {
		return Header{Type: CpaAnimation, Disk: second[3], Size: size}, nil
	}

	return Header{}, fmt.Errorf("msq: unrecognized block type %x %x %x %x: %w",
		second[0], second[1], second[2], second[3], wlerr.ErrBadMagic)
}

// WriteHeader writes h to w in the layout ReadHeader expects.
func WriteHeader(w io.Writer, h Header) error {
	switch h.Type {
	case Uncompressed:
		if h.Disk != 0 && h.Disk != 1 {
			return fmt.Errorf("msq: uncompressed disk number %d out of range: %w", h.Disk, wlerr.ErrBadArgument)
		}
		_, err := w.Write([]byte{'m', 's', 'q', '0' + h.Disk})
		if err != nil {
			return fmt.Errorf("msq: writing header: %w", wlerr.ErrWriteFailed)
		}
		return nil
	case Compressed:
		if h.Disk != 0 && h.Disk != 1 {
			return fmt.Errorf("msq: compressed disk number %d out of range: %w", h.Disk, wlerr.ErrBadArgument)
		}
		return writeSizedHeader(w, h.Size, []byte{'m', 's', 'q', h.Disk})
	case CpaAnimation:
		return writeSizedHeader(w, h.Size, cpaMagic[:])
	default:
		return fmt.Errorf("msq: unknown block type %d: %w", h.Type, wlerr.ErrBadArgument)
	}
}

func writeSizedHeader(w io.Writer, size uint32, tail []byte) error {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], size)
	copy(buf[4:], tail)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("msq: writing header: %w", wlerr.ErrWriteFailed)
	}
	return nil
}
