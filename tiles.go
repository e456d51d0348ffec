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

const (
	tileWidth      = 16
	tileHeight     = 16
	tileByteLength = tileWidth * tileHeight / 2 // nibble-packed
)

// ReadTiles reads a concatenation of MSQ-Compressed blocks, each holding
// one tileset of 16x16 tiles, until the stream is exhausted. A clean EOF
// at the start of the next block ends the sequence normally.
func ReadTiles(r io.Reader) ([][]*raster.Raster, error) {
	var sets [][]*raster.Raster
	for {
		header, err := msq.ReadHeader(r)
		if errors.Is(err, io.EOF) {
			return sets, nil
		}
		if err != nil {
			return nil, err
		}
		if header.Type != msq.Compressed {
			return nil, fmt.Errorf("wasteland: tiles block has type %s, want compressed: %w", header.Type, wlerr.ErrBadBlockType)
		}

		count := int(header.Size) / tileByteLength
		tiles, err := readTileSet(r, count)
		if err != nil {
			return nil, err
		}
		sets = append(sets, tiles)
	}
}

func readTileSet(r io.Reader, count int) ([]*raster.Raster, error) {
	br := bitio.NewReader(r)
	tree, err := huffman.ReadNode(br)
	if err != nil {
		return nil, err
	}

	tiles := make([]*raster.Raster, count)
	for i := range tiles {
		tile := raster.New(tileWidth, tileHeight)
		if err := readNibblePlaneHuffman(br, tree, tile); err != nil {
			return nil, err
		}
		tile.VXorDecode()
		tiles[i] = tile
	}
	return tiles, nil
}

// WriteTiles writes each element of sets as its own MSQ-Compressed block.
func WriteTiles(w io.Writer, sets [][]*raster.Raster) error {
	for _, tiles := range sets {
		if err := writeTileSet(w, tiles); err != nil {
			return err
		}
	}
	return nil
}

func writeTileSet(w io.Writer, tiles []*raster.Raster) error {
	size := uint32(len(tiles) * tileByteLength)
	if err := msq.WriteHeader(w, msq.Header{Type: msq.Compressed, Disk: 0, Size: size}); err != nil {
		return err
	}

	encoded := make([]*raster.Raster, len(tiles))
	for i, tile := range tiles {
		if tile.Width != tileWidth || tile.Height != tileHeight {
			return fmt.Errorf("wasteland: tile is %dx%d, want %dx%d: %w",
				tile.Width, tile.Height, tileWidth, tileHeight, wlerr.ErrBadArgument)
		}
		clone := tile.Clone()
		clone.VXorEncode()
		encoded[i] = clone
	}

	var payload []byte
	for _, tile := range encoded {
		payload = append(payload, packNibblePlane(tile)...)
	}

	tree, idx, err := huffman.BuildTree(payload)
	if err != nil {
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

func readNibblePlaneHuffman(r *bitio.Reader, tree *huffman.Tree, img *raster.Raster) error {
	for y := 0; y < img.Height; y++ {
		row := y * img.Width
		for x := 0; x < img.Width; x += 2 {
			b, err := huffman.ReadByte(r, tree)
			if err != nil {
				return err
			}
			img.Pixels[row+x] = b >> 4
			img.Pixels[row+x+1] = b & 0x0f
		}
	}
	return nil
}

func packNibblePlane(img *raster.Raster) []byte {
	out := make([]byte, 0, img.Width*img.Height/2)
	for y := 0; y < img.Height; y++ {
		row := y * img.Width
		for x := 0; x < img.Width; x += 2 {
			out = append(out, img.Pixels[row+x]<<4|(img.Pixels[row+x+1]&0x0f))
		}
	}
	return out
}
