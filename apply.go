package wasteland

import (
	"fmt"

	"github.com/bitrot-games/wasteland/raster"
	"github.com/bitrot-games/wasteland/wlerr"
)

// ApplyCpaFrame copies frame's updates into img in place. Per update, the
// eight pixels replace img.Pixels[update.Y*img.Width+update.X:][:8]
// outright (not XORed — see CpaUpdate) with no row-boundary wraparound: a
// cell that crosses a row edge bleeds into the next row of the flat
// buffer, exactly as the original format allows.
func ApplyCpaFrame(img *raster.Raster, frame CpaFrame) error {
	for _, update := range frame.Updates {
		if err := setUpdate(img, update.X, update.Y, update.Pixels); err != nil {
			return err
		}
	}
	return nil
}

// ApplyPicsUpdateSet XORs set's updates into img in place, with the same
// no-wraparound flat-index semantics as ApplyCpaFrame.
func ApplyPicsUpdateSet(img *raster.Raster, set PicsUpdateSet) error {
	for _, update := range set.Updates {
		if err := xorUpdate(img, update.X, update.Y, update.PixelXors); err != nil {
			return err
		}
	}
	return nil
}

func setUpdate(img *raster.Raster, x, y int, pixels []byte) error {
	base, err := updateBase(img, x, y, pixels)
	if err != nil {
		return err
	}
	copy(img.Pixels[base:base+len(pixels)], pixels)
	return nil
}

func xorUpdate(img *raster.Raster, x, y int, xors []byte) error {
	base, err := updateBase(img, x, y, xors)
	if err != nil {
		return err
	}
	for j, v := range xors {
		img.Pixels[base+j] ^= v
	}
	return nil
}

func updateBase(img *raster.Raster, x, y int, pixels []byte) (int, error) {
	base := y*img.Width + x
	if base < 0 || base+len(pixels) > len(img.Pixels) {
		return 0, fmt.Errorf("wasteland: update at (%d,%d) len %d runs past raster bounds: %w", x, y, len(pixels), wlerr.ErrBadArgument)
	}
	return base, nil
}
