// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package springmap

import "fmt"

// Raster is an opaque RGBA8 image: width, height, and a row-major byte
// buffer of size Width*Height*4. The core produces Rasters but never
// encodes them — PNG/JPEG encoding and resizing belong to the caller's
// image-library surface.
type Raster struct {
	Width, Height int
	Pix           []byte // len == Width*Height*4
}

// NewRaster allocates a zero-filled raster of the given dimensions.
func NewRaster(width, height int) *Raster {
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*4),
	}
}

// ErrInvalidRaster is returned when a raster's byte length doesn't match
// its declared dimensions.
var ErrInvalidRaster = fmt.Errorf("springmap: raster byte length does not match width*height*4")

// Validate checks the dimensional-sanity invariant (§8 property 2).
func (r *Raster) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("springmap: raster has non-positive dimensions %dx%d: %w", r.Width, r.Height, ErrInvalidRaster)
	}
	if len(r.Pix) != r.Width*r.Height*4 {
		return fmt.Errorf("springmap: raster %dx%d expects %d bytes, has %d: %w", r.Width, r.Height, r.Width*r.Height*4, len(r.Pix), ErrInvalidRaster)
	}
	return nil
}

// Set writes an RGBA8 pixel at (x,y).
func (r *Raster) Set(x, y int, rgba [4]byte) {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return
	}
	o := (y*r.Width + x) * 4
	copy(r.Pix[o:o+4], rgba[:])
}

// At reads the RGBA8 pixel at (x,y). Out-of-bounds reads return transparent black.
func (r *Raster) At(x, y int) [4]byte {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return [4]byte{}
	}
	o := (y*r.Width + x) * 4
	return [4]byte{r.Pix[o], r.Pix[o+1], r.Pix[o+2], r.Pix[o+3]}
}

// fromGray8 expands a single-channel 8-bit image to RGBA8 by broadcasting
// the value to R=G=B, A=255.
func fromGray8(gray []byte, width, height int) *Raster {
	out := NewRaster(width, height)
	for i, v := range gray {
		o := i * 4
		if o+4 > len(out.Pix) {
			break
		}
		out.Pix[o+0] = v
		out.Pix[o+1] = v
		out.Pix[o+2] = v
		out.Pix[o+3] = 255
	}
	return out
}

// resizeNearest resamples src (side srcSize) to a dst side, nearest-neighbour.
func resizeNearest(src []byte, srcSize, dstSize int) []byte {
	if srcSize == dstSize {
		out := make([]byte, len(src))
		copy(out, src)
		return out
	}

	out := make([]byte, dstSize*dstSize*4)
	for y := 0; y < dstSize; y++ {
		sy := y * srcSize / dstSize
		for x := 0; x < dstSize; x++ {
			sx := x * srcSize / dstSize
			so := (sy*srcSize + sx) * 4
			do := (y*dstSize + x) * 4
			copy(out[do:do+4], src[so:so+4])
		}
	}
	return out
}
