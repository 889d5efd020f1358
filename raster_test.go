// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package springmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRasterValidateDimensions(t *testing.T) {
	r := NewRaster(4, 4)
	require.NoError(t, r.Validate())

	bad := &Raster{Width: 4, Height: 4, Pix: make([]byte, 10)}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidRaster)
}

func TestRasterSetAndAt(t *testing.T) {
	r := NewRaster(2, 2)
	r.Set(1, 1, [4]byte{10, 20, 30, 255})
	assert.Equal(t, [4]byte{10, 20, 30, 255}, r.At(1, 1))
	assert.Equal(t, [4]byte{}, r.At(0, 0))
}

func TestRasterOutOfBoundsIsNoop(t *testing.T) {
	r := NewRaster(2, 2)
	r.Set(5, 5, [4]byte{1, 2, 3, 4})
	assert.Equal(t, [4]byte{}, r.At(5, 5))
}

func TestFromGray8Broadcast(t *testing.T) {
	r := fromGray8([]byte{128, 255}, 2, 1)
	assert.Equal(t, [4]byte{128, 128, 128, 255}, r.At(0, 0))
	assert.Equal(t, [4]byte{255, 255, 255, 255}, r.At(1, 0))
}

func TestResizeNearestSameSize(t *testing.T) {
	src := make([]byte, 4*4*4)
	for i := range src {
		src[i] = byte(i)
	}
	out := resizeNearest(src, 4, 4)
	assert.Equal(t, src, out)
}

func TestResizeNearestUpscale(t *testing.T) {
	src := []byte{10, 20, 30, 255}
	out := resizeNearest(src, 1, 2)
	assert.Len(t, out, 2*2*4)
	for i := 0; i < len(out); i += 4 {
		assert.Equal(t, byte(10), out[i])
	}
}
