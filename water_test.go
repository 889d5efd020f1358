// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package springmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyWaterNoopWhenAboveSeaLevel(t *testing.T) {
	mosaic := NewRaster(8, 8)
	for i := range mosaic.Pix {
		mosaic.Pix[i] = 200
	}
	before := append([]byte(nil), mosaic.Pix...)

	heightValues := make([]float32, 9*9)
	applyWater(mosaic, heightValues, 9, 9, 0, 100, [3]byte{33, 35, 77}, [3]float64{1, 1.2, 1}, 4)

	assert.Equal(t, before, mosaic.Pix)
}

func TestApplyWaterTintsBelowSeaLevel(t *testing.T) {
	mosaic := NewRaster(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			mosaic.Set(x, y, [4]byte{200, 200, 200, 255})
		}
	}

	// All height samples at 0 (below sea level) so every pixel is tinted.
	heightValues := make([]float32, 5*5)
	applyWater(mosaic, heightValues, 5, 5, -10, 100, [3]byte{33, 35, 77}, [3]float64{1, 1.2, 1}, 4)

	px := mosaic.At(0, 0)
	assert.NotEqual(t, byte(200), px[0])
	assert.Equal(t, byte(255), px[3]) // alpha untouched
}

// TestApplyWaterRatioDerivesFromMipmapSize pins ratio = mipmapSize/4, not a
// quantity derived from the mosaic's own pixel dimensions. A 64x64 mosaic
// (mipmapSize=4, tilesWide=16) would give mosaic.Width/16 = 4, four times
// too coarse; the correct ratio is mipmapSize/4 = 1.
func TestApplyWaterRatioDerivesFromMipmapSize(t *testing.T) {
	const size = 64
	mosaic := NewRaster(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			mosaic.Set(x, y, [4]byte{200, 200, 200, 255})
		}
	}

	heightW, heightH := size+1, size+1
	heightValues := make([]float32, heightW*heightH)
	for col := 0; col < heightW; col++ {
		h := float32(col) / float32(size)
		for row := 0; row < heightH; row++ {
			heightValues[row*heightW+col] = h
		}
	}

	// minDepth=-10, maxDepth=90 -> waterLevelPercent = 10/100 = 0.1.
	applyWater(mosaic, heightValues, heightW, heightH, -10, 90, [3]byte{33, 35, 77}, [3]float64{1, 1.2, 1}, 4)

	// Correct ratio=1: hx=x+1, so x=5 samples height 6/64=0.09375 (< 0.1, tinted)
	// and x=6 samples height 7/64=0.109375 (>= 0.1, untinted).
	assert.NotEqual(t, byte(200), mosaic.At(5, 0)[0], "x=5 should be tinted under ratio=mipmapSize/4")
	assert.Equal(t, byte(200), mosaic.At(6, 0)[0], "x=6 should be untinted under ratio=mipmapSize/4")
}

func TestTintChannelClampsToByteRange(t *testing.T) {
	assert.Equal(t, byte(255), tintChannel(255, 255, 1, 2))
	assert.Equal(t, byte(0), tintChannel(0, 0, 0, 0))
}
