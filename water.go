// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package springmap

// applyWater tints mosaic pixels below sea level using the height layer,
// per the documented water-overlay formula. Runs only when minDepth < 0;
// mosaic and heightValues are otherwise left untouched.
func applyWater(mosaic *Raster, heightValues []float32, heightW, heightH int, minDepth, maxDepth float32, color [3]byte, modifier [3]float64, mipmapSize int) {
	if minDepth >= 0 || mosaic == nil || len(heightValues) == 0 {
		return
	}

	waterLevelPercent := float64(-minDepth) / float64(maxDepth-minDepth)
	if waterLevelPercent <= 0 {
		return
	}

	ratio := float64(mipmapSize) / 4

	for y := 0; y < mosaic.Height; y++ {
		hy := int((float64(y) + 1) / ratio)
		if hy >= heightH {
			hy = heightH - 1
		}
		for x := 0; x < mosaic.Width; x++ {
			hx := int((float64(x) + 1) / ratio)
			if hx >= heightW {
				hx = heightW - 1
			}

			h := float64(heightValues[hy*heightW+hx])
			if h >= waterLevelPercent {
				continue
			}

			px := mosaic.At(x, y)
			ratioHW := h / waterLevelPercent
			px[0] = tintChannel(px[0], color[0], ratioHW, modifier[0])
			px[1] = tintChannel(px[1], color[1], ratioHW, modifier[1])
			px[2] = tintChannel(px[2], color[2], ratioHW, modifier[2])
			mosaic.Set(x, y, px)
		}
	}
}

// tintChannel applies new_c = clamp(((C_c + old_c*h) / 2) * K_c, 0, 255).
func tintChannel(old, base byte, h float64, k float64) byte {
	v := ((float64(base) + float64(old)*h) / 2) * k
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return byte(v)
}
