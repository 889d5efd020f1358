// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package springmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stest "github.com/kelindar/springmap/internal/testing"
)

// buildSMF constructs a minimal, valid SMF buffer for a mapWidth x mapHeight
// (in pixels, multiples of 128) map with no extra headers.
func buildSMF(t *testing.T, mapWidth, mapHeight int32, minDepth, maxDepth float32) ([]byte, map[string]int) {
	t.Helper()
	offsets := map[string]int{}

	var buf []byte
	buf = stest.PutString(buf, "spring map file", 16)
	buf = stest.PutI32(buf, 1)       // version
	buf = stest.PutU32(buf, 0xCAFE)  // id
	buf = stest.PutI32(buf, mapWidth)
	buf = stest.PutI32(buf, mapHeight)
	buf = stest.PutI32(buf, 8)  // squareSize
	buf = stest.PutI32(buf, 8)  // texelsPerSquare
	buf = stest.PutI32(buf, 32) // tileSize
	buf = stest.PutF32(buf, minDepth)
	buf = stest.PutF32(buf, maxDepth)

	// Placeholders for the six region offsets; patched in after layout.
	headerOffsetsPos := len(buf)
	buf = stest.PutI32(buf, 0) // heightMapIndex
	buf = stest.PutI32(buf, 0) // typeMapIndex
	buf = stest.PutI32(buf, 0) // tileIndexMapIndex
	buf = stest.PutI32(buf, 0) // miniMapIndex
	buf = stest.PutI32(buf, 0) // metalMapIndex
	buf = stest.PutI32(buf, 0) // featureMapIndex
	buf = stest.PutI32(buf, 0) // numOfExtraHeaders

	tileIndexOff := len(buf)
	buf = stest.PutI32(buf, 1)  // numOfTileFiles
	tilesWide := int(mapWidth) / 4
	tilesHigh := int(mapHeight) / 4
	numTiles := tilesWide * tilesHigh
	buf = stest.PutI32(buf, int32(numTiles)) // numOfTilesInAllFiles
	buf = stest.PutI32(buf, int32(numTiles)) // numOfTilesInThisFile
	buf = stest.PutCString(buf, "map.smt")

	// Tile index array: every cell references tile 0.
	tileIndexArrayOff := len(buf)
	for i := 0; i < numTiles; i++ {
		buf = stest.PutI32(buf, 0)
	}

	heightOff := len(buf)
	heightW, heightH := int(mapWidth)+1, int(mapHeight)+1
	for i := 0; i < heightW*heightH; i++ {
		buf = append(buf, 0x00, 0x80) // u16 little-endian, mid-gray height
	}

	typeOff := len(buf)
	buf = append(buf, make([]byte, (int(mapWidth)/2)*(int(mapHeight)/2))...)

	metalOff := len(buf)
	buf = append(buf, make([]byte, (int(mapWidth)/2)*(int(mapHeight)/2))...)

	miniOff := len(buf)
	// 1024x1024 DXT1 minimap: 256x256 blocks * 8 bytes.
	buf = append(buf, make([]byte, 256*256*8)...)

	featureOff := len(buf)

	// Patch the six region offsets now that the layout is known.
	patchI32 := func(pos int, v int32) {
		b := stest.PutI32(nil, v)
		copy(buf[pos:pos+4], b)
	}
	patchI32(headerOffsetsPos+0, int32(heightOff))
	patchI32(headerOffsetsPos+4, int32(typeOff))
	patchI32(headerOffsetsPos+8, int32(tileIndexOff))
	patchI32(headerOffsetsPos+12, int32(miniOff))
	patchI32(headerOffsetsPos+16, int32(metalOff))
	patchI32(headerOffsetsPos+20, int32(featureOff))

	offsets["height"] = heightOff
	offsets["type"] = typeOff
	offsets["tileIndex"] = tileIndexOff
	offsets["tileIndexArray"] = tileIndexArrayOff
	offsets["mini"] = miniOff
	offsets["metal"] = metalOff
	offsets["feature"] = featureOff
	return buf, offsets
}

func TestParseSMFHeaderMagicAndDimensions(t *testing.T) {
	buf, _ := buildSMF(t, 128, 128, -10, 100)
	header, err := parseSMFHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, smfMagic, header.Magic)
	assert.EqualValues(t, 128, header.MapWidth)
	assert.EqualValues(t, 128, header.MapHeight)
	assert.Equal(t, 1, header.MapWidthUnits())
	assert.Equal(t, "map.smt", header.SMTFileName)
}

func TestParseSMFHeaderRejectsBadMagic(t *testing.T) {
	buf, _ := buildSMF(t, 128, 128, 0, 10)
	copy(buf[:16], []byte("not a valid hdr\x00"))
	_, err := parseSMFHeader(buf)
	assert.ErrorIs(t, err, ErrNotASpringMap)
}

func TestParseSMFHeaderRejectsNonMultipleOf128(t *testing.T) {
	buf, _ := buildSMF(t, 100, 128, 0, 10)
	_, err := parseSMFHeader(buf)
	assert.ErrorIs(t, err, ErrBadOffset)
}

func TestParseSMFHeaderTruncated(t *testing.T) {
	buf, _ := buildSMF(t, 128, 128, 0, 10)
	_, err := parseSMFHeader(buf[:20])
	assert.ErrorIs(t, err, ErrInputTruncated)
}

func TestParseSMFLayersDimensions(t *testing.T) {
	buf, _ := buildSMF(t, 128, 128, -10, 100)
	header, err := parseSMFHeader(buf)
	require.NoError(t, err)

	layers, err := parseSMFLayers(buf, header)
	require.NoError(t, err)

	assert.Equal(t, 129, layers.Height.Width)
	assert.Equal(t, 129, layers.Height.Height)
	assert.Equal(t, 64, layers.Type.Width)
	assert.Equal(t, 1024, layers.Mini.Width)
	assert.Len(t, layers.TileIndices, (128/4)*(128/4))
	assert.Len(t, layers.HeightMapValues, 129*129)
}

func TestHeightLayerNormalization(t *testing.T) {
	buf, _ := buildSMF(t, 128, 128, -10, 100)
	header, err := parseSMFHeader(buf)
	require.NoError(t, err)
	layers, err := parseSMFLayers(buf, header)
	require.NoError(t, err)

	for _, v := range layers.HeightMapValues {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestElevationFormula(t *testing.T) {
	assert.Equal(t, float32(-10), Elevation(0, -10, 100))
	assert.Equal(t, float32(100), Elevation(1, -10, 100))
	assert.Equal(t, float32(45), Elevation(0.5, -10, 100))
}
