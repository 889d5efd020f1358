// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package dds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stest "github.com/kelindar/springmap/internal/testing"
)

func buildDDSHeader(width, height, mipCount uint32, fourCC string, caps2 uint32) []byte {
	var buf []byte
	buf = append(buf, "DDS "...)
	buf = stest.PutU32(buf, 124) // size field, skipped

	buf = stest.PutU32(buf, 0)      // flags
	buf = stest.PutU32(buf, height) // height
	buf = stest.PutU32(buf, width)  // width
	buf = stest.PutU32(buf, 0)      // pitch
	buf = stest.PutU32(buf, 0)      // depth
	buf = stest.PutU32(buf, mipCount)
	buf = append(buf, make([]byte, 44)...) // reserved

	buf = stest.PutU32(buf, 32) // pixel format size
	buf = stest.PutU32(buf, FlagFourCC)
	buf = stest.PutString(buf, fourCC, 4)
	buf = stest.PutU32(buf, 0) // bitCount
	buf = stest.PutU32(buf, 0)
	buf = stest.PutU32(buf, 0)
	buf = stest.PutU32(buf, 0)
	buf = stest.PutU32(buf, 0)

	buf = stest.PutU32(buf, 0) // caps
	buf = stest.PutU32(buf, caps2)
	buf = append(buf, make([]byte, 12)...) // caps3, caps4, reserved2

	return buf
}

func TestParseBasicHeader(t *testing.T) {
	buf := buildDDSHeader(64, 32, 1, "DXT1", 0)
	buf = append(buf, make([]byte, 1024)...) // pixel payload

	hdr, err := Parse(buf)
	require.NoError(t, err)
	assert.EqualValues(t, 64, hdr.Width)
	assert.EqualValues(t, 32, hdr.Height)
	assert.Equal(t, "DXT1", hdr.PixelFormat.FourCC)
	assert.False(t, hdr.HasDX10)
	assert.Equal(t, 128, hdr.DataOffset) // 4 (magic) + 124 (fixed header, including its own size field)
}

func TestParseBadMagic(t *testing.T) {
	_, err := Parse([]byte("NOPE0000000000000000000000000000000000000000000000"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParseDX10Extension(t *testing.T) {
	buf := buildDDSHeader(16, 16, 1, "DX10", 0)
	buf = append(buf, make([]byte, 20)...) // DX10 header
	buf = append(buf, make([]byte, 256)...)

	hdr, err := Parse(buf)
	require.NoError(t, err)
	assert.True(t, hdr.HasDX10)
	assert.Equal(t, 128+20, hdr.DataOffset)
}

func TestIsCubemapRequiresAllFaces(t *testing.T) {
	allFaces := uint32(Caps2Cubemap | Caps2PositiveX | Caps2NegativeX | Caps2PositiveY | Caps2NegativeY | Caps2PositiveZ | Caps2NegativeZ)
	buf := buildDDSHeader(32, 32, 1, "DXT1", allFaces)
	hdr, err := Parse(buf)
	require.NoError(t, err)
	assert.True(t, hdr.IsCubemap())

	partial := buildDDSHeader(32, 32, 1, "DXT1", Caps2Cubemap|Caps2PositiveX)
	hdr2, err := Parse(partial)
	require.NoError(t, err)
	assert.False(t, hdr2.IsCubemap())
}

func TestFaceOffsetsEvenlySpaced(t *testing.T) {
	buf := buildDDSHeader(32, 32, 1, "DXT1", 0)
	hdr, err := Parse(buf)
	require.NoError(t, err)

	offsets := hdr.FaceOffsets()
	require.Len(t, offsets, 6)
	faceSize := hdr.MipSize(0, 32, 32)
	for i, off := range offsets {
		assert.Equal(t, i*faceSize, off)
	}
	assert.Equal(t, faceSize, hdr.FaceByteSize())
}

func TestMipSizeHalvesPerLevel(t *testing.T) {
	buf := buildDDSHeader(64, 64, 4, "DXT1", 0)
	hdr, err := Parse(buf)
	require.NoError(t, err)

	base := hdr.MipSize(0, 64, 64)
	half := hdr.MipSize(1, 64, 64)
	assert.Greater(t, base, half)
}
