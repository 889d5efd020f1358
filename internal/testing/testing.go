// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package testing builds small synthetic byte buffers shared across the
// package's tests. There is no externally-provisioned fixture directory for
// this format, so tests construct minimal valid archives in-process instead.
package testing

import (
	"encoding/binary"
	"math"
)

// PutU32 appends a little-endian uint32.
func PutU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// PutI32 appends a little-endian int32.
func PutI32(buf []byte, v int32) []byte {
	return PutU32(buf, uint32(v))
}

// PutF32 appends a little-endian IEEE-754 float32.
func PutF32(buf []byte, v float32) []byte {
	return PutU32(buf, math.Float32bits(v))
}

// PutString appends s padded (or truncated) to exactly n bytes.
func PutString(buf []byte, s string, n int) []byte {
	field := make([]byte, n)
	copy(field, s)
	return append(buf, field...)
}

// PutCString appends s followed by a single NUL terminator.
func PutCString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, 0)
}

// SolidDXT1Block returns one 8-byte DXT1 block that decodes to a solid
// opaque color approximating rgb (RGB565 quantization loses precision).
func SolidDXT1Block(r, g, b byte) []byte {
	c := packRGB565(r, g, b)
	block := make([]byte, 8)
	binary.LittleEndian.PutUint16(block[0:2], c)
	binary.LittleEndian.PutUint16(block[2:4], c) // c0 == c1 selects the 1-bit-alpha palette mode
	// index bytes left zero: every pixel selects palette entry 0, the opaque c0.
	return block
}

func packRGB565(r, g, b byte) uint16 {
	return (uint16(r)>>3)<<11 | (uint16(g)>>2)<<5 | uint16(b)>>3
}
