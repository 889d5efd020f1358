// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package byteio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderPrimitives(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x00, 0x00}
	r := New(buf)

	u8, err := r.U8()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), u8)

	u16, err := r.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0302), u16)

	u32, err := r.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x00060504), u32)
}

func TestReaderString(t *testing.T) {
	buf := append([]byte("hello"), 0, 0, 0)
	r := New(buf)
	s, err := r.String(len(buf))
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestReaderUntilNull(t *testing.T) {
	buf := append([]byte("name.smt"), 0, 'x')
	r := New(buf)
	s, err := r.UntilNull()
	require.NoError(t, err)
	assert.Equal(t, "name.smt", s)
	assert.Equal(t, len("name.smt")+1, r.Position())
}

func TestReaderUntilNullMissing(t *testing.T) {
	r := New([]byte("no-terminator"))
	_, err := r.UntilNull()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReaderSeekOutOfBounds(t *testing.T) {
	r := New([]byte{1, 2, 3})
	assert.Error(t, r.Seek(10))
	assert.NoError(t, r.Seek(3))
}

func TestReaderInts(t *testing.T) {
	buf := []byte{0xFF, 0x00, 0x00, 0x00, 0xFF, 0xFF}
	r := New(buf)
	unsigned, err := r.Ints(3, 2, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{0x00FF, 0x0000, 0xFFFF}, unsigned)
}

func TestReaderTruncated(t *testing.T) {
	r := New([]byte{1, 2})
	_, err := r.U32()
	assert.ErrorIs(t, err, ErrTruncated)
}
