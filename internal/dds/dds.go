// Package dds parses the DDS header (plus optional DX10 extension) and
// reports mip/face layout. It does not itself decompress pixel data —
// decompression for DXT1 content is delegated to internal/dxt1.
package dds

import (
	"errors"
	"fmt"

	"github.com/kelindar/springmap/internal/byteio"
)

// ErrUnsupported is returned for a bad magic or an unrecognized fourCC.
var ErrUnsupported = errors.New("dds: unsupported or malformed DDS resource")

const (
	magicSize   = 4
	headerSize  = 124
	dx10Size    = 20
	pixelFmtOff = 76 // offset of the pixel format block within the 124-byte header, relative to header start
)

// Pixel format flags.
const (
	FlagFourCC = 0x4
)

// Caps2 cubemap flags.
const (
	Caps2Cubemap = 0x200
	Caps2PositiveX = 0x400
	Caps2NegativeX = 0x800
	Caps2PositiveY = 0x1000
	Caps2NegativeY = 0x2000
	Caps2PositiveZ = 0x4000
	Caps2NegativeZ = 0x8000
)

// PixelFormat mirrors the 32-byte DDS_PIXELFORMAT block.
type PixelFormat struct {
	Size       uint32
	Flags      uint32
	FourCC     string
	BitCount   uint32
	RBitMask   uint32
	GBitMask   uint32
	BBitMask   uint32
	ABitMask   uint32
}

// Header mirrors the fixed 124-byte DDS header.
type Header struct {
	Flags       uint32
	Height      uint32
	Width       uint32
	Pitch       uint32
	Depth       uint32
	MipMapCount uint32
	PixelFormat PixelFormat
	Caps        uint32
	Caps2       uint32

	HasDX10 bool
	DataOffset int // offset into the original buffer where face/mip data begins
}

// Parse reads the 4-byte magic, the 124-byte header, and — when signalled —
// a trailing 20-byte DX10 header, returning the parsed Header and leaving
// DataOffset pointing at the first byte of pixel data.
func Parse(buf []byte) (*Header, error) {
	r := byteio.New(buf)
	magic, err := r.String(magicSize)
	if err != nil {
		return nil, fmt.Errorf("dds: %w: %w", ErrUnsupported, err)
	}
	if magic != "DDS " {
		return nil, fmt.Errorf("dds: bad magic %q: %w", magic, ErrUnsupported)
	}

	// size field at offset 4 (4 bytes) is skipped; the fixed header starts at offset 8.
	if err := r.Seek(magicSize + 4); err != nil {
		return nil, err
	}

	h := &Header{}

	flags, err := r.U32()
	if err != nil {
		return nil, err
	}
	height, err := r.U32()
	if err != nil {
		return nil, err
	}
	width, err := r.U32()
	if err != nil {
		return nil, err
	}
	pitch, err := r.U32()
	if err != nil {
		return nil, err
	}
	depth, err := r.U32()
	if err != nil {
		return nil, err
	}
	mipCount, err := r.U32()
	if err != nil {
		return nil, err
	}
	if _, err := r.Read(44); err != nil { // reserved
		return nil, err
	}

	pfSize, err := r.U32()
	if err != nil {
		return nil, err
	}
	pfFlags, err := r.U32()
	if err != nil {
		return nil, err
	}
	fourCC, err := r.String(4)
	if err != nil {
		return nil, err
	}
	bitCount, err := r.U32()
	if err != nil {
		return nil, err
	}
	rMask, err := r.U32()
	if err != nil {
		return nil, err
	}
	gMask, err := r.U32()
	if err != nil {
		return nil, err
	}
	bMask, err := r.U32()
	if err != nil {
		return nil, err
	}
	aMask, err := r.U32()
	if err != nil {
		return nil, err
	}

	caps, err := r.U32()
	if err != nil {
		return nil, err
	}
	caps2, err := r.U32()
	if err != nil {
		return nil, err
	}
	// caps3, caps4, reserved2 (12 bytes) follow; skip to reach offset 4+headerSize exactly.
	if err := r.Seek(magicSize + headerSize); err != nil {
		return nil, err
	}

	h.Flags = flags
	h.Height = height
	h.Width = width
	h.Pitch = pitch
	h.Depth = depth
	h.MipMapCount = mipCount
	h.PixelFormat = PixelFormat{
		Size:     pfSize,
		Flags:    pfFlags,
		FourCC:   fourCC,
		BitCount: bitCount,
		RBitMask: rMask,
		GBitMask: gMask,
		BBitMask: bMask,
		ABitMask: aMask,
	}
	h.Caps = caps
	h.Caps2 = caps2

	if pfFlags&FlagFourCC != 0 && fourCC == "DX10" {
		h.HasDX10 = true
		if _, err := r.Read(dx10Size); err != nil {
			return nil, fmt.Errorf("dds: truncated DX10 header: %w", err)
		}
	}

	h.DataOffset = r.Position()
	return h, nil
}

// blockSize returns the per-block byte size for known compressed formats.
func blockSize(fourCC string) (int, bool) {
	switch fourCC {
	case "DXT1":
		return 8, true
	case "DXT3", "DXT5":
		return 16, true
	default:
		return 0, false
	}
}

// MipSize returns the byte size of mip level i (0-based) of a face whose
// base dimensions are w x h, honoring the pixel format's compression.
func (h *Header) MipSize(i, w, hgt int) int {
	lw := w >> uint(i)
	if lw < 1 {
		lw = 1
	}
	lh := hgt >> uint(i)
	if lh < 1 {
		lh = 1
	}

	if bs, ok := blockSize(h.PixelFormat.FourCC); ok {
		blocksWide := (lw + 3) / 4
		blocksHigh := (lh + 3) / 4
		return blocksWide * blocksHigh * bs
	}

	bpp := int(h.PixelFormat.BitCount) / 8
	if bpp == 0 {
		bpp = 4
	}
	return lw * lh * bpp
}

// IsCubemap reports whether caps2 declares a full six-face cubemap.
func (h *Header) IsCubemap() bool {
	const allFaces = Caps2PositiveX | Caps2NegativeX | Caps2PositiveY | Caps2NegativeY | Caps2PositiveZ | Caps2NegativeZ
	return h.Caps2&Caps2Cubemap != 0 && h.Caps2&allFaces == allFaces
}

// FaceOffsets returns the byte offset (relative to DataOffset) of each of
// the six cubemap faces in fixed order +X,-X,+Y,-Y,+Z,-Z, assuming every
// face carries the same mip chain (MipMapCount levels, or 1 if zero).
func (h *Header) FaceOffsets() []int {
	mips := int(h.MipMapCount)
	if mips == 0 {
		mips = 1
	}
	faceBytes := 0
	for i := 0; i < mips; i++ {
		faceBytes += h.MipSize(i, int(h.Width), int(h.Height))
	}

	offsets := make([]int, 6)
	for i := range offsets {
		offsets[i] = i * faceBytes
	}
	return offsets
}

// FaceByteSize returns the total byte size (all mips) of a single face.
func (h *Header) FaceByteSize() int {
	offs := h.FaceOffsets()
	if len(offs) < 2 {
		return 0
	}
	return offs[1] - offs[0]
}
