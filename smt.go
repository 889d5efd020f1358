// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package springmap

import (
	"fmt"

	"github.com/kelindar/intmap"
	"golang.org/x/sync/errgroup"

	"github.com/kelindar/springmap/internal/byteio"
	"github.com/kelindar/springmap/internal/dxt1"
)

const smtHeaderSize = 32

// smtLegacyOffsets holds the internal byte offsets of the mip pyramid
// within a classic 680-byte tile record: 32²@0, 16²@512, 8²@640, 4²@672.
var smtLegacyOffsets = map[int]int{32: 0, 16: 512, 8: 640, 4: 672}

// smtMipBytes is the DXT1 byte length of an NxN tile.
func smtMipBytes(n int) int {
	blocks := n / 4
	return blocks * blocks * 8
}

// smtHeader holds the fixed 32-byte SMT prefix.
type smtHeader struct {
	Magic            string
	Version          int32
	NumOfTiles       int32
	TileSize         int32
	CompressionType  int32
}

func parseSMTHeader(buf []byte) (*smtHeader, error) {
	r := byteio.New(buf)
	magic, err := r.String(16)
	if err != nil {
		return nil, fmt.Errorf("smt: %w: %w", ErrInputTruncated, err)
	}

	h := &smtHeader{Magic: magic}
	if h.Version, err = r.I32(); err != nil {
		return nil, fmt.Errorf("smt: failed reading version: %w: %w", ErrInputTruncated, err)
	}
	if h.NumOfTiles, err = r.I32(); err != nil {
		return nil, fmt.Errorf("smt: failed reading numOfTiles: %w: %w", ErrInputTruncated, err)
	}
	if h.TileSize, err = r.I32(); err != nil {
		return nil, fmt.Errorf("smt: failed reading tileSize: %w: %w", ErrInputTruncated, err)
	}
	if h.CompressionType, err = r.I32(); err != nil {
		return nil, fmt.Errorf("smt: failed reading compressionType: %w: %w", ErrInputTruncated, err)
	}
	return h, nil
}

// tileLayout describes how to slice a single tile record's DXT1 bytes for
// a requested mip size.
type tileLayout struct {
	stride int
	legacy bool
	native int // native mip size when not legacy
}

// deriveTileLayout computes stride = floor(dataSize/numOfTiles) and decides
// between the legacy 680-byte pyramid and a tightly-packed single mip, per
// §4.F / §9 ("uncertain SMT layout on atypical files").
func deriveTileLayout(dataSize int, numOfTiles int32) (tileLayout, bool) {
	if numOfTiles <= 0 {
		return tileLayout{}, false
	}
	stride := dataSize / int(numOfTiles)

	switch {
	case stride >= 512:
		return tileLayout{stride: stride, legacy: true}, true
	case stride >= 128:
		return tileLayout{stride: stride, native: 16}, true
	case stride >= 32:
		return tileLayout{stride: stride, native: 8}, true
	case stride >= 8:
		return tileLayout{stride: stride, native: 4}, true
	default:
		return tileLayout{}, false
	}
}

// sliceTileMip returns the raw DXT1 bytes for tile index i at the given
// mip size, plus the native size actually sliced (== requested size unless
// a resize will be needed).
func sliceTileMip(buf []byte, layout tileLayout, tileIndex int, mipSize int) ([]byte, int, error) {
	recordStart := smtHeaderSize + tileIndex*layout.stride
	if recordStart < 0 || recordStart+layout.stride > len(buf) {
		return nil, 0, fmt.Errorf("smt: tile %d record out of buffer: %w", tileIndex, ErrTileDecodeFailed)
	}
	record := buf[recordStart : recordStart+layout.stride]

	if layout.legacy {
		off, ok := smtLegacyOffsets[mipSize]
		if !ok {
			return nil, 0, fmt.Errorf("smt: unsupported legacy mip size %d: %w", mipSize, ErrTileDecodeFailed)
		}
		need := smtMipBytes(mipSize)
		if off+need > len(record) {
			return nil, 0, fmt.Errorf("smt: legacy tile %d short for mip %d: %w", tileIndex, mipSize, ErrTileDecodeFailed)
		}
		return record[off : off+need], mipSize, nil
	}

	need := smtMipBytes(layout.native)
	if need > len(record) {
		return nil, 0, fmt.Errorf("smt: tile %d short for native mip %d: %w", tileIndex, layout.native, ErrTileDecodeFailed)
	}
	return record[:need], layout.native, nil
}

// opaqueBlackTile returns an M x M opaque-black RGBA8 tile, used whenever a
// tile's DXT1 slice is short, its index is out of range, or decoding fails.
func opaqueBlackTile(m int) []byte {
	out := make([]byte, m*m*4)
	for i := 3; i < len(out); i += 4 {
		out[i] = 255
	}
	return out
}

// decodeCatalogueTile decodes (or recovers) a single tile's pixels at mipSize.
func decodeCatalogueTile(buf []byte, layout tileLayout, tileIndex int, numTilesInFile int32, mipSize int) []byte {
	if tileIndex < 0 || int32(tileIndex) >= numTilesInFile {
		return opaqueBlackTile(mipSize)
	}

	slice, native, err := sliceTileMip(buf, layout, tileIndex, mipSize)
	if err != nil {
		return opaqueBlackTile(mipSize)
	}

	pix, err := dxt1.Decode(slice, native, native)
	if err != nil {
		return opaqueBlackTile(mipSize)
	}
	if native != mipSize {
		pix = resizeNearest(pix, native, mipSize)
	}
	return pix
}

// tileCatalogue maps a tile index to its decoded M x M RGBA8 pixel buffer.
// The lookup itself is an intmap (tile index -> slot in pixels), scoped to
// one buildTileCatalogue call — there is no process-global cache, matching
// the pipeline's per-parse resource discipline (§5).
type tileCatalogue struct {
	index  *intmap.Map
	pixels [][]byte
}

func (c *tileCatalogue) lookup(tileIndex int32) ([]byte, bool) {
	slot, ok := c.index.Load(uint32(tileIndex))
	if !ok {
		return nil, false
	}
	return c.pixels[slot], true
}

// buildTileCatalogue decodes every unique tile index referenced by
// tileIndices (in parallel, per §5) into an M x M RGBA8 pixel buffer, keyed
// by tile index in an intmap for fast lookup during mosaic assembly.
func buildTileCatalogue(buf []byte, h *smtHeader, tileIndices []int32, mipSize int) (*tileCatalogue, error) {
	dataSize := len(buf) - smtHeaderSize
	if dataSize < 0 {
		dataSize = 0
	}

	layout, ok := deriveTileLayout(dataSize, h.NumOfTiles)

	unique := make(map[int32]struct{}, len(tileIndices))
	var uniqueList []int32
	for _, idx := range tileIndices {
		if _, seen := unique[idx]; !seen {
			unique[idx] = struct{}{}
			uniqueList = append(uniqueList, idx)
		}
	}

	cat := &tileCatalogue{
		index:  intmap.New(len(uniqueList), 0.9),
		pixels: make([][]byte, len(uniqueList)),
	}

	if !ok {
		// Uncertain/degenerate layout: an all-black mosaic of correct
		// dimensions is returned rather than guessing at a stride.
		blank := opaqueBlackTile(mipSize)
		for slot, idx := range uniqueList {
			cat.index.Store(uint32(idx), uint32(slot))
			cat.pixels[slot] = blank
		}
		return cat, nil
	}

	var g errgroup.Group
	for slot, idx := range uniqueList {
		slot, idx := slot, idx
		cat.index.Store(uint32(idx), uint32(slot))
		g.Go(func() error {
			pix := decodeCatalogueTile(buf, layout, int(idx), h.NumOfTiles, mipSize)
			recordTileMetric(pix)
			cat.pixels[slot] = pix
			return nil
		})
	}
	_ = g.Wait() // individual tile failures are recovered locally, never propagated

	return cat, nil
}

// recordTileMetric increments the decoded/recovered counters based on
// whether pix matches the opaque-black recovery sentinel shape. This is a
// best-effort signal, not a correctness check.
func recordTileMetric(pix []byte) {
	if isOpaqueBlack(pix) {
		tilesRecovered.Inc()
		return
	}
	tilesDecoded.Inc()
}

func isOpaqueBlack(pix []byte) bool {
	for i := 0; i < len(pix); i += 4 {
		if pix[i] != 0 || pix[i+1] != 0 || pix[i+2] != 0 || pix[i+3] != 255 {
			return false
		}
	}
	return true
}

// buildMosaic assembles the full texture mosaic by expanding the SMF
// tile-index map against the decoded tile catalogue.
func buildMosaic(catalogue *tileCatalogue, tileIndices []int32, tilesWide, tilesHigh, mipSize int) *Raster {
	width := mipSize * tilesWide
	height := mipSize * tilesHigh
	out := NewRaster(width, height)

	blank := opaqueBlackTile(mipSize)

	for ty := 0; ty < tilesHigh; ty++ {
		for tx := 0; tx < tilesWide; tx++ {
			pos := ty*tilesWide + tx
			var pix []byte
			if pos < len(tileIndices) {
				if p, ok := catalogue.lookup(tileIndices[pos]); ok {
					pix = p
				}
			}
			if pix == nil {
				pix = blank
			}
			blitTile(out, pix, tx*mipSize, ty*mipSize, mipSize)
		}
	}
	return out
}

func blitTile(dst *Raster, pix []byte, originX, originY, size int) {
	for y := 0; y < size; y++ {
		srcRow := pix[y*size*4 : y*size*4+size*4]
		dstOff := ((originY+y)*dst.Width + originX) * 4
		copy(dst.Pix[dstOff:dstOff+size*4], srcRow)
	}
}
