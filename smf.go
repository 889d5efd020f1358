// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package springmap

import (
	"fmt"

	"github.com/kelindar/springmap/internal/byteio"
	"github.com/kelindar/springmap/internal/dxt1"
)

const smfMagic = "spring map file\x00"

// smfHeaderPrefixSize is the fixed portion up through the six region
// offsets and NumOfExtraHeaders: 16 (magic) + 16*4 (four-byte fields at
// offsets 16..76) = 80 bytes.
const smfHeaderPrefixSize = 16 + 16*4

// parseSMFHeader reads the SMF prefix: magic, fixed i32/f32 fields, the
// extra-header records and the tile-index sub-header. The tile index array
// and the heightmap values are read by parseSMFLayers.
func parseSMFHeader(buf []byte) (*SMFHeader, error) {
	r := byteio.New(buf)

	magic, err := r.String(16)
	if err != nil {
		return nil, fmt.Errorf("smf: %w: %w", ErrInputTruncated, err)
	}
	if magic != "spring map file" {
		return nil, fmt.Errorf("smf: bad magic %q: %w", magic, ErrNotASpringMap)
	}

	h := &SMFHeader{Magic: smfMagic}

	if h.Version, err = r.I32(); err != nil {
		return nil, truncated("version", err)
	}
	id, err := r.U32()
	if err != nil {
		return nil, truncated("id", err)
	}
	h.ID = id

	if h.MapWidth, err = r.I32(); err != nil {
		return nil, truncated("mapWidth", err)
	}
	if h.MapHeight, err = r.I32(); err != nil {
		return nil, truncated("mapHeight", err)
	}
	if h.SquareSize, err = r.I32(); err != nil {
		return nil, truncated("squareSize", err)
	}
	if h.TexelsPerSquare, err = r.I32(); err != nil {
		return nil, truncated("texelsPerSquare", err)
	}
	if h.TileSize, err = r.I32(); err != nil {
		return nil, truncated("tileSize", err)
	}
	if h.MinDepth, err = r.F32(); err != nil {
		return nil, truncated("minDepth", err)
	}
	if h.MaxDepth, err = r.F32(); err != nil {
		return nil, truncated("maxDepth", err)
	}

	if h.HeightMapIndex, err = r.I32(); err != nil {
		return nil, truncated("heightMapIndex", err)
	}
	if h.TypeMapIndex, err = r.I32(); err != nil {
		return nil, truncated("typeMapIndex", err)
	}
	if h.TileIndexMapIndex, err = r.I32(); err != nil {
		return nil, truncated("tileIndexMapIndex", err)
	}
	if h.MiniMapIndex, err = r.I32(); err != nil {
		return nil, truncated("miniMapIndex", err)
	}
	if h.MetalMapIndex, err = r.I32(); err != nil {
		return nil, truncated("metalMapIndex", err)
	}
	if h.FeatureMapIndex, err = r.I32(); err != nil {
		return nil, truncated("featureMapIndex", err)
	}
	if h.NumOfExtraHeaders, err = r.I32(); err != nil {
		return nil, truncated("noOfExtraHeaders", err)
	}

	if h.MapWidth <= 0 || h.MapHeight <= 0 || h.MapWidth%128 != 0 || h.MapHeight%128 != 0 {
		return nil, fmt.Errorf("smf: mapWidth/mapHeight must be positive multiples of 128, got %dx%d: %w", h.MapWidth, h.MapHeight, ErrBadOffset)
	}

	// Skip over NumOfExtraHeaders extra-header records: each is
	// {size int32, type int32} followed by (size-8) bytes of payload we
	// don't decode, per §9 (reserved, left empty).
	for i := int32(0); i < h.NumOfExtraHeaders; i++ {
		size, err := r.I32()
		if err != nil {
			return nil, truncated("extraHeader.size", err)
		}
		typ, err := r.I32()
		if err != nil {
			return nil, truncated("extraHeader.type", err)
		}
		h.ExtraHeaders = append(h.ExtraHeaders, SMFExtraHeader{Size: size, Type: typ})
		if size > 8 {
			if _, err := r.Read(int(size - 8)); err != nil {
				return nil, truncated("extraHeader.payload", err)
			}
		}
	}

	// Tile-index-map sub-header.
	if h.NumOfTileFiles, err = r.I32(); err != nil {
		return nil, truncated("numOfTileFiles", err)
	}
	if h.NumOfTilesInAllFiles, err = r.I32(); err != nil {
		return nil, truncated("numOfTilesInAllFiles", err)
	}
	if h.NumOfTilesInThisFile, err = r.I32(); err != nil {
		return nil, truncated("numOfTilesInThisFile", err)
	}
	if h.SMTFileName, err = r.UntilNull(); err != nil {
		return nil, truncated("smtFileName", err)
	}

	return h, nil
}

func truncated(field string, err error) error {
	return fmt.Errorf("smf: failed reading %s: %w: %w", field, ErrInputTruncated, err)
}

// smfLayers holds the region rasters plus raw data needed by later stages
// (the tile index array feeds 4.F, the heightmap values feed 4.G).
type smfLayers struct {
	Height *Raster
	Type   *Raster
	Metal  *Raster
	Mini   *Raster

	TileIndices     []int32 // row-major, (mapWidth/4)*(mapHeight/4) entries
	HeightMapValues []float32
}

// parseSMFLayers extracts the five byte regions from their declared
// offsets in buf, given an already-parsed header.
func parseSMFLayers(buf []byte, h *SMFHeader) (*smfLayers, error) {
	w, ht := int(h.MapWidth), int(h.MapHeight)

	tileIndices, err := readTileIndexArray(buf, h)
	if err != nil {
		return nil, err
	}

	heightRaster, heightValues, err := readHeightLayer(buf, h)
	if err != nil {
		return nil, err
	}

	typeRaster, err := readByteLayer(buf, int(h.TypeMapIndex), w/2, ht/2, "type")
	if err != nil {
		return nil, err
	}

	metalRaster, err := readByteLayer(buf, int(h.MetalMapIndex), w/2, ht/2, "metal")
	if err != nil {
		return nil, err
	}

	miniRaster, err := readMiniMap(buf, h)
	if err != nil {
		return nil, err
	}

	return &smfLayers{
		Height:          heightRaster,
		Type:            typeRaster,
		Metal:           metalRaster,
		Mini:            miniRaster,
		TileIndices:     tileIndices,
		HeightMapValues: heightValues,
	}, nil
}

// readTileIndexArray reads the (mapWidth/4)*(mapHeight/4) i32 tile indices
// that follow the tile-index sub-header, starting at TileIndexMapIndex.
func readTileIndexArray(buf []byte, h *SMFHeader) ([]int32, error) {
	off := int(h.TileIndexMapIndex)
	if off < 0 || off > len(buf) {
		return nil, fmt.Errorf("smf: tileIndexMapIndex %d out of buffer (len %d): %w", off, len(buf), ErrBadOffset)
	}

	// The sub-header (3 i32 + NUL-terminated filename) was already consumed
	// by parseSMFHeader when reading sequentially from the start of the
	// buffer; but TileIndexMapIndex is an independent declared offset, so
	// we re-derive the sub-header size by re-reading it at its own offset.
	r := byteio.New(buf)
	if err := r.Seek(off); err != nil {
		return nil, fmt.Errorf("smf: %w: %w", ErrBadOffset, err)
	}
	if _, err := r.I32(); err != nil { // numOfTileFiles
		return nil, truncated("tileIndex.numOfTileFiles", err)
	}
	if _, err := r.I32(); err != nil { // numOfTilesInAllFiles
		return nil, truncated("tileIndex.numOfTilesInAllFiles", err)
	}
	if _, err := r.I32(); err != nil { // numOfTilesInThisFile
		return nil, truncated("tileIndex.numOfTilesInThisFile", err)
	}
	if _, err := r.UntilNull(); err != nil { // smtFileName
		return nil, truncated("tileIndex.smtFileName", err)
	}

	count := (int(h.MapWidth) / 4) * (int(h.MapHeight) / 4)
	raw, err := r.Ints(count, 4, false)
	if err != nil {
		return nil, truncated("tileIndex.indices", err)
	}

	out := make([]int32, count)
	for i, v := range raw {
		out[i] = int32(v)
	}
	return out, nil
}

// readHeightLayer reads (mapWidth+1)*(mapHeight+1) u16 values, normalizes
// each to [0,1], and expands to a grayscale raster.
func readHeightLayer(buf []byte, h *SMFHeader) (*Raster, []float32, error) {
	off := int(h.HeightMapIndex)
	w, ht := int(h.MapWidth)+1, int(h.MapHeight)+1
	count := w * ht

	if off < 0 || off+count*2 > len(buf) {
		return nil, nil, fmt.Errorf("smf: heightMapIndex %d+%d bytes out of buffer (len %d): %w", off, count*2, len(buf), ErrBadOffset)
	}

	r := byteio.New(buf)
	if err := r.Seek(off); err != nil {
		return nil, nil, err
	}
	raw, err := r.Ints(count, 2, true)
	if err != nil {
		return nil, nil, truncated("heightMapValues", err)
	}

	values := make([]float32, count)
	gray := make([]byte, count)
	for i, v := range raw {
		norm := float32(v) / 65536
		if norm < 0 {
			norm = 0
		}
		if norm > 1 {
			norm = 1
		}
		values[i] = norm
		gray[i] = byte(255 * norm)
	}

	return fromGray8(gray, w, ht), values, nil
}

// readByteLayer reads a w*ht single-byte raw channel and expands it to RGBA.
func readByteLayer(buf []byte, off, w, ht int, name string) (*Raster, error) {
	count := w * ht
	if off < 0 || off+count > len(buf) {
		return nil, fmt.Errorf("smf: %s layer offset %d+%d out of buffer (len %d): %w", name, off, count, len(buf), ErrBadOffset)
	}
	return fromGray8(buf[off:off+count], w, ht), nil
}

// readMiniMap reads the 1024x1024 DXT1-compressed minimap. Its byte size is
// inferred as the distance to the next declared region rather than the
// historical hard-coded constant, which is brittle against file layout
// variations.
func readMiniMap(buf []byte, h *SMFHeader) (*Raster, error) {
	const miniSize = 1024
	off := int(h.MiniMapIndex)
	if off < 0 || off > len(buf) {
		return nil, fmt.Errorf("smf: miniMapIndex %d out of buffer (len %d): %w", off, len(buf), ErrBadOffset)
	}

	end := len(buf)
	for _, candidate := range []int32{h.MetalMapIndex, h.FeatureMapIndex} {
		c := int(candidate)
		if c > off && c < end {
			end = c
		}
	}

	data, err := dxt1.Decode(buf[off:end], miniSize, miniSize)
	if err != nil {
		return nil, fmt.Errorf("smf: minimap decode failed: %w", err)
	}
	return &Raster{Width: miniSize, Height: miniSize, Pix: data}, nil
}
