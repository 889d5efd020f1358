// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package springmap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/go-mmap/mmap"

	"github.com/kelindar/springmap/internal/archive"
	"github.com/kelindar/springmap/internal/dds"
	"github.com/kelindar/springmap/internal/dxt1"
	"github.com/kelindar/springmap/internal/equirect"
)

// Parse extracts archivePath (.sd7 or .sdz), locates its SMF/SMT/metadata/
// resource members, and assembles a Map. The extraction temp directory is
// always removed before returning, regardless of outcome.
func Parse(archivePath string, opts ...Option) (*Map, error) {
	return ParseContext(context.Background(), archivePath, opts...)
}

// ParseContext is Parse with an explicit cancellation context, honored at
// the archive-extraction boundary and nowhere else (the rest of the
// pipeline is pure, in-memory computation).
func ParseContext(ctx context.Context, archivePath string, opts ...Option) (*Map, error) {
	cfg := NewConfig(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	log := slog.Default()
	verbose := func(msg string, args ...any) {
		if cfg.Verbose {
			log.Info(msg, args...)
		}
	}

	suffix := strings.ToLower(filepath.Ext(archivePath))
	if suffix != ".sd7" && suffix != ".sdz" {
		return nil, fmt.Errorf("springmap: %w: %q", ErrNotASpringArchive, suffix)
	}

	verbose("extracting archive", "path", archivePath)
	dir, cleanup, err := archive.Extract(ctx, archivePath)
	if err != nil {
		return nil, fmt.Errorf("springmap: %w: %w", ErrArchiveExtraction, err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Warn("springmap: temp dir cleanup failed", "error", err)
		}
	}()

	members, err := locateMembers(dir)
	if err != nil {
		return nil, err
	}

	fileStem := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))

	m := &Map{
		FileName:  fileStem,
		Resources: map[string]*Raster{},
	}

	smfStem := fileStem
	if members.smf != "" {
		smfStem = strings.TrimSuffix(filepath.Base(members.smf), filepath.Ext(members.smf))
	}

	verbose("parsing metadata")
	metaName := smfStem
	if members.mapinfo != "" {
		data, err := readWholeFile(members.mapinfo)
		if err != nil {
			return nil, err
		}
		if meta, err := parseMapInfo(data); err == nil {
			m.Metadata = meta
			m.StartPositions = startPositionsFromMapInfo(meta)
			metaName = scriptNameFromMapInfo(meta, smfStem)
		}
	} else if members.smd != "" {
		data, err := readWholeFile(members.smd)
		if err != nil {
			return nil, err
		}
		if legacy, positions, err := parseSMD(data); err == nil {
			m.LegacyMetadata = legacy
			m.StartPositions = positions
		}
	}
	m.ScriptName = metaName

	if members.smf == "" {
		return nil, ErrMissingSMF
	}

	verbose("parsing SMF", "path", members.smf)
	smfData, err := readWholeFile(members.smf)
	if err != nil {
		return nil, err
	}
	header, err := parseSMFHeader(smfData)
	if err != nil {
		return nil, err
	}
	layers, err := parseSMFLayers(smfData, header)
	if err != nil {
		return nil, err
	}

	m.Header = header
	m.MinDepth = header.MinDepth
	m.MaxDepth = header.MaxDepth
	m.Height = layers.Height
	m.Type = layers.Type
	m.Metal = layers.Metal
	m.Mini = layers.Mini
	m.HeightMapValues = layers.HeightMapValues

	if !cfg.SkipSMT {
		if members.smt == "" {
			return nil, ErrMissingSMT
		}
		verbose("parsing SMT and assembling mosaic", "path", members.smt)
		smtData, err := readWholeFile(members.smt)
		if err != nil {
			return nil, err
		}
		smtHdr, err := parseSMTHeader(smtData)
		if err != nil {
			return nil, err
		}

		catalogue, err := buildTileCatalogue(smtData, smtHdr, layers.TileIndices, cfg.MipmapSize)
		if err != nil {
			return nil, err
		}

		tilesWide, tilesHigh := tileGridDimensions(header)

		mosaic := buildMosaic(catalogue, layers.TileIndices, tilesWide, tilesHigh, cfg.MipmapSize)
		m.Texture = mosaic

		if cfg.Water && header.MinDepth < 0 {
			verbose("applying water overlay")
			heightW := int(header.MapWidth) + 1
			heightH := int(header.MapHeight) + 1
			applyWater(mosaic, layers.HeightMapValues, heightW, heightH, header.MinDepth, header.MaxDepth, cfg.WaterColor, cfg.WaterModifier, cfg.MipmapSize)
		}
	}

	if cfg.ParseResources && len(members.resources) > 0 {
		verbose("loading resources", "count", len(members.resources))
		refs := resourceRefsFromMapInfo(m.Metadata)
		for key, path := range members.resources {
			if len(cfg.Resources) > 0 && !containsKey(cfg.Resources, key) {
				continue
			}
			data, err := readWholeFile(path)
			if err != nil {
				continue
			}
			hdr, err := dds.Parse(data)
			if err != nil {
				continue
			}
			raster, err := decodeFlatDDS(hdr, data)
			if err != nil {
				continue
			}
			m.Resources[key] = raster
			for refKey, refFile := range refs {
				if strings.EqualFold(filepath.Base(path), filepath.Base(refFile)) {
					m.Resources[refKey] = raster
				}
			}
		}
	}

	if cfg.ParseSkybox && members.skybox != "" {
		verbose("building skybox", "path", members.skybox)
		data, err := readWholeFile(members.skybox)
		if err == nil {
			if skybox, err := buildSkybox(data); err == nil {
				m.Skybox = skybox
			}
		}
	}

	parseDuration.Observe(time.Since(start).Seconds())
	return m, nil
}

// tileGridDimensions returns the (mapWidth/4) x (mapHeight/4) tile-index
// grid dimensions; each cell expands to one mipSize-wide mosaic tile.
func tileGridDimensions(h *SMFHeader) (wide, high int) {
	return int(h.MapWidth) / 4, int(h.MapHeight) / 4
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// archiveMembers holds the member paths located by extension within the
// extracted archive directory, per the conventional SpringRTS layout:
// exactly one .smf, one .smt, optionally .smd, optionally mapinfo.lua,
// optional .dds resources anywhere in the tree (a .dds whose name contains
// "sky" is also taken as the cubemap skybox).
type archiveMembers struct {
	smf       string
	smt       string
	smd       string
	mapinfo   string
	skybox    string
	resources map[string]string
}

func locateMembers(dir string) (*archiveMembers, error) {
	members := &archiveMembers{resources: map[string]string{}}

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		switch ext := strings.ToLower(filepath.Ext(path)); {
		case ext == ".smf":
			members.smf = path
		case ext == ".smt":
			members.smt = path
		case ext == ".smd":
			members.smd = path
		case strings.EqualFold(filepath.Base(path), "mapinfo.lua"):
			members.mapinfo = path
		case ext == ".dds":
			base := strings.ToLower(filepath.Base(path))
			members.resources[strings.TrimSuffix(base, ext)] = path
			if strings.Contains(base, "sky") {
				members.skybox = path
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("springmap: failed walking extracted archive: %w", err)
	}
	return members, nil
}

// readWholeFile mmaps path and copies its full contents into an owned
// buffer, matching the file-loading idiom used throughout the package: the
// mapping is closed immediately after the copy since every decoder below
// operates on a plain borrowed byte slice, not a live mapping.
func readWholeFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("springmap: %w", err)
	}

	file, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("springmap: failed to open %s: %w", path, err)
	}
	defer file.Close()

	buf := make([]byte, info.Size())
	if _, err := file.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("springmap: failed reading %s: %w", path, err)
	}
	return buf, nil
}

// decodeFlatDDS decodes a non-cubemap DDS resource's base mip into a Raster.
func decodeFlatDDS(hdr *dds.Header, data []byte) (*Raster, error) {
	if hdr.PixelFormat.FourCC != "DXT1" {
		return nil, fmt.Errorf("springmap: %w: fourCC %q", ErrUnsupportedDDS, hdr.PixelFormat.FourCC)
	}
	w, h := int(hdr.Width), int(hdr.Height)
	size := hdr.MipSize(0, w, h)
	if hdr.DataOffset+size > len(data) {
		return nil, fmt.Errorf("springmap: %w: truncated DDS payload", ErrInputTruncated)
	}
	pix, err := dxt1.Decode(data[hdr.DataOffset:hdr.DataOffset+size], w, h)
	if err != nil {
		return nil, err
	}
	return &Raster{Width: w, Height: h, Pix: pix}, nil
}

// buildSkybox decodes a six-face cubemap DDS resource into an
// equirectangular panorama, per the documented face order and the
// empirical per-face vertical flip.
func buildSkybox(data []byte) (*Raster, error) {
	hdr, err := dds.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("springmap: %w: %w", ErrUnsupportedDDS, err)
	}
	if !hdr.IsCubemap() {
		return nil, fmt.Errorf("springmap: %w: not a cubemap", ErrUnsupportedDDS)
	}
	if hdr.PixelFormat.FourCC != "DXT1" {
		return nil, fmt.Errorf("springmap: %w: fourCC %q", ErrUnsupportedDDS, hdr.PixelFormat.FourCC)
	}

	size := int(hdr.Width)
	faceSize := hdr.MipSize(0, size, size)
	offsets := hdr.FaceOffsets()

	var faces [6]equirect.Face
	for i, off := range offsets {
		start := hdr.DataOffset + off
		if start+faceSize > len(data) {
			return nil, fmt.Errorf("springmap: %w: truncated cubemap face %d", ErrInputTruncated, i)
		}
		pix, err := dxt1.Decode(data[start:start+faceSize], size, size)
		if err != nil {
			return nil, err
		}
		faces[i] = equirect.Face{Pix: pix, Size: size}
	}

	pix, w, h, err := equirect.Project(faces, size*4)
	if err != nil {
		return nil, err
	}
	cubemapPixels.Add(float64(w * h))
	return &Raster{Width: w, Height: h, Pix: pix}, nil
}
