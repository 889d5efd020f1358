// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package springmap

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// parseSMD scans a legacy .smd metadata file for `Key=Value;` pairs. The
// bytes are Windows-1252 (the format predates UTF-8 tooling on the original
// engine) and are decoded before scanning. StartPosX/StartPosZ pairs are
// coalesced into an ordered StartPosition list; every other key is stored
// after attempting numeric coercion.
func parseSMD(data []byte) (map[string]any, []StartPosition, error) {
	text, err := charmap.Windows1252.NewDecoder().String(string(data))
	if err != nil {
		return nil, nil, fmt.Errorf("smd: %w: %w", ErrMetadataParseFailed, err)
	}

	fields := make(map[string]any)
	startX := make(map[int]float64)
	startZ := make(map[int]float64)
	maxIndex := -1

	for _, pair := range strings.Split(text, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(pair[:eq])
		value := strings.TrimSpace(pair[eq+1:])
		if key == "" {
			continue
		}

		switch {
		case strings.HasPrefix(key, "StartPos") && strings.HasSuffix(key, "X"):
			idx, ok := startPosIndex(key, "StartPos", "X")
			if !ok {
				break
			}
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				startX[idx] = v
				if idx > maxIndex {
					maxIndex = idx
				}
			}
		case strings.HasPrefix(key, "StartPos") && strings.HasSuffix(key, "Z"):
			idx, ok := startPosIndex(key, "StartPos", "Z")
			if !ok {
				break
			}
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				startZ[idx] = v
				if idx > maxIndex {
					maxIndex = idx
				}
			}
		default:
			fields[key] = coerceSMDValue(value)
		}
	}

	var positions []StartPosition
	for i := 0; i <= maxIndex; i++ {
		x, xok := startX[i]
		z, zok := startZ[i]
		if xok && zok {
			positions = append(positions, StartPosition{X: x, Z: z})
		}
	}

	return fields, positions, nil
}

// startPosIndex extracts the numeric team index from a key of the form
// "StartPos<N>X" or "StartPosX" (index 0 when no digits are present).
func startPosIndex(key, prefix, suffix string) (int, bool) {
	mid := strings.TrimSuffix(strings.TrimPrefix(key, prefix), suffix)
	if mid == "" {
		return 0, true
	}
	idx, err := strconv.Atoi(mid)
	if err != nil {
		return 0, false
	}
	return idx, true
}

// coerceSMDValue attempts int, then float, then bare string.
func coerceSMDValue(value string) any {
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}
