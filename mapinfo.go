// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package springmap

import (
	"fmt"
	"strings"

	"github.com/kelindar/springmap/internal/luatable"
)

// parseMapInfo decodes a mapinfo.lua `return { ... }` table into a plain
// dictionary. Unknown barewords are kept as their literal names. A syntax
// error anywhere in the table fails the whole parse with
// ErrMetadataParseFailed; malformed fields are not skipped and no partial
// dictionary is returned.
func parseMapInfo(data []byte) (map[string]any, error) {
	table, err := luatable.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("mapinfo: %w: %w", ErrMetadataParseFailed, err)
	}
	return table, nil
}

// startPositionsFromMapInfo walks the conventional mapinfo `resources`-
// adjacent `teams` table (teams.<n>.startPos = {x=.., z=..}) and returns the
// positions in team-index order, starting at team 0. The walk stops at the
// first missing team index; teams without a well-formed startPos are skipped.
func startPositionsFromMapInfo(meta map[string]any) []StartPosition {
	teams, ok := meta["teams"].(map[string]any)
	if !ok {
		return nil
	}

	var positions []StartPosition
	for i := 0; ; i++ {
		team, ok := teams[fmt.Sprintf("%d", i)].(map[string]any)
		if !ok {
			break
		}
		pos, ok := team["startPos"].(map[string]any)
		if !ok {
			continue
		}
		x, xok := pos["x"].(float64)
		z, zok := pos["z"].(float64)
		if xok && zok {
			positions = append(positions, StartPosition{X: x, Z: z})
		}
	}
	return positions
}

// resourceRefsFromMapInfo collects the string-valued leaves under
// meta["resources"], keyed the same way mapinfo declares them
// (e.g. "detailTex" -> "detailtex.bmp").
func resourceRefsFromMapInfo(meta map[string]any) map[string]string {
	resources, ok := meta["resources"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(resources))
	for k, v := range resources {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// scriptNameFromMapInfo derives the display label per the top-level
// pipeline's naming rule: if name already contains version, use name
// verbatim; else "{name} {version}"; the bare SMF stem fallback is the
// pipeline's responsibility when metadata is absent entirely.
func scriptNameFromMapInfo(meta map[string]any, fallback string) string {
	name, _ := meta["name"].(string)
	version, _ := meta["version"].(string)

	switch {
	case name == "":
		return fallback
	case version == "":
		return name
	case strings.Contains(name, version):
		return name
	default:
		return name + " " + version
	}
}
