// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package springmap

import "errors"

// Error kinds for the parser's failure modes, wrapped with %w at the point
// they are detected. Config validation errors and file-system errors from
// reading or walking the extracted archive are returned without one of
// these sentinels. TileDecodeFailed and MetadataParseFailed are the two
// kinds that are always recovered locally and never reach a caller.
var (
	ErrNotASpringArchive     = errors.New("springmap: not a spring map archive")
	ErrArchiveExtraction     = errors.New("springmap: archive extraction failed")
	ErrMissingSMF            = errors.New("springmap: archive has no .smf file")
	ErrMissingSMT            = errors.New("springmap: archive has no .smt file")
	ErrNotASpringMap         = errors.New("springmap: SMF magic mismatch")
	ErrInputTruncated        = errors.New("springmap: input truncated")
	ErrBadOffset             = errors.New("springmap: declared region offset outside buffer")
	ErrUnsupportedDDS        = errors.New("springmap: unsupported DDS resource")
	ErrTileDecodeFailed      = errors.New("springmap: tile decode failed")
	ErrMetadataParseFailed   = errors.New("springmap: metadata parse failed")
)
