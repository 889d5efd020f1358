// Package equirect reprojects a six-face cubemap into a 2:1 equirectangular
// panorama via nearest-neighbour sampling.
package equirect

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Face indices, fixed order.
const (
	FacePosX = 0
	FaceNegX = 1
	FacePosY = 2
	FaceNegY = 3
	FacePosZ = 4
	FaceNegZ = 5
)

// Face holds one square RGBA8 cube face of side Size.
type Face struct {
	Pix  []byte
	Size int
}

// flippedFaces lists, empirically, the faces whose stored orientation needs
// a vertical flip before projection. Flipping {2,3} instead produces a
// misaligned panorama for the maps this was validated against — this is an
// empirical choice, not a derivation, and may need revisiting for other
// skybox sources.
var flippedFaces = map[int]bool{0: true, 1: true, 4: true, 5: true}

// Project reprojects six faces (in fixed +X,-X,+Y,-Y,+Z,-Z order) into an
// RGBA8 output buffer of width W and height W/2.
func Project(faces [6]Face, width int) ([]byte, int, int, error) {
	if width <= 0 || width%2 != 0 {
		return nil, 0, 0, fmt.Errorf("equirect: invalid output width %d", width)
	}
	height := width / 2

	for i, f := range faces {
		if len(f.Pix) != f.Size*f.Size*4 {
			return nil, 0, 0, fmt.Errorf("equirect: face %d buffer size mismatch: want %d, got %d", i, f.Size*f.Size*4, len(f.Pix))
		}
	}

	prepared := faces
	for i := range prepared {
		if flippedFaces[i] {
			prepared[i] = flipVertical(prepared[i])
		}
	}

	out := make([]byte, width*height*4)

	var g errgroup.Group
	for y := 0; y < height; y++ {
		y := y
		g.Go(func() error {
			projectRow(prepared, width, height, y, out)
			return nil
		})
	}
	_ = g.Wait() // row workers never return an error

	return out, width, height, nil
}

func flipVertical(f Face) Face {
	n := f.Size
	out := make([]byte, len(f.Pix))
	stride := n * 4
	for y := 0; y < n; y++ {
		src := f.Pix[y*stride : y*stride+stride]
		dstY := n - 1 - y
		copy(out[dstY*stride:dstY*stride+stride], src)
	}
	return Face{Pix: out, Size: n}
}

func projectRow(faces [6]Face, width, height, y int, out []byte) {
	phi := (float64(y) / float64(height)) * math.Pi

	sinPhi, cosPhi := math.Sincos(phi)
	for x := 0; x < width; x++ {
		theta := (float64(x) / float64(width)) * 2 * math.Pi
		sinTheta, cosTheta := math.Sincos(theta)

		dx := -sinPhi * sinTheta
		dy := cosPhi
		dz := -sinPhi * cosTheta

		face, u, v := selectFace(dx, dy, dz)
		f := faces[face]

		sx := sampleCoord(u, f.Size)
		sy := sampleCoord(v, f.Size)

		so := (sy*f.Size + sx) * 4
		do := (y*width + x) * 4
		copy(out[do:do+4], f.Pix[so:so+4])
	}
}

func sampleCoord(uv float64, size int) int {
	c := int(math.Floor(uv * float64(size)))
	if c < 0 {
		c = 0
	}
	if c > size-1 {
		c = size - 1
	}
	return c
}

// selectFace chooses the dominant axis of direction (dx,dy,dz) and returns
// the face index plus its (u,v) in [0,1] face-local coordinates.
func selectFace(dx, dy, dz float64) (face int, u, v float64) {
	ax, ay, az := math.Abs(dx), math.Abs(dy), math.Abs(dz)

	var uc, vc float64
	switch {
	case ax >= ay && ax >= az && dx > 0:
		face = FacePosX
		uc = -dz / ax
		vc = dy / ax
	case ax >= ay && ax >= az:
		face = FaceNegX
		uc = dz / ax
		vc = dy / ax
	case ay >= ax && ay >= az && dy > 0:
		face = FacePosY
		uc = dx / ay
		vc = dz / ay
	case ay >= ax && ay >= az:
		face = FaceNegY
		uc = dx / ay
		vc = -dz / ay
	case dz > 0:
		face = FacePosZ
		uc = dx / az
		vc = dy / az
	default:
		face = FaceNegZ
		uc = -dx / az
		vc = dy / az
	}

	u = 0.5 * (uc + 1)
	v = 0.5 * (vc + 1)
	return
}
