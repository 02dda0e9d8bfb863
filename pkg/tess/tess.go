// Package tess defines the contour tessellator used for faces that are not
// plain triangles or quads, and provides a pure-Go ear clipping implementation.
package tess

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Inserted marks an output vertex that was not part of any input contour.
const Inserted = -1

// Tessellator errors.
var (
	ErrUnsupportedWinding = errors.New("tess: unsupported winding rule")
	ErrUnsupportedElement = errors.New("tess: unsupported element type")
)

// WindingRule decides which regions of overlapping contours are inside.
// The triangulator always asks for WindingOdd and EarClipper supports only
// that rule. The other rules exist for Tessellator implementations wrapping
// libtess2-style libraries through Func, which accept the full set.
type WindingRule int

const (
	WindingOdd WindingRule = iota
	WindingNonZero
	WindingPositive
	WindingNegative
	WindingAbsGeqTwo
)

// String returns the winding rule name.
func (w WindingRule) String() string {
	switch w {
	case WindingOdd:
		return "Odd"
	case WindingNonZero:
		return "NonZero"
	case WindingPositive:
		return "Positive"
	case WindingNegative:
		return "Negative"
	case WindingAbsGeqTwo:
		return "AbsGeqTwo"
	default:
		return fmt.Sprintf("Unknown(%d)", int(w))
	}
}

// ElementType is the primitive requested from the tessellator. The
// triangulator only requests ElementTriangles; ElementBoundaryContours is
// passed through to libtess2-style implementations that can return outlines.
type ElementType int

const (
	ElementTriangles ElementType = iota
	ElementBoundaryContours
)

// ContourVertex is a contour point. Index is the caller's handle for the point,
// or Inserted for vertices created by the tessellator.
type ContourVertex struct {
	Position r3.Vec
	Index    int
}

// Result is a tessellation: Elements holds three entries per triangle, each an
// offset into Vertices.
type Result struct {
	Vertices []ContourVertex
	Elements []int
}

// ElementCount returns the number of triangles.
func (r Result) ElementCount() int {
	return len(r.Elements) / 3
}

// Tessellator triangulates a set of closed contours.
type Tessellator interface {
	Tessellate(contours [][]ContourVertex, rule WindingRule, elem ElementType) (Result, error)
}

// Func adapts an ordinary function to the Tessellator interface.
type Func func(contours [][]ContourVertex, rule WindingRule, elem ElementType) (Result, error)

// Tessellate calls f.
func (f Func) Tessellate(contours [][]ContourVertex, rule WindingRule, elem ElementType) (Result, error) {
	return f(contours, rule, elem)
}
