// Package brep provides the boundary-representation input model consumed by the mesher.
package brep

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnsupportedRepresentation is returned for representation items that cannot be tessellated.
var ErrUnsupportedRepresentation = errors.New("unsupported representation type for tessellation")

// Point is a cartesian point. Dim is 2 or 3; two-dimensional points have Z ignored.
type Point struct {
	X, Y, Z float64
	Dim     int
}

// Vec returns the point as a 3D vector, promoting 2D points to z=0.
func (p Point) Vec() r3.Vec {
	if p.Dim == 2 {
		return r3.Vec{X: p.X, Y: p.Y}
	}
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Pt returns a 3D point.
func Pt(x, y, z float64) Point {
	return Point{X: x, Y: y, Z: z, Dim: 3}
}

// Pt2 returns a 2D point.
func Pt2(x, y float64) Point {
	return Point{X: x, Y: y, Dim: 2}
}

// PolyLoop is a closed polygon given by its ordered points (the closing edge is implicit).
type PolyLoop struct {
	Polygon []Point
}

// FaceBound is one boundary of a face. Loop is nil for non-polygonal bounds
// (edge or vertex loops), which the tessellator skips.
type FaceBound struct {
	Loop        *PolyLoop
	Orientation bool // false means the loop points run against the face sense
	Outer       bool
}

// Points returns the loop points in face sense with 2D points promoted to 3D.
// The dimension of the whole loop is taken from its first point.
func (b FaceBound) Points() []r3.Vec {
	if b.Loop == nil || len(b.Loop.Polygon) == 0 {
		return nil
	}
	poly := b.Loop.Polygon
	is3D := poly[0].Dim != 2

	pts := make([]r3.Vec, len(poly))
	for i := range poly {
		src := poly[i]
		if !b.Orientation {
			src = poly[len(poly)-1-i]
		}
		v := r3.Vec{X: src.X, Y: src.Y}
		if is3D {
			v.Z = src.Z
		}
		pts[i] = v
	}
	return pts
}

// Face is a planar or near-planar face with one outer bound and any number of holes.
type Face struct {
	Bounds []FaceBound
}

// Item is a geometric representation item.
type Item interface {
	ItemType() string
}

// ConnectedFaceSet is a set of faces forming one shell.
type ConnectedFaceSet struct {
	Faces []Face
}

// Shell is an open or closed shell.
type Shell struct {
	ConnectedFaceSet
	Closed bool
}

// FaceBasedSurfaceModel is a surface model made of connected face sets.
type FaceBasedSurfaceModel struct {
	FaceSets []ConnectedFaceSet
}

// ShellBasedSurfaceModel is a surface model bounded by shells.
type ShellBasedSurfaceModel struct {
	Shells []Shell
}

// FacetedBrep is a solid bounded by a single closed shell of planar faces.
type FacetedBrep struct {
	Outer Shell
}

func (ConnectedFaceSet) ItemType() string       { return "ConnectedFaceSet" }
func (FaceBasedSurfaceModel) ItemType() string  { return "FaceBasedSurfaceModel" }
func (ShellBasedSurfaceModel) ItemType() string { return "ShellBasedSurfaceModel" }
func (FacetedBrep) ItemType() string            { return "FacetedBrep" }

// CanMesh reports whether item is one of the supported surface representations.
func CanMesh(item Item) bool {
	switch item.(type) {
	case *FaceBasedSurfaceModel, *ShellBasedSurfaceModel, *ConnectedFaceSet, *FacetedBrep,
		FaceBasedSurfaceModel, ShellBasedSurfaceModel, ConnectedFaceSet, FacetedBrep:
		return true
	}
	return false
}

// Shells flattens a representation item into face lists, one per shell, in model order.
func Shells(item Item) ([][]Face, error) {
	switch it := item.(type) {
	case *FaceBasedSurfaceModel:
		return Shells(*it)
	case *ShellBasedSurfaceModel:
		return Shells(*it)
	case *ConnectedFaceSet:
		return Shells(*it)
	case *FacetedBrep:
		return Shells(*it)

	case FaceBasedSurfaceModel:
		shells := make([][]Face, 0, len(it.FaceSets))
		for _, fs := range it.FaceSets {
			shells = append(shells, fs.Faces)
		}
		return shells, nil
	case ShellBasedSurfaceModel:
		shells := make([][]Face, 0, len(it.Shells))
		for _, s := range it.Shells {
			shells = append(shells, s.Faces)
		}
		return shells, nil
	case ConnectedFaceSet:
		return [][]Face{it.Faces}, nil
	case FacetedBrep:
		return [][]Face{it.Outer.Faces}, nil
	}

	if item == nil {
		return nil, fmt.Errorf("%w: <nil>", ErrUnsupportedRepresentation)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedRepresentation, item.ItemType())
}
