package tess

import (
	"fmt"
	"math"

	earcut "github.com/rclancey/go-earcut"
	"gonum.org/v1/gonum/spatial/r3"
)

// EarClipper triangulates planar contours with earcut. Contours are projected
// onto the plane of the largest one and nested under the even-odd rule; each
// filled contour is cut together with its direct holes. It never inserts
// vertices, so every output vertex keeps its input Index.
//
// Output triangles wind counter-clockwise around the Newell normal of the
// largest contour. EarClipper has no state and is safe for concurrent use.
type EarClipper struct{}

// NewEarClipper returns an ear clipping tessellator.
func NewEarClipper() *EarClipper {
	return &EarClipper{}
}

type point2 struct {
	x, y float64
}

type ring struct {
	ids    []int // offsets into the projected point list
	area   float64
	depth  int
	parent int
	holes  []*ring
}

type clipper struct {
	pts  []point2
	tris []int
}

// Tessellate implements Tessellator. Only WindingOdd and ElementTriangles are supported.
func (e *EarClipper) Tessellate(contours [][]ContourVertex, rule WindingRule, elem ElementType) (Result, error) {
	if rule != WindingOdd {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedWinding, rule)
	}
	if elem != ElementTriangles {
		return Result{}, fmt.Errorf("%w: %d", ErrUnsupportedElement, elem)
	}

	var res Result
	var rings []*ring
	for _, contour := range contours {
		if len(contour) < 3 {
			continue
		}
		r := &ring{parent: -1}
		for _, v := range contour {
			r.ids = append(r.ids, len(res.Vertices))
			res.Vertices = append(res.Vertices, v)
		}
		rings = append(rings, r)
	}
	if len(rings) == 0 {
		return res, nil
	}

	pts := project(res.Vertices, rings)
	if pts == nil {
		// Every contour is degenerate, nothing to fill.
		return res, nil
	}
	c := &clipper{pts: pts}

	for _, r := range rings {
		r.area = c.signedArea(r.ids)
	}
	c.nest(rings)

	for _, r := range rings {
		if r.depth%2 != 0 || r.area == 0 {
			continue
		}
		if err := c.fill(r); err != nil {
			return Result{}, err
		}
	}

	res.Elements = c.tris
	return res, nil
}

// project drops the dominant axis of the largest contour's normal, mirroring
// when needed so that contours wound counter-clockwise around it stay
// counter-clockwise in the plane.
func project(vs []ContourVertex, rings []*ring) []point2 {
	var normal r3.Vec
	best := 0.0
	for _, r := range rings {
		n := newell(vs, r.ids)
		if l := r3.Norm2(n); l > best {
			best = l
			normal = n
		}
	}
	if best == 0 {
		return nil
	}

	ax, ay, az := math.Abs(normal.X), math.Abs(normal.Y), math.Abs(normal.Z)
	pts := make([]point2, len(vs))
	for i, v := range vs {
		p := v.Position
		var q point2
		switch {
		case az >= ax && az >= ay:
			q = point2{p.X, p.Y}
			if normal.Z < 0 {
				q.x = -q.x
			}
		case ax >= ay:
			q = point2{p.Y, p.Z}
			if normal.X < 0 {
				q.x = -q.x
			}
		default:
			q = point2{p.Z, p.X}
			if normal.Y < 0 {
				q.x = -q.x
			}
		}
		pts[i] = q
	}
	return pts
}

func newell(vs []ContourVertex, ids []int) r3.Vec {
	var n r3.Vec
	for i := range ids {
		a := vs[ids[i]].Position
		b := vs[ids[(i+1)%len(ids)]].Position
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// nest assigns even-odd depths, orients outer rings counter-clockwise and holes
// clockwise, and attaches each hole to its innermost enclosing ring.
func (c *clipper) nest(rings []*ring) {
	for i, r := range rings {
		p := c.pts[r.ids[0]]
		for j, o := range rings {
			if i != j && c.inside(p, o.ids) {
				r.depth++
			}
		}
	}

	for i, r := range rings {
		if r.depth%2 == 0 {
			if r.area < 0 {
				reverse(r.ids)
				r.area = -r.area
			}
			continue
		}
		if r.area > 0 {
			reverse(r.ids)
			r.area = -r.area
		}

		p := c.pts[r.ids[0]]
		for j, o := range rings {
			if i == j || o.depth != r.depth-1 || !c.inside(p, o.ids) {
				continue
			}
			if r.parent < 0 || math.Abs(o.area) < math.Abs(rings[r.parent].area) {
				r.parent = j
			}
		}
		if r.parent >= 0 {
			rings[r.parent].holes = append(rings[r.parent].holes, r)
		}
	}
}

// fill cuts outer and its non-degenerate holes with earcut and appends the
// triangles, mapped back to point offsets and wound counter-clockwise.
func (c *clipper) fill(outer *ring) error {
	ids := append([]int(nil), outer.ids...)
	var holeStarts []int
	for _, h := range outer.holes {
		if h.area == 0 {
			continue
		}
		holeStarts = append(holeStarts, len(ids))
		ids = append(ids, h.ids...)
	}

	flat := make([]float64, 0, 2*len(ids))
	for _, id := range ids {
		flat = append(flat, c.pts[id].x, c.pts[id].y)
	}

	tris, err := earcut.Earcut(flat, holeStarts, 2)
	if err != nil {
		return fmt.Errorf("tess: earcut: %w", err)
	}
	for i := 0; i+2 < len(tris); i += 3 {
		a, b, d := ids[tris[i]], ids[tris[i+1]], ids[tris[i+2]]
		if cross(c.pts[a], c.pts[b], c.pts[d]) < 0 {
			b, d = d, b
		}
		c.tris = append(c.tris, a, b, d)
	}
	return nil
}

func (c *clipper) inside(p point2, ids []int) bool {
	in := false
	n := len(ids)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := c.pts[ids[i]], c.pts[ids[j]]
		if (a.y > p.y) != (b.y > p.y) && p.x < (b.x-a.x)*(p.y-a.y)/(b.y-a.y)+a.x {
			in = !in
		}
	}
	return in
}

func (c *clipper) signedArea(ids []int) float64 {
	var s float64
	n := len(ids)
	for i := 0; i < n; i++ {
		a, b := c.pts[ids[i]], c.pts[ids[(i+1)%n]]
		s += a.x*b.y - b.x*a.y
	}
	return s / 2
}

func cross(a, b, c point2) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

func reverse(ids []int) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}
