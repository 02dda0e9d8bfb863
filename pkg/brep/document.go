package brep

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document errors.
var (
	ErrUnknownItemType = errors.New("unknown representation item type")
	ErrInvalidPoint    = errors.New("point must have 2 or 3 coordinates")
)

// Item type names accepted in model documents.
const (
	TypeFacetedBrep            = "faceted_brep"
	TypeShellBasedSurfaceModel = "shell_based_surface_model"
	TypeFaceBasedSurfaceModel  = "face_based_surface_model"
	TypeConnectedFaceSet       = "connected_face_set"
)

// Document is the YAML form of a single representation item.
//
//	type: faceted_brep
//	shells:
//	  - closed: true
//	    faces:
//	      - bounds:
//	          - orientation: true
//	            points: [[0, 0, 0], [1, 0, 0], [1, 1, 0]]
type Document struct {
	Name   string        `yaml:"name"`
	Type   string        `yaml:"type"`
	Shells []ShellRecord `yaml:"shells"`
}

// ShellRecord is a shell (or connected face set) in a model document.
type ShellRecord struct {
	Closed bool         `yaml:"closed"`
	Faces  []FaceRecord `yaml:"faces"`
}

// FaceRecord is a face in a model document.
type FaceRecord struct {
	Bounds []BoundRecord `yaml:"bounds"`
}

// BoundRecord is a face bound in a model document. Orientation defaults to true.
type BoundRecord struct {
	Outer       bool        `yaml:"outer"`
	Orientation *bool       `yaml:"orientation"`
	Points      [][]float64 `yaml:"points"`
}

// Parse decodes a YAML model document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads a YAML model document from disk and converts it to an item.
func Load(path string) (Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc.Item()
}

// Item converts the document to its representation item.
func (d *Document) Item() (Item, error) {
	shells := make([]Shell, 0, len(d.Shells))
	for i, sr := range d.Shells {
		s, err := sr.shell()
		if err != nil {
			return nil, fmt.Errorf("shell %d: %w", i, err)
		}
		shells = append(shells, s)
	}

	switch d.Type {
	case TypeFacetedBrep:
		if len(shells) != 1 {
			return nil, fmt.Errorf("%s needs exactly one shell, got %d", d.Type, len(shells))
		}
		outer := shells[0]
		outer.Closed = true
		return &FacetedBrep{Outer: outer}, nil
	case TypeShellBasedSurfaceModel:
		return &ShellBasedSurfaceModel{Shells: shells}, nil
	case TypeFaceBasedSurfaceModel:
		sets := make([]ConnectedFaceSet, len(shells))
		for i := range shells {
			sets[i] = shells[i].ConnectedFaceSet
		}
		return &FaceBasedSurfaceModel{FaceSets: sets}, nil
	case TypeConnectedFaceSet:
		var faces []Face
		for _, s := range shells {
			faces = append(faces, s.Faces...)
		}
		return &ConnectedFaceSet{Faces: faces}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownItemType, d.Type)
	}
}

func (sr ShellRecord) shell() (Shell, error) {
	s := Shell{Closed: sr.Closed}
	s.Faces = make([]Face, 0, len(sr.Faces))
	for fi, fr := range sr.Faces {
		face := Face{Bounds: make([]FaceBound, 0, len(fr.Bounds))}
		for bi, br := range fr.Bounds {
			loop := &PolyLoop{Polygon: make([]Point, 0, len(br.Points))}
			for pi, c := range br.Points {
				switch len(c) {
				case 2:
					loop.Polygon = append(loop.Polygon, Pt2(c[0], c[1]))
				case 3:
					loop.Polygon = append(loop.Polygon, Pt(c[0], c[1], c[2]))
				default:
					return Shell{}, fmt.Errorf("face %d bound %d point %d: %w", fi, bi, pi, ErrInvalidPoint)
				}
			}
			orientation := true
			if br.Orientation != nil {
				orientation = *br.Orientation
			}
			face.Bounds = append(face.Bounds, FaceBound{
				Loop:        loop,
				Orientation: orientation,
				Outer:       br.Outer,
			})
		}
		s.Faces = append(s.Faces, face)
	}
	return s, nil
}
