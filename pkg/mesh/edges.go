package mesh

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/orthoview/pkg/math"
)

// DefaultFeatureAngle is the dihedral angle in degrees above which an edge
// between two faces counts as a feature edge.
const DefaultFeatureAngle = 15

// weldPrecision is the grid used to merge coincident vertices.
const weldPrecision = 1e-4

// Edge is a line segment in model space.
type Edge struct {
	A, B math.Vec3
}

// Midpoint returns the center of the edge.
func (e Edge) Midpoint() math.Vec3 {
	return e.A.Midpoint(e.B)
}

// Length returns the edge length.
func (e Edge) Length() float32 {
	return e.A.Distance(e.B)
}

// Features is the result of edge analysis on a mesh.
type Features struct {
	Edges     []Edge
	Boundary  int // edges with a single adjacent face
	Triangles int // non-degenerate triangles considered
	Angle     float32
}

type edgeKey struct{ a, b int }

type edgeInfo struct {
	a, b    math.Vec3
	normals []math.Vec3
}

// FeatureEdges returns the edges whose adjacent face normals differ by more
// than angleDeg, plus boundary edges. Vertices are welded by position first
// so shared seams are recognized. Edges come back in first-seen order.
func (m *Mesh) FeatureEdges(angleDeg float32) (*Features, error) {
	if m.TriangleCount() == 0 {
		return nil, ErrEmptyMesh
	}

	weld := make(map[[3]int32]int)
	canon := make([]int, len(m.Vertices))
	for i, v := range m.Vertices {
		k := [3]int32{quantize(v.X), quantize(v.Y), quantize(v.Z)}
		id, ok := weld[k]
		if !ok {
			id = len(weld)
			weld[k] = id
		}
		canon[i] = id
	}

	edges := make(map[edgeKey]*edgeInfo)
	var order []edgeKey
	triangles := 0

	for t := 0; t < m.TriangleCount(); t++ {
		idx := [3]uint32{m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2]}
		a, b, c := m.Vertices[idx[0]], m.Vertices[idx[1]], m.Vertices[idx[2]]
		n, area := faceNormal(a, b, c)
		if area < 1e-10 {
			continue
		}
		triangles++
		for j := 0; j < 3; j++ {
			i0, i1 := idx[j], idx[(j+1)%3]
			c0, c1 := canon[i0], canon[i1]
			if c0 == c1 {
				continue
			}
			key := edgeKey{c0, c1}
			if c0 > c1 {
				key = edgeKey{c1, c0}
			}
			info, ok := edges[key]
			if !ok {
				info = &edgeInfo{a: m.Vertices[i0], b: m.Vertices[i1]}
				edges[key] = info
				order = append(order, key)
			}
			info.normals = append(info.normals, n)
		}
	}

	if triangles == 0 {
		return nil, ErrEmptyMesh
	}

	cosThreshold := math32.Cos(angleDeg * math32.Pi / 180)
	f := &Features{Triangles: triangles, Angle: angleDeg}
	for _, key := range order {
		info := edges[key]
		switch len(info.normals) {
		case 1:
			f.Boundary++
			f.Edges = append(f.Edges, Edge{A: info.a, B: info.b})
		case 2:
			if info.normals[0].Dot(info.normals[1]) <= cosThreshold {
				f.Edges = append(f.Edges, Edge{A: info.a, B: info.b})
			}
		default:
			return nil, fmt.Errorf("%w: edge %v-%v has %d faces", ErrNonManifold, info.a, info.b, len(info.normals))
		}
	}
	return f, nil
}

func quantize(v float32) int32 {
	return int32(math32.Floor(v/weldPrecision + 0.5))
}
