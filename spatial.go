package tetmesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// NearestVertex returns the id of the vertex closest to p and its distance to p.
// The search tree is built on first use.
func (m *Mesh) NearestVertex(p r3.Vec) (int, float64) {
	m.kdOnce.Do(func() {
		pts := make(vertexPoints, len(m.verts))
		for i := range pts {
			pts[i] = vertexPoint{id: i, pos: m.position(i)}
		}
		m.kd = kdtree.New(pts, false)
	})
	got, dist2 := m.kd.Nearest(&vertexPoint{id: -1, pos: p})
	return got.(*vertexPoint).id, math.Sqrt(dist2)
}

type vertexPoint struct {
	id  int
	pos r3.Vec
}

func (v *vertexPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*vertexPoint)
	switch d {
	case 0:
		return v.pos.X - q.pos.X
	case 1:
		return v.pos.Y - q.pos.Y
	case 2:
		return v.pos.Z - q.pos.Z
	}
	panic("unreachable")
}

func (v *vertexPoint) Dims() int { return 3 }

// Distance returns the squared euclidean distance.
func (v *vertexPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(v.pos, c.(*vertexPoint).pos))
}

type vertexPoints []vertexPoint

func (vp vertexPoints) Index(i int) kdtree.Comparable { return &vp[i] }
func (vp vertexPoints) Len() int                      { return len(vp) }

func (vp vertexPoints) Pivot(d kdtree.Dim) int {
	p := vertexPlane{dim: d, points: vp}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (vp vertexPoints) Slice(start, end int) kdtree.Interface { return vp[start:end] }

type vertexPlane struct {
	dim    kdtree.Dim
	points vertexPoints
}

func (p vertexPlane) Less(i, j int) bool {
	return p.points[i].Compare(&p.points[j], p.dim) < 0
}
func (p vertexPlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
func (p vertexPlane) Len() int { return len(p.points) }
func (p vertexPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
