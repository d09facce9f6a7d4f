package tetmesh

import (
	"io"

	"github.com/soypat/tetmesh/render"
)

// BoundarySurface returns the triangles of all boundary faces wound as their
// sole owning half-face. For a mesh built with orientation checking every
// triangle normal points out of the mesh.
func (m *Mesh) BoundarySurface() []render.Triangle3 {
	// surfaceRenderer only ever returns io.EOF.
	model, _ := render.RenderAll(m.SurfaceRenderer())
	return model
}

// SurfaceRenderer returns a render.Renderer streaming the boundary surface,
// suitable for render.CreateSTL.
func (m *Mesh) SurfaceRenderer() render.Renderer {
	return &surfaceRenderer{m: m}
}

type surfaceRenderer struct {
	m    *Mesh
	next int // next face id to inspect.
}

func (s *surfaceRenderer) ReadTriangles(t []render.Triangle3) (int, error) {
	m := s.m
	n := 0
	for n < len(t) && s.next < len(m.faces) {
		f := &m.faces[s.next]
		s.next++
		if !f.boundary {
			continue
		}
		hid := f.left
		if hid < 0 {
			hid = f.right
		}
		v := m.halfFaces[hid].verts
		t[n] = render.Triangle3{m.position(v[0]), m.position(v[1]), m.position(v[2])}
		n++
	}
	if s.next >= len(m.faces) {
		return n, io.EOF
	}
	return n, nil
}
