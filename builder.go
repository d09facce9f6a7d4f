package tetmesh

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Config controls how a Builder constructs a Mesh.
type Config struct {
	// CheckOrientation swaps the last two vertices of every tetrahedron with
	// negative signed volume before its half-faces are generated, so that
	// boundary half-faces consistently point out of the mesh. When false
	// tetrahedra are indexed in the order given.
	CheckOrientation bool
}

// BuildState is the stage a Builder is in. States only advance.
type BuildState uint8

const (
	StateEmpty BuildState = iota
	StateIngesting
	StateIndexing
	StateClassifying
	StateFinalized
	// StateFailed is terminal. The partially built mesh is discarded.
	StateFailed
)

func (s BuildState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateIngesting:
		return "ingesting"
	case StateIndexing:
		return "indexing"
	case StateClassifying:
		return "classifying"
	case StateFinalized:
		return "finalized"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("BuildState(%d)", uint8(s))
}

// Builder constructs a Mesh in four steps which must be called in order:
// Ingest, Index, Classify and Finalize. An error at any step moves the
// Builder to StateFailed; every later call returns that same error and no
// Mesh is produced. A Builder is not safe for concurrent use but separate
// Builders share no state.
type Builder struct {
	cfg     Config
	state   BuildState
	err     error
	mesh    *Mesh
	scratch *scratch
}

// scratch holds lookup tables only needed while the mesh is being built.
type scratch struct {
	faceByKey map[[3]int]int
	edgeByKey map[[2]int]int
	// claims maps a face id to tets beyond the second containing it.
	claims map[int][]int
}

// NewBuilder returns a Builder in StateEmpty.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// State returns the current stage of the builder.
func (b *Builder) State() BuildState { return b.state }

// Err returns the error that failed the build, if any.
func (b *Builder) Err() error { return b.err }

func (b *Builder) advance(from, to BuildState, step string) error {
	if b.state == StateFailed {
		return b.err
	}
	if b.state != from {
		return b.fail(configErrorf("%s called in state %s, want %s", step, b.state, from))
	}
	b.state = to
	return nil
}

func (b *Builder) fail(err error) error {
	b.state = StateFailed
	b.err = err
	b.mesh = nil
	b.scratch = nil
	return err
}

// Ingest receives vertex positions as consecutive xyz triples and tetrahedra
// as consecutive groups of four dense 0-based vertex ids. Stores are sized to
// the input counts. Neither slice is retained.
func (b *Builder) Ingest(positions []float64, tetVertexIDs []int) error {
	if err := b.advance(StateEmpty, StateIngesting, "Ingest"); err != nil {
		return err
	}
	if err := validateInput(positions, tetVertexIDs); err != nil {
		return b.fail(err)
	}
	nv := len(positions) / 3
	nt := len(tetVertexIDs) / 4
	data := make([]float64, 3*nv)
	for i := 0; i < nv; i++ {
		data[i] = positions[3*i]
		data[nv+i] = positions[3*i+1]
		data[2*nv+i] = positions[3*i+2]
	}
	m := &Mesh{
		pos:       mat.NewDense(3, nv, data),
		verts:     make([]Vertex, nv),
		tets:      make([]Tet, nt),
		halfFaces: make([]HalfFace, 4*nt),
		faces:     make([]Face, 0, 2*nt+2),
		edges:     make([]Edge, 0, nv+nt+3),
	}
	for i := range m.verts {
		m.verts[i] = Vertex{id: i, mesh: m}
	}
	for tid := range m.tets {
		t := &m.tets[tid]
		t.id = tid
		copy(t.verts[:], tetVertexIDs[4*tid:4*tid+4])
		t.halfFaces = [4]int{-1, -1, -1, -1}
		t.edges = [6]int{-1, -1, -1, -1, -1, -1}
	}
	b.mesh = m
	b.scratch = &scratch{
		faceByKey: make(map[[3]int]int, 2*nt+2),
		edgeByKey: make(map[[2]int]int, nv+nt+3),
		claims:    make(map[int][]int),
	}
	return nil
}

func validateInput(positions []float64, tetVertexIDs []int) error {
	if len(positions)%3 != 0 {
		return configErrorf("position array length %d is not a multiple of 3", len(positions))
	}
	if len(tetVertexIDs)%4 != 0 {
		return configErrorf("tet vertex id array length %d is not a multiple of 4", len(tetVertexIDs))
	}
	nv := len(positions) / 3
	if nv == 0 {
		return configErrorf("no vertices")
	}
	for i, p := range positions {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return configErrorf("vertex %d has non-finite coordinate %g", i/3, p)
		}
	}
	for i, vid := range tetVertexIDs {
		tid := i / 4
		if vid < 0 || vid >= nv {
			return configErrorf("tet %d references vertex %d outside [0,%d)", tid, vid, nv)
		}
		for _, prev := range tetVertexIDs[4*tid : i] {
			if prev == vid {
				return configErrorf("tet %d references vertex %d more than once", tid, vid)
			}
		}
	}
	return nil
}

// Index orients tetrahedra if configured and generates and pairs their
// half-faces. A facet contained in more than two tetrahedra fails the build
// with a TopologyError.
func (b *Builder) Index() error {
	if err := b.advance(StateIngesting, StateIndexing, "Index"); err != nil {
		return err
	}
	m := b.mesh
	for tid := range m.tets {
		t := &m.tets[tid]
		if b.cfg.CheckOrientation {
			var swapped bool
			t.verts, swapped = m.orientTet(t.verts)
			if swapped {
				m.reoriented++
			}
		}
		for k, vid := range t.verts {
			m.verts[vid].tverts = append(m.verts[vid].tverts, TVertex{Tet: tid, Local: k})
		}
		b.indexHalfFaces(tid)
	}
	if err := b.nonManifoldError(); err != nil {
		return b.fail(err)
	}
	return nil
}

// Classify derives edges from the faces and marks boundary faces, edges and vertices.
func (b *Builder) Classify() error {
	if err := b.advance(StateIndexing, StateClassifying, "Classify"); err != nil {
		return err
	}
	b.indexEdges()
	b.mesh.classifyBoundary()
	return nil
}

// Finalize records the maximum vertex id, trims adjacency storage, releases
// build scratch and returns the finished mesh.
func (b *Builder) Finalize() (*Mesh, error) {
	if err := b.advance(StateClassifying, StateFinalized, "Finalize"); err != nil {
		return nil, err
	}
	m := b.mesh
	for i := range m.verts {
		v := &m.verts[i]
		if v.id > m.maxVertexID {
			m.maxVertexID = v.id
		}
		v.edges = compact(v.edges)
		v.tverts = compact(v.tverts)
	}
	for i := range m.edges {
		m.edges[i].faces = compact(m.edges[i].faces)
	}
	m.faces = compact(m.faces)
	m.edges = compact(m.edges)
	b.scratch = nil
	b.mesh = nil
	return m, nil
}

// compact returns s with no spare capacity.
func compact[S ~[]E, E any](s S) S {
	if cap(s) == len(s) {
		return s
	}
	return slices.Clip(slices.Clone(s))
}

// Build constructs a mesh from vertex positions given as consecutive xyz
// triples and tetrahedra given as consecutive groups of four vertex ids.
func Build(positions []float64, tetVertexIDs []int, checkOrientation bool) (*Mesh, error) {
	b := NewBuilder(Config{CheckOrientation: checkOrientation})
	if err := b.Ingest(positions, tetVertexIDs); err != nil {
		return nil, err
	}
	if err := b.Index(); err != nil {
		return nil, err
	}
	if err := b.Classify(); err != nil {
		return nil, err
	}
	return b.Finalize()
}

// MustBuild is like Build but panics on error.
func MustBuild(positions []float64, tetVertexIDs []int, checkOrientation bool) *Mesh {
	m, err := Build(positions, tetVertexIDs, checkOrientation)
	if err != nil {
		panic(err)
	}
	return m
}
