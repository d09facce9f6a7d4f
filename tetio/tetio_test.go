package tetio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/soypat/tetmesh"
	"github.com/soypat/tetmesh/helpers/tetgen"
	"github.com/soypat/tetmesh/tetio"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const twoTetsT = `Vertex 10 0 0 0
Vertex 20 1 0 0

Vertex 30 0 1 0
Vertex 40 0 0 1 trailing tokens are ignored
Vertex 50 1 1 1
Tet 4 10 20 30 40
Tet 4 20 30 40 50
Edge 10 20
Edge 10 50
`

func TestReadTRemapsIDs(t *testing.T) {
	src, err := tetio.ReadT(strings.NewReader(twoTetsT))
	require.NoError(t, err)
	require.Equal(t, 5, src.NumVertices())
	require.Equal(t, 2, src.NumTets())
	require.Equal(t, []int{10, 20, 30, 40, 50}, src.FileIDs)
	require.Equal(t, []int{0, 1, 2, 3, 1, 2, 3, 4}, src.Tets)
	require.Equal(t, [][2]int{{0, 1}, {0, 4}}, src.Edges)
	require.Equal(t, []float64{1, 1, 1}, src.Positions[12:15])

	m, err := src.Build(true)
	require.NoError(t, err)
	require.Equal(t, 9, m.NumEdges())

	// Edge 10-50 joins the two apexes, which share no tet.
	mismatches := tetio.CheckEdges(m, src.Edges)
	require.Equal(t, []tetio.EdgeMismatch{{Record: 1, Vertices: [2]int{0, 4}}}, mismatches)
}

func TestDeclaredEdgesIgnored(t *testing.T) {
	const input = `Vertex 1 0 0 0
Vertex 2 1 0 0
Vertex 3 0 1 0
Vertex 4 0 0 1
Tet 4 1 2 3 4
Edge 1 2
Edge 1 2
`
	src, err := tetio.ReadT(strings.NewReader(input))
	require.NoError(t, err)
	m, err := src.Build(false)
	require.NoError(t, err)
	require.Equal(t, 6, m.NumEdges())
	require.Empty(t, tetio.CheckEdges(m, src.Edges))
}

func TestReadTFormatErrors(t *testing.T) {
	for _, test := range []struct {
		name  string
		input string
		line  int
	}{
		{name: "unknown tag", input: "Vertex 1 0 0 0\nFace 1 2 3\n", line: 2},
		{name: "vertex after tet", input: "Vertex 1 0 0 0\nVertex 2 1 0 0\nVertex 3 0 1 0\nVertex 4 0 0 1\nTet 4 1 2 3 4\nVertex 5 1 1 1\n", line: 6},
		{name: "tet after edge", input: "Vertex 1 0 0 0\nVertex 2 1 0 0\nEdge 1 2\nTet 4 1 2 1 2\n", line: 4},
		{name: "bad arity", input: "Vertex 1 0 0 0\nVertex 2 1 0 0\nVertex 3 0 1 0\n\nTet 3 1 2 3 1\n", line: 5},
		{name: "undeclared id", input: "Vertex 1 0 0 0\nVertex 2 1 0 0\nVertex 3 0 1 0\nTet 4 1 2 3 9\n", line: 4},
		{name: "duplicate id", input: "Vertex 1 0 0 0\nVertex 1 1 0 0\n", line: 2},
		{name: "bad coordinate", input: "Vertex 1 0 zero 0\n", line: 1},
		{name: "short vertex", input: "Vertex 1 0 0\n", line: 1},
		{name: "short edge", input: "Vertex 1 0 0 0\nEdge 1\n", line: 2},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := tetio.ReadT(strings.NewReader(test.input))
			var ferr *tetmesh.FormatError
			require.ErrorAs(t, err, &ferr)
			require.Equal(t, test.line, ferr.Line)
		})
	}
}

func TestReadTNoVertices(t *testing.T) {
	_, err := tetio.ReadT(strings.NewReader("\n\n"))
	var ferr *tetmesh.FormatError
	require.ErrorAs(t, err, &ferr)
}

func blockMesh(t *testing.T) *tetmesh.Mesh {
	t.Helper()
	nodes, tetras, err := tetgen.BCCLattice(r3.Box{Max: r3.Vec{X: 2, Y: 2, Z: 2}}, 1)
	require.NoError(t, err)
	positions, ids := tetgen.Flatten(nodes, tetras)
	m, err := tetmesh.Build(positions, ids, true)
	require.NoError(t, err)
	return m
}

func TestWriteTRoundTrip(t *testing.T) {
	m := blockMesh(t)
	var buf bytes.Buffer
	require.NoError(t, tetio.WriteT(&buf, m))

	src, err := tetio.ReadT(&buf)
	require.NoError(t, err)
	require.Len(t, src.Edges, m.NumEdges())
	got, err := src.Build(true)
	require.NoError(t, err)
	require.Equal(t, m.Summary().Faces, got.Summary().Faces)
	require.Equal(t, m.Summary().BoundaryFaces, got.Summary().BoundaryFaces)
	require.Zero(t, got.Reoriented(), "written tets are already oriented")
	require.Empty(t, tetio.CheckEdges(got, src.Edges))
	require.True(t, mat.Equal(m.VertPos(), got.VertPos()))
}

func TestWriteGeoRoundTrip(t *testing.T) {
	m := blockMesh(t)
	var buf bytes.Buffer
	require.NoError(t, tetio.WriteGeo(&buf, m))

	src, err := tetio.ReadGeo(&buf)
	require.NoError(t, err)
	require.Nil(t, src.FileIDs)
	require.Equal(t, m.NumVertices(), src.NumVertices())
	require.Equal(t, m.NumTets(), src.NumTets())
	got, err := src.Build(false)
	require.NoError(t, err)
	want := m.Summary()
	want.Reoriented = 0
	require.Equal(t, want, got.Summary())
}

func TestReadGeoFlatArrays(t *testing.T) {
	const input = `["pointcount",4,
"topology",["pointref",["indices",[0,1,2,3]]],
"attributes",["pointattributes",[[["name","P"],["values",["arrays",[[0,0,0,1,0,0,0,1,0,0,0,1]]]]]]]]`
	src, err := tetio.ReadGeo(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1}, src.Positions)
	require.Equal(t, []int{0, 1, 2, 3}, src.Tets)
}

func TestReadGeoErrors(t *testing.T) {
	const points = `"attributes",["pointattributes",[[["name","P"],["values",["tuples",[[0,0,0],[1,0,0],[0,1,0],[0,0,1]]]]]]]`
	for _, test := range []struct {
		name  string
		input string
		index int
	}{
		{name: "index out of range", input: `["pointcount",4,"topology",["pointref",["indices",[0,1,2,7]]],` + points + `]`, index: 3},
		{name: "negative index", input: `["pointcount",4,"topology",["pointref",["indices",[0,-1,2,3]]],` + points + `]`, index: 1},
		{name: "indices not quads", input: `["pointcount",4,"topology",["pointref",["indices",[0,1,2]]],` + points + `]`, index: 3},
		{name: "pointcount mismatch", input: `["pointcount",5,"topology",["pointref",["indices",[0,1,2,3]]],` + points + `]`, index: -1},
		{name: "primitivecount mismatch", input: `["pointcount",4,"primitivecount",2,"topology",["pointref",["indices",[0,1,2,3]]],` + points + `]`, index: -1},
		{name: "missing topology", input: `["pointcount",4,` + points + `]`, index: -1},
		{name: "not an array", input: `{"pointcount":4}`, index: -1},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := tetio.ReadGeo(strings.NewReader(test.input))
			var ferr *tetmesh.FormatError
			require.ErrorAs(t, err, &ferr)
			require.Equal(t, test.index, ferr.Index)
			require.Zero(t, ferr.Line)
		})
	}
}
