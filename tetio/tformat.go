package tetio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soypat/tetmesh"
)

// .t record tags.
const (
	tagVertex = "Vertex"
	tagTet    = "Tet"
	tagEdge   = "Edge"
)

// section is the record kind currently expected while reading a .t file.
// Records must appear as all vertices, then all tets, then all edges.
type section int

const (
	sectionVertex section = iota
	sectionTet
	sectionEdge
)

// ReadT reads a .t mesh. Vertex lines are "Vertex <id> <x> <y> <z>", tet lines
// "Tet 4 <a> <b> <c> <d>" and edge lines "Edge <a> <b>", where a, b, c and d
// reference vertex ids as written in the file. Ids are remapped to dense
// 0-based ids in order of appearance. Tokens after the required fields are ignored.
func ReadT(r io.Reader) (*Source, error) {
	var (
		src    Source
		sec    = sectionVertex
		fileID = make(map[int]int)
		lineno int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		lineno++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		ferr := func(format string, args ...any) error {
			return &tetmesh.FormatError{Line: lineno, Index: -1, Msg: fmt.Sprintf(format, args...)}
		}
		tag := fields[0]
		switch {
		case tag == tagVertex && sec == sectionVertex:
			if len(fields) < 5 {
				return nil, ferr("Vertex record needs id and 3 coordinates, got %d fields", len(fields)-1)
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, ferr("bad vertex id %q", fields[1])
			}
			if _, dup := fileID[id]; dup {
				return nil, ferr("duplicate vertex id %d", id)
			}
			var p [3]float64
			for k := range p {
				p[k], err = strconv.ParseFloat(fields[2+k], 64)
				if err != nil {
					return nil, ferr("bad vertex coordinate %q", fields[2+k])
				}
			}
			fileID[id] = len(src.FileIDs)
			src.FileIDs = append(src.FileIDs, id)
			src.Positions = append(src.Positions, p[:]...)

		case tag == tagTet && sec <= sectionTet:
			sec = sectionTet
			if len(fields) < 6 {
				return nil, ferr("Tet record needs arity and 4 vertex ids, got %d fields", len(fields)-1)
			}
			if fields[1] != "4" {
				return nil, ferr("Tet arity must be 4, got %q", fields[1])
			}
			for k := 0; k < 4; k++ {
				vid, err := lookupID(fileID, fields[2+k])
				if err != nil {
					return nil, ferr("%s", err)
				}
				src.Tets = append(src.Tets, vid)
			}

		case tag == tagEdge:
			sec = sectionEdge
			if len(fields) < 3 {
				return nil, ferr("Edge record needs 2 vertex ids, got %d fields", len(fields)-1)
			}
			var e [2]int
			for k := range e {
				vid, err := lookupID(fileID, fields[1+k])
				if err != nil {
					return nil, ferr("%s", err)
				}
				e[k] = vid
			}
			src.Edges = append(src.Edges, e)

		case tag == tagVertex || tag == tagTet:
			return nil, ferr("%s record after %s records", tag, sec.expected())
		default:
			return nil, ferr("unexpected record %q, want %s", tag, sec.expected())
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tetio: reading .t after line %d: %w", lineno, err)
	}
	if len(src.FileIDs) == 0 {
		return nil, &tetmesh.FormatError{Line: 0, Index: -1, Msg: "no Vertex records"}
	}
	return &src, nil
}

func (s section) expected() string {
	switch s {
	case sectionVertex:
		return tagVertex
	case sectionTet:
		return tagTet
	}
	return tagEdge
}

func lookupID(fileID map[int]int, field string) (int, error) {
	id, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("bad vertex id %q", field)
	}
	vid, ok := fileID[id]
	if !ok {
		return 0, fmt.Errorf("reference to undeclared vertex id %d", id)
	}
	return vid, nil
}

// WriteT writes m in .t format. Vertex file ids are the dense ids plus one.
// Every derived edge is written as an Edge record.
func WriteT(w io.Writer, m *tetmesh.Mesh) error {
	bw := bufio.NewWriter(w)
	for vid := 0; vid < m.NumVertices(); vid++ {
		v, _ := m.VertexByID(vid)
		p := v.Position()
		fmt.Fprintf(bw, "%s %d %s %s %s\n", tagVertex, vid+1, formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
	}
	for tid := 0; tid < m.NumTets(); tid++ {
		t, _ := m.TetByID(tid)
		v := t.Vertices()
		fmt.Fprintf(bw, "%s 4 %d %d %d %d\n", tagTet, v[0]+1, v[1]+1, v[2]+1, v[3]+1)
	}
	for eid := 0; eid < m.NumEdges(); eid++ {
		e, _ := m.EdgeByID(eid)
		v := e.Vertices()
		fmt.Fprintf(bw, "%s %d %d\n", tagEdge, v[0]+1, v[1]+1)
	}
	return bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
