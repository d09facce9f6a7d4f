package tetio

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/soypat/tetmesh"
)

// ReadGeo reads a Houdini style JSON geometry. The document is a flat array
// of alternating keys and values. Positions come from the "P" point attribute
// (stored as "tuples" of 3 or as a flat "arrays" entry) and tetrahedra from
// "topology" → "pointref" → "indices", four consecutive point indices per
// tetrahedron. Ids are dense and 0-based.
func ReadGeo(r io.Reader) (*Source, error) {
	var doc []any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return nil, geoErr(-1, "document is not a JSON array")
		}
		return nil, fmt.Errorf("tetio: decoding geo: %w", err)
	}
	top, err := keyValues(doc)
	if err != nil {
		return nil, err
	}
	npoints, err := geoInt(top, "pointcount")
	if err != nil {
		return nil, err
	}
	positions, err := readGeoPositions(top)
	if err != nil {
		return nil, err
	}
	if len(positions) != 3*npoints {
		return nil, geoErr(-1, fmt.Sprintf("P attribute holds %d values, want 3*pointcount=%d", len(positions), 3*npoints))
	}
	indices, err := readGeoIndices(top, npoints)
	if err != nil {
		return nil, err
	}
	if _, ok := top["primitivecount"]; ok {
		nprims, err := geoInt(top, "primitivecount")
		if err != nil {
			return nil, err
		}
		if 4*nprims != len(indices) {
			return nil, geoErr(-1, fmt.Sprintf("primitivecount %d does not match %d point references", nprims, len(indices)))
		}
	}
	return &Source{Positions: positions, Tets: indices}, nil
}

func readGeoPositions(top map[string]any) ([]float64, error) {
	attrs, err := geoSection(top, "attributes")
	if err != nil {
		return nil, err
	}
	pointAttrs, ok := attrs["pointattributes"].([]any)
	if !ok {
		return nil, geoErr(-1, "missing pointattributes")
	}
	for i, a := range pointAttrs {
		pair, ok := a.([]any)
		if !ok || len(pair) != 2 {
			return nil, geoErr(i, "point attribute must be a [metadata, data] pair")
		}
		meta, err := keyValues(pair[0])
		if err != nil {
			return nil, err
		}
		if meta["name"] != "P" {
			continue
		}
		data, err := keyValues(pair[1])
		if err != nil {
			return nil, err
		}
		values, err := geoSection(data, "values")
		if err != nil {
			return nil, err
		}
		if tuples, ok := values["tuples"].([]any); ok {
			positions := make([]float64, 0, 3*len(tuples))
			for j, t := range tuples {
				xyz, ok := t.([]any)
				if !ok || len(xyz) != 3 {
					return nil, geoErr(j, "position tuple must hold 3 numbers")
				}
				for _, c := range xyz {
					f, ok := c.(float64)
					if !ok {
						return nil, geoErr(j, "position tuple must hold 3 numbers")
					}
					positions = append(positions, f)
				}
			}
			return positions, nil
		}
		if arrays, ok := values["arrays"].([]any); ok && len(arrays) == 1 {
			flat, ok := arrays[0].([]any)
			if !ok {
				return nil, geoErr(0, "P arrays entry must be a list of numbers")
			}
			positions := make([]float64, len(flat))
			for j, c := range flat {
				if positions[j], ok = c.(float64); !ok {
					return nil, geoErr(j, "P arrays entry must be a list of numbers")
				}
			}
			return positions, nil
		}
		return nil, geoErr(-1, "P attribute has neither tuples nor arrays values")
	}
	return nil, geoErr(-1, "missing P point attribute")
}

func readGeoIndices(top map[string]any, npoints int) ([]int, error) {
	topo, err := geoSection(top, "topology")
	if err != nil {
		return nil, err
	}
	pointref, err := geoSection(topo, "pointref")
	if err != nil {
		return nil, err
	}
	raw, ok := pointref["indices"].([]any)
	if !ok {
		return nil, geoErr(-1, "missing pointref indices")
	}
	if len(raw)%4 != 0 {
		return nil, geoErr(len(raw), fmt.Sprintf("%d point references is not a multiple of 4", len(raw)))
	}
	indices := make([]int, len(raw))
	for i, v := range raw {
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) || f < 0 || int(f) >= npoints {
			return nil, geoErr(i, fmt.Sprintf("point reference %v not an index in [0,%d)", v, npoints))
		}
		indices[i] = int(f)
	}
	return indices, nil
}

// keyValues interprets v as a flat [key, value, key, value...] array.
func keyValues(v any) (map[string]any, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, geoErr(-1, "expected key/value array")
	}
	if len(list)%2 != 0 {
		return nil, geoErr(len(list)-1, "key/value array has odd length")
	}
	kv := make(map[string]any, len(list)/2)
	for i := 0; i < len(list); i += 2 {
		key, ok := list[i].(string)
		if !ok {
			return nil, geoErr(i, fmt.Sprintf("key must be a string, got %v", list[i]))
		}
		kv[key] = list[i+1]
	}
	return kv, nil
}

func geoSection(kv map[string]any, key string) (map[string]any, error) {
	v, ok := kv[key]
	if !ok {
		return nil, geoErr(-1, "missing "+key)
	}
	return keyValues(v)
}

func geoInt(kv map[string]any, key string) (int, error) {
	f, ok := kv[key].(float64)
	if !ok || f != math.Trunc(f) || f < 0 {
		return 0, geoErr(-1, fmt.Sprintf("%s must be a non-negative integer", key))
	}
	return int(f), nil
}

func geoErr(index int, msg string) error {
	return &tetmesh.FormatError{Index: index, Msg: "geo: " + msg}
}

// WriteGeo writes m as a Houdini style JSON geometry readable by ReadGeo.
func WriteGeo(w io.Writer, m *tetmesh.Mesh) error {
	nv, nt := m.NumVertices(), m.NumTets()
	tuples := make([][3]float64, nv)
	for vid := range tuples {
		v, _ := m.VertexByID(vid)
		p := v.Position()
		tuples[vid] = [3]float64{p.X, p.Y, p.Z}
	}
	indices := make([]int, 0, 4*nt)
	for tid := 0; tid < nt; tid++ {
		t, _ := m.TetByID(tid)
		v := t.Vertices()
		indices = append(indices, v[:]...)
	}
	doc := []any{
		"fileversion", "tetmesh",
		"pointcount", nv,
		"vertexcount", len(indices),
		"primitivecount", nt,
		"topology", []any{"pointref", []any{"indices", indices}},
		"attributes", []any{"pointattributes", []any{
			[]any{
				[]any{"scope", "public", "type", "numeric", "name", "P"},
				[]any{"size", 3, "storage", "fpreal64", "values", []any{"size", 3, "storage", "fpreal64", "tuples", tuples}},
			},
		}},
		"primitives", []any{
			[]any{[]any{"type", "Tetrahedron_run"}, []any{"startvertex", 0, "nprimitives", nt}},
		},
	}
	return json.NewEncoder(w).Encode(doc)
}
