// Package tetgen generates tetrahedral meshes suitable as input to tetmesh.Build.
package tetgen

import "gonum.org/v1/gonum/spatial/r3"

// Carve keeps tetrahedra with at least one node for which inside returns true
// and renumbers the remaining nodes densely, preserving their relative order.
func Carve(nodes []r3.Vec, tetras [][4]int, inside func(r3.Vec) bool) (newNodes []r3.Vec, newTetras [][4]int) {
	in := make([]bool, len(nodes))
	for i, n := range nodes {
		in[i] = inside(n)
	}
	remap := make([]int, len(nodes))
	for i := range remap {
		remap[i] = -1
	}
	for _, tetra := range tetras {
		if !in[tetra[0]] && !in[tetra[1]] && !in[tetra[2]] && !in[tetra[3]] {
			continue
		}
		for _, n := range tetra {
			remap[n] = 0
		}
		newTetras = append(newTetras, tetra)
	}
	for i := range remap {
		if remap[i] < 0 {
			continue
		}
		remap[i] = len(newNodes)
		newNodes = append(newNodes, nodes[i])
	}
	for i := range newTetras {
		for j := range newTetras[i] {
			newTetras[i][j] = remap[newTetras[i][j]]
		}
	}
	return newNodes, newTetras
}

// Flatten converts nodes and tetrahedra to the flat position and vertex id
// arrays taken by tetmesh.Build.
func Flatten(nodes []r3.Vec, tetras [][4]int) (positions []float64, tetVertexIDs []int) {
	positions = make([]float64, 0, 3*len(nodes))
	for _, n := range nodes {
		positions = append(positions, n.X, n.Y, n.Z)
	}
	tetVertexIDs = make([]int, 0, 4*len(tetras))
	for _, t := range tetras {
		tetVertexIDs = append(tetVertexIDs, t[:]...)
	}
	return positions, tetVertexIDs
}
