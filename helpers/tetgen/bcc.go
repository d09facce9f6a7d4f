package tetgen

import (
	"errors"
	"math"

	"github.com/soypat/tetmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// bccLattice is a body centered cubic lattice used for isotropic tetrahedron generation.
// Inspired by Tetrahedral Mesh Generation for Deformable Bodies
// Molino, Bridson, Fedkiw.
type bccLattice struct {
	cells      []bccCell
	div        [3]int
	resolution float64
}

type bccidx int

// BCC cell node indices. Corner bits are x=1, y=2, z=4 offset from i000.
const (
	i000 bccidx = iota
	ix00
	ixy0
	i0y0
	i00z
	ix0z
	ixyz
	i0yz
	ictr // BCC central node index.
	nBCC // number of BCC nodes.
)

// cornerOffset is the unit cube offset of each corner index.
var cornerOffset = [ictr]r3.Vec{
	i000: {X: 0, Y: 0, Z: 0},
	ix00: {X: 1, Y: 0, Z: 0},
	ixy0: {X: 1, Y: 1, Z: 0},
	i0y0: {X: 0, Y: 1, Z: 0},
	i00z: {X: 0, Y: 0, Z: 1},
	ix0z: {X: 1, Y: 0, Z: 1},
	ixyz: {X: 1, Y: 1, Z: 1},
	i0yz: {X: 0, Y: 1, Z: 1},
}

var unmeshed = [nBCC]int{-1, -1, -1 /**/, -1, -1, -1 /**/, -1, -1, -1}

type bccCell struct {
	nodes [nBCC]int
	pos   r3.Vec
	// face neighbors, nil at the lattice edge.
	xp, xm *bccCell
	yp, ym *bccCell
	zp, zm *bccCell
}

func (c *bccCell) nodeAt(idx bccidx) int {
	if c == nil {
		return -1
	}
	return c.nodes[idx]
}

// sharedCorner returns the node index of corner idx if a neighboring cell
// already created it, or -1.
func (c *bccCell) sharedCorner(idx bccidx) int {
	var nx, ny, nz int
	switch idx {
	case i000:
		nx, ny, nz = c.xm.nodeAt(ix00), c.ym.nodeAt(i0y0), c.zm.nodeAt(i00z)
	case ix00:
		nx, ny, nz = c.xp.nodeAt(i000), c.ym.nodeAt(ixy0), c.zm.nodeAt(ix0z)
	case ixy0:
		nx, ny, nz = c.xp.nodeAt(i0y0), c.yp.nodeAt(ix00), c.zm.nodeAt(ixyz)
	case i0y0:
		nx, ny, nz = c.xm.nodeAt(ixy0), c.yp.nodeAt(i000), c.zm.nodeAt(i0yz)
	case i00z:
		nx, ny, nz = c.xm.nodeAt(ix0z), c.ym.nodeAt(i0yz), c.zp.nodeAt(i000)
	case ix0z:
		nx, ny, nz = c.xp.nodeAt(i00z), c.ym.nodeAt(ixyz), c.zp.nodeAt(ix00)
	case ixyz:
		nx, ny, nz = c.xp.nodeAt(i0yz), c.yp.nodeAt(ix0z), c.zp.nodeAt(ixy0)
	case i0yz:
		nx, ny, nz = c.xm.nodeAt(ixyz), c.yp.nodeAt(i00z), c.zp.nodeAt(i0y0)
	default:
		panic("bad bcc corner index")
	}
	bad := nx >= 0 && ny >= 0 && nx != ny ||
		nx >= 0 && nz >= 0 && nx != nz ||
		nz >= 0 && ny >= 0 && nz != ny
	if bad {
		panic("bad lattice operation detected")
	}
	return max(nx, ny, nz)
}

// BCCLattice fills box with a body centered cubic lattice of cubic cells of
// side resolution and returns its nodes and tetrahedra. Each tetrahedron joins
// the centers of two face adjacent cells with one edge of their shared face.
// Tetrahedron vertex order is not oriented.
func BCCLattice(box r3.Box, resolution float64) (nodes []r3.Vec, tetras [][4]int, err error) {
	if !(resolution > 0) || math.IsInf(resolution, 0) {
		return nil, nil, errors.New("tetgen: resolution must be positive and finite")
	}
	sz := d3.Box(box).Size()
	div := [3]int{
		int(math.Ceil(sz.X / resolution)),
		int(math.Ceil(sz.Y / resolution)),
		int(math.Ceil(sz.Z / resolution)),
	}
	if div[0] < 2 || div[1] < 2 || div[2] < 2 {
		return nil, nil, errors.New("tetgen: resolution too coarse, need at least 2 cells per axis")
	}
	lat := newBCCLattice(box.Min, div, resolution)
	nodes, tetras = lat.mesh()
	return nodes, tetras, nil
}

func newBCCLattice(origin r3.Vec, div [3]int, resolution float64) *bccLattice {
	lat := &bccLattice{
		cells:      make([]bccCell, div[0]*div[1]*div[2]),
		div:        div,
		resolution: resolution,
	}
	for i := 0; i < div[0]; i++ {
		x := (float64(i)+0.5)*resolution + origin.X
		for j := 0; j < div[1]; j++ {
			y := (float64(j)+0.5)*resolution + origin.Y
			for k := 0; k < div[2]; k++ {
				z := (float64(k)+0.5)*resolution + origin.Z
				lat.set(i, j, k, bccCell{pos: r3.Vec{X: x, Y: y, Z: z}, nodes: unmeshed})
			}
		}
	}
	return lat
}

func (lat *bccLattice) mesh() (nodes []r3.Vec, tetras [][4]int) {
	tetras = make([][4]int, 0, 12*len(lat.cells))
	lat.foreach(func(c *bccCell) {
		corner := d3.CenteredBox(c.pos, d3.Elem(lat.resolution)).Min
		c.nodes[ictr] = len(nodes)
		nodes = append(nodes, c.pos)
		for in := i000; in < ictr; in++ {
			if v := c.sharedCorner(in); v >= 0 {
				c.nodes[in] = v
				continue
			}
			c.nodes[in] = len(nodes)
			nodes = append(nodes, r3.Add(corner, r3.Scale(lat.resolution, cornerOffset[in])))
		}
		tetras = append(tetras, c.tetras()...)
	})
	return nodes, tetras
}

// set stores a cell at i,j,k and links it with its face neighbors.
func (lat *bccLattice) set(i, j, k int, c bccCell) {
	at := lat.at(i, j, k)
	if at == nil {
		panic("oob lattice access")
	}
	*at = c
	at.xm = lat.at(i-1, j, k)
	if at.xm != nil {
		at.xm.xp = at
	}
	at.xp = lat.at(i+1, j, k)
	if at.xp != nil {
		at.xp.xm = at
	}
	at.ym = lat.at(i, j-1, k)
	if at.ym != nil {
		at.ym.yp = at
	}
	at.yp = lat.at(i, j+1, k)
	if at.yp != nil {
		at.yp.ym = at
	}
	at.zm = lat.at(i, j, k-1)
	if at.zm != nil {
		at.zm.zp = at
	}
	at.zp = lat.at(i, j, k+1)
	if at.zp != nil {
		at.zp.zm = at
	}
}

func (lat *bccLattice) at(i, j, k int) *bccCell {
	if i < 0 || j < 0 || k < 0 || i >= lat.div[0] || j >= lat.div[1] || k >= lat.div[2] {
		return nil
	}
	return &lat.cells[i*lat.div[1]*lat.div[2]+j*lat.div[2]+k]
}

func (lat *bccLattice) foreach(f func(c *bccCell)) {
	for i := range lat.cells {
		f(&lat.cells[i])
	}
}

// tetras meshes the faces shared with the cell's minus side neighbors,
// which have already been visited.
func (c *bccCell) tetras() (tetras [][4]int) {
	ctr := c.nodes[ictr]
	n := &c.nodes
	if c.zm != nil {
		zctr := c.zm.nodes[ictr]
		tetras = append(tetras,
			[4]int{ctr, n[i000], n[ix00], zctr},
			[4]int{ctr, n[ix00], n[ixy0], zctr},
			[4]int{ctr, n[ixy0], n[i0y0], zctr},
			[4]int{ctr, n[i0y0], n[i000], zctr},
		)
	}
	if c.ym != nil {
		yctr := c.ym.nodes[ictr]
		tetras = append(tetras,
			[4]int{ctr, n[ix00], n[i000], yctr},
			[4]int{ctr, n[ix0z], n[ix00], yctr},
			[4]int{ctr, n[i00z], n[ix0z], yctr},
			[4]int{ctr, n[i000], n[i00z], yctr},
		)
	}
	if c.xm != nil {
		xctr := c.xm.nodes[ictr]
		tetras = append(tetras,
			[4]int{ctr, n[i000], n[i0y0], xctr},
			[4]int{ctr, n[i00z], n[i000], xctr},
			[4]int{ctr, n[i0yz], n[i00z], xctr},
			[4]int{ctr, n[i0y0], n[i0yz], xctr},
		)
	}
	return tetras
}
