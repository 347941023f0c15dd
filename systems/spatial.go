// Package systems provides the simulation algorithms that operate on components.
package systems

// Neighbor holds a nearby item with precomputed horizontal delta.
type Neighbor struct {
	Idx    int     // index into the caller's item slice
	DX, DZ float64 // delta from query origin
	DistSq float64
}

type gridEntry struct {
	idx  int
	x, z float64
}

// SpatialGrid provides cell-based neighbor lookups over a bounded square world
// centred on the origin.
type SpatialGrid struct {
	cellSize  float64
	cols      int
	halfWidth float64
	cells     [][]gridEntry
}

// NewSpatialGrid creates a grid covering [-halfWidth, halfWidth] on X and Z.
func NewSpatialGrid(halfWidth, cellSize float64) *SpatialGrid {
	cols := int(2*halfWidth/cellSize) + 1

	cells := make([][]gridEntry, cols*cols)
	for i := range cells {
		cells[i] = make([]gridEntry, 0, 4)
	}

	return &SpatialGrid{
		cellSize:  cellSize,
		cols:      cols,
		halfWidth: halfWidth,
		cells:     cells,
	}
}

// Clear removes all items from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an item index at the given horizontal position.
// Positions outside the world are clamped into the edge cells.
func (g *SpatialGrid) Insert(idx int, x, z float64) {
	c, r := g.cell(x, z)
	i := r*g.cols + c
	g.cells[i] = append(g.cells[i], gridEntry{idx: idx, x: x, z: z})
}

// QueryRadiusInto appends every item within radius of (x, z) to dst and returns it.
// Items are appended in cell order, not distance order.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, z, radius float64) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	cc, cr := g.cell(x, z)
	radiusSq := radius * radius

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := cr + dr
		if row < 0 || row >= g.cols {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := cc + dc
			if col < 0 || col >= g.cols {
				continue
			}
			for _, e := range g.cells[row*g.cols+col] {
				dx, dz := e.x-x, e.z-z
				distSq := dx*dx + dz*dz
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Idx: e.idx, DX: dx, DZ: dz, DistSq: distSq})
				}
			}
		}
	}
	return dst
}

// cell returns the clamped column and row for a world position.
func (g *SpatialGrid) cell(x, z float64) (int, int) {
	col := int((x + g.halfWidth) / g.cellSize)
	row := int((z + g.halfWidth) / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.cols {
		row = g.cols - 1
	}
	return col, row
}
