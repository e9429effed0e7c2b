package terrain

// HeightTable maps a vertex's height byte to a world-space Z value.
// The table lives in the archive's region descriptor; the editor falls
// back to the stock linear table when none is present.
type HeightTable [256]float32

// DefaultHeightTable returns the stock region table: 2 world units per step.
func DefaultHeightTable() *HeightTable {
	var t HeightTable
	for i := range t {
		t[i] = float32(i) * 2.0
	}
	return &t
}

// VertexHeight looks up the world Z of a vertex entry.
func (t *HeightTable) VertexHeight(e Entry) float32 {
	return t[e.Height]
}

// SampleHeight bilinearly interpolates the ground height at a local
// position within a landblock. dense must be the landblock's 81-entry
// array; local coordinates are in [0, 192] on both axes. Positions on or
// past the far edge clamp into the last cell.
func (t *HeightTable) SampleHeight(dense []Entry, localX, localY float32) float32 {
	cellX := clampCell(int(localX / CellLength))
	cellY := clampCell(int(localY / CellLength))

	fx := localX/CellLength - float32(cellX)
	fy := localY/CellLength - float32(cellY)
	fx = clampFrac(fx)
	fy = clampFrac(fy)

	h00 := t[dense[VertexIndex(cellX, cellY)].Height]
	h10 := t[dense[VertexIndex(cellX+1, cellY)].Height]
	h01 := t[dense[VertexIndex(cellX, cellY+1)].Height]
	h11 := t[dense[VertexIndex(cellX+1, cellY+1)].Height]

	return h00*(1-fx)*(1-fy) + h10*fx*(1-fy) + h01*(1-fx)*fy + h11*fx*fy
}

func clampCell(c int) int {
	if c < 0 {
		return 0
	}
	if c > CellsPerEdge-1 {
		return CellsPerEdge - 1
	}
	return c
}

func clampFrac(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
