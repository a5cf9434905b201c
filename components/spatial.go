package components

// Position is a founder's anchor cell on the grid.
type Position struct {
	X, Y float32
}
