package game

import "fmt"

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other color.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

type PieceType string

const (
	Pawn   PieceType = "pawn"
	Rook   PieceType = "rook"
	Knight PieceType = "knight"
	Bishop PieceType = "bishop"
	Queen  PieceType = "queen"
	King   PieceType = "king"
)

// Pos is a board coordinate, 0 <= X,Y <= 7. Y is the row index.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Pos) InBounds() bool {
	return p.X >= 0 && p.X <= 7 && p.Y >= 0 && p.Y <= 7
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Piece always records the cell it currently occupies in Position. Every board
// mutation keeps that field in sync with the grid.
type Piece struct {
	Type         PieceType `json:"type"`
	Color        Color     `json:"color"`
	Position     Pos       `json:"position"`
	AttachedCard *Card     `json:"attachedCard,omitempty"`
}

// Board is an 8x8 grid indexed Cells[y][x]; empty cells are nil.
type Board struct {
	Cells [8][8]*Piece `json:"cells"`
}

var backRank = []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard lays out the standard starting position: black back rank on row 0,
// black pawns on row 1, white pawns on row 6, white back rank on row 7.
func NewBoard() *Board {
	b := &Board{}
	for x, pt := range backRank {
		b.Cells[0][x] = &Piece{Type: pt, Color: Black, Position: Pos{X: x, Y: 0}}
		b.Cells[7][x] = &Piece{Type: pt, Color: White, Position: Pos{X: x, Y: 7}}
	}
	for x := range 8 {
		b.Cells[1][x] = &Piece{Type: Pawn, Color: Black, Position: Pos{X: x, Y: 1}}
		b.Cells[6][x] = &Piece{Type: Pawn, Color: White, Position: Pos{X: x, Y: 6}}
	}
	return b
}

// At returns the piece occupying pos, or nil for empty or out-of-bounds cells.
func (b *Board) At(pos Pos) *Piece {
	if !pos.InBounds() {
		return nil
	}
	return b.Cells[pos.Y][pos.X]
}

// Place moves piece to the destination cell, overwriting any occupant and
// clearing the cell the piece came from. Legality is the caller's concern.
func (b *Board) Place(piece *Piece, to Pos) {
	from := piece.Position
	if b.Cells[from.Y][from.X] == piece {
		b.Cells[from.Y][from.X] = nil
	}
	piece.Position = to
	b.Cells[to.Y][to.X] = piece
}

// Clear empties a cell.
func (b *Board) Clear(pos Pos) {
	if pos.InBounds() {
		b.Cells[pos.Y][pos.X] = nil
	}
}

// PieceCount returns the number of occupied cells, optionally per color.
func (b *Board) PieceCount(colors ...Color) int {
	count := 0
	for y := range 8 {
		for x := range 8 {
			p := b.Cells[y][x]
			if p == nil {
				continue
			}
			if len(colors) == 0 || p.Color == colors[0] {
				count++
			}
		}
	}
	return count
}

// CheckConsistency verifies the denormalized Position field of every piece
// matches the cell holding it. Used by tests after mutating operations.
func (b *Board) CheckConsistency() error {
	for y := range 8 {
		for x := range 8 {
			p := b.Cells[y][x]
			if p == nil {
				continue
			}
			if p.Position.X != x || p.Position.Y != y {
				return fmt.Errorf("piece %s/%s at cell (%d,%d) records position %s",
					p.Color, p.Type, x, y, p.Position)
			}
		}
	}
	return nil
}
