package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/benbeisheim/chessrelay-backend/internal/geometry"
)

const Size = 8

var ErrBoardSize = errors.New("board must be 8x8")

// Square is a board coordinate: X is the file, Y the rank row. Row 0 is Black's back
// rank, row 7 is White's.
type Square = geometry.Vector[int]

func Sq(x, y int) Square {
	return Square{X: x, Y: y}
}

// IsOutside reports whether sq lies off the board.
func IsOutside(sq Square) bool {
	return sq.X < 0 || sq.Y < 0 || sq.X >= Size || sq.Y >= Size
}

// Board is indexed [rank][file]. Being an array, assigning a Board copies it.
type Board [Size][Size]Piece

// NewEmptyBoard returns a board with every square empty.
func NewEmptyBoard() *Board {
	return &Board{}
}

// NewBoard returns the standard starting position, Black on rows 0-1 and White on
// rows 6-7.
func NewBoard() *Board {
	back := [Size]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	b := &Board{}
	for x := 0; x < Size; x++ {
		b[0][x] = NewPiece(back[x], Black)
		b[1][x] = NewPiece(Pawn, Black)
		b[6][x] = NewPiece(Pawn, White)
		b[7][x] = NewPiece(back[x], White)
	}
	return b
}

// NewRandomBoard fills each square with an empty square or an arbitrary piece at even odds.
// The result need not be a reachable position: it may hold any number of kings.
func NewRandomBoard(r *rand.Rand) *Board {
	b := &Board{}
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if r.Intn(2) == 0 {
				continue
			}
			c := White
			if r.Intn(2) == 0 {
				c = Black
			}
			b[y][x] = NewPiece(pieceTypes[r.Intn(len(pieceTypes))], c)
		}
	}
	return b
}

func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// At returns the piece on sq, or Empty when sq is off the board.
func (b *Board) At(sq Square) Piece {
	if IsOutside(sq) {
		return Empty
	}
	return b[sq.Y][sq.X]
}

// Set panics when sq is off the board.
func (b *Board) Set(sq Square, p Piece) {
	b[sq.Y][sq.X] = p
}

// Apply moves the piece on m.From to m.To and empties m.From. It does not check
// legality and keeps no record of what was captured. Both squares must be on the
// board.
func (b *Board) Apply(m Move) *Board {
	p := b.At(m.From)
	b.Set(m.To, p)
	b.Set(m.From, Empty)
	return b
}

// Pieces lists the squares holding pieces of color c, rank by rank.
func (b *Board) Pieces(c Color) []Square {
	var squares []Square
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if !b[y][x].IsEmpty() && b[y][x].Color == c {
				squares = append(squares, Sq(x, y))
			}
		}
	}
	return squares
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]Piece
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != Size {
		return fmt.Errorf("%w: got %d rows", ErrBoardSize, len(rows))
	}
	var nb Board
	for y, row := range rows {
		if len(row) != Size {
			return fmt.Errorf("%w: row %d has %d squares", ErrBoardSize, y, len(row))
		}
		copy(nb[y][:], row)
	}
	*b = nb
	return nil
}
