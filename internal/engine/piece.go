package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidPiece = errors.New("invalid piece")

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

var pieceTypes = []PieceType{Pawn, Rook, Knight, Bishop, Queen, King}

func (p PieceType) valid() bool {
	for _, t := range pieceTypes {
		if p == t {
			return true
		}
	}
	return false
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) valid() bool {
	return c == White || c == Black
}

// Piece is a value type. The zero value is an empty square.
type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

// Empty is the piece held by an unoccupied square.
var Empty = Piece{}

func NewPiece(t PieceType, c Color) Piece {
	return Piece{Type: t, Color: c}
}

func (p Piece) IsEmpty() bool {
	return p == Empty
}

// IsEnemyOf reports whether p is occupied by the side opposite to c.
func (p Piece) IsEnemyOf(c Color) bool {
	return !p.IsEmpty() && p.Color != c
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%s %s", p.Color, p.Type)
}

var emptyJSON = []byte(`"empty"`)

func (p Piece) MarshalJSON() ([]byte, error) {
	if p.IsEmpty() {
		return emptyJSON, nil
	}
	type plain Piece
	return json.Marshal(plain(p))
}

func (p *Piece) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), emptyJSON) {
		*p = Empty
		return nil
	}
	type plain Piece
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPiece, err)
	}
	if !v.Type.valid() || !v.Color.valid() {
		return fmt.Errorf("%w: %q %q", ErrInvalidPiece, v.Color, v.Type)
	}
	*p = Piece(v)
	return nil
}
