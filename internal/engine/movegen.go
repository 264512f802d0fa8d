package engine

import "github.com/benbeisheim/chessrelay-backend/internal/geometry"

type castMode int

const (
	moveOrCapture castMode = iota
	onlyMove
	onlyCapture
)

var (
	orthogonal  = []Square{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}}
	diagonal    = []Square{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	knightJumps = []Square{
		{X: 1, Y: 2}, {X: -1, Y: 2}, {X: 1, Y: -2}, {X: -1, Y: -2},
		{X: 2, Y: 1}, {X: -2, Y: 1}, {X: 2, Y: -1}, {X: -2, Y: -1},
	}
)

// PossibleMoves returns every move the piece on sq may make. Only king moves are
// checked for safety. An empty or off-board square yields no moves.
func PossibleMoves(sq Square, b *Board) []Move {
	return Generate(sq, b, false)
}

// Generate is PossibleMoves with control over the pawn push: with onlyCaptures set a
// pawn yields its diagonal captures only.
func Generate(sq Square, b *Board, onlyCaptures bool) []Move {
	p := b.At(sq)
	if p.IsEmpty() {
		return []Move{}
	}
	moves := movesFor(sq, p, b, onlyCaptures)
	for i := range moves {
		moves[i].Checking = checkingSquare(moves[i], p, b)
	}
	if moves == nil {
		moves = []Move{}
	}
	return moves
}

// IsAttacked reports whether any enemy of the piece on sq could capture it. An empty
// square is never attacked.
func IsAttacked(b *Board, sq Square) bool {
	target := b.At(sq)
	if target.IsEmpty() {
		return false
	}
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			from := Sq(x, y)
			p := b[y][x]
			if !p.IsEnemyOf(target.Color) {
				continue
			}
			// Kings only ever need adjacency here. Generating an enemy king's moves
			// would run its own safety filter and recurse back into this loop.
			if p.Type == King {
				if geometry.Chebyshev(from, sq) <= 1 {
					return true
				}
				continue
			}
			for _, m := range movesFor(from, p, b, true) {
				if m.IsCapture() && m.To == sq {
					return true
				}
			}
		}
	}
	return false
}

// movesFor applies the rule of p's type as if p stood on sq. Moves are not annotated.
func movesFor(sq Square, p Piece, b *Board, onlyCaptures bool) []Move {
	switch p.Type {
	case Bishop:
		return castLines(b, sq, p, diagonal, Size, moveOrCapture)
	case Rook:
		return castLines(b, sq, p, orthogonal, Size, moveOrCapture)
	case Queen:
		return append(castLines(b, sq, p, diagonal, Size, moveOrCapture), castLines(b, sq, p, orthogonal, Size, moveOrCapture)...)
	case Knight:
		return castLines(b, sq, p, knightJumps, 1, moveOrCapture)
	case King:
		raw := append(castLines(b, sq, p, orthogonal, 1, moveOrCapture), castLines(b, sq, p, diagonal, 1, moveOrCapture)...)
		return safeKingMoves(b, raw)
	case Pawn:
		return pawnMoves(b, sq, p, onlyCaptures)
	default:
		return nil
	}
}

func pawnMoves(b *Board, sq Square, p Piece, onlyCaptures bool) []Move {
	forward := Sq(0, 1)
	home := 1
	if p.Color == White {
		forward = Sq(0, -1)
		home = Size - 2
	}
	var moves []Move
	if !onlyCaptures {
		length := 1
		if sq.Y == home {
			length = 2
		}
		moves = castLine(b, sq, p, forward, length, onlyMove)
	}
	moves = append(moves, castLine(b, sq, p, forward.Add(Sq(1, 0)), 1, onlyCapture)...)
	moves = append(moves, castLine(b, sq, p, forward.Add(Sq(-1, 0)), 1, onlyCapture)...)
	return moves
}

// safeKingMoves keeps the king moves after which no enemy piece can capture the king.
func safeKingMoves(b *Board, raw []Move) []Move {
	var safe []Move
	for _, m := range raw {
		sim := b.Clone().Apply(m)
		if !IsAttacked(sim, m.To) {
			safe = append(safe, m)
		}
	}
	return safe
}

// checkingSquare runs p's rule from m.To against b as it stood before m, and returns
// the first enemy king that rule could capture. The mover's origin is still occupied,
// so it blocks rays that pass back over it.
func checkingSquare(m Move, p Piece, b *Board) *Square {
	if p.Type == King {
		// kings never stand adjacent after the safety filter
		return nil
	}
	for _, next := range movesFor(m.To, p, b, false) {
		target := b.At(next.To)
		if next.IsCapture() && target.Type == King && target.IsEnemyOf(p.Color) {
			sq := next.To
			return &sq
		}
	}
	return nil
}

func castLines(b *Board, from Square, p Piece, dirs []Square, length int, mode castMode) []Move {
	var moves []Move
	for _, dir := range dirs {
		moves = append(moves, castLine(b, from, p, dir, length, mode)...)
	}
	return moves
}

// castLine walks up to length steps from `from` along dir. Empty squares become moves
// (unless mode is onlyCapture), and the walk ends on the first occupied square, which
// becomes a capture if it holds an enemy (unless mode is onlyMove).
func castLine(b *Board, from Square, p Piece, dir Square, length int, mode castMode) []Move {
	var moves []Move
	step := dir.Floor()
	for i := 1; i <= length; i++ {
		to := from.Add(step.Mul(i))
		if IsOutside(to) {
			break
		}
		target := b.At(to)
		if target.IsEmpty() {
			if mode == onlyCapture {
				break
			}
			moves = append(moves, Move{From: from, To: to, Type: MoveTypeMove})
			continue
		}
		if mode != onlyMove && target.IsEnemyOf(p.Color) {
			moves = append(moves, Move{From: from, To: to, Type: MoveTypeCapture})
		}
		break
	}
	return moves
}
