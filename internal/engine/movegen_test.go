package engine

import (
	"math/rand"
	"testing"
)

func place(pieces map[Square]Piece) *Board {
	b := NewEmptyBoard()
	for sq, p := range pieces {
		b.Set(sq, p)
	}
	return b
}

func destinations(moves []Move) map[Square]MoveType {
	got := make(map[Square]MoveType, len(moves))
	for _, m := range moves {
		got[m.To] = m.Type
	}
	return got
}

func assertDestinations(t *testing.T, moves []Move, want map[Square]MoveType) {
	t.Helper()
	got := destinations(moves)
	if len(got) != len(moves) {
		t.Errorf("duplicate destinations in %v", moves)
	}
	if len(got) != len(want) {
		t.Errorf("got %d destinations %v, want %d %v", len(got), got, len(want), want)
	}
	for sq, typ := range want {
		if got[sq] != typ {
			t.Errorf("destination %v: got %q, want %q", sq, got[sq], typ)
		}
	}
}

func TestPossibleMovesInitialPosition(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		from Square
		want map[Square]MoveType
	}{
		{
			name: "white e pawn",
			from: Sq(4, 6),
			want: map[Square]MoveType{Sq(4, 5): MoveTypeMove, Sq(4, 4): MoveTypeMove},
		},
		{
			name: "black d pawn",
			from: Sq(3, 1),
			want: map[Square]MoveType{Sq(3, 2): MoveTypeMove, Sq(3, 3): MoveTypeMove},
		},
		{
			name: "white b knight",
			from: Sq(1, 7),
			want: map[Square]MoveType{Sq(0, 5): MoveTypeMove, Sq(2, 5): MoveTypeMove},
		},
		{
			name: "black g knight",
			from: Sq(6, 0),
			want: map[Square]MoveType{Sq(5, 2): MoveTypeMove, Sq(7, 2): MoveTypeMove},
		},
		{name: "boxed in rook", from: Sq(0, 7), want: map[Square]MoveType{}},
		{name: "boxed in bishop", from: Sq(2, 0), want: map[Square]MoveType{}},
		{name: "boxed in queen", from: Sq(3, 7), want: map[Square]MoveType{}},
		{name: "boxed in king", from: Sq(4, 0), want: map[Square]MoveType{}},
		{name: "empty square", from: Sq(4, 4), want: map[Square]MoveType{}},
		{name: "off board", from: Sq(9, -2), want: map[Square]MoveType{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			moves := PossibleMoves(tt.from, NewBoard())
			if moves == nil {
				t.Fatal("PossibleMoves returned nil, want an empty slice")
			}
			assertDestinations(t, moves, tt.want)
			for _, m := range moves {
				if m.From != tt.from {
					t.Errorf("move %+v does not start on %v", m, tt.from)
				}
				if m.Checking != nil {
					t.Errorf("move %+v should not give check", m)
				}
			}
		})
	}
}

func TestSlidingPieces(t *testing.T) {
	t.Parallel()
	// White rook on d4 with a friendly pawn on d6 and a black knight on f4.
	b := place(map[Square]Piece{
		Sq(3, 4): NewPiece(Rook, White),
		Sq(3, 2): NewPiece(Pawn, White),
		Sq(5, 4): NewPiece(Knight, Black),
	})
	assertDestinations(t, PossibleMoves(Sq(3, 4), b), map[Square]MoveType{
		Sq(3, 3): MoveTypeMove,
		Sq(3, 5): MoveTypeMove, Sq(3, 6): MoveTypeMove, Sq(3, 7): MoveTypeMove,
		Sq(4, 4): MoveTypeMove, Sq(5, 4): MoveTypeCapture,
		Sq(2, 4): MoveTypeMove, Sq(1, 4): MoveTypeMove, Sq(0, 4): MoveTypeMove,
	})

	b.Set(Sq(3, 4), NewPiece(Bishop, Black))
	assertDestinations(t, PossibleMoves(Sq(3, 4), b), map[Square]MoveType{
		Sq(4, 3): MoveTypeMove, Sq(5, 2): MoveTypeMove, Sq(6, 1): MoveTypeMove, Sq(7, 0): MoveTypeMove,
		Sq(2, 3): MoveTypeMove, Sq(1, 2): MoveTypeMove, Sq(0, 1): MoveTypeMove,
		Sq(4, 5): MoveTypeMove, Sq(5, 6): MoveTypeMove, Sq(6, 7): MoveTypeMove,
		Sq(2, 5): MoveTypeMove, Sq(1, 6): MoveTypeMove, Sq(0, 7): MoveTypeMove,
	})

	b.Set(Sq(3, 4), NewPiece(Queen, White))
	moves := PossibleMoves(Sq(3, 4), b)
	if got := len(moves); got != 9+13 {
		t.Errorf("queen has %d moves, want %d", got, 9+13)
	}
}

func TestPawnMoves(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		pieces map[Square]Piece
		from   Square
		want   map[Square]MoveType
	}{
		{
			name:   "black pawn off its home rank steps once",
			pieces: map[Square]Piece{Sq(0, 6): NewPiece(Pawn, Black)},
			from:   Sq(0, 6),
			want:   map[Square]MoveType{Sq(0, 7): MoveTypeMove},
		},
		{
			name:   "white pawn off its home rank steps once",
			pieces: map[Square]Piece{Sq(2, 4): NewPiece(Pawn, White)},
			from:   Sq(2, 4),
			want:   map[Square]MoveType{Sq(2, 3): MoveTypeMove},
		},
		{
			name: "blocked pawn cannot jump on its double step",
			pieces: map[Square]Piece{
				Sq(4, 6): NewPiece(Pawn, White),
				Sq(4, 5): NewPiece(Knight, Black),
			},
			from: Sq(4, 6),
			want: map[Square]MoveType{},
		},
		{
			name: "pawn never captures straight ahead",
			pieces: map[Square]Piece{
				Sq(4, 3): NewPiece(Pawn, White),
				Sq(4, 2): NewPiece(Pawn, Black),
			},
			from: Sq(4, 3),
			want: map[Square]MoveType{},
		},
		{
			name: "diagonal captures only onto enemies",
			pieces: map[Square]Piece{
				Sq(4, 1): NewPiece(Pawn, Black),
				Sq(3, 2): NewPiece(Rook, White),
				Sq(5, 2): NewPiece(Rook, Black),
			},
			from: Sq(4, 1),
			want: map[Square]MoveType{
				Sq(4, 2): MoveTypeMove, Sq(4, 3): MoveTypeMove, Sq(3, 2): MoveTypeCapture,
			},
		},
		{
			name:   "pawn on the far edge has nowhere to go",
			pieces: map[Square]Piece{Sq(7, 0): NewPiece(Pawn, White)},
			from:   Sq(7, 0),
			want:   map[Square]MoveType{},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertDestinations(t, PossibleMoves(tt.from, place(tt.pieces)), tt.want)
		})
	}
}

func TestGenerateOnlyCaptures(t *testing.T) {
	t.Parallel()
	b := place(map[Square]Piece{
		Sq(4, 6): NewPiece(Pawn, White),
		Sq(5, 5): NewPiece(Bishop, Black),
	})
	assertDestinations(t, Generate(Sq(4, 6), b, true), map[Square]MoveType{Sq(5, 5): MoveTypeCapture})
	assertDestinations(t, Generate(Sq(4, 6), b, false), map[Square]MoveType{
		Sq(4, 5): MoveTypeMove, Sq(4, 4): MoveTypeMove, Sq(5, 5): MoveTypeCapture,
	})
}

func TestKingAvoidsAttackedSquares(t *testing.T) {
	t.Parallel()
	b := place(map[Square]Piece{
		Sq(4, 4): NewPiece(King, White),
		Sq(4, 0): NewPiece(Rook, Black),
	})
	assertDestinations(t, PossibleMoves(Sq(4, 4), b), map[Square]MoveType{
		Sq(3, 4): MoveTypeMove, Sq(5, 4): MoveTypeMove,
		Sq(3, 3): MoveTypeMove, Sq(5, 3): MoveTypeMove,
		Sq(3, 5): MoveTypeMove, Sq(5, 5): MoveTypeMove,
	})

	// The king steps off the file; the rook now reaches every white piece on its lines.
	b.Apply(Move{From: Sq(4, 4), To: Sq(3, 3), Type: MoveTypeMove})
	b.Set(Sq(4, 6), NewPiece(Knight, White))
	b.Set(Sq(7, 0), NewPiece(Pawn, White))
	rook := destinations(PossibleMoves(Sq(4, 0), b))
	for _, sq := range []Square{Sq(4, 6), Sq(7, 0)} {
		if rook[sq] != MoveTypeCapture {
			t.Errorf("rook should capture on %v, got %q", sq, rook[sq])
		}
	}
	if _, ok := rook[Sq(4, 7)]; ok {
		t.Error("rook ray passed through the knight on (4,6)")
	}
}

func TestKingsKeepTheirDistance(t *testing.T) {
	t.Parallel()
	b := place(map[Square]Piece{
		Sq(4, 4): NewPiece(King, White),
		Sq(4, 2): NewPiece(King, Black),
	})
	got := destinations(PossibleMoves(Sq(4, 4), b))
	for _, sq := range []Square{Sq(3, 3), Sq(4, 3), Sq(5, 3)} {
		if _, ok := got[sq]; ok {
			t.Errorf("white king may not step next to the black king on %v", sq)
		}
	}
	if len(got) != 5 {
		t.Errorf("white king has %d moves, want 5: %v", len(got), got)
	}
}

func TestKingCannotCaptureDefendedPiece(t *testing.T) {
	t.Parallel()
	b := place(map[Square]Piece{
		Sq(4, 7): NewPiece(King, White),
		Sq(4, 6): NewPiece(Pawn, Black),
		Sq(3, 5): NewPiece(Pawn, Black),
	})
	// (4,6) is defended by the pawn on (3,5); (3,7) and (5,7) are covered by the pawn
	// on (4,6).
	assertDestinations(t, PossibleMoves(Sq(4, 7), b), map[Square]MoveType{
		Sq(3, 6): MoveTypeMove, Sq(5, 6): MoveTypeMove,
	})
}

func TestKingWithoutEnemiesIsAlwaysSafe(t *testing.T) {
	t.Parallel()
	b := place(map[Square]Piece{Sq(0, 0): NewPiece(King, Black)})
	assertDestinations(t, PossibleMoves(Sq(0, 0), b), map[Square]MoveType{
		Sq(1, 0): MoveTypeMove, Sq(0, 1): MoveTypeMove, Sq(1, 1): MoveTypeMove,
	})
}

func TestCheckingAnnotation(t *testing.T) {
	t.Parallel()
	b := place(map[Square]Piece{
		Sq(0, 7): NewPiece(Rook, White),
		Sq(4, 0): NewPiece(King, Black),
		Sq(7, 3): NewPiece(Knight, White),
	})
	rookChecks := map[Square]bool{Sq(0, 0): true, Sq(4, 7): true}
	for _, m := range PossibleMoves(Sq(0, 7), b) {
		if rookChecks[m.To] {
			if m.Checking == nil || *m.Checking != Sq(4, 0) {
				t.Errorf("rook to %v should check the king on (4,0), got %v", m.To, m.Checking)
			}
		} else if m.Checking != nil {
			t.Errorf("rook to %v should not give check, got %v", m.To, *m.Checking)
		}
	}

	knight := map[Square]*Square{}
	for _, m := range PossibleMoves(Sq(7, 3), b) {
		knight[m.To] = m.Checking
	}
	if len(knight) != 4 {
		t.Errorf("knight has %d moves, want 4", len(knight))
	}
	for _, sq := range []Square{Sq(5, 2), Sq(6, 1)} {
		if c := knight[sq]; c == nil || *c != Sq(4, 0) {
			t.Errorf("knight to %v should check the king on (4,0), got %v", sq, c)
		}
	}
	for _, sq := range []Square{Sq(6, 5), Sq(5, 4)} {
		if c := knight[sq]; c != nil {
			t.Errorf("knight to %v should not give check, got %v", sq, *c)
		}
	}
}

func TestCheckingIgnoresRaysThroughOrigin(t *testing.T) {
	t.Parallel()
	// The rook retreats along the king's file. Its ray from (0,6) runs back over (0,4),
	// which still holds the rook when the annotation is computed.
	b := place(map[Square]Piece{
		Sq(0, 4): NewPiece(Rook, White),
		Sq(0, 0): NewPiece(King, Black),
	})
	retreat := Move{From: Sq(0, 4), To: Sq(0, 6), Type: MoveTypeMove}
	for _, m := range PossibleMoves(Sq(0, 4), b) {
		switch m.To {
		case Sq(0, 6), Sq(0, 7), Sq(0, 5):
			if m.Checking != nil {
				t.Errorf("rook to %v should not be annotated, got %v", m.To, *m.Checking)
			}
		case Sq(0, 1), Sq(0, 2), Sq(0, 3):
			if m.Checking == nil || *m.Checking != Sq(0, 0) {
				t.Errorf("rook to %v should check the king on (0,0), got %v", m.To, m.Checking)
			}
		}
	}
	if !VerifyMove(retreat, b) {
		t.Errorf("VerifyMove(%+v) = false, want true", retreat)
	}
	checking := Sq(0, 0)
	retreat.Checking = &checking
	if VerifyMove(retreat, b) {
		t.Errorf("VerifyMove(%+v) = true, want false", retreat)
	}
}

func TestIsAttacked(t *testing.T) {
	t.Parallel()
	b := place(map[Square]Piece{
		Sq(4, 4): NewPiece(King, White),
		Sq(5, 3): NewPiece(King, Black),
		Sq(2, 5): NewPiece(Pawn, White),
		Sq(0, 7): NewPiece(Rook, Black),
		Sq(0, 6): NewPiece(Pawn, White),
	})
	tests := []struct {
		sq   Square
		want bool
	}{
		{Sq(4, 4), true},  // adjacent king
		{Sq(5, 3), true},  // and the other way round
		{Sq(2, 5), false}, // nothing reaches it
		{Sq(0, 6), true},  // rook next to it
		{Sq(3, 3), false}, // empty square
	}
	for _, tt := range tests {
		if got := IsAttacked(b, tt.sq); got != tt.want {
			t.Errorf("IsAttacked(%v) = %v, want %v", tt.sq, got, tt.want)
		}
	}
	b.Set(Sq(1, 6), NewPiece(Bishop, Black))
	if !IsAttacked(b, Sq(2, 5)) {
		t.Error("pawn on (2,5) should be attacked by the bishop on (1,6)")
	}
}

func TestPossibleMovesIsDeterministic(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 30; i++ {
		b := NewRandomBoard(r)
		snapshot := *b
		for y := 0; y < Size; y++ {
			for x := 0; x < Size; x++ {
				first := PossibleMoves(Sq(x, y), b)
				second := PossibleMoves(Sq(x, y), b)
				if len(first) != len(second) {
					t.Fatalf("(%d,%d): %d moves then %d", x, y, len(first), len(second))
				}
				for j := range first {
					if !first[j].Equal(second[j]) {
						t.Fatalf("(%d,%d): %+v then %+v", x, y, first[j], second[j])
					}
				}
			}
		}
		if *b != snapshot {
			t.Fatal("PossibleMoves mutated the board")
		}
	}
}

func TestNeverLandsOnOwnPiece(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 60; i++ {
		b := NewRandomBoard(r)
		for y := 0; y < Size; y++ {
			for x := 0; x < Size; x++ {
				p := b[y][x]
				for _, m := range PossibleMoves(Sq(x, y), b) {
					target := b.At(m.To)
					if !target.IsEmpty() && target.Color == p.Color {
						t.Fatalf("%v on (%d,%d) lands on its own %v at %v", p, x, y, target, m.To)
					}
					if m.IsCapture() != !target.IsEmpty() {
						t.Fatalf("%v on (%d,%d): move %+v has wrong type for target %v", p, x, y, m, target)
					}
					if IsOutside(m.To) {
						t.Fatalf("%v on (%d,%d) leaves the board: %+v", p, x, y, m)
					}
				}
			}
		}
	}
}

// attackedBy scans outward from sq for pieces of color by, independently of the move
// generator.
func attackedBy(b *Board, sq Square, by Color) bool {
	is := func(at Square, types ...PieceType) bool {
		if IsOutside(at) {
			return false
		}
		p := b.At(at)
		if p.IsEmpty() || p.Color != by {
			return false
		}
		for _, t := range types {
			if p.Type == t {
				return true
			}
		}
		return false
	}
	slide := func(dirs []Square, types ...PieceType) bool {
		for _, dir := range dirs {
			at := sq.Add(dir)
			for !IsOutside(at) {
				if !b.At(at).IsEmpty() {
					if is(at, types...) {
						return true
					}
					break
				}
				at = at.Add(dir)
			}
		}
		return false
	}
	if slide(orthogonal, Rook, Queen) || slide(diagonal, Bishop, Queen) {
		return true
	}
	for _, j := range knightJumps {
		if is(sq.Add(j), Knight) {
			return true
		}
	}
	for _, d := range append(append([]Square{}, orthogonal...), diagonal...) {
		if is(sq.Add(d), King) {
			return true
		}
	}
	// a white pawn attacks toward row 0, so it sits one row below its target
	behind := 1
	if by == Black {
		behind = -1
	}
	return is(sq.Add(Sq(1, behind)), Pawn) || is(sq.Add(Sq(-1, behind)), Pawn)
}

func TestKingMovesAreSafe(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(42))
	kings := 0
	for i := 0; i < 100; i++ {
		b := NewRandomBoard(r)
		for _, c := range []Color{White, Black} {
			for _, from := range b.Pieces(c) {
				if b.At(from).Type != King {
					continue
				}
				kings++
				legal := destinations(PossibleMoves(from, b))
				raw := castLines(b, from, b.At(from), append(append([]Square{}, orthogonal...), diagonal...), 1, moveOrCapture)
				for _, m := range raw {
					sim := b.Clone().Apply(m)
					_, generated := legal[m.To]
					if attacked := attackedBy(sim, m.To, c.Opponent()); attacked == generated {
						t.Fatalf("board %d: king %v -> %v attacked=%v generated=%v", i, from, m.To, attacked, generated)
					}
				}
			}
		}
	}
	if kings == 0 {
		t.Fatal("random boards produced no kings")
	}
}
