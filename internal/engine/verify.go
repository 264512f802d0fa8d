package engine

// VerifyMove reports whether m is exactly one of the moves generated for m.From,
// including its type and check annotation.
func VerifyMove(m Move, b *Board) bool {
	for _, legal := range PossibleMoves(m.From, b) {
		if legal.Equal(m) {
			return true
		}
	}
	return false
}
