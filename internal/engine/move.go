package engine

type MoveType string

const (
	MoveTypeMove    MoveType = "move"
	MoveTypeCapture MoveType = "capture"
)

// Move is one step of one piece. Checking, when set, is the enemy king square the
// moved piece would attack from To.
type Move struct {
	From     Square   `json:"from"`
	To       Square   `json:"to"`
	Type     MoveType `json:"type"`
	Checking *Square  `json:"checking"`
}

func (m Move) IsCapture() bool {
	return m.Type == MoveTypeCapture
}

// Equal compares every field, Checking by value.
func (m Move) Equal(o Move) bool {
	if m.From != o.From || m.To != o.To || m.Type != o.Type {
		return false
	}
	if m.Checking == nil || o.Checking == nil {
		return m.Checking == nil && o.Checking == nil
	}
	return *m.Checking == *o.Checking
}
