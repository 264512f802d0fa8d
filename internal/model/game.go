package model

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/benbeisheim/chessrelay-backend/internal/engine"
	"github.com/benbeisheim/chessrelay-backend/internal/ws"
)

var (
	ErrGameFull         = errors.New("game is full")
	ErrNotInGame        = errors.New("player not in game")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrNoPiece          = errors.New("no piece at from square")
	ErrNotYourPiece     = errors.New("piece belongs to the opponent")
	ErrIllegalMove      = errors.New("illegal move")
	ErrAlreadyConnected = errors.New("connection already exists")
)

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
	// serialises writes: a socket allows one writer at a time
	writeMu sync.Mutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game holds the authoritative board of one game and the sockets watching it.
// All chess rules come from the engine package.
type Game struct {
	ID           string
	mu           sync.Mutex
	state        GameState
	lastActivity time.Time
	connections  *GameConnections
}

type GameState struct {
	ID       string       `json:"id"`
	Board    engine.Board `json:"board"`
	ToMove   engine.Color `json:"toMove"`
	LastMove *engine.Move `json:"lastMove"`
	Players  Players      `json:"players"`
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:           id,
		state:        newGameState(id),
		lastActivity: time.Now(),
		connections:  NewGameConnections(),
	}
}

func newGameState(id string) GameState {
	return GameState{
		ID:     id,
		Board:  *engine.NewBoard(),
		ToMove: engine.White,
		Players: Players{
			White: ClientPlayer{Color: engine.White},
			Black: ClientPlayer{Color: engine.Black},
		},
	}
}

// AddPlayer seats playerID, White first. A player already seated gets their seat back.
func (g *Game) AddPlayer(playerID string) (engine.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.colorOf(playerID); ok {
		return color, nil
	}
	g.lastActivity = time.Now()
	if g.state.Players.White.ID == "" {
		g.state.Players.White.ID = playerID
		return engine.White, nil
	}
	if g.state.Players.Black.ID == "" {
		g.state.Players.Black.ID = playerID
		return engine.Black, nil
	}
	return "", ErrGameFull
}

// GetState returns a copy of the current state.
func (g *Game) GetState() GameState {
	g.mu.Lock()
	state := g.state
	g.mu.Unlock()

	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	_, state.Players.White.Connected = g.connections.connections[state.Players.White.ID]
	_, state.Players.Black.Connected = g.connections.connections[state.Players.Black.ID]
	return state
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.colorOf(playerID)
	return ok
}

// Idle reports whether nobody is connected and nothing has happened since cutoff.
func (g *Game) Idle(cutoff time.Time) bool {
	g.mu.Lock()
	last := g.lastActivity
	g.mu.Unlock()
	if last.After(cutoff) {
		return false
	}

	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	return len(g.connections.connections) == 0
}

func (g *Game) touch() {
	g.mu.Lock()
	g.lastActivity = time.Now()
	g.mu.Unlock()
}

func (g *Game) colorOf(playerID string) (engine.Color, bool) {
	switch {
	case playerID == "":
		return "", false
	case g.state.Players.White.ID == playerID:
		return engine.White, true
	case g.state.Players.Black.ID == playerID:
		return engine.Black, true
	}
	return "", false
}

// PossibleMoves lists the moves of the piece on sq against a snapshot of the board.
func (g *Game) PossibleMoves(sq engine.Square) []engine.Move {
	g.mu.Lock()
	board := g.state.Board
	g.mu.Unlock()

	return engine.PossibleMoves(sq, &board)
}

// MakeMove applies a move claimed by playerID once the engine confirms it, then
// pushes the new state to every connection.
func (g *Game) MakeMove(playerID string, move engine.Move) error {
	if err := g.applyMove(playerID, move); err != nil {
		return err
	}
	g.broadcastState()
	return nil
}

func (g *Game) applyMove(playerID string, move engine.Move) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.colorOf(playerID)
	if !ok {
		return ErrNotInGame
	}
	if color != g.state.ToMove {
		return ErrNotYourTurn
	}
	piece := g.state.Board.At(move.From)
	if piece.IsEmpty() {
		return ErrNoPiece
	}
	if piece.Color != color {
		return ErrNotYourPiece
	}
	if !engine.VerifyMove(move, &g.state.Board) {
		return fmt.Errorf("%w: %s %v -> %v", ErrIllegalMove, move.Type, move.From, move.To)
	}

	g.state.Board.Apply(move)
	g.state.LastMove = &move
	g.state.ToMove = color.Opponent()
	g.lastActivity = time.Now()

	log.WithFields(log.Fields{
		"game":   g.ID,
		"player": playerID,
		"from":   move.From.String(),
		"to":     move.To.String(),
		"type":   move.Type,
	}).Info("move accepted")
	return nil
}

// RegisterConnection attaches conn to a seated player. A second connection for the
// same player is rejected.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	if !g.IsPlayerInGame(playerID) {
		return ErrNotInGame
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		g.connections.mu.Unlock()
		return ErrAlreadyConnected
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	g.touch()

	log.WithFields(log.Fields{"game": g.ID, "player": playerID}).Info("connection registered")
	g.broadcastState()
	return nil
}

// UnregisterConnection drops the player's connection and reports how many remain.
func (g *Game) UnregisterConnection(playerID string) int {
	g.connections.mu.Lock()
	delete(g.connections.connections, playerID)
	remaining := len(g.connections.connections)
	g.connections.mu.Unlock()
	g.touch()

	log.WithFields(log.Fields{"game": g.ID, "player": playerID, "remaining": remaining}).Info("connection unregistered")
	if remaining > 0 {
		g.broadcastState()
	}
	return remaining
}

// Close disconnects everyone still attached to the game.
func (g *Game) Close() {
	g.connections.mu.Lock()
	conns := g.connections.connections
	g.connections.connections = make(map[string]Conn)
	g.connections.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

// SendState writes the current state to a single connection.
func (g *Game) SendState(conn Conn) error {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, g.GetState())
	if err != nil {
		return fmt.Errorf("encode game state: %w", err)
	}
	return g.Send(conn, msg)
}

// Send writes msg to conn, never concurrently with other writes of this game.
func (g *Game) Send(conn Conn, msg ws.Message) error {
	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

func (g *Game) broadcastState() {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, g.GetState())
	if err != nil {
		log.WithError(err).WithField("game", g.ID).Error("failed to marshal state")
		return
	}

	// Snapshot the connections so writes happen without holding the lock
	g.connections.mu.RLock()
	active := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		active[playerID] = conn
	}
	g.connections.mu.RUnlock()

	var failed []string
	g.connections.writeMu.Lock()
	for playerID, conn := range active {
		if err := conn.WriteJSON(msg); err != nil {
			log.WithError(err).WithFields(log.Fields{"game": g.ID, "player": playerID}).Warn("failed to send state")
			failed = append(failed, playerID)
		}
	}
	g.connections.writeMu.Unlock()
	if len(failed) == 0 {
		return
	}
	g.connections.mu.Lock()
	for _, playerID := range failed {
		if g.connections.connections[playerID] == active[playerID] {
			delete(g.connections.connections, playerID)
		}
	}
	g.connections.mu.Unlock()
}
