// service/game_manager.go
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/benbeisheim/chessrelay-backend/internal/engine"
	"github.com/benbeisheim/chessrelay-backend/internal/model"
	"github.com/benbeisheim/chessrelay-backend/internal/ws"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

type GameManager struct {
	games map[string]*model.Game
	mu    sync.RWMutex
}

func NewGameManager() *GameManager {
	return &GameManager{
		games: make(map[string]*model.Game),
	}
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}
	gm.games[gameID] = model.NewGame(gameID)
	log.WithField("game", gameID).Info("game created")
	return nil
}

// game looks a game up without holding the manager lock afterwards; each game guards
// its own state.
func (gm *GameManager) game(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (engine.Color, error) {
	game, err := gm.game(gameID)
	if err != nil {
		return "", err
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"game": gameID, "player": playerID, "color": color}).Info("player joined")
	return color, nil
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.game(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) PossibleMoves(gameID string, sq engine.Square) ([]engine.Move, error) {
	game, err := gm.game(gameID)
	if err != nil {
		return nil, err
	}
	return game.PossibleMoves(sq), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move engine.Move) error {
	game, err := gm.game(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(playerID, move)
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.game(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

// UnregisterConnection detaches a player; the game is closed and forgotten once its
// last connection is gone.
func (gm *GameManager) UnregisterConnection(gameID string, playerID string) {
	game, err := gm.game(gameID)
	if err != nil {
		return
	}
	if game.UnregisterConnection(playerID) > 0 {
		return
	}

	gm.mu.Lock()
	if gm.games[gameID] == game {
		delete(gm.games, gameID)
	}
	gm.mu.Unlock()
	game.Close()
	log.WithField("game", gameID).Info("game closed")
}

// ReapIdle drops every game that has had no connection and no activity for timeout,
// as seen at now. It returns how many games were dropped.
func (gm *GameManager) ReapIdle(now time.Time, timeout time.Duration) int {
	cutoff := now.Add(-timeout)

	gm.mu.Lock()
	var idle []*model.Game
	for id, game := range gm.games {
		if game.Idle(cutoff) {
			idle = append(idle, game)
			delete(gm.games, id)
		}
	}
	gm.mu.Unlock()

	for _, game := range idle {
		game.Close()
		log.WithField("game", game.ID).Info("idle game reaped")
	}
	return len(idle)
}

// RunReaper calls ReapIdle every interval until ctx is done.
func (gm *GameManager) RunReaper(ctx context.Context, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			gm.ReapIdle(now, timeout)
		}
	}
}

func (gm *GameManager) Send(gameID string, conn model.Conn, msg ws.Message) error {
	game, err := gm.game(gameID)
	if err != nil {
		return err
	}
	return game.Send(conn, msg)
}

func (gm *GameManager) SendState(gameID string, conn model.Conn) error {
	game, err := gm.game(gameID)
	if err != nil {
		return err
	}
	return game.SendState(conn)
}
