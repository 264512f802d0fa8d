package service

import (
	"fmt"

	"github.com/benbeisheim/chessrelay-backend/internal/engine"
	"github.com/benbeisheim/chessrelay-backend/internal/model"
	"github.com/benbeisheim/chessrelay-backend/internal/ws"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (engine.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) PossibleMoves(gameID string, sq engine.Square) ([]engine.Move, error) {
	return gs.gameManager.PossibleMoves(gameID, sq)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move engine.Move) error {
	if err := gs.gameManager.MakeMove(gameID, playerID, move); err != nil {
		return err
	}

	return nil
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string) {
	gs.gameManager.UnregisterConnection(gameID, playerID)
}

func (gs *GameService) Send(gameID string, conn model.Conn, msg ws.Message) error {
	return gs.gameManager.Send(gameID, conn, msg)
}

func (gs *GameService) SendState(gameID string, conn model.Conn) error {
	return gs.gameManager.SendState(gameID, conn)
}
