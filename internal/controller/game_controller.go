package controller

import (
	"errors"

	"github.com/apex/log"
	"github.com/benbeisheim/chessrelay-backend/internal/engine"
	"github.com/benbeisheim/chessrelay-backend/internal/middleware"
	"github.com/benbeisheim/chessrelay-backend/internal/model"
	"github.com/benbeisheim/chessrelay-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// statusFor maps service and model errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrGameFull), errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrNoPiece),
		errors.Is(err, model.ErrNotYourPiece),
		errors.Is(err, model.ErrIllegalMove):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(gameState)
}

// PossibleMoves answers a piece selection: GET /api/game/:gameId/moves?x=4&y=6
func (gc *GameController) PossibleMoves(c *fiber.Ctx) error {
	x, y := c.QueryInt("x", -1), c.QueryInt("y", -1)
	if engine.IsOutside(engine.Sq(x, y)) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "x and y must be between 0 and 7",
		})
	}

	moves, err := gc.gameService.PossibleMoves(c.Params("gameId"), engine.Sq(x, y))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(moves)
}

// MakeMove is the REST twin of the websocket "move" message
func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move engine.Move
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move payload",
		})
	}

	gameID := c.Params("gameId")
	if err := gc.gameService.HandleMove(gameID, middleware.PlayerID(c), move); err != nil {
		return errorResponse(c, err)
	}

	gameState, err := gc.gameService.GetGameState(gameID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(gameState)
}
