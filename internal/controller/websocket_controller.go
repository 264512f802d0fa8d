package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/benbeisheim/chessrelay-backend/internal/engine"
	"github.com/benbeisheim/chessrelay-backend/internal/model"
	"github.com/benbeisheim/chessrelay-backend/internal/service"
	"github.com/benbeisheim/chessrelay-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals("playerID").(string)
	logger := log.WithFields(log.Fields{"game": gameID, "player": playerID})

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		logger.WithError(err).Warn("failed to register connection")
		c.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, err.Error()),
		)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.WithError(err).Debug("read loop ended")
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		wsc.handleMessage(c, gameID, playerID, message)
	}
}

// handleMessage processes one inbound text frame and writes any reply to conn
func (wsc *WebSocketController) handleMessage(conn model.Conn, gameID, playerID string, data []byte) {
	logger := log.WithFields(log.Fields{"game": gameID, "player": playerID})

	var msg ws.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.WithError(err).Warn("parse error")
		wsc.send(conn, gameID, ws.MessageTypeError, "malformed message")
		return
	}

	switch msg.Type {
	case ws.MessageTypeMove:
		var move engine.Move
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			wsc.send(conn, gameID, ws.MessageTypeError, "malformed move")
			return
		}
		err := wsc.gameService.HandleMove(gameID, playerID, move)
		if err == nil {
			return
		}
		logger.WithError(err).Info("move rejected")
		if errors.Is(err, service.ErrGameNotFound) {
			wsc.send(conn, gameID, ws.MessageTypeError, err.Error())
			return
		}
		// The claimant is told and gets the authoritative position back
		wsc.send(conn, gameID, ws.MessageTypeInvalidMove, err.Error())
		if err := wsc.gameService.SendState(gameID, conn); err != nil {
			logger.WithError(err).Warn("failed to resend state")
		}

	case ws.MessageTypePossibleMoves:
		var sq engine.Square
		if err := json.Unmarshal(msg.Payload, &sq); err != nil {
			wsc.send(conn, gameID, ws.MessageTypeError, "malformed square")
			return
		}
		moves, err := wsc.gameService.PossibleMoves(gameID, sq)
		if err != nil {
			wsc.send(conn, gameID, ws.MessageTypeError, err.Error())
			return
		}
		wsc.send(conn, gameID, ws.MessageTypePossibleMoves, moves)

	default:
		wsc.send(conn, gameID, ws.MessageTypeError, fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func (wsc *WebSocketController) send(conn model.Conn, gameID string, t ws.MessageType, payload interface{}) {
	msg, err := ws.NewMessage(t, payload)
	if err == nil {
		err = wsc.gameService.Send(gameID, conn, msg)
		if errors.Is(err, service.ErrGameNotFound) {
			// no game to serialise writes through
			err = conn.WriteJSON(msg)
		}
	}
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"game": gameID, "type": t}).Warn("failed to send message")
	}
}
