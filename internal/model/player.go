package model

import "github.com/benbeisheim/chessrelay-backend/internal/engine"

// ClientPlayer is a seat as the clients see it
type ClientPlayer struct {
	ID        string       `json:"name"`
	Color     engine.Color `json:"color"`
	Connected bool         `json:"connected"`
}

// Conn is the part of a WebSocket connection a game needs to push state
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}
