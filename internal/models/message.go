package models

// Message represents a WebSocket message
type Message struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
}

// WatchlistEvent is broadcast over the hub after a watchlist mutation.
type WatchlistEvent struct {
	Action       string   `json:"action"` // added, updated, removed
	UserID       uint     `json:"userId"`
	Symbol       string   `json:"symbol"`
	DesiredPrice *float64 `json:"desiredPrice,omitempty"`
}
