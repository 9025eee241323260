package model

import "time"

// ConversationTurn is one (query, response) pair within a session.
type ConversationTurn struct {
	Query    string    `json:"query"`
	Response string    `json:"response"`
	At       time.Time `json:"at"`
}
