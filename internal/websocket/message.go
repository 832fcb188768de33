package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

// NewErrorMessage builds an encoded "error" message.
func NewErrorMessage(text string) []byte {
	data, _ := json.Marshal(Message{Action: "error", Payload: map[string]string{"message": text}})
	return data
}
