package amqp

import (
	"encoding/json"
	"time"
)

// SeedCompletedMessage announces that the transaction catalog was loaded
// into an empty store.
type SeedCompletedMessage struct {
	Source    string    `json:"source"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSeedCompletedMessage(source string, count int) *SeedCompletedMessage {
	return &SeedCompletedMessage{
		Source:    source,
		Count:     count,
		Timestamp: time.Now().UTC(),
	}
}

func (m *SeedCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SeedCompletedMessageFromJSON(data []byte) (*SeedCompletedMessage, error) {
	var msg SeedCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
