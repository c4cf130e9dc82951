package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// The first version of the bot wrote datetime.isoformat() timestamps with
// no UTC offset.
const naiveTimeLayout = "2006-01-02T15:04:05.999999999"

// Timestamp marshals as RFC 3339 but also unmarshals the naive ISO format
// found in older user logs.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse(naiveTimeLayout, raw)
	}
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", raw, err)
	}

	t.Time = parsed
	return nil
}

// UserRecord stores Telegram user metadata for the audit log. Field names
// match the legacy user_logs.json format.
type UserRecord struct {
	FirstSeen        Timestamp `json:"first_seen"`
	LastSeen         Timestamp `json:"last_seen"`
	FirstName        string    `json:"first_name,omitempty"`
	Username         string    `json:"username,omitempty"`
	InteractionCount int       `json:"interaction_count"`
}
