package server

import (
	"encoding/json"
	"io"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/model"
)

func toJSON(i interface{}, w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(i)
}

// Notification is the envelope of every push from the FL server. Body stays
// raw here, its shape depends on the notification type and is interpreted
// by the dispatcher.
type Notification struct {
	NotificationType string          `json:"notification_type"`
	TrainingUUID     string          `json:"training_uuid"`
	Body             json.RawMessage `json:"body"`
}

type StatusResponse struct {
	ClientID   string            `json:"client_id"`
	ActiveRuns int               `json:"active_runs"`
	LastRun    *model.RunOutcome `json:"last_run,omitempty"`
}
