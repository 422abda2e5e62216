package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TrainingContext identifies one unit of federated work: one client acting
// in one round of one training, against one version of the global model.
type TrainingContext struct {
	ClientID   uuid.UUID
	TrainingID uuid.UUID
	Round      int64
	ModelID    uuid.UUID
}

// Validate reports an incomplete context before any server call is made.
func (tc TrainingContext) Validate() error {
	if tc.ClientID == uuid.Nil {
		return fmt.Errorf("training context is missing a client id")
	}
	if tc.TrainingID == uuid.Nil {
		return fmt.Errorf("training context is missing a training id")
	}
	if tc.ModelID == uuid.Nil {
		return fmt.Errorf("training context is missing a model id")
	}
	if tc.Round < 0 {
		return fmt.Errorf("training context has a negative round: %d", tc.Round)
	}
	return nil
}

// RunOutcome is the recorded result of one finished external run.
type RunOutcome struct {
	Action     string    `json:"action"`
	TrainingID uuid.UUID `json:"training_id"`
	Round      int64     `json:"round"`
	ModelID    uuid.UUID `json:"model_id"`
	Pid        int       `json:"pid"`
	ExitCode   int       `json:"exit_code"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}
