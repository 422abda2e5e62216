package dispatch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/common"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/events"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/launcher"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Dispatcher turns FL server notifications into local actions. Round
// notifications start an external run and report back before the run does
// any work, lifecycle notifications stay inside the agent.
type Dispatcher struct {
	logger       hclog.Logger
	procLauncher launcher.IProcessLauncher
	eventBus     *events.EventBus
}

func NewDispatcher(logger hclog.Logger, procLauncher launcher.IProcessLauncher, eventBus *events.EventBus) *Dispatcher {
	return &Dispatcher{
		logger:       logger,
		procLauncher: procLauncher,
		eventBus:     eventBus,
	}
}

// Dispatch maps one notification to its action and returns the status the
// server should receive: 200 for lifecycle notifications, 202 for accepted
// round launches, 400 for unknown notification types. Any parse, validation
// or launch fault comes back as an error.
func (d *Dispatcher) Dispatch(notificationType string, trainingID uuid.UUID, body json.RawMessage) (int, error) {
	switch notificationType {
	case common.NOTIFICATION_TRAINING_START:
		modelID, err := parseModelBody(body)
		if err != nil {
			return 0, err
		}
		d.initTraining(trainingID, modelID)
		return http.StatusOK, nil

	case common.NOTIFICATION_UPDATE_ROUND_START:
		round, modelID, err := parseRoundBody(body)
		if err != nil {
			return 0, err
		}
		if err := d.procLauncher.Launch(launcher.ActionTrain, trainingID, round, modelID); err != nil {
			return 0, err
		}
		return http.StatusAccepted, nil

	case common.NOTIFICATION_MODEL_TEST_ROUND:
		round, modelID, err := parseRoundBody(body)
		if err != nil {
			return 0, err
		}
		if err := d.procLauncher.Launch(launcher.ActionTest, trainingID, round, modelID); err != nil {
			return 0, err
		}
		return http.StatusAccepted, nil

	case common.NOTIFICATION_TRAINING_FINISHED:
		modelID, err := parseModelBody(body)
		if err != nil {
			return 0, err
		}
		d.endTraining(trainingID, modelID)
		return http.StatusOK, nil

	default:
		return d.unknownMessage(notificationType, body)
	}
}

func (d *Dispatcher) initTraining(trainingID uuid.UUID, modelID uuid.UUID) {
	d.logger.Info(fmt.Sprintf("training %s initialized with global model %s", trainingID, modelID))

	d.eventBus.Publish(events.Event{
		Type:      common.TRAINING_LIFECYCLE_EVENT_TYPE,
		Timestamp: time.Now(),
		Data: events.TrainingLifecycleEvent{
			Phase:      common.TRAINING_PHASE_INIT,
			TrainingID: trainingID,
			ModelID:    modelID,
		},
	})
}

func (d *Dispatcher) endTraining(trainingID uuid.UUID, modelID uuid.UUID) {
	d.logger.Info(fmt.Sprintf("training %s finished with global model %s", trainingID, modelID))

	d.eventBus.Publish(events.Event{
		Type:      common.TRAINING_LIFECYCLE_EVENT_TYPE,
		Timestamp: time.Now(),
		Data: events.TrainingLifecycleEvent{
			Phase:      common.TRAINING_PHASE_END,
			TrainingID: trainingID,
			ModelID:    modelID,
		},
	})
}

// unknownMessage handles notification types this agent does not implement.
// The body must still be a well formed notification carrying its own type
// and payload, everything else is a validation fault.
func (d *Dispatcher) unknownMessage(notificationType string, body json.RawMessage) (int, error) {
	var b struct {
		NotificationType *string         `json:"notification_type"`
		Data             json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &b); err != nil {
		return 0, fmt.Errorf("decoding unknown notification body: %w", err)
	}
	if b.NotificationType == nil || b.Data == nil {
		return 0, fmt.Errorf("unknown notification body is missing notification_type or data")
	}

	d.logger.Warn(fmt.Sprintf("unknown server message, ignoring notification of type %s", notificationType))
	return http.StatusBadRequest, nil
}

func parseModelBody(body json.RawMessage) (uuid.UUID, error) {
	var b struct {
		GlobalModelUUID string `json:"global_model_uuid"`
	}
	if err := json.Unmarshal(body, &b); err != nil {
		return uuid.Nil, fmt.Errorf("decoding notification body: %w", err)
	}
	if b.GlobalModelUUID == "" {
		return uuid.Nil, fmt.Errorf("notification body is missing global_model_uuid")
	}
	modelID, err := uuid.Parse(b.GlobalModelUUID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing global_model_uuid: %w", err)
	}
	return modelID, nil
}

func parseRoundBody(body json.RawMessage) (int64, uuid.UUID, error) {
	var b struct {
		Round           *int64 `json:"round"`
		GlobalModelUUID string `json:"global_model_uuid"`
	}
	if err := json.Unmarshal(body, &b); err != nil {
		return 0, uuid.Nil, fmt.Errorf("decoding notification body: %w", err)
	}
	if b.Round == nil {
		return 0, uuid.Nil, fmt.Errorf("notification body is missing round")
	}
	if *b.Round < 0 {
		return 0, uuid.Nil, fmt.Errorf("notification body has a negative round: %d", *b.Round)
	}
	if b.GlobalModelUUID == "" {
		return 0, uuid.Nil, fmt.Errorf("notification body is missing global_model_uuid")
	}
	modelID, err := uuid.Parse(b.GlobalModelUUID)
	if err != nil {
		return 0, uuid.Nil, fmt.Errorf("parsing global_model_uuid: %w", err)
	}
	return *b.Round, modelID, nil
}
