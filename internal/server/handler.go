package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/dispatch"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/launcher"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

type Handler struct {
	logger     hclog.Logger
	dispatcher *dispatch.Dispatcher
	registry   *launcher.Registry
	clientID   string
}

func NewHandler(logger hclog.Logger, dispatcher *dispatch.Dispatcher, registry *launcher.Registry, clientID string) *Handler {
	return &Handler{
		logger:     logger,
		dispatcher: dispatcher,
		registry:   registry,
		clientID:   clientID,
	}
}

// ReceiveNotification accepts one push from the FL server. The response
// carries only a status code: 200 or 202 when the notification was handled,
// 400 for unknown notification types and 500 for any fault. Bodies are
// never sent back.
func (handler *Handler) ReceiveNotification(rw http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		handler.logger.Error("error reading notification", "error", err)
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}
	handler.logger.Debug("notification received: " + string(raw))

	notification := &Notification{}
	if err := json.Unmarshal(raw, notification); err != nil {
		handler.logger.Error("error decoding notification", "error", err)
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}
	if notification.NotificationType == "" || notification.TrainingUUID == "" || len(notification.Body) == 0 {
		handler.logger.Error("notification is missing notification_type, training_uuid or body")
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}

	trainingID, err := uuid.Parse(notification.TrainingUUID)
	if err != nil {
		handler.logger.Error("error parsing training_uuid", "error", err)
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}

	handler.logger.Info(fmt.Sprintf("received notification %s for training %s",
		notification.NotificationType, trainingID))

	status, err := handler.dispatcher.Dispatch(notification.NotificationType, trainingID, notification.Body)
	if err != nil {
		handler.logger.Error("error handling notification", "error", err)
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}

	rw.WriteHeader(status)
}

func (handler *Handler) GetHealth(rw http.ResponseWriter, r *http.Request) {
	rw.WriteHeader(http.StatusOK)
}

func (handler *Handler) GetStatus(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Add("Content-Type", "application/json")

	status := &StatusResponse{
		ClientID:   handler.clientID,
		ActiveRuns: handler.registry.ActiveRuns(),
	}
	if outcome, ok := handler.registry.LastOutcome(); ok {
		status.LastRun = &outcome
	}

	rw.WriteHeader(http.StatusOK)
	toJSON(status, rw)
}
