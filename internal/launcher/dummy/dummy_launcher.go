package dummylauncher

import (
	"fmt"
	"sync"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/launcher"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Launch is one recorded launch request.
type Launch struct {
	Action     launcher.Action
	TrainingID uuid.UUID
	Round      int64
	ModelID    uuid.UUID
}

// DummyLauncher records launches without starting anything. It backs dry
// runs of the agent and the dispatch tests.
type DummyLauncher struct {
	mu       sync.Mutex
	launches []Launch
	failWith error
	logger   hclog.Logger
}

func NewDummyLauncher(logger hclog.Logger) *DummyLauncher {
	return &DummyLauncher{logger: logger}
}

func (l *DummyLauncher) Launch(action launcher.Action, trainingID uuid.UUID, round int64, modelID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failWith != nil {
		return &launcher.LaunchError{Action: action, Err: l.failWith}
	}

	l.launches = append(l.launches, Launch{
		Action:     action,
		TrainingID: trainingID,
		Round:      round,
		ModelID:    modelID,
	})
	l.logger.Info(fmt.Sprintf("dry run: would start %s for training %s, round %d", action, trainingID, round))
	return nil
}

// Launches returns a copy of everything launched so far.
func (l *DummyLauncher) Launches() []Launch {
	l.mu.Lock()
	defer l.mu.Unlock()
	launches := make([]Launch, len(l.launches))
	copy(launches, l.launches)
	return launches
}

// FailWith makes every following launch fail, for tests that exercise the
// launch fault path.
func (l *DummyLauncher) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failWith = err
}
