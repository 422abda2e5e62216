package launcher

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/common"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/events"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/model"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/robfig/cron/v3"
)

// Run is one tracked external process.
type Run struct {
	Handle     int
	Action     Action
	TrainingID uuid.UUID
	Round      int64
	ModelID    uuid.UUID
	Pid        int
	StartedAt  time.Time

	finished   bool
	exitCode   int
	waitErr    string
	finishedAt time.Time
}

// Registry tracks launched runs, reaps them when they exit and publishes
// their outcomes on the event bus. The agent stays non-blocking: waiting
// happens in one goroutine per run, publishing in a periodic sweep.
type Registry struct {
	mu            sync.Mutex
	runs          map[int]*Run
	nextHandle    int
	lastOutcome   *model.RunOutcome
	eventBus      *events.EventBus
	cronScheduler *cron.Cron
	logger        hclog.Logger
}

func NewRegistry(eventBus *events.EventBus, logger hclog.Logger) *Registry {
	return &Registry{
		runs:          make(map[int]*Run),
		eventBus:      eventBus,
		cronScheduler: cron.New(cron.WithSeconds()),
		logger:        logger,
	}
}

// Track records a started process and begins waiting for its exit. The
// command must already be started.
func (r *Registry) Track(action Action, trainingID uuid.UUID, round int64, modelID uuid.UUID, cmd *exec.Cmd) *Run {
	r.mu.Lock()
	r.nextHandle++
	run := &Run{
		Handle:     r.nextHandle,
		Action:     action,
		TrainingID: trainingID,
		Round:      round,
		ModelID:    modelID,
		Pid:        cmd.Process.Pid,
		StartedAt:  time.Now(),
	}
	r.runs[run.Handle] = run
	r.mu.Unlock()

	go r.wait(run, cmd)
	return run
}

func (r *Registry) wait(run *Run, cmd *exec.Cmd) {
	err := cmd.Wait()

	exitCode := 0
	waitErr := ""
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
			waitErr = err.Error()
		}
	}

	r.mu.Lock()
	run.finished = true
	run.exitCode = exitCode
	run.waitErr = waitErr
	run.finishedAt = time.Now()
	r.mu.Unlock()
}

func (r *Registry) StartRunStateNotifier() {
	r.cronScheduler.AddFunc("@every 2s", r.notifyRunStateChanges)

	r.cronScheduler.Start()
}

func (r *Registry) StopAllNotifiers() {
	r.cronScheduler.Stop()
}

func (r *Registry) notifyRunStateChanges() {
	r.mu.Lock()
	finished := []*model.RunOutcome{}
	for handle, run := range r.runs {
		if !run.finished {
			continue
		}
		outcome := run.outcome()
		finished = append(finished, outcome)
		if r.lastOutcome == nil || outcome.FinishedAt.After(r.lastOutcome.FinishedAt) {
			r.lastOutcome = outcome
		}
		delete(r.runs, handle)
	}
	r.mu.Unlock()

	if len(finished) == 0 {
		return
	}

	for _, outcome := range finished {
		r.logger.Debug(fmt.Sprintf("%s run for training %s finished with exit code %d",
			outcome.Action, outcome.TrainingID, outcome.ExitCode))
	}

	r.eventBus.Publish(events.Event{
		Type:      common.RUN_STATE_CHANGE_EVENT_TYPE,
		Timestamp: time.Now(),
		Data:      events.RunStateChangeEvent{Finished: finished},
	})
}

// LastOutcome returns the most recently finished run, if any run finished
// since the agent started.
func (r *Registry) LastOutcome() (model.RunOutcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastOutcome == nil {
		return model.RunOutcome{}, false
	}
	return *r.lastOutcome, true
}

// ActiveRuns counts tracked runs that have not exited yet.
func (r *Registry) ActiveRuns() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	active := 0
	for _, run := range r.runs {
		if !run.finished {
			active++
		}
	}
	return active
}

func (run *Run) outcome() *model.RunOutcome {
	return &model.RunOutcome{
		Action:     string(run.Action),
		TrainingID: run.TrainingID,
		Round:      run.Round,
		ModelID:    run.ModelID,
		Pid:        run.Pid,
		ExitCode:   run.exitCode,
		StartedAt:  run.StartedAt,
		FinishedAt: run.finishedAt,
		Error:      run.waitErr,
	}
}
