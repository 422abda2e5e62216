package launcher

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Action selects which entrypoint of the training stack a run executes.
type Action string

const (
	ActionTrain Action = "train"
	ActionTest  Action = "test"
)

const Exec_LauncherName = "exec"
const K8s_LauncherName = "k8s"
const Dummy_LauncherName = "dummy"

// IProcessLauncher starts an external run for one round. Launch returns as
// soon as the run is started, it never waits for the run to finish. The
// launched process reports its results to the FL server on its own.
type IProcessLauncher interface {
	Launch(action Action, trainingID uuid.UUID, round int64, modelID uuid.UUID) error
}

// RunArgs builds the fixed argument contract every run is started with: a
// positional action followed by the training id, round and model id flags.
func RunArgs(action Action, trainingID uuid.UUID, round int64, modelID uuid.UUID) []string {
	return []string{
		string(action),
		"--training-id", trainingID.String(),
		"--round", strconv.FormatInt(round, 10),
		"--model-id", modelID.String(),
	}
}

// LaunchError reports that a run could not be started. It is kept distinct
// from communication errors so a caller can tell a local spawn problem from
// a rejected server call.
type LaunchError struct {
	Action Action
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("starting %s run: %v", e.Action, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
