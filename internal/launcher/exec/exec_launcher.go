package execlauncher

import (
	"fmt"
	"os/exec"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/launcher"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// ExecLauncher starts the training script as a local child process:
//
//	<executor> <script> <action> --training-id <id> --round <n> --model-id <id>
//
// run from the configured working directory. The agent does not consume the
// run's results, the script talks to the FL server itself.
type ExecLauncher struct {
	executor   string
	script     string
	workingDir string
	registry   *launcher.Registry
	logger     hclog.Logger
}

func NewExecLauncher(executor string, script string, workingDir string,
	registry *launcher.Registry, logger hclog.Logger) *ExecLauncher {
	return &ExecLauncher{
		executor:   executor,
		script:     script,
		workingDir: workingDir,
		registry:   registry,
		logger:     logger,
	}
}

func (l *ExecLauncher) Launch(action launcher.Action, trainingID uuid.UUID, round int64, modelID uuid.UUID) error {
	args := append([]string{l.script}, launcher.RunArgs(action, trainingID, round, modelID)...)
	l.logger.Debug(fmt.Sprintf("starting run: %s %v", l.executor, args))

	cmd := exec.Command(l.executor, args...)
	cmd.Dir = l.workingDir

	if err := cmd.Start(); err != nil {
		return &launcher.LaunchError{Action: action, Err: err}
	}
	l.logger.Info(fmt.Sprintf("%s run started with pid %d", action, cmd.Process.Pid))

	if l.registry != nil {
		l.registry.Track(action, trainingID, round, modelID, cmd)
	} else {
		// reap the child even when nothing tracks it
		go cmd.Wait()
	}
	return nil
}
