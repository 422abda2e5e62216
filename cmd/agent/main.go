package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/common"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/config"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/dispatch"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/events"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/launcher"
	dummylauncher "github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/launcher/dummy"
	execlauncher "github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/launcher/exec"
	k8slauncher "github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/launcher/k8s"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/server"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
)

func main() {
	configPath := flag.String("config", os.Getenv("FL_CLIENT_CONFIG"), "path to the agent config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	_ = os.Mkdir("log", 0777)
	logFile, err := os.OpenFile("log/run.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0777)
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			panic(err)
		}
	}()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "fl-client",
		Level:  hclog.LevelFromString(cfg.LogLevel),
		Output: io.MultiWriter(os.Stdout, logFile),
	})

	eventBus := events.NewEventBus()
	registry := launcher.NewRegistry(eventBus, logger)

	var procLauncher launcher.IProcessLauncher
	var k8sLauncher *k8slauncher.K8sLauncher
	switch cfg.Launcher {
	case launcher.Exec_LauncherName:
		procLauncher = execlauncher.NewExecLauncher(cfg.TrainingExecutor, cfg.TrainingScript,
			cfg.TrainingWorkingDir, registry, logger)
	case launcher.K8s_LauncherName:
		k8sLauncher, err = k8slauncher.NewK8sLauncher(cfg.KubeConfigPath, cfg.K8sNamespace, cfg.TrainingImage, logger)
		if err != nil {
			logger.Error("Error while initializing k8s launcher", "error", err)
			return
		}
		procLauncher = k8sLauncher
	case launcher.Dummy_LauncherName:
		procLauncher = dummylauncher.NewDummyLauncher(logger)
	default:
		logger.Error(fmt.Sprintf("invalid launcher: %s", cfg.Launcher))
		return
	}

	lifecycleChan := make(chan events.Event)
	eventBus.Subscribe(common.TRAINING_LIFECYCLE_EVENT_TYPE, lifecycleChan)
	go trainingLifecycleHandler(logger, k8sLauncher, lifecycleChan)

	runStateChan := make(chan events.Event)
	eventBus.Subscribe(common.RUN_STATE_CHANGE_EVENT_TYPE, runStateChan)
	go runStateChangeHandler(logger, runStateChan)

	registry.StartRunStateNotifier()

	dispatcher := dispatch.NewDispatcher(logger, procLauncher, eventBus)
	handler := server.NewHandler(logger, dispatcher, registry, cfg.ClientID)

	defaultRouter := mux.NewRouter()
	defaultRouter.HandleFunc("/notification", handler.ReceiveNotification).Methods(http.MethodPost)
	defaultRouter.HandleFunc("/health", handler.GetHealth).Methods(http.MethodGet)
	defaultRouter.HandleFunc("/status", handler.GetStatus).Methods(http.MethodGet)

	server.StartHttpServer(logger, cfg.ListenAddress(), defaultRouter)

	registry.StopAllNotifiers()
}

func trainingLifecycleHandler(logger hclog.Logger, k8sLauncher *k8slauncher.K8sLauncher, eventChan chan events.Event) {
	for event := range eventChan {
		lifecycle, ok := event.Data.(events.TrainingLifecycleEvent)
		if !ok {
			continue
		}

		switch lifecycle.Phase {
		case common.TRAINING_PHASE_INIT:
			fmt.Println("Training is initialized.")
		case common.TRAINING_PHASE_END:
			fmt.Println("Training is finished. Starting clean up.")
			if k8sLauncher != nil {
				if err := k8sLauncher.RemoveTrainingRuns(lifecycle.TrainingID); err != nil {
					logger.Error("Error removing run jobs", "error", err)
				}
			}
		}
	}
}

func runStateChangeHandler(logger hclog.Logger, eventChan chan events.Event) {
	for event := range eventChan {
		runState, ok := event.Data.(events.RunStateChangeEvent)
		if !ok {
			continue
		}

		for _, outcome := range runState.Finished {
			if outcome.ExitCode == 0 {
				logger.Info(fmt.Sprintf("%s run for round %d finished", outcome.Action, outcome.Round))
			} else {
				logger.Error(fmt.Sprintf("%s run for round %d failed with exit code %d",
					outcome.Action, outcome.Round, outcome.ExitCode))
			}
		}
	}
}
