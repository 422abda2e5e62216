package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/codec"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/comm"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/config"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/model"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// transfer is the command the training script shells out to for every
// exchange with the FL server. The script never talks to the server itself,
// it calls transfer with the ids the agent passed on the command line.
func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	command := os.Args[1]
	switch command {
	case "download", "upload", "metrics":
	default:
		printUsage()
		os.Exit(2)
	}

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := flags.String("config", os.Getenv("FL_CLIENT_CONFIG"), "path to the agent config file")
	trainingIDArg := flags.String("training-id", "", "training this run belongs to")
	roundArg := flags.Int64("round", 0, "current round")
	modelIDArg := flags.String("model-id", "", "global model to act on")
	outPath := flags.String("out", "", "file the downloaded model is written to")
	inPath := flags.String("in", "", "file the model update is read from")
	sampleSize := flags.Int64("sample-size", 0, "number of local training samples")
	metricArgs := metricFlags{}
	flags.Var(metricArgs, "metric", "metric as name=value, repeatable")
	flags.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "fl-transfer",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	training, err := buildTrainingContext(cfg, *trainingIDArg, *roundArg, *modelIDArg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cdc, err := codec.ForName(cfg.Codec)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	client, err := buildClient(cfg, training, cdc, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	switch command {
	case "download":
		err = runDownload(ctx, client, cdc, *outPath)
	case "upload":
		err = runUpload(ctx, client, cdc, *inPath, model.Metrics(metricArgs), *sampleSize)
	case "metrics":
		err = client.UploadMetrics(ctx, model.Metrics(metricArgs))
	}
	if err != nil {
		logger.Error("transfer failed", "error", err)
		os.Exit(1)
	}
}

func runDownload(ctx context.Context, client *comm.Client, cdc codec.ICodec, outPath string) error {
	if outPath == "" {
		return fmt.Errorf("download requires -out")
	}

	m, err := client.DownloadModel(ctx)
	if err != nil {
		return err
	}
	blob, err := cdc.Encode(m)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, blob, 0644)
}

func runUpload(ctx context.Context, client *comm.Client, cdc codec.ICodec, inPath string,
	metrics model.Metrics, sampleSize int64) error {
	if inPath == "" {
		return fmt.Errorf("upload requires -in")
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	m, err := cdc.Decode(data)
	if err != nil {
		return err
	}
	return client.UploadModel(ctx, m, metrics, sampleSize)
}

func buildTrainingContext(cfg *config.Config, trainingIDArg string, round int64, modelIDArg string) (model.TrainingContext, error) {
	if cfg.ClientID == "" {
		return model.TrainingContext{}, fmt.Errorf("client_id is not configured")
	}
	clientID, err := uuid.Parse(cfg.ClientID)
	if err != nil {
		return model.TrainingContext{}, fmt.Errorf("parsing client_id: %w", err)
	}
	trainingID, err := uuid.Parse(trainingIDArg)
	if err != nil {
		return model.TrainingContext{}, fmt.Errorf("parsing -training-id: %w", err)
	}
	modelID, err := uuid.Parse(modelIDArg)
	if err != nil {
		return model.TrainingContext{}, fmt.Errorf("parsing -model-id: %w", err)
	}

	training := model.TrainingContext{
		ClientID:   clientID,
		TrainingID: trainingID,
		Round:      round,
		ModelID:    modelID,
	}
	if err := training.Validate(); err != nil {
		return model.TrainingContext{}, err
	}
	return training, nil
}

func buildClient(cfg *config.Config, training model.TrainingContext, cdc codec.ICodec, logger hclog.Logger) (*comm.Client, error) {
	httpClient := comm.NewHttpClient()
	if cfg.TLSCertPath != "" {
		var err error
		httpClient, err = comm.BuildHTTP2Client(cfg.TLSCertPath, cfg.TLSKeyPath, cfg.TLSCAPath)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case cfg.Authorization != "":
		return comm.NewClient(cfg.ServerBaseURL, training, cfg.Authorization, cdc, httpClient, logger)
	case cfg.Username != "":
		return comm.NewClientWithPassword(cfg.ServerBaseURL, training, cfg.Username, cfg.Password, cdc, httpClient, logger)
	default:
		return nil, fmt.Errorf("no credential configured, set authorization or username and password")
	}
}

// metricFlags collects repeated -metric name=value flags.
type metricFlags map[string]float64

func (m metricFlags) String() string {
	pairs := make([]string, 0, len(m))
	for name, value := range m {
		pairs = append(pairs, fmt.Sprintf("%s=%g", name, value))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (m metricFlags) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("metric must be name=value, got %q", value)
	}
	parsed, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return fmt.Errorf("metric value must be numeric, got %q", parts[1])
	}
	m[parts[0]] = parsed
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: transfer <download|upload|metrics> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  download   fetch the global model and write it to -out")
	fmt.Fprintln(os.Stderr, "  upload     send the local model update read from -in")
	fmt.Fprintln(os.Stderr, "  metrics    report test metrics for the bound model")
}
