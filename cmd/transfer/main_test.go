package main

import (
	"testing"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricFlagsSet(t *testing.T) {
	metrics := metricFlags{}

	require.NoError(t, metrics.Set("accuracy=0.93"))
	require.NoError(t, metrics.Set("loss=4e-2"))

	assert.Equal(t, 0.93, metrics["accuracy"])
	assert.Equal(t, 0.04, metrics["loss"])
}

func TestMetricFlagsSetRejectsMalformedPairs(t *testing.T) {
	metrics := metricFlags{}

	assert.Error(t, metrics.Set("accuracy"))
	assert.Error(t, metrics.Set("accuracy=high"))
}

func TestBuildTrainingContext(t *testing.T) {
	cfg := &config.Config{ClientID: "11111111-1111-1111-1111-111111111111"}

	training, err := buildTrainingContext(cfg,
		"22222222-2222-2222-2222-222222222222", 3, "33333333-3333-3333-3333-333333333333")

	require.NoError(t, err)
	assert.Equal(t, cfg.ClientID, training.ClientID.String())
	assert.Equal(t, int64(3), training.Round)
}

func TestBuildTrainingContextRejectsBadInput(t *testing.T) {
	cfg := &config.Config{ClientID: "11111111-1111-1111-1111-111111111111"}

	_, err := buildTrainingContext(&config.Config{}, "22222222-2222-2222-2222-222222222222", 0, "33333333-3333-3333-3333-333333333333")
	assert.Error(t, err)

	_, err = buildTrainingContext(cfg, "not-a-uuid", 0, "33333333-3333-3333-3333-333333333333")
	assert.Error(t, err)

	_, err = buildTrainingContext(cfg, "22222222-2222-2222-2222-222222222222", -1, "33333333-3333-3333-3333-333333333333")
	assert.Error(t, err)
}
