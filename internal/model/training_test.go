package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContext() TrainingContext {
	return TrainingContext{
		ClientID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		TrainingID: uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Round:      3,
		ModelID:    uuid.MustParse("33333333-3333-3333-3333-333333333333"),
	}
}

func TestTrainingContextValidate(t *testing.T) {
	require.NoError(t, validContext().Validate())

	tests := []struct {
		name   string
		mutate func(tc *TrainingContext)
	}{
		{"missing client id", func(tc *TrainingContext) { tc.ClientID = uuid.Nil }},
		{"missing training id", func(tc *TrainingContext) { tc.TrainingID = uuid.Nil }},
		{"missing model id", func(tc *TrainingContext) { tc.ModelID = uuid.Nil }},
		{"negative round", func(tc *TrainingContext) { tc.Round = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := validContext()
			tt.mutate(&tc)
			assert.Error(t, tc.Validate())
		})
	}
}

func TestTrainingContextRoundZeroIsValid(t *testing.T) {
	tc := validContext()
	tc.Round = 0
	assert.NoError(t, tc.Validate())
}

func TestMetricsNamesValues(t *testing.T) {
	metrics := Metrics{
		"loss":     0.4123,
		"accuracy": 0.93,
		"f1":       1,
	}

	names, values := metrics.NamesValues()

	require.Equal(t, []string{"accuracy", "f1", "loss"}, names)
	require.Equal(t, []string{"0.93", "1", "0.4123"}, values)
}

func TestMetricsNamesValuesEmpty(t *testing.T) {
	names, values := Metrics{}.NamesValues()
	assert.Empty(t, names)
	assert.Empty(t, values)
}
