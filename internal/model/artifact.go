package model

import (
	"sort"
	"strconv"
)

// Model is one model artifact exchanged with the FL server. Raw holds the
// serialized blob exactly as the training stack produced it, Weights holds
// structured tensors for deployments that exchange plain float64 weights.
type Model struct {
	Weights map[string][]float64
	Raw     []byte
}

// Metrics maps metric names to values, e.g. {"accuracy": 0.93, "loss": 0.41}.
type Metrics map[string]float64

// NamesValues flattens the metrics into the aligned name/value slices the
// upload endpoints expect. Names are sorted so the pairing stays stable.
func (m Metrics) NamesValues() ([]string, []string) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = strconv.FormatFloat(m[name], 'g', -1, 64)
	}
	return names, values
}
