package codec

import (
	"encoding/json"
	"fmt"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/model"
)

// JsonCodec exchanges models as JSON maps of float64 weight vectors, keyed
// by layer name. Deployments whose aggregator works on plain weight maps
// use this codec instead of opaque blobs.
type JsonCodec struct{}

func (c *JsonCodec) Encode(m *model.Model) ([]byte, error) {
	if m == nil || m.Weights == nil {
		return nil, fmt.Errorf("json codec requires model weights")
	}
	data, err := json.Marshal(m.Weights)
	if err != nil {
		return nil, fmt.Errorf("encoding model weights: %w", err)
	}
	return data, nil
}

func (c *JsonCodec) Decode(data []byte) (*model.Model, error) {
	weights := map[string][]float64{}
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("decoding model weights: %w", err)
	}
	return &model.Model{Weights: weights}, nil
}

func (c *JsonCodec) ContentType() string {
	return "application/json"
}
