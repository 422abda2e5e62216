package codec

import (
	"fmt"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/model"
)

// RawCodec passes model blobs through untouched. It is the default codec:
// the agent never needs to understand the training stack's serialization,
// it only moves the bytes between the FL server and the local filesystem.
type RawCodec struct{}

func (c *RawCodec) Encode(m *model.Model) ([]byte, error) {
	if m == nil || m.Raw == nil {
		return nil, fmt.Errorf("raw codec requires a raw model blob")
	}
	return m.Raw, nil
}

func (c *RawCodec) Decode(data []byte) (*model.Model, error) {
	return &model.Model{Raw: data}, nil
}

func (c *RawCodec) ContentType() string {
	return "application/octet-stream"
}
