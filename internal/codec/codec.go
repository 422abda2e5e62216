package codec

import (
	"fmt"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/model"
)

// ICodec translates between model artifacts and the byte streams exchanged
// with the FL server. One concrete codec is selected at startup and shared
// by every transfer of that process.
type ICodec interface {
	Encode(m *model.Model) ([]byte, error)
	Decode(data []byte) (*model.Model, error)
	ContentType() string
}

const Raw_CodecName = "raw"
const Json_CodecName = "json"

// ForName resolves a configured codec name to its implementation.
func ForName(name string) (ICodec, error) {
	switch name {
	case Raw_CodecName:
		return &RawCodec{}, nil
	case Json_CodecName:
		return &JsonCodec{}, nil
	default:
		return nil, fmt.Errorf("invalid codec: %s", name)
	}
}
