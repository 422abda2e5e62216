package codec

import (
	"testing"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForName(t *testing.T) {
	raw, err := ForName(Raw_CodecName)
	require.NoError(t, err)
	assert.IsType(t, &RawCodec{}, raw)

	jsonCodec, err := ForName(Json_CodecName)
	require.NoError(t, err)
	assert.IsType(t, &JsonCodec{}, jsonCodec)

	_, err = ForName("protobuf")
	assert.Error(t, err)
}

func TestRawCodecRoundTrip(t *testing.T) {
	c := &RawCodec{}
	blob := []byte{0x80, 0x02, 0x00, 0xff, 0x13, 0x37}

	encoded, err := c.Encode(&model.Model{Raw: blob})
	require.NoError(t, err)
	assert.Equal(t, blob, encoded)

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, blob, decoded.Raw)
}

func TestRawCodecRejectsMissingBlob(t *testing.T) {
	c := &RawCodec{}

	_, err := c.Encode(nil)
	assert.Error(t, err)

	_, err = c.Encode(&model.Model{Weights: map[string][]float64{"w": {1}}})
	assert.Error(t, err)
}

func TestJsonCodecRoundTrip(t *testing.T) {
	c := &JsonCodec{}
	weights := map[string][]float64{
		"conv1.weight": {0.1, -2.5, 3e-17, 1234567.25},
		"conv1.bias":   {},
	}

	encoded, err := c.Encode(&model.Model{Weights: weights})
	require.NoError(t, err)

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, weights, decoded.Weights)
}

func TestJsonCodecRejectsInvalidInput(t *testing.T) {
	c := &JsonCodec{}

	_, err := c.Encode(&model.Model{Raw: []byte("blob")})
	assert.Error(t, err)

	_, err = c.Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestCodecContentTypes(t *testing.T) {
	assert.Equal(t, "application/octet-stream", (&RawCodec{}).ContentType())
	assert.Equal(t, "application/json", (&JsonCodec{}).ContentType())
}
