package comm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/codec"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/model"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testContext = model.TrainingContext{
	ClientID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
	TrainingID: uuid.MustParse("22222222-2222-2222-2222-222222222222"),
	Round:      7,
	ModelID:    uuid.MustParse("33333333-3333-3333-3333-333333333333"),
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(baseURL, testContext, "Token abc123", &codec.RawCodec{},
		NewHttpClient(), hclog.NewNullLogger())
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsIncompleteContext(t *testing.T) {
	incomplete := testContext
	incomplete.ModelID = uuid.Nil

	_, err := NewClient("http://localhost:8000", incomplete, "Token abc123", &codec.RawCodec{},
		NewHttpClient(), hclog.NewNullLogger())
	assert.Error(t, err)
}

func TestDownloadModel(t *testing.T) {
	blob := []byte{0x80, 0x02, 0xde, 0xad}
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/models/33333333-3333-3333-3333-333333333333/", r.URL.Path)
		assert.Equal(t, "Token abc123", r.Header.Get("Authorization"))
		rw.WriteHeader(http.StatusOK)
		rw.Write(blob)
	}))
	defer server.Close()

	m, err := newTestClient(t, server.URL).DownloadModel(context.Background())

	require.NoError(t, err)
	assert.Equal(t, blob, m.Raw)
	assert.Equal(t, 1, requests)
}

func TestDownloadModelRejectedIsTypedAndNotRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		requests++
		rw.WriteHeader(http.StatusNotFound)
		fmt.Fprint(rw, `{"message": "model not found"}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).DownloadModel(context.Background())

	var downloadErr *ModelDownloadError
	require.ErrorAs(t, err, &downloadErr)
	assert.Equal(t, http.StatusNotFound, downloadErr.StatusCode)
	assert.Equal(t, "model not found", downloadErr.Message)
	assert.JSONEq(t, `{"message": "model not found"}`, string(downloadErr.Body))
	assert.Equal(t, 1, requests)
}

func TestDownloadModelTreatsOtherSuccessCodesAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).DownloadModel(context.Background())

	var downloadErr *ModelDownloadError
	require.ErrorAs(t, err, &downloadErr)
	assert.Equal(t, http.StatusAccepted, downloadErr.StatusCode)
}

func TestUploadModel(t *testing.T) {
	blob := []byte("serialized-local-update")
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/models/33333333-3333-3333-3333-333333333333/", r.URL.Path)
		assert.Equal(t, "Token abc123", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(32<<20))
		form := r.MultipartForm
		assert.Equal(t, []string{"11111111-1111-1111-1111-111111111111"}, form.Value["owner"])
		assert.Equal(t, []string{"7"}, form.Value["round"])
		assert.Equal(t, []string{"1280"}, form.Value["sample_size"])
		assert.Equal(t, []string{"accuracy", "loss"}, form.Value["metric_names"])
		assert.Equal(t, []string{"0.93", "0.41"}, form.Value["metric_values"])

		file, _, err := r.FormFile("model_file")
		require.NoError(t, err)
		defer file.Close()
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, blob, content)

		rw.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	metrics := model.Metrics{"loss": 0.41, "accuracy": 0.93}
	err := newTestClient(t, server.URL).UploadModel(context.Background(), &model.Model{Raw: blob}, metrics, 1280)

	require.NoError(t, err)
}

func TestUploadModelRejectedIsTypedAndNotRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		requests++
		rw.WriteHeader(http.StatusForbidden)
		fmt.Fprint(rw, `{"message": "client is not part of this training"}`)
	}))
	defer server.Close()

	err := newTestClient(t, server.URL).UploadModel(context.Background(),
		&model.Model{Raw: []byte("blob")}, nil, 100)

	var uploadErr *ModelUploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, http.StatusForbidden, uploadErr.StatusCode)
	assert.Equal(t, "client is not part of this training", uploadErr.Message)
	assert.Equal(t, 1, requests)
}

func TestUploadModelPlainOkIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newTestClient(t, server.URL).UploadModel(context.Background(),
		&model.Model{Raw: []byte("blob")}, nil, 100)

	var uploadErr *ModelUploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, http.StatusOK, uploadErr.StatusCode)
}

func TestUploadMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/models/33333333-3333-3333-3333-333333333333/metrics/", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, []string{"accuracy", "f1"}, r.PostForm["metric_names"])
		assert.Equal(t, []string{"0.93", "0.88"}, r.PostForm["metric_values"])

		rw.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	err := newTestClient(t, server.URL).UploadMetrics(context.Background(),
		model.Metrics{"f1": 0.88, "accuracy": 0.93})

	require.NoError(t, err)
}

func TestUploadMetricsRejectedIsTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(rw, "metric storage unavailable")
	}))
	defer server.Close()

	err := newTestClient(t, server.URL).UploadMetrics(context.Background(), model.Metrics{"loss": 0.5})

	var metricsErr *MetricsUploadError
	require.ErrorAs(t, err, &metricsErr)
	assert.Equal(t, http.StatusInternalServerError, metricsErr.StatusCode)
	assert.Equal(t, "metric storage unavailable", metricsErr.Message)
}

func TestNewClientWithPasswordPacksBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		authorization := r.Header.Get("Authorization")
		require.True(t, strings.HasPrefix(authorization, "Basic "))
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authorization, "Basic "))
		require.NoError(t, err)
		assert.Equal(t, "client-user:s3cret", string(decoded))
		rw.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClientWithPassword(server.URL, testContext, "client-user", "s3cret",
		&codec.RawCodec{}, NewHttpClient(), hclog.NewNullLogger())
	require.NoError(t, err)

	_, err = client.DownloadModel(context.Background())
	require.NoError(t, err)
}

func TestCommunicationErrorsShareBaseShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(rw, "upstream gone")
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).DownloadModel(context.Background())

	var downloadErr *ModelDownloadError
	require.ErrorAs(t, err, &downloadErr)
	assert.Contains(t, downloadErr.Error(), "model download")
	assert.Contains(t, downloadErr.Error(), "502")
	assert.Contains(t, downloadErr.Error(), "upstream gone")

	// the failure stays a download failure, not any other kind
	var uploadErr *ModelUploadError
	assert.False(t, errors.As(err, &uploadErr))
}
