package comm

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/codec"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/common"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/model"
	"github.com/hashicorp/go-hclog"
)

// Client mediates every exchange with the FL server for one training
// context. Each server operation expects exactly one success status, any
// other response is returned as a typed error and never retried. The
// authorization value is attached to every request and never logged.
type Client struct {
	baseURL       string
	training      model.TrainingContext
	authorization string
	codec         codec.ICodec
	httpClient    *http.Client
	logger        hclog.Logger
}

// NewClient builds a client around a prepacked Authorization header value,
// e.g. "Basic ..." or "Bearer ...".
func NewClient(baseURL string, training model.TrainingContext, authorization string,
	cdc codec.ICodec, httpClient *http.Client, logger hclog.Logger) (*Client, error) {
	if err := training.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		training:      training,
		authorization: authorization,
		codec:         cdc,
		httpClient:    httpClient,
		logger:        logger,
	}, nil
}

// NewClientWithPassword packs username and password into a basic auth
// header and builds a client from it.
func NewClientWithPassword(baseURL string, training model.TrainingContext, username string, password string,
	cdc codec.ICodec, httpClient *http.Client, logger hclog.Logger) (*Client, error) {
	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return NewClient(baseURL, training, "Basic "+credentials, cdc, httpClient, logger)
}

// DownloadModel fetches the global model of the bound context and decodes
// it with the configured codec. Only status 200 counts as success.
func (c *Client) DownloadModel(ctx context.Context) (*model.Model, error) {
	c.logger.Info(fmt.Sprintf("downloading model %s", c.training.ModelID))

	endpoint := c.baseURL + fmt.Sprintf(common.MODEL_ENDPOINT_TEMPLATE, c.training.ModelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building model download request: %w", err)
	}
	req.Header.Set("Authorization", c.authorization)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model download: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading model download response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error(fmt.Sprintf("model download answered with status code %d", resp.StatusCode))
		return nil, newModelDownloadError(resp, body)
	}

	c.logger.Debug(fmt.Sprintf("downloaded model %s, %d bytes", c.training.ModelID, len(body)))
	return c.codec.Decode(body)
}

// UploadModel sends the local model update together with its metrics and
// the local sample size as one multipart request. Only status 201 counts
// as success.
func (c *Client) UploadModel(ctx context.Context, m *model.Model, metrics model.Metrics, sampleSize int64) error {
	c.logger.Info(fmt.Sprintf("uploading model update for round %d", c.training.Round))

	blob, err := c.codec.Encode(m)
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField(common.UPLOAD_FIELD_OWNER, c.training.ClientID.String()); err != nil {
		return fmt.Errorf("writing owner field: %w", err)
	}
	if err := writer.WriteField(common.UPLOAD_FIELD_ROUND, strconv.FormatInt(c.training.Round, 10)); err != nil {
		return fmt.Errorf("writing round field: %w", err)
	}
	if err := writer.WriteField(common.UPLOAD_FIELD_SAMPLE_SIZE, strconv.FormatInt(sampleSize, 10)); err != nil {
		return fmt.Errorf("writing sample_size field: %w", err)
	}
	if err := writeMetricFields(writer, metrics); err != nil {
		return err
	}
	part, err := writer.CreateFormFile(common.UPLOAD_FIELD_MODEL_FILE, common.UPLOAD_FIELD_MODEL_FILE)
	if err != nil {
		return fmt.Errorf("writing model file part: %w", err)
	}
	if _, err := part.Write(blob); err != nil {
		return fmt.Errorf("writing model file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	endpoint := c.baseURL + fmt.Sprintf(common.MODEL_ENDPOINT_TEMPLATE, c.training.ModelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("building model upload request: %w", err)
	}
	req.Header.Set("Authorization", c.authorization)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("model upload: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading model upload response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		c.logger.Error(fmt.Sprintf("model upload answered with status code %d", resp.StatusCode))
		return newModelUploadError(resp, body)
	}
	return nil
}

// UploadMetrics reports test metrics for the bound model as an urlencoded
// form. Only status 201 counts as success.
func (c *Client) UploadMetrics(ctx context.Context, metrics model.Metrics) error {
	c.logger.Info(fmt.Sprintf("uploading metrics for model %s", c.training.ModelID))

	form := url.Values{}
	names, values := metrics.NamesValues()
	for i := range names {
		form.Add(common.UPLOAD_FIELD_METRIC_NAMES, names[i])
		form.Add(common.UPLOAD_FIELD_METRIC_VALUES, values[i])
	}

	endpoint := c.baseURL + fmt.Sprintf(common.METRICS_ENDPOINT_TEMPLATE, c.training.ModelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building metrics upload request: %w", err)
	}
	req.Header.Set("Authorization", c.authorization)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("metrics upload: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading metrics upload response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		c.logger.Error(fmt.Sprintf("metrics upload answered with status code %d", resp.StatusCode))
		return newMetricsUploadError(resp, body)
	}
	return nil
}

func writeMetricFields(writer *multipart.Writer, metrics model.Metrics) error {
	names, values := metrics.NamesValues()
	for i := range names {
		if err := writer.WriteField(common.UPLOAD_FIELD_METRIC_NAMES, names[i]); err != nil {
			return fmt.Errorf("writing metric name: %w", err)
		}
		if err := writer.WriteField(common.UPLOAD_FIELD_METRIC_VALUES, values[i]); err != nil {
			return fmt.Errorf("writing metric value: %w", err)
		}
	}
	return nil
}
