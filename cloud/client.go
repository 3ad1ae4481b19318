package cloud

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/go-faster/errors"
	"github.com/qubera-team/qubera-client/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	signingService = "qubera"
	requestTimeout = 60 * time.Second
)

// Client talks to the task service over REST. It carries no domain logic:
// programs go up as opaque strings, results come back as decoded payloads.
type Client struct {
	endpoint string
	region   string
	apiKey   string
	creds    aws.Credentials
	signer   *v4.Signer
	http     *http.Client
	tracer   trace.Tracer
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) Setup(conf *core.Conf) error {
	if conf.Endpoint == "" {
		return fmt.Errorf("no service endpoint is configured")
	}
	c.endpoint = strings.TrimSuffix(conf.Endpoint, "/")
	c.region = conf.Region
	c.apiKey = conf.APIKey
	if conf.AccessKey != "" {
		c.creds = aws.Credentials{
			AccessKeyID:     conf.AccessKey,
			SecretAccessKey: conf.SecretKey,
			SessionToken:    conf.SessionToken,
		}
		c.signer = v4.NewSigner()
	}
	if c.apiKey == "" && c.signer == nil {
		return fmt.Errorf("neither an API key nor signing credentials are configured")
	}
	c.http = &http.Client{
		Transport: &loggingRoundTripper{next: http.DefaultTransport},
		Timeout:   requestTimeout,
	}
	c.tracer = otel.Tracer("cloud")
	zap.L().Info(fmt.Sprintf("cloud client is set up/endpoint:%s/region:%s", c.endpoint, c.region))
	return nil
}

func (c *Client) CreateTask(ctx context.Context, td *core.TaskData) (string, core.Status, error) {
	body, status, err := c.do(ctx, http.MethodPost, "/v1/tasks", encodeTaskDef(td))
	if err != nil {
		return "", core.FAILED, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", core.FAILED, apiError("create task", status, body)
	}
	res, err := decodeCreateResponse(body)
	if err != nil {
		return "", core.FAILED, err
	}
	return res.taskID, res.status, nil
}

func (c *Client) GetTask(ctx context.Context, taskID string) (*core.TaskData, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/v1/tasks/"+taskID, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError("get task "+taskID, status, body)
	}
	return decodeTaskDef(body)
}

func (c *Client) CancelTask(ctx context.Context, taskID string) error {
	body, status, err := c.do(ctx, http.MethodPut, "/v1/tasks/"+taskID+"/cancel", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return apiError("cancel task "+taskID, status, body)
	}
	return nil
}

func (c *Client) GetDevice(ctx context.Context, deviceID string) (*core.DeviceInfo, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/v1/devices/"+deviceID, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError("get device "+deviceID, status, body)
	}
	return decodeDeviceInfo(body)
}

func (c *Client) SearchDevices(ctx context.Context) ([]*core.DeviceInfo, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/v1/devices", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError("search devices", status, body)
	}
	return decodeDeviceList(body)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	ctx, span := c.tracer.Start(ctx, method+" "+path,
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		))
	defer span.End()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if c.signer != nil {
		hash := sha256.Sum256(payload)
		err = c.signer.SignHTTP(ctx, c.creds, req, hex.EncodeToString(hash[:]),
			signingService, c.region, time.Now())
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, errors.Wrap(err, "sign request")
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, resp.StatusCode, errors.Wrap(err, "read response body")
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return body, resp.StatusCode, nil
}

func apiError(op string, status int, body []byte) error {
	return fmt.Errorf("%s failed with status %d: %s", op, status, decodeErrorMessage(body))
}

type loggingRoundTripper struct {
	next http.RoundTripper
}

func (lrt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := lrt.next.RoundTrip(req)
	if err != nil {
		zap.L().Error("API roundtrip failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, err
	}

	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		zap.L().Error("Failed to read API response body", zap.Error(readErr), zap.Int("statusCode", resp.StatusCode), zap.String("url", req.URL.String()))
		resp.Body.Close()
		return resp, nil
	}
	resp.Body.Close()

	zap.L().Debug("Received API response",
		zap.String("url", req.URL.String()),
		zap.Int("statusCode", resp.StatusCode),
		zap.ByteString("responseBody", bodyBytes),
	)

	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	return resp, nil
}
