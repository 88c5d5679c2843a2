// Package device talks to a station's sensor unit over its small HTTP API:
// GET /readings and POST /start_test.
package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/gauge"
)

const (
	ReadingsPath  = "/readings"
	StartTestPath = "/start_test"

	DefaultTimeout = 4 * time.Second
)

// Outcome classifies one /readings call.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeBusy    Outcome = "busy"
	OutcomeOffline Outcome = "offline"
)

// FetchResult is the classified answer of one /readings call. Payload is only set for OutcomeOK.
type FetchResult struct {
	Outcome    Outcome
	StatusCode int
	Payload    gauge.Payload
	Err        error
}

type TestOutcome string

const (
	TestStarted TestOutcome = "started"
	TestBusy    TestOutcome = "busy"
	TestFailed  TestOutcome = "failed"
)

// TestResult is what the operator is told after pressing Start Test. Responded is false only
// when the device could not be reached at all.
type TestResult struct {
	Outcome    TestOutcome `json:"outcome"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Responded  bool        `json:"-"`
}

const (
	MessageTestStarted      = "Test cycle successfully triggered."
	MessageTestBusy         = "System is currently busy."
	MessageTestConnectError = "Connection error: could not reach device. Check network and IP."
)

type Client struct {
	baseURL string
	http    *resty.Client
	logger  *zap.Logger
}

// NewClient builds a client for one device. No retries are configured: the poller's next
// tick is the retry.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	baseURL = strings.TrimRight(baseURL, "/")

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{
		baseURL: baseURL,
		http:    client,
		logger:  common.GetLoggerWith(common.LoggerNameDevice, zap.String("base_url", baseURL)),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchReadings never returns an error of its own: transport and decoding problems are
// classified as OutcomeOffline with Err set.
func (c *Client) FetchReadings(ctx context.Context) FetchResult {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(ReadingsPath)
	if err != nil {
		c.logger.Warn("Device unreachable", zap.Error(err))
		return FetchResult{Outcome: OutcomeOffline, Err: fmt.Errorf("failed to connect to device: %w", err)}
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusServiceUnavailable:
		return FetchResult{Outcome: OutcomeBusy, StatusCode: resp.StatusCode()}
	default:
		return FetchResult{
			Outcome:    OutcomeOffline,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode()),
		}
	}

	payload, err := DecodePayload(resp.Body())
	if err != nil {
		c.logger.Warn("Device sent an undecodable readings payload", zap.Error(err))
		return FetchResult{Outcome: OutcomeOffline, StatusCode: resp.StatusCode(), Err: err}
	}

	return FetchResult{Outcome: OutcomeOK, StatusCode: resp.StatusCode(), Payload: payload}
}

// DecodePayload keeps numbers as json.Number so the readout sees what the device sent.
func DecodePayload(body []byte) (gauge.Payload, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload gauge.Payload
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("failed to decode response: empty payload")
	}
	return payload, nil
}

func (c *Client) StartTest(ctx context.Context) TestResult {
	resp, err := c.http.R().
		SetContext(ctx).
		Post(StartTestPath)
	if err != nil {
		c.logger.Warn("Start test failed, device unreachable", zap.Error(err))
		return TestResult{Outcome: TestFailed, Message: MessageTestConnectError}
	}

	result := TestResult{StatusCode: resp.StatusCode(), Responded: true}
	switch resp.StatusCode() {
	case http.StatusOK:
		result.Outcome = TestStarted
		result.Message = MessageTestStarted
	case http.StatusConflict:
		result.Outcome = TestBusy
		result.Message = MessageTestBusy
	default:
		result.Outcome = TestFailed
		result.Message = fmt.Sprintf("Failed to start test. Status: %d", resp.StatusCode())
	}

	c.logger.Info("Start test answered", zap.String("outcome", string(result.Outcome)), zap.Int("status_code", result.StatusCode))
	return result
}
