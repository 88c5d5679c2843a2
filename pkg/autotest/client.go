package autotest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
)

// Response is the dashboard's answer to a save, surfaced to the operator as is.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ResponseError is returned when the dashboard answered with something other than a save
// result, e.g. a proxy error page. It matches ErrBadResponse.
type ResponseError struct {
	StatusCode int
	Err        error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%v (status %d): %v", ErrBadResponse, e.StatusCode, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return ErrBadResponse
}

func MessageBadResponse(statusCode int) string {
	return fmt.Sprintf("Unexpected response from dashboard. Status: %d", statusCode)
}

// Client saves settings through the dashboard's form endpoint, the way the page does.
type Client struct {
	c            *resty.Client
	dashboardURL string
	logger       *zap.Logger
}

func NewClient(dashboardURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		c:            resty.New().SetTimeout(timeout),
		dashboardURL: strings.TrimRight(dashboardURL, "/"),
		logger: common.GetLoggerWith(
			common.LoggerNameClient,
			zap.String(common.LoggerFieldCategory, common.LoggerCategorySettings),
		),
	}
}

// Save validates the form locally and only then posts it. Validation failures come back as
// *ValidationError without any request being made; transport failures wrap ErrNetwork and
// undecodable answers come back as *ResponseError.
func (c *Client) Save(ctx context.Context, form Form) (Response, error) {
	if _, err := form.Validate(); err != nil {
		return Response{Success: false, Message: err.Error()}, err
	}

	resp, err := c.c.R().
		SetContext(ctx).
		SetFormData(form.Values()).
		SetHeader("Accept", "application/json").
		Post(c.dashboardURL)
	if err != nil {
		c.logger.Warn("Failed to reach dashboard", zap.Error(err))
		return Response{Success: false, Message: MessageNetworkError}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var out Response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		c.logger.Warn("Undecodable dashboard response", zap.Int("status_code", resp.StatusCode()), zap.Error(err))
		return Response{Success: false, Message: MessageBadResponse(resp.StatusCode())},
			&ResponseError{StatusCode: resp.StatusCode(), Err: err}
	}

	c.logger.Info("Settings saved", zap.String("station_id", form.StationID), zap.Bool("success", out.Success))
	return out, nil
}
