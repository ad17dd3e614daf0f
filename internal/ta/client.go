package ta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/suzaku-admin/internal/config"
	"github.com/suzaku-admin/internal/logger"
)

var (
	// ErrHTTPClientStatus 4xx 响应，不可重试
	ErrHTTPClientStatus = errors.New("ta: http client error")
	// ErrHTTPServerStatus 5xx 响应，可重试
	ErrHTTPServerStatus = errors.New("ta: http server error")
	// ErrRetriesExhausted 重试耗尽
	ErrRetriesExhausted = errors.New("ta: retries exhausted")
)

var defaultRetryDelays = []time.Duration{5 * time.Second, 10 * time.Second, 30 * time.Second}

// Client 数数开放查询 API 客户端，带有界重试
type Client struct {
	apiHost     string
	token       string
	timeout     time.Duration
	httpClient  *http.Client
	retryDelays []time.Duration
}

// NewClient 根据配置创建查询客户端
func NewClient(cfg *config.ThinkingDataConfig) *Client {
	timeout := 60 * time.Second
	if cfg.QueryTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.QueryTimeoutSeconds) * time.Second
	}
	return &Client{
		apiHost: strings.TrimRight(cfg.APIHost, "/"),
		token:   cfg.ProjectToken,
		timeout: timeout,
		// 单次请求超时略大于查询超时，留出网络往返余量
		httpClient:  &http.Client{Timeout: timeout + 5*time.Second},
		retryDelays: defaultRetryDelays,
	}
}

// WithRetryDelays 覆盖重试间隔（测试用）
func (c *Client) WithRetryDelays(delays []time.Duration) *Client {
	if len(delays) > 0 {
		c.retryDelays = delays
	}
	return c
}

// Query 执行一次查询，失败时按固定间隔重试。
// 4xx 与平台层错误码立即终止；网络错误、超时与 5xx 最多重试 len(retryDelays) 次。
func (c *Client) Query(ctx context.Context, sql string) (*Result, error) {
	maxRetries := len(c.retryDelays)
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err := c.executeOnce(ctx, sql)
		if err == nil {
			return result, nil
		}
		if isTerminal(err) {
			return nil, err
		}
		lastErr = err

		if attempt < maxRetries {
			delay := c.retryDelays[attempt]
			logger.Warnw("ta_query_retry",
				"attempt", attempt+1,
				"max_retries", maxRetries,
				"delay", delay.String(),
				"error", err,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxRetries+1, lastErr)
}

func (c *Client) executeOnce(ctx context.Context, sql string) (*Result, error) {
	endpoint := c.apiHost + "/querySql"
	form := url.Values{}
	form.Set("token", c.token)
	form.Set("sql", sql)
	form.Set("format", "json")
	form.Set("timeoutSeconds", strconv.Itoa(int(c.timeout/time.Second)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ta: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, fmt.Errorf("%w: status %d", ErrHTTPClientStatus, resp.StatusCode)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrHTTPServerStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ta: read response failed: %w", err)
	}

	result, err := ParseResponse(body)
	if err != nil {
		return nil, err
	}
	if result.Malformed > 0 {
		logger.Warnw("ta_response_malformed_rows", "count", result.Malformed)
	}
	return result, nil
}

// isTerminal 判断错误是否不可重试。超时与 5xx 留给重试逻辑处理。
func isTerminal(err error) bool {
	return errors.Is(err, ErrHTTPClientStatus) ||
		errors.Is(err, ErrAPIStatus) ||
		errors.Is(err, ErrBadMetadata) ||
		errors.Is(err, ErrEmptyResponse) ||
		errors.Is(err, context.Canceled)
}
