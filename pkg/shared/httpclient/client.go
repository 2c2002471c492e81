package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/vinquery/nhtsavin/pkg/shared/config"
	"github.com/vinquery/nhtsavin/pkg/shared/errors"
)

// HclogAdapter adapts an hclog.Logger to be compatible with the resty log.Logger interface.
type HclogAdapter struct {
	logger hclog.Logger
}

// NewHclogAdapter creates a new adapter that will forward messages to a hclog.Logger.
func NewHclogAdapter(logger hclog.Logger) resty.Logger {
	return &HclogAdapter{logger: logger}
}

// Errorf logs a message at error level.
func (a *HclogAdapter) Errorf(format string, v ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// Warnf logs a message at warning level.
func (a *HclogAdapter) Warnf(format string, v ...interface{}) {
	a.logger.Warn(fmt.Sprintf(format, v...))
}

// Debugf logs a message at debug level.
func (a *HclogAdapter) Debugf(format string, v ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}

// Client performs single GET requests against the NHTSA API.
type Client struct {
	RestyClient *resty.Client
	Logger      hclog.Logger
}

// New initializes a resty client from the http_client section of the configuration.
// Retries are disabled and redirects are handed back to the caller instead of being followed.
func New(logger hclog.Logger, cfg *config.Config) (*Client, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	restyConfig, err := applyHTTPClientConfig(cfg)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetLogger(NewHclogAdapter(logger))
	client.
		SetDebug(restyConfig.Debug).
		SetRetryCount(0).
		SetTimeout(restyConfig.Timeout).
		SetTLSClientConfig(restyConfig.TLSClientConfig).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	if restyConfig.Proxy != "" {
		client.SetProxy(restyConfig.Proxy)
	}

	return &Client{RestyClient: client, Logger: logger}, nil
}

// applyHTTPClientConfig applies the HTTPClient configuration or uses default values.
func applyHTTPClientConfig(cfg *config.Config) (config.RestyHTTPClientConfig, error) {
	restyConfig := config.DefaultRestyConfig()
	if cfg == nil {
		return restyConfig, nil
	}
	if err := config.ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return restyConfig, fmt.Errorf("invalid http_client configuration: %w", err)
	}

	httpConfig := cfg.HTTPClient
	restyConfig.Debug = config.GetBoolValue(httpConfig, "Debug", restyConfig.Debug)
	restyConfig.Timeout = config.SetThen(httpConfig.Timeout, restyConfig.Timeout)
	restyConfig.TLSClientConfig.InsecureSkipVerify = !config.GetBoolValue(httpConfig.TLSClientConfig, "Verify", true)

	if httpConfig.Proxy.Host != "" && httpConfig.Proxy.Port != 0 {
		restyConfig.Proxy = fmt.Sprintf("%s:%d", httpConfig.Proxy.Host, httpConfig.Proxy.Port)
	}

	return restyConfig, nil
}

// Fetch issues exactly one GET to url and returns the body of a 2xx response.
// A 3xx response yields errors.ErrRedirectNotSupported; every other failure is a *errors.TransportError.
func (c *Client) Fetch(ctx context.Context, url string, headers map[string]string) (string, error) {
	c.Logger.Debug("sending request", "url", url)
	resp, err := c.RestyClient.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeaders(headers).
		Get(url)
	if err != nil {
		c.Logger.Debug("request failed", "url", url, "error", err)
		return "", errors.NewNetworkError(err)
	}

	code := resp.StatusCode()
	c.Logger.Debug("received response", "url", url, "status", code, "duration", resp.Time())

	switch {
	case code >= 200 && code < 300:
		return string(resp.Body()), nil
	case code >= 300 && code < 400:
		return "", fmt.Errorf("%w: status %d", errors.ErrRedirectNotSupported, code)
	default:
		return "", errors.NewStatusError(code, resp.Status(), reasonPhrase(code, resp.Status()))
	}
}

// reasonPhrase strips the numeric code off a status line such as "404 Not Found".
func reasonPhrase(code int, status string) string {
	reason := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if reason == "" {
		return http.StatusText(code)
	}
	return reason
}
