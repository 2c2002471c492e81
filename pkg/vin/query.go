// Package vin decodes Vehicle Identification Numbers with the NHTSA vPIC API.
//
// A Query is built for one VIN, decoded once with Decode and then inspected:
//
//	q := vin.NewQuery(" 1hgcm82633a123456 ")
//	if err := q.Decode(ctx); err != nil {
//		// the API broke its contract, or answered with a redirect
//	}
//	if q.Valid() {
//		fmt.Println(*q.Response().Make)
//	} else {
//		fmt.Println(q.ErrorMessage())
//	}
//
// Expected failures (transport errors, malformed JSON, rejected or undecodable VINs)
// are reported through Valid, ErrorMessage, ErrorCode and Err. Decode returns an error only
// when the payload violates the API contract.
package vin

import (
	"context"
	stderrors "errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/vinquery/nhtsavin/pkg/shared/config"
	"github.com/vinquery/nhtsavin/pkg/shared/errors"
	"github.com/vinquery/nhtsavin/pkg/shared/httpclient"
)

// Query holds one VIN and the outcome of decoding it.
// It is not safe for concurrent use; create a new Query per VIN.
type Query struct {
	vin       string
	url       string
	requestID string

	cfg    *config.Config
	logger hclog.Logger
	client *httpclient.Client

	valid     bool
	errMsg    string
	errorCode *int
	err       error
	raw       string
	rows      []Row
	index     rowIndex
	response  *Vehicle
}

// Option configures a Query.
type Option func(*Query)

// WithConfig passes the http_client and nhtsa settings through to the query.
func WithConfig(cfg *config.Config) Option {
	return func(q *Query) {
		q.cfg = cfg
	}
}

// WithLogger sets the logger used by the query and its HTTP client.
func WithLogger(logger hclog.Logger) Option {
	return func(q *Query) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithHTTPClient reuses an existing client instead of building one from the configuration.
func WithHTTPClient(client *httpclient.Client) Option {
	return func(q *Query) {
		q.client = client
	}
}

// NewQuery normalizes vin and prepares the request URL.
func NewQuery(vin string, opts ...Option) *Query {
	q := &Query{
		vin:       strings.ToUpper(strings.TrimSpace(vin)),
		requestID: uuid.NewString(),
		logger:    hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.url = buildURL(config.GetBaseURL(q.cfg), q.vin)
	return q
}

func buildURL(baseURL, vin string) string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + url.PathEscape(vin) + "?format=json"
}

// Decode fetches the VIN from the API and parses the response.
// Calling Decode again discards the previous outcome.
func (q *Query) Decode(ctx context.Context) error {
	q.reset()

	client, err := q.httpClient()
	if err != nil {
		return err
	}

	q.logger.Debug("decoding vin", "vin", q.vin, "request_id", q.requestID)
	raw, err := client.Fetch(ctx, q.url, map[string]string{"X-Request-ID": q.requestID})
	if err != nil {
		var transportErr *errors.TransportError
		if !stderrors.As(err, &transportErr) {
			q.logger.Error("fetch failed", "vin", q.vin, "request_id", q.requestID, "error", err)
			return err
		}
		q.errMsg = transportErr.Message
		q.err = transportErr
		q.logger.Warn("transport error", "vin", q.vin, "request_id", q.requestID, "kind", transportErr.Kind, "error", transportErr.Message)
		return nil
	}
	q.raw = raw

	out, err := validate(raw)
	if err != nil {
		q.logger.Error("unexpected response payload", "vin", q.vin, "request_id", q.requestID, "error", err)
		return err
	}

	q.valid = out.valid
	q.errMsg = out.message
	q.errorCode = out.errorCode
	q.err = out.err
	q.rows = out.rows
	q.index = out.index

	if !q.valid {
		q.logger.Info("vin not decoded", "vin", q.vin, "request_id", q.requestID, "error", q.errMsg)
		return nil
	}

	q.response = buildVehicle(q.vin, q.index)
	q.logger.Debug("vin decoded", "vin", q.vin, "request_id", q.requestID, "error_code", *q.errorCode)
	return nil
}

func (q *Query) httpClient() (*httpclient.Client, error) {
	if q.client != nil {
		return q.client, nil
	}
	client, err := httpclient.New(q.logger, q.cfg)
	if err != nil {
		return nil, err
	}
	q.client = client
	return client, nil
}

func (q *Query) reset() {
	q.valid = false
	q.errMsg = ""
	q.errorCode = nil
	q.err = nil
	q.raw = ""
	q.rows = nil
	q.index = nil
	q.response = nil
}

// VIN returns the normalized VIN.
func (q *Query) VIN() string { return q.vin }

// URL returns the request URL.
func (q *Query) URL() string { return q.url }

// RequestID is sent as X-Request-ID and attached to every log line of the query.
func (q *Query) RequestID() string { return q.requestID }

// Valid reports whether the VIN was decoded.
func (q *Query) Valid() bool { return q.valid }

// ErrorMessage returns the human-readable failure message, or "" when none is known.
func (q *Query) ErrorMessage() string { return q.errMsg }

// ErrorCode returns the API error code when the response carried one.
func (q *Query) ErrorCode() (int, bool) {
	if q.errorCode == nil {
		return 0, false
	}
	return *q.errorCode, true
}

// Err returns the classified failure: a *errors.TransportError, or an error wrapping
// errors.ErrMalformedResponse, errors.ErrRemoteRejection or errors.ErrDecodeFailure.
func (q *Query) Err() error { return q.err }

// RawResponse returns the body received from the API.
func (q *Query) RawResponse() string { return q.raw }

// Rows returns the parsed Results rows.
func (q *Query) Rows() []Row { return q.rows }

// Response returns the decoded vehicle, or nil unless Valid.
func (q *Query) Response() *Vehicle { return q.response }

// ValueFor returns the Value of the named attribute.
func (q *Query) ValueFor(name string) *string { return q.index.value(name) }

// ValueIDFor returns the ValueId of the named attribute.
func (q *Query) ValueIDFor(name string) *string { return q.index.valueID(name) }
