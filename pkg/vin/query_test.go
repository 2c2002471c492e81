package vin

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinquery/nhtsavin/pkg/shared/config"
	"github.com/vinquery/nhtsavin/pkg/shared/errors"
)

const decodePath = "/api/vehicles/decodevin/"

// apiStub serves a fixed response and records the request it received.
type apiStub struct {
	server   *httptest.Server
	requests []*http.Request
}

func newAPIStub(t *testing.T, status int, body string) *apiStub {
	t.Helper()
	stub := &apiStub{}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.requests = append(stub.requests, r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *apiStub) config() *config.Config {
	return &config.Config{NHTSA: config.NHTSA{BaseURL: s.server.URL + decodePath}}
}

func TestNewQueryNormalizesVIN(t *testing.T) {
	q := NewQuery(" 1hgcm82633a123456 ")

	assert.Equal(t, "1HGCM82633A123456", q.VIN())
	assert.Equal(t, "https://vpic.nhtsa.dot.gov/api/vehicles/decodevin/1HGCM82633A123456?format=json", q.URL())
	assert.NotEmpty(t, q.RequestID())
	assert.False(t, q.Valid())
	assert.Nil(t, q.Response())
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "http://localhost/decodevin/ABC?format=json", buildURL("http://localhost/decodevin", "ABC"))
	assert.Equal(t, "http://localhost/decodevin/A%2FB?format=json", buildURL("http://localhost/decodevin/", "A/B"))
}

func TestDecodeValid(t *testing.T) {
	stub := newAPIStub(t, http.StatusOK, fixture(t, "decodevin_ok.json"))

	q := NewQuery(" 1hgcm82633a123456\n", WithConfig(stub.config()))
	require.NoError(t, q.Decode(context.Background()))

	require.Len(t, stub.requests, 1)
	assert.Equal(t, decodePath+"1HGCM82633A123456", stub.requests[0].URL.Path)
	assert.Equal(t, "json", stub.requests[0].URL.Query().Get("format"))
	assert.Equal(t, q.RequestID(), stub.requests[0].Header.Get("X-Request-ID"))

	assert.True(t, q.Valid())
	assert.Empty(t, q.ErrorMessage())
	assert.NoError(t, q.Err())
	code, ok := q.ErrorCode()
	assert.True(t, ok)
	assert.Equal(t, 0, code)
	assert.Equal(t, fixture(t, "decodevin_ok.json"), q.RawResponse())
	assert.Len(t, q.Rows(), 24)

	v := q.Response()
	require.NotNil(t, v)
	assert.Equal(t, "1HGCM82633A123456", v.VIN)
	assert.Equal(t, "HONDA", *v.Make)
	assert.Equal(t, "Accord", *v.Model)
	assert.Equal(t, "EX-V6", *v.Trim)
	assert.Equal(t, "2003", *v.Year)
	assert.Equal(t, "Coupe", *v.BodyStyle)
	assert.Equal(t, "PASSENGER CAR", *v.VehicleClass)
	assert.Equal(t, "Car", *v.Type)
	assert.Equal(t, 2, *v.Doors)
	assert.Equal(t, "AMERICAN HONDA MOTOR CO., INC.", *v.ManufacturerName)
	assert.Equal(t, "V-Shaped", *v.EngineConfig)
	assert.Equal(t, "240", *v.EngineHPFrom)
	assert.Equal(t, "Standard", *v.ABS)
	assert.Equal(t, "Halogen", *v.HeadlampSource)
	assert.Equal(t, "", *v.Note)
	assert.Nil(t, v.Series)
	assert.Nil(t, v.BedType)

	assert.Equal(t, "Accord", *q.ValueFor("Model"))
	assert.Equal(t, "1861", *q.ValueIDFor("Model"))
	assert.Nil(t, q.ValueFor("Wheel Base (inches) From"))
}

func TestDecodeInvalidErrorCode(t *testing.T) {
	stub := newAPIStub(t, http.StatusOK, fixture(t, "decodevin_bad_check_digit.json"))

	q := NewQuery("1HGCM82633A000000", WithConfig(stub.config()))
	require.NoError(t, q.Decode(context.Background()))

	assert.False(t, q.Valid())
	assert.Equal(t, "6 - Incomplete VIN; 400 - Invalid Characters Present", q.ErrorMessage())
	code, ok := q.ErrorCode()
	assert.True(t, ok)
	assert.Equal(t, 6, code)
	assert.ErrorIs(t, q.Err(), errors.ErrDecodeFailure)
	assert.Nil(t, q.Response())
	assert.Len(t, q.Rows(), 4)
}

func TestDecodeExecutionError(t *testing.T) {
	stub := newAPIStub(t, http.StatusOK, fixture(t, "decodevin_execution_error.json"))

	q := NewQuery("bogus", WithConfig(stub.config()))
	require.NoError(t, q.Decode(context.Background()))

	assert.False(t, q.Valid())
	assert.Equal(t, "Error converting data type nvarchar to int.", q.ErrorMessage())
	_, ok := q.ErrorCode()
	assert.False(t, ok)
	assert.ErrorIs(t, q.Err(), errors.ErrRemoteRejection)
	assert.Nil(t, q.Response())
}

func TestDecodeNotJSON(t *testing.T) {
	stub := newAPIStub(t, http.StatusOK, "not json")

	q := NewQuery("1HGCM82633A123456", WithConfig(stub.config()))
	require.NoError(t, q.Decode(context.Background()))

	assert.False(t, q.Valid())
	assert.Equal(t, "Response is not valid JSON", q.ErrorMessage())
	assert.ErrorIs(t, q.Err(), errors.ErrMalformedResponse)
	assert.Equal(t, "not json", q.RawResponse())
	assert.Nil(t, q.Response())
}

func TestDecodeHTTPNotFound(t *testing.T) {
	stub := newAPIStub(t, http.StatusNotFound, `{"Message":"not here"}`)

	q := NewQuery("1HGCM82633A123456", WithConfig(stub.config()))
	require.NoError(t, q.Decode(context.Background()))

	assert.False(t, q.Valid())
	assert.Contains(t, q.ErrorMessage(), "404")
	assert.Equal(t, "Client error: 404 Not Found", q.ErrorMessage())
	assert.Nil(t, q.Response())
	assert.Empty(t, q.RawResponse())

	var te *errors.TransportError
	require.True(t, stderrors.As(q.Err(), &te))
	assert.Equal(t, errors.KindClient, te.Kind)
}

func TestDecodeServerError(t *testing.T) {
	stub := newAPIStub(t, http.StatusServiceUnavailable, "")

	q := NewQuery("1HGCM82633A123456", WithConfig(stub.config()))
	require.NoError(t, q.Decode(context.Background()))

	assert.False(t, q.Valid())
	assert.Equal(t, "Service Unavailable", q.ErrorMessage())
	assert.Len(t, stub.requests, 1, "no retries")
}

func TestDecodeNetworkFailure(t *testing.T) {
	stub := newAPIStub(t, http.StatusOK, "{}")
	cfg := stub.config()
	stub.server.Close()

	q := NewQuery("1HGCM82633A123456", WithConfig(cfg))
	require.NoError(t, q.Decode(context.Background()))

	assert.False(t, q.Valid())
	assert.Contains(t, q.ErrorMessage(), "connection refused")
	assert.Nil(t, q.Response())
}

func TestDecodeRedirectIsFatal(t *testing.T) {
	stub := newAPIStub(t, http.StatusMovedPermanently, "")

	q := NewQuery("1HGCM82633A123456", WithConfig(stub.config()))
	err := q.Decode(context.Background())

	assert.ErrorIs(t, err, errors.ErrRedirectNotSupported)
	assert.False(t, q.Valid())
	assert.Nil(t, q.Response())
}

func TestDecodeContractViolation(t *testing.T) {
	body := `{"Message":"Results returned successfully","Results":"none"}`
	stub := newAPIStub(t, http.StatusOK, body)

	q := NewQuery("1HGCM82633A123456", WithConfig(stub.config()))
	err := q.Decode(context.Background())

	var fault *errors.ParseFault
	require.True(t, stderrors.As(err, &fault))
	assert.Equal(t, body, fault.Raw)
	assert.True(t, strings.Contains(err.Error(), "Results is a string"))
	assert.False(t, q.Valid())
	assert.Nil(t, q.Response())
}

func TestDecodeInvalidConfig(t *testing.T) {
	cfg := &config.Config{HTTPClient: config.HTTPClient{Proxy: config.Proxy{Host: "proxy", Port: -1}}}

	err := NewQuery("1HGCM82633A123456", WithConfig(cfg)).Decode(context.Background())
	assert.ErrorContains(t, err, "invalid http_client configuration")
}

func TestDecodeIsIdempotent(t *testing.T) {
	stub := newAPIStub(t, http.StatusOK, fixture(t, "decodevin_ok.json"))

	decode := func() []byte {
		q := NewQuery("1HGCM82633A123456", WithConfig(stub.config()))
		require.NoError(t, q.Decode(context.Background()))
		require.True(t, q.Valid())
		out, err := json.Marshal(q.Response())
		require.NoError(t, err)
		return out
	}

	first := decode()
	second := decode()
	assert.Equal(t, first, second)
}

func TestDecodeResetsPreviousOutcome(t *testing.T) {
	ok := newAPIStub(t, http.StatusOK, fixture(t, "decodevin_ok.json"))
	q := NewQuery("1HGCM82633A123456", WithConfig(ok.config()))
	require.NoError(t, q.Decode(context.Background()))
	require.True(t, q.Valid())

	ok.server.Close()
	require.NoError(t, q.Decode(context.Background()))

	assert.False(t, q.Valid())
	assert.Nil(t, q.Response())
	assert.Nil(t, q.Rows())
	assert.Empty(t, q.RawResponse())
	_, hasCode := q.ErrorCode()
	assert.False(t, hasCode)
}
