package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStatusError(t *testing.T) {
	testCases := []struct {
		name     string
		code     int
		status   string
		reason   string
		wantKind TransportKind
		wantMsg  string
	}{
		{name: "not found", code: 404, status: "404 Not Found", reason: "Not Found", wantKind: KindClient, wantMsg: "Client error: 404 Not Found"},
		{name: "too many requests", code: 429, status: "429 Too Many Requests", reason: "Too Many Requests", wantKind: KindClient, wantMsg: "Client error: 429 Too Many Requests"},
		{name: "server error", code: 503, status: "503 Service Unavailable", reason: "Service Unavailable", wantKind: KindServer, wantMsg: "Service Unavailable"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewStatusError(tc.code, tc.status, tc.reason)
			assert.Equal(t, tc.wantKind, err.Kind)
			assert.Equal(t, tc.code, err.StatusCode)
			assert.Equal(t, tc.wantMsg, err.Error())
		})
	}
}

func TestNetworkErrorUnwraps(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:1: connect: connection refused")
	err := NewNetworkError(cause)

	assert.Equal(t, KindNetwork, err.Kind)
	assert.Equal(t, cause.Error(), err.Error())
	assert.ErrorIs(t, err, cause)

	var te *TransportError
	assert.True(t, errors.As(fmt.Errorf("fetch: %w", err), &te))
}

func TestParseFaultKeepsRawBody(t *testing.T) {
	err := NewParseFault(`{"Results":{}}`, errors.New("Results is not an array"))
	assert.Contains(t, err.Error(), "Results is not an array")
	assert.Contains(t, err.Error(), `{\"Results\":{}}`)
}

func TestTransportKindString(t *testing.T) {
	assert.Equal(t, "network", KindNetwork.String())
	assert.Equal(t, "client", KindClient.String())
	assert.Equal(t, "server", KindServer.String())
	assert.Equal(t, "unknown", TransportKind(42).String())
}
