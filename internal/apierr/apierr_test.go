package apierr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimeoutError struct{}

func (fakeTimeoutError) Error() string   { return "i/o timeout" }
func (fakeTimeoutError) Timeout() bool   { return true }
func (fakeTimeoutError) Temporary() bool { return true }

// TestFromTransport_DeadlineExceeded maps context deadline to TIMEOUT
func TestFromTransport_DeadlineExceeded(t *testing.T) {
	err := FromTransport(fmt.Errorf("Get \"http://127.0.0.1:8001/health\": %w", context.DeadlineExceeded))

	assert.Equal(t, KindTimeout, err.Kind)
	assert.Equal(t, TimeoutErrorMessage, err.Message)
}

// TestFromTransport_NetTimeout maps a net.Error timeout to TIMEOUT
func TestFromTransport_NetTimeout(t *testing.T) {
	err := FromTransport(fakeTimeoutError{})

	assert.Equal(t, KindTimeout, err.Kind)
	assert.Equal(t, TimeoutErrorMessage, err.Message)
}

// TestFromTransport_ConnectionRefused maps other transport failures to NETWORK
func TestFromTransport_ConnectionRefused(t *testing.T) {
	err := FromTransport(errors.New("dial tcp 127.0.0.1:8001: connect: connection refused"))

	assert.Equal(t, KindNetwork, err.Kind)
	assert.Equal(t, NetworkErrorMessage, err.Message)
	assert.Contains(t, err.Detail, "connection refused")
}

// TestFromResponse_ValidationArray parses the structured 422 detail body
func TestFromResponse_ValidationArray(t *testing.T) {
	body := []byte(`{"detail":[{"loc":["body","items",0,"qty"],"msg":"ensure this value is greater than or equal to 1"},{"loc":["body","items"],"msg":"At least one item is required"}]}`)

	err := FromResponse(422, "Unprocessable Entity", body)

	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, 422, err.StatusCode)
	assert.Equal(t, "Validation error: Please check your input", err.Message)
	require.Len(t, err.Fields, 2)
	assert.Equal(t, "body.items.0.qty", err.Fields[0].Field)
	assert.Equal(t, "ensure this value is greater than or equal to 1", err.Fields[0].Message)
	assert.Equal(t, "body.items", err.Fields[1].Field)
}

// TestFromResponse_ValidationMissingMsg substitutes a generic message
func TestFromResponse_ValidationMissingMsg(t *testing.T) {
	body := []byte(`{"detail":[{"loc":["body","customer"]}]}`)

	err := FromResponse(422, "Unprocessable Entity", body)

	require.Len(t, err.Fields, 1)
	assert.Equal(t, "Validation error", err.Fields[0].Message)
}

// TestFromResponse_StringDetail maps a plain detail string to HTTP
func TestFromResponse_StringDetail(t *testing.T) {
	err := FromResponse(404, "Not Found", []byte(`{"detail":"Sales order SO-999 not found"}`))

	assert.Equal(t, KindHTTP, err.Kind)
	assert.Equal(t, 404, err.StatusCode)
	assert.Equal(t, "Sales order SO-999 not found", err.Message)
}

// TestFromResponse_MessageField maps a message field to HTTP
func TestFromResponse_MessageField(t *testing.T) {
	err := FromResponse(500, "Internal Server Error", []byte(`{"message":"engine unavailable"}`))

	assert.Equal(t, KindHTTP, err.Kind)
	assert.Equal(t, "engine unavailable", err.Message)
}

// TestFromResponse_UnreadableBody falls back to UNKNOWN with status text
func TestFromResponse_UnreadableBody(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"html body", []byte("<html>Bad Gateway</html>")},
		{"empty body", []byte("")},
		{"json without known fields", []byte(`{"status":"error"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromResponse(502, "Bad Gateway", tt.body)

			assert.Equal(t, KindUnknown, err.Kind)
			assert.Equal(t, "Backend error: Bad Gateway", err.Message)
			assert.Equal(t, 502, err.StatusCode)
		})
	}
}

// TestError_Format includes the status code for HTTP-layer kinds
func TestError_Format(t *testing.T) {
	httpErr := &Error{Kind: KindHTTP, StatusCode: 404, Message: "not found"}
	assert.Equal(t, "HTTP (404): not found", httpErr.Error())

	netErr := &Error{Kind: KindNetwork, Message: NetworkErrorMessage}
	assert.Equal(t, "NETWORK: "+NetworkErrorMessage, netErr.Error())
}
