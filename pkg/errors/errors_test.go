package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrors(t *testing.T) {
	decode := &DecodeError{Source: "response", Err: io.ErrUnexpectedEOF}
	transport := &TransportError{Op: "getAllUsers", URL: "http://x/users", Err: decode}
	status := &HTTPStatusError{Op: "bookSlot", StatusCode: 409, Body: "slot is already booked"}

	tests := []struct {
		name        string
		err         error
		isTransport bool
		isStatus    bool
		isDecode    bool
		code        int
	}{
		{name: "transport wrapping decode", err: transport, isTransport: true, isDecode: true},
		{name: "status", err: status, isStatus: true, code: 409},
		{name: "wrapped status", err: fmt.Errorf("login: %w", status), isStatus: true, code: 409},
		{name: "plain", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isTransport, IsTransport(tt.err))
			assert.Equal(t, tt.isStatus, IsHTTPStatus(tt.err))
			assert.Equal(t, tt.isDecode, IsDecode(tt.err))
			assert.Equal(t, tt.code, StatusCode(tt.err))
		})
	}

	assert.ErrorIs(t, transport, io.ErrUnexpectedEOF)
	assert.Contains(t, status.Error(), "409")
	assert.Contains(t, status.Error(), "already booked")
	assert.Equal(t, "bookSlot: unexpected status 500", (&HTTPStatusError{Op: "bookSlot", StatusCode: 500}).Error())
}

func TestSentinelConstructors(t *testing.T) {
	assert.True(t, Is(NotFoundError("user u1"), ErrNotFound))
	assert.Equal(t, "user u1 not found", NotFoundError("user u1").Error())
	assert.True(t, Is(InvalidInputError("start", "bad"), ErrInvalidInput))
	assert.True(t, Is(ForbiddenError("s1", "coach"), ErrForbidden))
	assert.Equal(t, "user s1 is not a coach: forbidden", ForbiddenError("s1", "coach").Error())
}
