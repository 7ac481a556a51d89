package lifu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantPayload string
		wantReply   bool
		wantCode    int
		wantMsg     string
	}{
		{name: "bare ok", line: "OK", wantReply: true},
		{name: "ok with payload", line: "OK 1.2.3\r", wantPayload: "1.2.3", wantReply: true},
		{name: "ok json", line: `OK {"TriggerStatus":"RUNNING"}`, wantPayload: `{"TriggerStatus":"RUNNING"}`, wantReply: true},
		{name: "err with message", line: "ERR 4 not configured", wantReply: true, wantCode: 4, wantMsg: "not configured"},
		{name: "err code only", line: "ERR 7", wantReply: true, wantCode: 7},
		{name: "bare err", line: "ERR", wantReply: true, wantCode: -1},
		{name: "err bad code", line: "ERR oops", wantReply: true, wantCode: -1, wantMsg: "oops"},
		{name: "status line", line: "STATUS:RUNNING,MODE:BURST"},
		{name: "okay is not ok", line: "OKAY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, isReply, err := ParseReply(tt.line)

			assert.Equal(t, tt.wantReply, isReply)
			assert.Equal(t, tt.wantPayload, payload)
			if tt.wantCode == 0 {
				assert.NoError(t, err)
				return
			}
			var devErr *DeviceError
			require.True(t, errors.As(err, &devErr))
			assert.Equal(t, tt.wantCode, devErr.Code)
			assert.Equal(t, tt.wantMsg, devErr.Message)
		})
	}
}

func TestDeviceErrorMessage(t *testing.T) {
	assert.Equal(t, "lifu: device error 3: busy", (&DeviceError{Code: 3, Message: "busy"}).Error())
	assert.Equal(t, "lifu: device error 3", (&DeviceError{Code: 3}).Error())
}
