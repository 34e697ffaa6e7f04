package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-beacon/pkg/protocol"
)

func get(t *testing.T, s *Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func TestStatusEndpoint(t *testing.T) {
	s := NewServer(":0")
	s.UpdateStatus(protocol.StatusData{
		Session:     "abc",
		AutoAlign:   true,
		PixelError:  -42,
		Threshold:   5,
		MotorState:  "MOVING_LEFT",
		LastCommand: -1,
		Connected:   true,
		Port:        "/dev/ttyUSB0",
	})

	resp, body := get(t, s, "/api/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got protocol.StatusData
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "MOVING_LEFT", got.MotorState)
	assert.Equal(t, -1, got.LastCommand)
	assert.Equal(t, -42.0, got.PixelError)
	assert.True(t, got.Connected)
}

func TestDetectionEndpoint(t *testing.T) {
	s := NewServer(":0")

	resp, _ := get(t, s, "/api/detection")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	s.UpdateDetection(protocol.DetectionData{FrameID: 7, Width: 640, Height: 480, Candidates: 1,
		Best: &protocol.Target{X: 300, Y: 240, Radius: 10, Circularity: 0.9}})

	resp, body := get(t, s, "/api/detection")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got protocol.DetectionData
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, uint64(7), got.FrameID)
	require.NotNil(t, got.Best)
	assert.Equal(t, 300.0, got.Best.X)
}

func TestLogsEndpoint(t *testing.T) {
	s := NewServer(":0")
	for i := 0; i < MaxLogs+10; i++ {
		s.AddLog("info", "line")
	}
	s.AddLog("serial", "connected to /dev/ttyACM0")

	_, body := get(t, s, "/api/logs")
	var all []protocol.Message
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Len(t, all, MaxLogs)

	_, body = get(t, s, "/api/logs?limit=1")
	var last []protocol.Message
	require.NoError(t, json.Unmarshal(body, &last))
	require.Len(t, last, 1)

	var data protocol.LogData
	require.NoError(t, last[0].ParseData(&data))
	assert.Equal(t, "serial", data.Level)
	assert.Equal(t, "connected to /dev/ttyACM0", data.Message)

	resp, _ := get(t, s, "/api/logs?limit=-1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReadOnly(t *testing.T) {
	s := NewServer(":0")

	resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/api/status", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, _ = get(t, s, "/ws/status")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestDisplayAddr(t *testing.T) {
	assert.Equal(t, "localhost:8282", displayAddr(":8282"))
	assert.Equal(t, "10.0.0.2:80", displayAddr("10.0.0.2:80"))
}
