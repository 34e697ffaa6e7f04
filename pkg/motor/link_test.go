package motor

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-beacon/pkg/protocol"
	"github.com/teslashibe/go-beacon/pkg/serialport"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func newConnectedLink(t *testing.T) (*Link, *serialport.TestablePort) {
	t.Helper()
	opener := serialport.NewMockOpener()
	link := NewLink(serialport.NewChannel(opener.Open))
	require.NoError(t, link.Connect("/dev/ttyUSB0", 115200))
	return link, opener.Port
}

func sentCommands(t *testing.T, port *serialport.TestablePort) []int8 {
	t.Helper()
	cmds, err := protocol.DecodeStream(port.Written())
	require.NoError(t, err)
	return cmds
}

func TestQuantize_Breakpoints(t *testing.T) {
	tests := []struct {
		e    float64
		want int
	}{
		{0, 0},
		{49.99, 0},
		{-49.99, 0},
		{50, 1},
		{-50, -1},
		{99.9, 1},
		{100, 2},
		{-120, -2},
		{150, 3},
		{-199, -3},
		{200, 4},
		{249.5, 4},
		{250, 5},
		{300, 5},
		{-10000, -5},
		{math.Inf(1), 5},
		{math.NaN(), 0},
	}

	for _, tc := range tests {
		if got := Quantize(tc.e); got != tc.want {
			t.Errorf("Quantize(%v) = %d, want %d", tc.e, got, tc.want)
		}
	}
}

func TestQuantize_MonotoneAndSigned(t *testing.T) {
	prev := 0
	for m := 0.0; m <= 400; m += 0.5 {
		pos := Quantize(m)
		neg := Quantize(-m)

		if pos < prev {
			t.Fatalf("|command| decreased at %v: %d < %d", m, pos, prev)
		}
		prev = pos

		if neg != -pos {
			t.Fatalf("Quantize(-%v) = %d, want %d", m, neg, -pos)
		}
		if (pos == 0) != (m < 50) {
			t.Fatalf("zero band mismatch at %v: %d", m, pos)
		}
		if (pos == 5) != (m >= 250) {
			t.Fatalf("saturation mismatch at %v: %d", m, pos)
		}
		if pos < protocol.MinCommand || pos > protocol.MaxCommand {
			t.Fatalf("command %d out of range at %v", pos, m)
		}
	}
}

func TestSendError_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		e         float64
		wantCmd   int8
		wantState State
	}{
		{"centered", 0, 0, Stopped},
		{"left", -120, -2, MovingLeft},
		{"far right", 300, 5, MovingRight},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			link, port := newConnectedLink(t)

			require.NoError(t, link.SendError(tc.e))

			assert.Equal(t, []int8{tc.wantCmd}, sentCommands(t, port))
			assert.Equal(t, tc.wantState, link.State())
			assert.Equal(t, int(tc.wantCmd), link.LastCommand())
		})
	}
}

func TestSendError_AdvancesPositionAndSpeed(t *testing.T) {
	link, _ := newConnectedLink(t)

	require.NoError(t, link.SendError(120))  // +2
	require.NoError(t, link.SendError(-60))  // -1
	require.NoError(t, link.SendError(-260)) // -5

	if !floatEquals(link.Position(), (2-1-5)*PositionPerStep) {
		t.Errorf("Position() = %v, want %v", link.Position(), (2-1-5)*PositionPerStep)
	}
	if !floatEquals(link.Speed(), -50) {
		t.Errorf("Speed() = %v, want -50", link.Speed())
	}
}

func TestSendError_Disconnected(t *testing.T) {
	link := NewLink(serialport.NewChannel(serialport.NewMockOpener().Open))

	err := link.SendError(500)
	assert.ErrorIs(t, err, serialport.ErrNotConnected)
	assert.Equal(t, Idle, link.State())
	assert.Zero(t, link.LastCommand())
	assert.Zero(t, link.Position())
}

func TestSendError_FailedWriteKeepsLastCommand(t *testing.T) {
	link, port := newConnectedLink(t)
	require.NoError(t, link.SendError(160)) // +3

	port.SetWriteError(errors.New("unplugged"))
	err := link.SendError(-260)

	assert.Error(t, err)
	assert.Equal(t, MovingLeft, link.State(), "state follows the computed command")
	assert.Equal(t, 3, link.LastCommand())
	assert.True(t, floatEquals(link.Position(), 3*PositionPerStep))
}

func TestStop(t *testing.T) {
	link, port := newConnectedLink(t)
	require.NoError(t, link.SendError(-300))

	require.NoError(t, link.Stop())

	assert.Equal(t, []int8{-5, 0}, sentCommands(t, port))
	assert.Equal(t, Stopped, link.State())
	assert.Zero(t, link.LastCommand())
}

func TestStop_Disconnected(t *testing.T) {
	link := NewLink(serialport.NewChannel(serialport.NewMockOpener().Open))
	assert.ErrorIs(t, link.Stop(), serialport.ErrNotConnected)
	assert.Equal(t, Idle, link.State())
}

func TestDisconnect_SendsFailSafeStop(t *testing.T) {
	link, port := newConnectedLink(t)
	require.NoError(t, link.SendError(210))

	link.Disconnect()

	assert.Equal(t, []int8{4, 0}, sentCommands(t, port))
	assert.True(t, port.IsClosed())
	assert.False(t, link.IsConnected())
	assert.Equal(t, Stopped, link.State())
}

func TestConnect_ResetsMotorState(t *testing.T) {
	opener := serialport.NewMockOpener()
	link := NewLink(serialport.NewChannel(opener.Open))
	require.NoError(t, link.Connect("/dev/ttyUSB0", 115200))
	require.NoError(t, link.SendError(-300))
	require.Equal(t, MovingLeft, link.State())
	require.Equal(t, -5, link.LastCommand())

	opener.Port = serialport.NewTestablePort()
	require.NoError(t, link.Connect("/dev/ttyACM0", 115200))

	assert.Equal(t, Idle, link.State())
	assert.Zero(t, link.LastCommand())
	assert.Equal(t, "/dev/ttyACM0", link.Port())
}

func TestAutoConnect_ProbesInOrder(t *testing.T) {
	opener := serialport.NewMockOpener()
	opener.FailPaths = map[string]bool{"/dev/ttyUSB0": true, "/dev/ttyUSB1": true}
	link := NewLink(serialport.NewChannel(opener.Open))
	link.probeGap = time.Millisecond
	link.listPorts = func() ([]string, error) { return []string{"/dev/ttyUSB0", "/dev/ttyS9"}, nil }

	path, err := link.AutoConnect(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", path)
	assert.Equal(t, []string{"/dev/ttyUSB0", "/dev/ttyUSB1", "/dev/ttyACM0"}, opener.Paths())
	assert.Equal(t, DefaultBaud, opener.Calls[0].Mode.BaudRate)
	assert.Equal(t, "/dev/ttyACM0", link.Port())
}

func TestAutoConnect_NothingFound(t *testing.T) {
	opener := &serialport.MockOpener{Err: errors.New("no such device")}
	link := NewLink(serialport.NewChannel(opener.Open))
	link.probeGap = time.Millisecond
	link.listPorts = func() ([]string, error) { return []string{"/dev/ttyS0"}, nil }

	_, err := link.AutoConnect(context.Background())

	assert.ErrorIs(t, err, serialport.ErrNotConnected)
	assert.Equal(t, []string{"/dev/ttyUSB0", "/dev/ttyUSB1", "/dev/ttyACM0", "/dev/ttyACM1", "/dev/ttyS0"}, opener.Paths())
	assert.False(t, link.IsConnected())
}

func TestAutoConnect_Cancelled(t *testing.T) {
	opener := &serialport.MockOpener{Err: errors.New("no such device")}
	link := NewLink(serialport.NewChannel(opener.Open))
	link.probeGap = time.Hour
	link.listPorts = nil

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := link.AutoConnect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, opener.CallCount())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Idle, "IDLE"},
		{MovingLeft, "MOVING_LEFT"},
		{MovingRight, "MOVING_RIGHT"},
		{Stopped, "STOPPED"},
		{Calibrating, "CALIBRATING"},
		{State(99), "UNKNOWN"},
	}
	for _, tc := range tests {
		if got := tc.s.String(); got != tc.want {
			t.Errorf("State(%d).String() = %q, want %q", tc.s, got, tc.want)
		}
	}
}
