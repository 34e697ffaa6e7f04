package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-beacon/pkg/protocol"
)

var (
	watchAddr   string
	watchStream string
	watchCount  int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a running beacon's dashboard status or log stream",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchStream != "status" && watchStream != "logs" {
			return fmt.Errorf("stream must be status or logs, got %q", watchStream)
		}
		u := url.URL{Scheme: "ws", Host: watchAddr, Path: "/ws/" + watchStream}
		return watch(cmd.Context(), u.String(), watchCount, cmd.OutOrStdout())
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchAddr, "addr", "localhost:8282", "Dashboard address")
	watchCmd.Flags().StringVar(&watchStream, "stream", "status", "Stream to follow: status or logs")
	watchCmd.Flags().IntVarP(&watchCount, "count", "n", 0, "Exit after this many messages (0 = until interrupted)")
	rootCmd.AddCommand(watchCmd)
}

// watch prints messages from a dashboard websocket until ctx is done, the
// server goes away or count messages were printed.
func watch(ctx context.Context, wsURL string, count int, out io.Writer) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", wsURL, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	fmt.Fprintf(out, "👀 Watching %s\n", wsURL)
	for seen := 0; count == 0 || seen < count; {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			continue
		}
		line, err := describe(msg)
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		fmt.Fprintln(out, line)
		seen++
	}
	return nil
}

var errBadPayload = errors.New("malformed dashboard payload")

func describe(m *protocol.Message) (string, error) {
	ts := time.UnixMilli(m.Timestamp).Format("15:04:05.000")

	switch m.Type {
	case protocol.TypeStatus:
		var s protocol.StatusData
		if err := m.ParseData(&s); err != nil {
			return "", fmt.Errorf("%w: %v", errBadPayload, err)
		}
		align := "off"
		if s.AutoAlign {
			align = "on"
			if s.Aligned {
				align = "ALIGNED"
			}
		}
		link := "sim"
		if s.Connected {
			link = s.Port
		}
		return fmt.Sprintf("%s align=%-7s err=%+6.1fpx motor=%-11s data=%+d pos=%.1f link=%s fps=%.0f",
			ts, align, s.PixelError, s.MotorState, s.LastCommand, s.Position, link, s.FPS), nil

	case protocol.TypeLog:
		var l protocol.LogData
		if err := m.ParseData(&l); err != nil {
			return "", fmt.Errorf("%w: %v", errBadPayload, err)
		}
		return fmt.Sprintf("%s [%s] %s", ts, l.Level, l.Message), nil
	}
	// detection summaries are too chatty for a terminal
	return "", nil
}
