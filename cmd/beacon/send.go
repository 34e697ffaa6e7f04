package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-beacon/pkg/motor"
	"github.com/teslashibe/go-beacon/pkg/protocol"
	"github.com/teslashibe/go-beacon/pkg/serialport"
)

var (
	openPort serialport.Opener = serialport.OpenDevice

	sendPort string
	sendBaud int
	sendHold time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send <command>",
	Short: "Send one motor command (-5..5) and stop the motor again",
	Long: `Send one motor command frame, optionally hold it, then disconnect.
Disconnecting always writes a stop frame, so the motor never keeps running
after the tool exits. Values outside -5..5 are clamped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("command must be an integer, got %q", args[0])
		}
		if sendPort == "" {
			sendPort = env.SerialPort
		}
		if sendPort == "" {
			return fmt.Errorf("no serial port: pass --port or set BEACON_SERIAL_PORT")
		}
		if !cmd.Flags().Changed("baud") && env.Baud != 0 {
			sendBaud = env.Baud
		}

		ch := serialport.NewChannel(openPort)
		if err := ch.Connect(sendPort, sendBaud); err != nil {
			return err
		}
		defer ch.Disconnect()

		c := int(protocol.Clamp(v))
		frame := protocol.Encode(c)
		if err := ch.Transmit(c); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📤 %s @ %d: command %d (% X)\n", sendPort, sendBaud, c, frame[:])

		if sendHold > 0 {
			select {
			case <-time.After(sendHold):
			case <-cmd.Context().Done():
			}
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendPort, "port", "p", "", "Serial device (env BEACON_SERIAL_PORT)")
	sendCmd.Flags().IntVarP(&sendBaud, "baud", "b", motor.DefaultBaud, "Baud rate (env BEACON_BAUD)")
	sendCmd.Flags().DurationVar(&sendHold, "hold", 0, "Keep the command active this long before stopping")
	rootCmd.AddCommand(sendCmd)
}
