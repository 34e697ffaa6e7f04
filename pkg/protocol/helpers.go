package protocol

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewStatusMessage creates a status message
func NewStatusMessage(status StatusData) (*Message, error) {
	return NewMessage(TypeStatus, status)
}

// NewDetectionMessage creates a detection summary message
func NewDetectionMessage(frameID uint64, width, height int, best *Target, all []Target) (*Message, error) {
	return NewMessage(TypeDetection, DetectionData{
		FrameID:    frameID,
		Width:      width,
		Height:     height,
		Candidates: len(all),
		Best:       best,
		All:        all,
	})
}

// NewLogMessage creates a log message
func NewLogMessage(level, message string) (*Message, error) {
	return NewMessage(TypeLog, LogData{Level: level, Message: message})
}

// NewPingMessage creates a ping message
func NewPingMessage() (*Message, error) {
	return NewMessage(TypePing, nil)
}
