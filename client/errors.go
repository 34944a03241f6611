package client

import (
	"errors"

	sdkerrors "github.com/teamoptimus/voicebot/client/internal/errors"
	"github.com/teamoptimus/voicebot/client/internal/shardqueue"
)

// ErrBackPressure is returned when the client's internal shard queue is full.
var ErrBackPressure = errors.New("back-pressure (queue full)")

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool {
	return errors.Is(err, ErrBackPressure) || errors.Is(err, shardqueue.ErrQueueFull)
}

// IsIrrecoverable reports whether err is a classified error that retry
// cannot fix (4xx-class responses). Callers use it to decide between showing
// the failure and silently retrying.
func IsIrrecoverable(err error) bool {
	var classified *sdkerrors.ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category == sdkerrors.Irrecoverable
	}
	return false
}

// StatusCode extracts the HTTP status from a classified SDK error, or 0 when
// the error did not come from an HTTP response.
func StatusCode(err error) int {
	var classified *sdkerrors.ClassifiedError
	if errors.As(err, &classified) {
		return classified.StatusCode
	}
	return 0
}
