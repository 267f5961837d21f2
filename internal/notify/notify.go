// Package notify carries user-visible notifications out of the stores. It is
// the toast channel: stores report outcomes here and never print directly.
package notify

import (
	"github.com/deepak9783/Eatsy/pkg/logger"
)

// Notifier receives user-visible outcome messages from store operations.
type Notifier interface {
	// Success surfaces a success-styled message.
	Success(message string)
	// Error surfaces an error-styled message.
	Error(message string)
}

// LogNotifier writes notifications through the structured logger. It is the
// default sink when no UI is attached.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Success(message string) {
	logger.Info().Str("channel", "success").Msg(message)
}

func (n *LogNotifier) Error(message string) {
	logger.Warn().Str("channel", "error").Msg(message)
}

// Func adapts two callbacks into a Notifier, for views that render toasts
// themselves.
type Func struct {
	OnSuccess func(string)
	OnError   func(string)
}

func (f Func) Success(message string) {
	if f.OnSuccess != nil {
		f.OnSuccess(message)
	}
}

func (f Func) Error(message string) {
	if f.OnError != nil {
		f.OnError(message)
	}
}
