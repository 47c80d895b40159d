package tide

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// labeled is satisfied by containers that carry a log-friendly identity.
type labeled interface {
	Label() string
}

// containerLabel resolves the log identity of an observer subject.
func containerLabel(container any) string {
	if l, ok := container.(labeled); ok {
		return l.Label()
	}
	return fmt.Sprintf("%T", container)
}

// LogObserver is an Observer that logs container lifecycle notifications
// through logrus. Creation, event, error, and close notifications log at
// debug/error level; per-emission change and transition logging is gated
// behind Verbose because it is noisy on high-frequency containers.
//
//	tide.SetObserver(&tide.LogObserver{Verbose: true})
type LogObserver struct {
	// Logger is the destination logger. Defaults to the logrus standard
	// logger.
	Logger *logrus.Logger
	// Verbose enables change and transition logging.
	Verbose bool
}

func (o *LogObserver) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}

// OnCreate logs container construction.
func (o *LogObserver) OnCreate(container any) {
	o.logger().WithFields(logrus.Fields{
		"container": containerLabel(container),
	}).Debug("container created")
}

// OnEvent logs an accepted event.
func (o *LogObserver) OnEvent(container any, event any) {
	o.logger().WithFields(logrus.Fields{
		"container": containerLabel(container),
		"event":     fmt.Sprintf("%T", event),
	}).Debug("event accepted")
}

// OnChange logs a committed state change when Verbose is set.
func (o *LogObserver) OnChange(container any, change Change) {
	if !o.Verbose {
		return
	}
	o.logger().WithFields(logrus.Fields{
		"container": containerLabel(container),
		"current":   fmt.Sprintf("%v", change.Current),
		"next":      fmt.Sprintf("%v", change.Next),
	}).Debug("state changed")
}

// OnTransition logs an attempted transition when Verbose is set.
func (o *LogObserver) OnTransition(container any, transition Transition) {
	if !o.Verbose {
		return
	}
	o.logger().WithFields(logrus.Fields{
		"container": containerLabel(container),
		"event":     fmt.Sprintf("%T", transition.Event),
		"current":   fmt.Sprintf("%v", transition.Current),
		"next":      fmt.Sprintf("%v", transition.Next),
	}).Debug("transition")
}

// OnError logs a reported error.
func (o *LogObserver) OnError(container any, err error) {
	o.logger().WithFields(logrus.Fields{
		"container": containerLabel(container),
	}).WithError(err).Error("container error")
}

// OnClose logs container teardown.
func (o *LogObserver) OnClose(container any) {
	o.logger().WithFields(logrus.Fields{
		"container": containerLabel(container),
	}).Debug("container closed")
}
