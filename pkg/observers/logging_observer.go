// Package observers provides observers for monitoring traffic lights
package observers

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/anggasct/trafficlight/pkg/core"
)

// LoggingObserver logs light events through logrus
type LoggingObserver struct {
	core.BaseObserver

	level  logrus.Level
	prefix string
	logger *logrus.Logger
	mutex  sync.RWMutex
}

// NewLoggingObserver creates a new logging observer that writes entries at or
// above level to logger. A nil logger uses the logrus standard logger
func NewLoggingObserver(level logrus.Level, prefix string, logger *logrus.Logger) *LoggingObserver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LoggingObserver{
		level:  level,
		prefix: prefix,
		logger: logger,
	}
}

// SetLevel changes the most verbose level this observer emits
func (o *LoggingObserver) SetLevel(level logrus.Level) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.level = level
}

func (o *LoggingObserver) entry(level logrus.Level, fields logrus.Fields) *logrus.Entry {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	if level > o.level {
		return nil
	}
	e := o.logger.WithFields(fields)
	if o.prefix != "" {
		e = e.WithField("component", o.prefix)
	}
	return e
}

// OnPhaseChange logs transitions
func (o *LoggingObserver) OnPhaseChange(event core.PhaseEvent) {
	if e := o.entry(logrus.InfoLevel, logrus.Fields{
		"light_id": event.LightID,
		"seq":      event.Sequence,
		"from":     event.From,
		"to":       event.To,
		"held":     event.Interval,
	}); e != nil {
		e.Info("phase changed")
	}
}

// OnSimulationStarted logs the start of a light
func (o *LoggingObserver) OnSimulationStarted(lightID string) {
	if e := o.entry(logrus.InfoLevel, logrus.Fields{"light_id": lightID}); e != nil {
		e.Info("simulation started")
	}
}

// OnSimulationStopped logs the end of a light
func (o *LoggingObserver) OnSimulationStopped(lightID string) {
	if e := o.entry(logrus.InfoLevel, logrus.Fields{"light_id": lightID}); e != nil {
		e.Info("simulation stopped")
	}
}

// OnNotificationConsumed logs waiter activity
func (o *LoggingObserver) OnNotificationConsumed(lightID string, phase core.Phase, accepted bool) {
	if e := o.entry(logrus.DebugLevel, logrus.Fields{
		"light_id": lightID,
		"phase":    phase,
		"accepted": accepted,
	}); e != nil {
		e.Debug("notification consumed")
	}
}

// OnError logs errors
func (o *LoggingObserver) OnError(err error) {
	if e := o.entry(logrus.ErrorLevel, logrus.Fields{}); e != nil {
		e.WithError(err).Error("light error")
	}
}
