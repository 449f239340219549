package observers

import "github.com/sirupsen/logrus"

// NewDefaultLoggingObserver creates a logging observer with default settings (InfoLevel, standard logger)
func NewDefaultLoggingObserver() *LoggingObserver {
	return NewLoggingObserver(logrus.InfoLevel, "trafficlight", nil)
}
