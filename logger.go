package threadpool

type (
	// Logger is the minimal logging surface the pool needs.
	// *logrus.Logger and *logrus.Entry satisfy it out of the box.
	Logger interface {
		Debugf(string, ...interface{})
		Infof(string, ...interface{})
		Errorf(string, ...interface{})
	}

	discardLogger struct{}
)

func (l *discardLogger) Debugf(string, ...interface{}) {
	// Do nothing
}

func (l *discardLogger) Infof(string, ...interface{}) {
	// Do nothing
}

func (l *discardLogger) Errorf(string, ...interface{}) {
	// Do nothing
}
