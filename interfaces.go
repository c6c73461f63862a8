package spiflashcb

// Logger is the diagnostic-tracing surface the Driver calls into. It is
// satisfied directly by *logrus.Logger (see cmd/spiflashcb-demo); callers may
// supply any adapter with this shape.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// nopLogger discards everything; it is the Driver's default Logger.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
