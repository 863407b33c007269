package core

// Logger logs application events and reports errors to the crash tracker.
// Extra args may carry an error, a map of metadata or an identity user.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
	Enable(enabled bool)
}
