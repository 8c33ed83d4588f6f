package core

// Logger is the app-wide logger.
// args may hold errors, maps of extra fields or the student performing the request.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the student attached to a log entry.
type Person struct {
	ID    string
	Name  string
	Email string
}
