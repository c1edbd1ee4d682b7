package hg

// Logger is the structured logger used by the tracker.
// Args are slog-style alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}

// Recorder receives counters about storage and advisor activity.
// Outcomes are short labels such as "ok", "missing", "corrupt", "error".
type Recorder interface {
	StorageRead(collection string, outcome string)
	StorageWrite(collection string, outcome string)
	LoadDiscarded()
	AdvisorCall(operation string, outcome string)
}

// NopRecorder drops all measurements.
type NopRecorder struct{}

func (NopRecorder) StorageRead(string, string)  {}
func (NopRecorder) StorageWrite(string, string) {}
func (NopRecorder) LoadDiscarded()              {}
func (NopRecorder) AdvisorCall(string, string)  {}
