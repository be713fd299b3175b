package clog

type Level int

const (
	LevelDebug Level = iota + 1
	LevelInfo
	LevelWarn
	LevelError
)

// HTTPStatusToLevel maps a response status to the level its request log line
// should be emitted at. Client cancellations (499) stay at info.
func HTTPStatusToLevel(status int) Level {
	switch {
	case status >= 100 && status < 400:
		return LevelInfo
	case status == 499:
		return LevelInfo
	case status >= 400 && status < 500:
		return LevelWarn
	case status >= 500:
		return LevelError
	default:
		return LevelError
	}
}
