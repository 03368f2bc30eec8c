package dice

import (
	"sync"

	"go.uber.org/zap"
)

// LoggedSource wraps a Source and logs every draw at debug level.
type LoggedSource struct {
	src    Source
	logger *zap.Logger

	mu  sync.Mutex
	seq int
}

// NewLoggedSource creates a LoggedSource that draws from src and logs each value to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	if src == nil {
		panic("dice.NewLoggedSource: src must not be nil")
	}
	if logger == nil {
		panic("dice.NewLoggedSource: logger must not be nil")
	}
	return &LoggedSource{src: src, logger: logger}
}

// Float64 draws from the wrapped source and logs the result.
//
// Postcondition: the returned value is exactly the wrapped source's value.
func (l *LoggedSource) Float64() float64 {
	v := l.src.Float64()
	l.mu.Lock()
	l.seq++
	d := Draw{Seq: l.seq, Value: v}
	l.mu.Unlock()
	l.logger.Debug("random draw",
		zap.Int("seq", d.Seq),
		zap.Float64("value", d.Value),
	)
	return v
}

// Draws returns how many values have been drawn through l.
func (l *LoggedSource) Draws() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}
