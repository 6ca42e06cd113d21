package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yumyai/ggderep/pkg/derep"
)

// Reporter writes dereplication events to a zap logger. Progress ticks are
// summed and logged at debug level once every `every` pairs.
type Reporter struct {
	log   *zap.Logger
	every int

	mu      sync.Mutex
	pairs   int
	flushed int
}

func NewReporter(log *zap.Logger, every int) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	if every <= 0 {
		every = 100000
	}
	return &Reporter{log: log, every: every}
}

func (r *Reporter) Log(e derep.Event) {
	fields := make([]zap.Field, 0, len(e.Fields))
	for _, f := range e.Fields {
		fields = append(fields, zap.Any(f.Key, f.Value))
	}
	if ce := r.log.Check(level(e.Level), e.Msg); ce != nil {
		ce.Write(fields...)
	}
}

func (r *Reporter) Tick(n int) {
	r.mu.Lock()
	r.pairs += n
	due := r.pairs-r.flushed >= r.every
	if due {
		r.flushed = r.pairs
	}
	total := r.pairs
	r.mu.Unlock()

	if due {
		r.log.Debug("Comparing genome pairs", zap.Int("pairs_scanned", total))
	}
}

// Pairs returns the number of pairs ticked so far.
func (r *Reporter) Pairs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pairs
}

func level(l derep.Level) zapcore.Level {
	switch l {
	case derep.LevelDebug:
		return zapcore.DebugLevel
	case derep.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
