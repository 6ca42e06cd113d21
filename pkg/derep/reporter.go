package derep

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
)

type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Event is one message of a run.
type Event struct {
	Level  Level
	Msg    string
	Fields []Field
}

// Reporter receives run events and progress. Tick is called with the number
// of genome pairs scanned since the previous call.
type Reporter interface {
	Log(Event)
	Tick(n int)
}

type NopReporter struct{}

func (NopReporter) Log(Event) {}
func (NopReporter) Tick(int)  {}
