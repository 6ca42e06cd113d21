package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yumyai/ggderep/pkg/derep"
)

func TestReporterLogsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewReporter(zap.New(core), 10)

	r.Log(derep.Event{
		Level:  derep.LevelWarn,
		Msg:    "weak hits removed",
		Fields: []derep.Field{derep.F("run_id", "abc"), derep.F("removed", 2)},
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "weak hits removed", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "abc", ctx["run_id"])
	assert.EqualValues(t, 2, ctx["removed"])
}

func TestReporterAggregatesTicks(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewReporter(zap.New(core), 10)

	for i := 0; i < 4; i++ {
		r.Tick(3)
	}
	assert.Equal(t, 12, r.Pairs())
	assert.Equal(t, 1, logs.FilterMessage("Comparing genome pairs").Len())
}

func TestReporterRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewReporter(zap.New(core), 1)

	r.Log(derep.Event{Level: derep.LevelDebug, Msg: "hidden"})
	r.Tick(5)
	r.Log(derep.Event{Level: derep.LevelInfo, Msg: "shown"})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}

func TestNewLogger(t *testing.T) {
	l, err := New(zapcore.WarnLevel)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	require.NoError(t, InitLogger(zapcore.InfoLevel))
	assert.NotNil(t, L())
}
