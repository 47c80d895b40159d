package tide

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogObserver(verbose bool) (*LogObserver, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return &LogObserver{Logger: logger, Verbose: verbose}, hook
}

func TestLogObserver_LifecycleEntries(t *testing.T) {
	obs, hook := newTestLogObserver(false)
	SetObserver(obs)
	t.Cleanup(func() { SetObserver(nil) })

	s := NewStore(0)
	require.NoError(t, s.Emit(1))
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Emit(2), ErrClosed)

	var messages []string
	for _, e := range hook.AllEntries() {
		messages = append(messages, e.Message)
	}
	// Non-verbose: no per-change entry.
	assert.Equal(t, []string{"container created", "container closed", "container error"}, messages)
}

func TestLogObserver_VerboseLogsChanges(t *testing.T) {
	obs, hook := newTestLogObserver(true)

	s := newStore("a")
	obs.OnChange(s, Change{Current: "a", Next: "b"})

	entries := hook.AllEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "state changed", entries[0].Message)
	assert.Equal(t, "a", entries[0].Data["current"])
	assert.Equal(t, "b", entries[0].Data["next"])
}

func TestLogObserver_ErrorEntryCarriesError(t *testing.T) {
	obs, hook := newTestLogObserver(false)

	reported := &Error{Op: "bloc.Add", Kind: KindUnhandled, Err: errors.New("no handler")}
	obs.OnError(newStore(0), reported)

	entries := hook.AllEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, logrus.ErrorLevel, entries[0].Level)
	assert.Equal(t, reported, entries[0].Data[logrus.ErrorKey])
}

func TestContainerLabel(t *testing.T) {
	s := newStore(0)
	assert.Contains(t, s.Label(), "Store")
	assert.Equal(t, s.Label(), containerLabel(s))
	assert.Equal(t, "int", containerLabel(7))
}
