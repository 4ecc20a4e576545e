package startup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
}

func recorder(events *[]string, name string, requires ...string) *Dependency {
	return &Dependency{
		Name:     name,
		Requires: requires,
		OnStart: func(context.Context) error {
			*events = append(*events, "start:"+name)
			return nil
		},
		OnStop: func(context.Context) error {
			*events = append(*events, "stop:"+name)
			return nil
		},
	}
}

func TestStartupOrder(t *testing.T) {
	ctx := context.Background()
	var events []string

	s := NewStartup(testLogger(), 1)
	s.AddDependency(recorder(&events, "http", "cache", "events"))
	s.AddDependency(recorder(&events, "cache"))
	s.AddDependency(recorder(&events, "events"))

	require.NoError(t, s.Start(ctx))
	assert.Equal(t, []string{"start:cache", "start:events", "start:http"}, events)
	assert.Equal(t, StartupStatusStarted, s.Status("http"))

	events = nil
	require.NoError(t, s.Stop(ctx))
	assert.Equal(t, []string{"stop:http", "stop:events", "stop:cache"}, events)
	assert.Equal(t, StartupStatusStopped, s.Status("cache"))
}

func TestStartupRetries(t *testing.T) {
	ctx := context.Background()
	attempts := 0

	s := NewStartup(testLogger(), 3).WithBackoffUnit(time.Millisecond)
	s.AddDependency(&Dependency{
		Name: "flaky",
		OnStart: func(context.Context) error {
			attempts++
			if attempts < 2 {
				return errors.New("not yet")
			}
			return nil
		},
	})

	require.NoError(t, s.Start(ctx))
	assert.Equal(t, 2, attempts)
}

func TestStartupFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	s := NewStartup(testLogger(), 2).WithBackoffUnit(time.Millisecond)
	s.AddDependency(&Dependency{Name: "broken", OnStart: func(context.Context) error { return boom }})

	err := s.Start(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, StartupStatusFailed, s.Status("broken"))
}

func TestStartupUnknownDependency(t *testing.T) {
	s := NewStartup(testLogger(), 1)
	s.AddDependency(&Dependency{Name: "http", Requires: []string{"ghost"}})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dependency 'ghost'")
}

func TestStartupCycle(t *testing.T) {
	s := NewStartup(testLogger(), 1)
	s.AddDependency(&Dependency{Name: "a", Requires: []string{"b"}})
	s.AddDependency(&Dependency{Name: "b", Requires: []string{"a"}})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}
