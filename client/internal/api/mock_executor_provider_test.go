package api

import (
	"context"

	"github.com/teamoptimus/voicebot/client/internal/shardqueue"
)

// mockExec records Submit calls and runs jobs inline.
type mockExec struct {
	calls []string
	n     int
}

func (m *mockExec) Submit(ctx context.Context, key string, j shardqueue.Job) error {
	m.calls = append(m.calls, key)
	m.n++
	return j.Run(ctx)
}
