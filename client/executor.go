package client

import (
	"context"

	"github.com/teamoptimus/voicebot/client/internal/shardqueue"
)

// executor abstracts the internal async job runner used by async turn APIs.
type executor interface {
	Submit(context.Context, string, shardqueue.Job) error
	Stop()
}

type noOpExecutor struct{}

func (noOpExecutor) Submit(context.Context, string, shardqueue.Job) error {
	panic("attempted to use async operation (SubmitChat/AwaitTurns) on sync-only client")
}
func (noOpExecutor) Stop() {}

// ExecutorConfig re-exports the shard executor tunables for callers that
// want to size the queue without importing internal packages.
type ExecutorConfig = shardqueue.Config

func newExecutorFromConfig(cfg ExecutorConfig) *shardqueue.ShardExecutor {
	return shardqueue.NewShardExecutor(cfg)
}
