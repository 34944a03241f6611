package job

import (
	"fmt"
	"hash/fnv"
)

// SessionKey builds the executor key for a chat session. All turns for one
// (assistant, session) pair hash to the same shard and therefore stay FIFO.
func SessionKey(assistantID, sessionID string) string {
	return assistantID + "/" + sessionID
}

// ShardLabel hashes a session key to a stable small cardinality label (0-31).
func ShardLabel(key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return fmt.Sprintf("%d", h.Sum32()%32)
}
