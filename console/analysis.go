package console

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/teamoptimus/voicebot/client"
	"github.com/teamoptimus/voicebot/session"
	"github.com/teamoptimus/voicebot/store"
)

// SessionSource is the slice of the session store the analysis view reads.
type SessionSource interface {
	RecentSessions(ctx context.Context, assistantID string, limit int) ([]store.SessionRow, error)
}

// recentSessionLimit bounds the per-assistant session scan.
const recentSessionLimit = 10

// SentimentRow is one rendered table row. Key is the stable composite
// identity (session id + row creation time); Err is set when that session's
// sentiment fetch failed and the rest of the table is still usable.
type SentimentRow struct {
	Key          string
	SessionID    string
	CreatedAt    time.Time
	Sentiment    string
	MessageCount int
	Err          error
}

// AnalysisPanel drives the session-sentiment view: assistants on the left,
// per-session sentiment on the right.
type AnalysisPanel struct {
	api      *client.Client
	sessions SessionSource
	mgr      *session.Manager

	mu         sync.Mutex
	assistants []client.Assistant
	selected   string
	rows       []SentimentRow
}

// NewAnalysisPanel wires the controller to the SDK, the session store, and
// the session manager.
func NewAnalysisPanel(api *client.Client, sessions SessionSource, mgr *session.Manager) *AnalysisPanel {
	return &AnalysisPanel{api: api, sessions: sessions, mgr: mgr}
}

// LoadAssistants fetches the signed-in user's assistants (backend API path).
func (p *AnalysisPanel) LoadAssistants(ctx context.Context) error {
	snap := p.mgr.Current()
	if !snap.Authenticated() {
		return ErrNotSignedIn
	}
	assistants, err := p.api.ListAssistants(ctx, snap.User.UserID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.assistants = assistants
	p.mu.Unlock()
	return nil
}

// Assistants returns a copy of the loaded list.
func (p *AnalysisPanel) Assistants() []client.Assistant {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]client.Assistant, len(p.assistants))
	copy(out, p.assistants)
	return out
}

// Filter applies the sidebar search.
func (p *AnalysisPanel) Filter(query string) []client.Assistant {
	return FilterAssistants(p.Assistants(), query)
}

// Load selects an assistant and fills the table: recent sessions from the
// store, then one sentiment fetch per session fanned out in parallel.
// Individual failures land in their row's Err field; partial data renders.
func (p *AnalysisPanel) Load(ctx context.Context, assistantID string) error {
	refs, err := p.sessionRefs(ctx, assistantID)
	if err != nil {
		return err
	}

	results := p.api.SentimentBatch(ctx, assistantID, refs)
	rows := rowsFromResults(results)

	p.mu.Lock()
	p.selected = assistantID
	p.rows = rows
	p.mu.Unlock()
	return nil
}

// LoadStrict is the all-or-nothing variant: if any single sentiment fetch
// fails the table is left with zero rows and the batch error is returned.
func (p *AnalysisPanel) LoadStrict(ctx context.Context, assistantID string) error {
	refs, err := p.sessionRefs(ctx, assistantID)
	if err != nil {
		return err
	}

	results, err := p.api.SentimentBatchStrict(ctx, assistantID, refs)
	if err != nil {
		log.Warn().Err(err).Str("assistant_id", assistantID).Msg("sentiment batch failed")
		p.mu.Lock()
		p.selected = assistantID
		p.rows = nil
		p.mu.Unlock()
		return err
	}

	p.mu.Lock()
	p.selected = assistantID
	p.rows = rowsFromResults(results)
	p.mu.Unlock()
	return nil
}

// Rows returns a copy of the current table.
func (p *AnalysisPanel) Rows() []SentimentRow {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SentimentRow, len(p.rows))
	copy(out, p.rows)
	return out
}

// Selected returns the selected assistant id, or "".
func (p *AnalysisPanel) Selected() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

func (p *AnalysisPanel) sessionRefs(ctx context.Context, assistantID string) ([]client.SessionRef, error) {
	if assistantID == "" {
		return nil, ErrNoAssistant
	}
	rows, err := p.sessions.RecentSessions(ctx, assistantID, recentSessionLimit)
	if err != nil {
		return nil, err
	}
	refs := make([]client.SessionRef, len(rows))
	for i, row := range rows {
		refs[i] = client.SessionRef{SessionID: row.SessionID, CreatedAt: row.CreatedAt}
	}
	return refs, nil
}

func rowsFromResults(results []client.SentimentResult) []SentimentRow {
	rows := make([]SentimentRow, len(results))
	for i, res := range results {
		rows[i] = SentimentRow{
			Key:       res.Ref.Key(),
			SessionID: res.Ref.SessionID,
			CreatedAt: res.Ref.CreatedAt,
			Err:       res.Err,
		}
		if res.Sentiment != nil {
			rows[i].Sentiment = res.Sentiment.Sentiment
			rows[i].MessageCount = res.Sentiment.MessageCount
		}
	}
	return rows
}
