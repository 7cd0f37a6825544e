package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Session actions.
const (
	ActionStart = "start"
	ActionEnd   = "end"
)

// SessionEventData records the start or end of a quiz session.
type SessionEventData struct {
	SessionID       string
	Action          string
	Category        string
	Difficulty      string
	QuestionsServed int
	CorrectAnswers  int
	DurationSecs    int
}

// SessionSummary is a finished quiz session.
type SessionSummary struct {
	SessionID       string
	Timestamp       time.Time
	Category        string
	Difficulty      string
	QuestionsServed int
	CorrectAnswers  int
	DurationSecs    int
}

// AnswerEventData records one scored submission.
type AnswerEventData struct {
	SessionID     string
	Word          string
	English       string
	Category      string
	Difficulty    string
	OptionCount   int
	CorrectChoice string
	Chosen        string
	Correct       bool
	LatencyMs     int64
}

// CategoryStats is the all-time tally for one category.
type CategoryStats struct {
	Category string `db:"category"`
	Attempts int    `db:"attempts"`
	Correct  int    `db:"correct"`
}

// AnswerStats is the all-time answer tally.
type AnswerStats struct {
	Attempts   int
	Correct    int
	Sessions   int
	Categories []CategoryStats
}

// MissedWord is a word answered wrongly at least once.
type MissedWord struct {
	Word     string `db:"word"`
	English  string `db:"english"`
	Category string `db:"category"`
	Misses   int    `db:"misses"`
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose.
type PurposeUsage struct {
	Purpose      string `db:"purpose"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	AvgLatencyMs int64  `db:"avg_latency_ms"`
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string `db:"model"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
}

// EventRepo provides append and query access to events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QuerySessionSummaries returns finished sessions, newest first.
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummary, error)

	// AnswerStats returns all-time totals with a per-category breakdown.
	AnswerStats(ctx context.Context) (*AnswerStats, error)

	// MostMissed returns the words answered wrongly most often.
	MostMissed(ctx context.Context, limit int) ([]MissedWord, error)

	// ResetProgress deletes all session and answer events.
	ResetProgress(ctx context.Context) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event by ID, or nil if absent.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// SnapshotData captures resumable learner state. Quiz holds a serialized
// quiz state.
type SnapshotData struct {
	Version int             `json:"version"`
	Quiz    json.RawMessage `json:"quiz,omitempty"`
}

// Snapshot represents a point-in-time capture of learner state.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages learner state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error

	// Clear deletes every snapshot.
	Clear(ctx context.Context) error
}

// eventRepo implements EventRepo on sqlx and the global sequence counter.
type eventRepo struct {
	db  *sqlx.DB
	seq *sequenceCounter
}

// where builds the shared sequence/time filter for an event table.
func (o QueryOpts) where() (string, []any) {
	clause := " WHERE 1=1"
	var args []any
	if o.After > 0 {
		clause += " AND sequence > ?"
		args = append(args, o.After)
	}
	if o.Before > 0 {
		clause += " AND sequence < ?"
		args = append(args, o.Before)
	}
	if !o.From.IsZero() {
		clause += " AND ts >= ?"
		args = append(args, o.From.UnixMilli())
	}
	if !o.To.IsZero() {
		clause += " AND ts <= ?"
		args = append(args, o.To.UnixMilli())
	}
	return clause, args
}

func (o QueryOpts) limit() string {
	if o.Limit > 0 {
		return " LIMIT " + strconv.Itoa(o.Limit)
	}
	return ""
}
