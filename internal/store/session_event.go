package store

import (
	"context"
	"fmt"
	"time"
)

type sessionEventRow struct {
	ID              int    `db:"id"`
	Sequence        int64  `db:"sequence"`
	Ts              int64  `db:"ts"`
	SessionID       string `db:"session_id"`
	Action          string `db:"action"`
	Category        string `db:"category"`
	Difficulty      string `db:"difficulty"`
	QuestionsServed int    `db:"questions_served"`
	CorrectAnswers  int    `db:"correct_answers"`
	DurationSecs    int    `db:"duration_secs"`
}

type answerEventRow struct {
	Sequence      int64  `db:"sequence"`
	Ts            int64  `db:"ts"`
	SessionID     string `db:"session_id"`
	Word          string `db:"word"`
	English       string `db:"english"`
	Category      string `db:"category"`
	Difficulty    string `db:"difficulty"`
	OptionCount   int    `db:"option_count"`
	CorrectChoice string `db:"correct_choice"`
	Chosen        string `db:"chosen"`
	Correct       bool   `db:"correct"`
	LatencyMs     int64  `db:"latency_ms"`
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	row := sessionEventRow{
		Sequence:        seqNum,
		Ts:              time.Now().UnixMilli(),
		SessionID:       data.SessionID,
		Action:          data.Action,
		Category:        data.Category,
		Difficulty:      data.Difficulty,
		QuestionsServed: data.QuestionsServed,
		CorrectAnswers:  data.CorrectAnswers,
		DurationSecs:    data.DurationSecs,
	}
	_, err = r.db.NamedExecContext(ctx, `INSERT INTO session_events
		(sequence, ts, session_id, action, category, difficulty, questions_served, correct_answers, duration_secs)
		VALUES (:sequence, :ts, :session_id, :action, :category, :difficulty, :questions_served, :correct_answers, :duration_secs)`,
		row)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	row := answerEventRow{
		Sequence:      seqNum,
		Ts:            time.Now().UnixMilli(),
		SessionID:     data.SessionID,
		Word:          data.Word,
		English:       data.English,
		Category:      data.Category,
		Difficulty:    data.Difficulty,
		OptionCount:   data.OptionCount,
		CorrectChoice: data.CorrectChoice,
		Chosen:        data.Chosen,
		Correct:       data.Correct,
		LatencyMs:     data.LatencyMs,
	}
	_, err = r.db.NamedExecContext(ctx, `INSERT INTO answer_events
		(sequence, ts, session_id, word, english, category, difficulty, option_count, correct_choice, chosen, correct, latency_ms)
		VALUES (:sequence, :ts, :session_id, :word, :english, :category, :difficulty, :option_count, :correct_choice, :chosen, :correct, :latency_ms)`,
		row)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummary, error) {
	where, args := opts.where()
	where += " AND action = ?"
	args = append(args, ActionEnd)

	var rows []sessionEventRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM session_events"+where+" ORDER BY sequence DESC"+opts.limit(), args...)
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}

	out := make([]SessionSummary, len(rows))
	for i, row := range rows {
		out[i] = SessionSummary{
			SessionID:       row.SessionID,
			Timestamp:       time.UnixMilli(row.Ts),
			Category:        row.Category,
			Difficulty:      row.Difficulty,
			QuestionsServed: row.QuestionsServed,
			CorrectAnswers:  row.CorrectAnswers,
			DurationSecs:    row.DurationSecs,
		}
	}
	return out, nil
}

func (r *eventRepo) AnswerStats(ctx context.Context) (*AnswerStats, error) {
	stats := &AnswerStats{}

	err := r.db.QueryRowxContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(correct), 0) FROM answer_events`,
	).Scan(&stats.Attempts, &stats.Correct)
	if err != nil {
		return nil, fmt.Errorf("query answer totals: %w", err)
	}

	err = r.db.GetContext(ctx, &stats.Sessions,
		`SELECT COUNT(DISTINCT session_id) FROM answer_events`)
	if err != nil {
		return nil, fmt.Errorf("query session count: %w", err)
	}

	err = r.db.SelectContext(ctx, &stats.Categories, `SELECT
			category,
			COUNT(*) AS attempts,
			COALESCE(SUM(correct), 0) AS correct
		FROM answer_events
		GROUP BY category
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query category stats: %w", err)
	}
	return stats, nil
}

func (r *eventRepo) MostMissed(ctx context.Context, limit int) ([]MissedWord, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []MissedWord
	err := r.db.SelectContext(ctx, &out, `SELECT
			word, english, category, COUNT(*) AS misses
		FROM answer_events
		WHERE correct = 0
		GROUP BY word, english, category
		ORDER BY misses DESC, MAX(sequence) DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query missed words: %w", err)
	}
	return out, nil
}

func (r *eventRepo) ResetProgress(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"answer_events", "session_events"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
