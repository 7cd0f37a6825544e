package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/store"
)

const (
	snapshotVersion = 1
	snapshotsKept   = 5
)

// RestoreState loads the quiz state saved by the previous run. It always
// returns a usable state: a fresh one when nothing was saved or the saved
// state is unreadable, in which case the error says why.
func RestoreState(ctx context.Context, repo store.SnapshotRepo) (*quiz.State, error) {
	if repo == nil {
		return quiz.NewState(), nil
	}
	snap, err := repo.Latest(ctx)
	if err != nil {
		return quiz.NewState(), fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil || len(snap.Data.Quiz) == 0 {
		return quiz.NewState(), nil
	}
	if snap.Data.Version != snapshotVersion {
		return quiz.NewState(), fmt.Errorf("snapshot version %d not supported", snap.Data.Version)
	}
	st := quiz.NewState()
	if err := json.Unmarshal(snap.Data.Quiz, st); err != nil {
		return quiz.NewState(), fmt.Errorf("decode quiz state: %w", err)
	}
	return st, nil
}

// SaveState stores st as the latest snapshot and prunes old ones.
func SaveState(ctx context.Context, repo store.SnapshotRepo, st *quiz.State) error {
	if repo == nil || st == nil {
		return nil
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode quiz state: %w", err)
	}
	snap := &store.Snapshot{Data: store.SnapshotData{Version: snapshotVersion, Quiz: raw}}
	if err := repo.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := repo.Prune(ctx, snapshotsKept); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
