package contest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/codegrid/arena/internal/apperrors"
	"github.com/codegrid/arena/internal/database"
	"github.com/codegrid/arena/internal/database/models"
	"github.com/codegrid/arena/internal/leaderboard"
	"github.com/codegrid/arena/internal/pubsub"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Finalize freezes a contest's leaderboard into the one immutable snapshot.
// The scheduled sweep and the admin endpoint both come through here, and the
// unique index behind SaveFinalizedLeaderboard guarantees that when they race
// only one snapshot is ever written; the loser sees ErrAlreadyFinalized.
func (s *Service) Finalize(contestID string) (*leaderboard.Board, error) {
	contest, err := database.GetContest(s.db, contestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: contest %s", apperrors.ErrNotFound, contestID)
		}
		return nil, err
	}
	if time.Now().Before(contest.EndTime) {
		return nil, fmt.Errorf("%w: contest has not ended yet", apperrors.ErrContestWindow)
	}

	board, err := s.computeBoard(contestID)
	if err != nil {
		return nil, err
	}
	board.IsFinalized = true
	board.LastUpdated = time.Now()

	rankings, err := json.Marshal(board.Rankings)
	if err != nil {
		return nil, err
	}
	record := models.Leaderboard{
		ContestID:   contestID,
		Rankings:    models.JSONText(rankings),
		IsFinalized: true,
		LastUpdated: board.LastUpdated,
	}
	if err := database.SaveFinalizedLeaderboard(s.db, &record); err != nil {
		return nil, err
	}

	s.cache.Invalidate(contestID)
	s.broker.Publish(contestID, pubsub.Event{
		Kind:      pubsub.KindLeaderboardUpdate,
		ContestID: contestID,
		Payload:   board,
	})

	zap.S().Infof("finalized leaderboard for contest %s with %d entries", contestID, len(board.Rankings))
	return board, nil
}

// RunFinalizer sweeps for ended, unfinalized contests on a fixed period and
// finalizes each one. The sweep is idempotent per contest: a concurrent manual
// finalize just makes this pass a no-op.
func (s *Service) RunFinalizer(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Finalizer.Interval.Std())
	defer ticker.Stop()

	zap.S().Infof("finalization sweep running every %s", s.cfg.Finalizer.Interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Service) sweep() {
	contests, err := database.GetEndedContestsWithoutLeaderboard(s.db, time.Now())
	if err != nil {
		zap.S().Errorf("finalization sweep failed to list contests: %v", err)
		return
	}

	for _, contest := range contests {
		if _, err := s.Finalize(contest.ID); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyFinalized) {
				continue
			}
			zap.S().Errorf("failed to finalize contest %s: %v", contest.ID, err)
		}
	}
}
