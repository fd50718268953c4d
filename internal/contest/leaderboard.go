package contest

import (
	"encoding/json"
	"fmt"

	"github.com/codegrid/arena/internal/apperrors"
	"github.com/codegrid/arena/internal/database"
	"github.com/codegrid/arena/internal/leaderboard"
	"gorm.io/gorm"
)

// Leaderboard returns the contest's ranking. Once a contest is finalized the
// stored snapshot is served verbatim; before that the board is recomputed from
// the submission log (behind a short-lived cache) on every read.
func (s *Service) Leaderboard(contestID string) (*leaderboard.Board, error) {
	finalized, err := database.GetFinalizedLeaderboard(s.db, contestID)
	if err != nil {
		return nil, err
	}
	if finalized != nil {
		var rankings []leaderboard.Entry
		if err := json.Unmarshal(finalized.Rankings, &rankings); err != nil {
			return nil, fmt.Errorf("%w: corrupt finalized rankings for contest %s: %v",
				apperrors.ErrInternal, contestID, err)
		}
		return &leaderboard.Board{
			ContestID:   contestID,
			Rankings:    rankings,
			IsFinalized: true,
			LastUpdated: finalized.LastUpdated,
		}, nil
	}

	if board, ok := s.cache.Get(contestID); ok {
		return board, nil
	}

	board, err := s.computeBoard(contestID)
	if err != nil {
		return nil, err
	}
	s.cache.Put(contestID, board)
	return board, nil
}

// computeBoard folds the contest's submissions into a fresh live board and
// decorates the entries with display names.
func (s *Service) computeBoard(contestID string) (*leaderboard.Board, error) {
	if _, err := database.GetContest(s.db, contestID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: contest %s", apperrors.ErrNotFound, contestID)
		}
		return nil, err
	}

	subs, err := database.GetSubmissionsForContest(s.db, contestID)
	if err != nil {
		return nil, err
	}

	board := leaderboard.Aggregate(contestID, subs)

	userIDs := make([]string, 0, len(board.Rankings))
	for _, entry := range board.Rankings {
		userIDs = append(userIDs, entry.UserID)
	}
	users, err := database.GetUsersByIDs(s.db, userIDs)
	if err != nil {
		return nil, err
	}
	for i := range board.Rankings {
		if u, ok := users[board.Rankings[i].UserID]; ok {
			board.Rankings[i].Username = u.Username
			board.Rankings[i].Nickname = u.Nickname
		}
	}

	return board, nil
}
