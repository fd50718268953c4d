package contest

import (
	"context"
	"fmt"
	"time"

	"github.com/codegrid/arena/internal/apperrors"
	"github.com/codegrid/arena/internal/database"
	"github.com/codegrid/arena/internal/scoring"
	"gorm.io/gorm"
)

// DryRun executes code against a problem's visible test cases and returns the
// scored outcome directly. Nothing is persisted: no submission record, no
// solved-state change, no leaderboard effect. It is pure feedback for the
// author, so it waits for the judge synchronously.
func (s *Service) DryRun(ctx context.Context, problemID, code, language string) (*scoring.Outcome, error) {
	problem, err := database.GetProblem(s.db, problemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: problem %s", apperrors.ErrNotFound, problemID)
		}
		return nil, err
	}

	if code == "" {
		return nil, fmt.Errorf("%w: empty source code", apperrors.ErrValidation)
	}

	cases := visibleTests(problem)
	if len(cases) == 0 {
		return nil, fmt.Errorf("%w: problem has no visible test cases", apperrors.ErrValidation)
	}

	results, err := s.runTests(ctx, code, language, cases)
	if err != nil {
		return nil, err
	}

	// Dry runs are scored without a contest window: no time bonus, just the
	// verdict and partial-credit arithmetic.
	outcome := scoring.Score(problem.Difficulty, nil, time.Now(), results)
	return &outcome, nil
}
