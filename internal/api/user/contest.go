package user

import (
	"fmt"
	"net/http"
	"time"

	"github.com/codegrid/arena/internal/database"
	"github.com/codegrid/arena/internal/database/models"
	"github.com/codegrid/arena/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// lifecycleState derives a contest's phase from wall-clock time and the
// presence of a finalized leaderboard.
func lifecycleState(contest *models.Contest, finalized bool) string {
	now := time.Now()
	switch {
	case finalized:
		return "Finalized"
	case now.Before(contest.StartTime):
		return "NotStarted"
	case now.After(contest.EndTime):
		return "Ended"
	default:
		return "Active"
	}
}

func (h *Handler) getAllContests(c *gin.Context) {
	contests, err := database.GetAllContests(h.db)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, contests, "Contests loaded")
}

func (h *Handler) getContest(c *gin.Context) {
	contestID := c.Param("id")
	contest, err := database.GetContest(h.db, contestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, fmt.Errorf("contest not found"))
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	finalized, err := database.GetFinalizedLeaderboard(h.db, contestID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	// Hide problems (and their test data) until the contest starts. Hidden
	// test cases are never serialized to users at any point.
	if time.Now().Before(contest.StartTime) {
		contest.Problems = nil
	} else {
		for i := range contest.Problems {
			contest.Problems[i].TestCases = visibleOnly(contest.Problems[i].TestCases)
		}
	}

	util.Success(c, gin.H{
		"contest": contest,
		"state":   lifecycleState(contest, finalized != nil),
	}, "Contest found")
}

func visibleOnly(cases []models.TestCase) []models.TestCase {
	out := make([]models.TestCase, 0, len(cases))
	for _, tc := range cases {
		if !tc.Hidden {
			out = append(out, tc)
		}
	}
	return out
}

func (h *Handler) getContestLeaderboard(c *gin.Context) {
	contestID := c.Param("id")
	board, err := h.service.Leaderboard(contestID)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, board, "Leaderboard retrieved")
}

func (h *Handler) registerForContest(c *gin.Context) {
	userID := c.GetString("userID")
	contestID := c.Param("id")

	contest, err := database.GetContest(h.db, contestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, fmt.Errorf("contest not found"))
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	if time.Now().After(contest.EndTime) {
		util.Error(c, http.StatusForbidden, fmt.Errorf("contest has ended, cannot register"))
		return
	}

	if err := database.RegisterForContest(h.db, userID, contestID); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, nil, "Successfully registered for contest")
}

func (h *Handler) getContestHistory(c *gin.Context) {
	userID := c.GetString("userID")

	ids, err := database.GetUserContestIDs(h.db, userID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	type historyEntry struct {
		Contest *models.Contest `json:"contest"`
		Rank    int             `json:"rank"`
		Score   int             `json:"score"`
	}

	history := make([]historyEntry, 0, len(ids))
	for _, contestID := range ids {
		contest, err := database.GetContest(h.db, contestID)
		if err != nil {
			continue
		}
		contest.Problems = nil

		entry := historyEntry{Contest: contest}
		if board, err := h.service.Leaderboard(contestID); err == nil {
			for _, row := range board.Rankings {
				if row.UserID == userID {
					entry.Rank = row.Rank
					entry.Score = row.TotalScore
					break
				}
			}
		}
		history = append(history, entry)
	}

	util.Success(c, history, "Contest history retrieved")
}
