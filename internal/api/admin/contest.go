package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/codegrid/arena/internal/database"
	"github.com/codegrid/arena/internal/database/models"
	"github.com/codegrid/arena/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type contestRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
}

// getAllContests returns every contest with full details, regardless of state.
func (h *Handler) getAllContests(c *gin.Context) {
	contests, err := database.GetAllContests(h.db)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, contests, "All contests retrieved")
}

func (h *Handler) getContest(c *gin.Context) {
	contest, err := database.GetContest(h.db, c.Param("id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "contest not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, contest, "Contest details retrieved")
}

func (h *Handler) createContest(c *gin.Context) {
	var req contestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}
	if !req.EndTime.After(req.StartTime) {
		util.Error(c, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	contest := models.Contest{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if err := database.CreateContest(h.db, &contest); err != nil {
		util.Error(c, http.StatusInternalServerError, fmt.Errorf("failed to create contest: %w", err))
		return
	}

	zap.S().Infof("admin created contest '%s' (%s)", contest.Name, contest.ID)
	util.Success(c, contest, "Contest created")
}

func (h *Handler) updateContest(c *gin.Context) {
	contestID := c.Param("id")

	contest, err := database.GetContest(h.db, contestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "contest not found")
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
	if finalized != nil {
		util.Error(c, http.StatusConflict, "contest is finalized and can no longer be modified")
		return
	}

	var req contestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}
	if !req.EndTime.After(req.StartTime) {
		util.Error(c, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	contest.Name = req.Name
	contest.Description = req.Description
	contest.StartTime = req.StartTime
	contest.EndTime = req.EndTime

	if err := database.UpdateContest(h.db, contest); err != nil {
		util.Error(c, http.StatusInternalServerError, fmt.Errorf("failed to update contest: %w", err))
		return
	}

	zap.S().Infof("admin updated contest '%s'", contestID)
	util.Success(c, contest, "Contest updated")
}

func (h *Handler) deleteContest(c *gin.Context) {
	contestID := c.Param("id")

	if _, err := database.GetContest(h.db, contestID); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "contest not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	if err := database.DeleteContest(h.db, contestID); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	zap.S().Infof("admin deleted contest '%s'", contestID)
	util.Success(c, nil, "Contest deleted")
}

type problemRequest struct {
	Title      string            `json:"title" binding:"required"`
	Statement  string            `json:"statement"`
	Difficulty models.Difficulty `json:"difficulty" binding:"required,oneof=easy medium hard"`
	TestCases  []struct {
		Stdin          string `json:"stdin"`
		ExpectedOutput string `json:"expected_output" binding:"required"`
		Hidden         bool   `json:"hidden"`
	} `json:"test_cases" binding:"required,min=1"`
}

func (h *Handler) addProblem(c *gin.Context) {
	contestID := c.Param("id")

	if _, err := database.GetContest(h.db, contestID); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "contest not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	var req problemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	problem := models.Problem{
		ID:         uuid.NewString(),
		ContestID:  contestID,
		Title:      req.Title,
		Statement:  req.Statement,
		Difficulty: req.Difficulty,
	}
	for _, tc := range req.TestCases {
		problem.TestCases = append(problem.TestCases, models.TestCase{
			Stdin:          tc.Stdin,
			ExpectedOutput: tc.ExpectedOutput,
			Hidden:         tc.Hidden,
		})
	}

	if err := database.CreateProblem(h.db, &problem); err != nil {
		util.Error(c, http.StatusInternalServerError, fmt.Errorf("failed to create problem: %w", err))
		return
	}

	zap.S().Infof("admin added problem '%s' to contest '%s'", problem.ID, contestID)
	util.Success(c, problem, "Problem created")
}

func (h *Handler) deleteProblem(c *gin.Context) {
	if err := database.DeleteProblem(h.db, c.Param("pid")); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, nil, "Problem deleted")
}

func (h *Handler) getAllSubmissions(c *gin.Context) {
	subs, err := database.GetAllSubmissions(h.db)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, subs, "ok")
}
