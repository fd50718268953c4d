package user

import (
	"fmt"
	"net/http"

	"github.com/codegrid/arena/internal/database"
	"github.com/codegrid/arena/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type submitRequest struct {
	Code     string `json:"code" binding:"required"`
	Language string `json:"language" binding:"required"`
}

func (h *Handler) submitToContestProblem(c *gin.Context) {
	userID := c.GetString("userID")
	contestID := c.Param("id")
	problemID := c.Param("pid")

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	submissionID, err := h.service.Submit(c.Request.Context(), userID, contestID, problemID, req.Code, req.Language)
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, gin.H{"submission_id": submissionID}, "Submission received")
}

func (h *Handler) submitPractice(c *gin.Context) {
	userID := c.GetString("userID")
	problemID := c.Param("pid")

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	submissionID, err := h.service.SubmitPractice(c.Request.Context(), userID, problemID, req.Code, req.Language)
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, gin.H{"submission_id": submissionID}, "Practice submission received")
}

// runAgainstProblem executes code against a problem's visible tests and
// returns the outcome synchronously. Nothing is persisted.
func (h *Handler) runAgainstProblem(c *gin.Context) {
	problemID := c.Param("pid")

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	outcome, err := h.service.DryRun(c.Request.Context(), problemID, req.Code, req.Language)
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, outcome, "Run finished")
}

func (h *Handler) getProblemSubmissions(c *gin.Context) {
	userID := c.GetString("userID")
	contestID := c.Param("id")
	problemID := c.Param("pid")

	subs, err := database.GetUserProblemSubmissions(h.db, userID, contestID, problemID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, subs, "ok")
}

func (h *Handler) getUserSubmission(c *gin.Context) {
	subID := c.Param("id")
	userID := c.GetString("userID")

	sub, err := database.GetSubmission(h.db, subID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "submission not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	if sub.UserID != userID {
		util.Error(c, http.StatusForbidden, fmt.Errorf("you can only view your own submissions"))
		return
	}
	util.Success(c, sub, "ok")
}
