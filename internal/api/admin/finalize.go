package admin

import (
	"github.com/codegrid/arena/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// finalizeContest freezes a contest's leaderboard on demand. It runs the same
// code path as the scheduled sweep, so finalizing an already-finalized contest
// comes back as a conflict rather than a second snapshot.
func (h *Handler) finalizeContest(c *gin.Context) {
	contestID := c.Param("id")

	board, err := h.service.Finalize(contestID)
	if err != nil {
		util.Fail(c, err)
		return
	}

	zap.S().Infof("admin finalized contest '%s'", contestID)
	util.Success(c, board, "Leaderboard finalized")
}
