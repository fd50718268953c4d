package admin

import (
	"github.com/codegrid/arena/internal/api"
	"github.com/codegrid/arena/internal/config"
	"github.com/codegrid/arena/internal/contest"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewAdminRouter creates and configures the admin Gin engine. It is served on
// a separate listener and every route requires an admin JWT.
func NewAdminRouter(
	cfg *config.Config,
	db *gorm.DB,
	service *contest.Service) *gin.Engine {

	r := gin.Default()

	r.Use(api.CORSMiddleware(cfg.CORS))

	h := NewHandler(cfg, db, service)

	v1 := r.Group("/api/v1")
	v1.Use(api.AuthMiddleware(cfg.Auth.JWT.Secret), api.AdminMiddleware())
	{
		contests := v1.Group("/contests")
		{
			contests.GET("", h.getAllContests)
			contests.POST("", h.createContest)
			contests.GET("/:id", h.getContest)
			contests.PUT("/:id", h.updateContest)
			contests.DELETE("/:id", h.deleteContest)

			contests.POST("/:id/problems", h.addProblem)
			contests.DELETE("/:id/problems/:pid", h.deleteProblem)

			contests.POST("/:id/finalize", h.finalizeContest)
		}

		v1.GET("/submissions", h.getAllSubmissions)
	}

	return r
}
