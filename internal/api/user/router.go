package user

import (
	"github.com/codegrid/arena/internal/api"
	"github.com/codegrid/arena/internal/config"
	"github.com/codegrid/arena/internal/contest"
	"github.com/codegrid/arena/internal/pubsub"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewUserRouter creates and configures the user Gin engine.
func NewUserRouter(
	cfg *config.Config,
	db *gorm.DB,
	service *contest.Service,
	broker *pubsub.Broker) *gin.Engine {

	r := gin.Default()

	r.Use(api.CORSMiddleware(cfg.CORS))

	h := NewHandler(cfg, db, service, broker)

	v1 := r.Group("/api/v1")
	{
		// Auth
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.register)
			authGroup.POST("/login", h.login)
		}

		// Websocket leaderboard stream with token authorization
		v1.GET("/ws/contests/:id/leaderboard", h.handleLeaderboardWs)

		// Publicly accessible info
		v1.GET("/contests", h.getAllContests)
		v1.GET("/contests/:id", h.getContest)
		v1.GET("/contests/:id/leaderboard", h.getContestLeaderboard)
		v1.GET("/users/:id", h.getPublicUserProfile)

		// Authenticated routes
		authed := v1.Group("/")
		authed.Use(api.AuthMiddleware(cfg.Auth.JWT.Secret))
		{
			authed.GET("/user/profile", h.getUserProfile)
			authed.GET("/user/contests", h.getContestHistory)

			// Contest
			authed.POST("/contests/:id/register", h.registerForContest)

			// Scored submissions and unscored dry runs
			authed.POST("/contests/:id/problems/:pid/submit", h.submitToContestProblem)
			authed.POST("/contests/:id/problems/:pid/run", h.runAgainstProblem)
			authed.GET("/contests/:id/problems/:pid/submissions", h.getProblemSubmissions)

			// Practice (no contest window, no leaderboard)
			authed.POST("/problems/:pid/submit", h.submitPractice)

			authed.GET("/submissions/:id", h.getUserSubmission)
		}
	}

	return r
}
