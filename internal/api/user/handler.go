package user

import (
	"github.com/codegrid/arena/internal/config"
	"github.com/codegrid/arena/internal/contest"
	"github.com/codegrid/arena/internal/pubsub"
	"gorm.io/gorm"
)

// Handler holds all dependencies for the user API handlers.
type Handler struct {
	cfg     *config.Config
	db      *gorm.DB
	service *contest.Service
	broker  *pubsub.Broker
}

// NewHandler creates a new user handler with its dependencies.
func NewHandler(
	cfg *config.Config,
	db *gorm.DB,
	service *contest.Service,
	broker *pubsub.Broker,
) *Handler {
	return &Handler{
		cfg:     cfg,
		db:      db,
		service: service,
		broker:  broker,
	}
}
