package admin

import (
	"github.com/codegrid/arena/internal/config"
	"github.com/codegrid/arena/internal/contest"
	"gorm.io/gorm"
)

// Handler holds all dependencies for the admin API handlers.
type Handler struct {
	cfg     *config.Config
	db      *gorm.DB
	service *contest.Service
}

func NewHandler(cfg *config.Config, db *gorm.DB, service *contest.Service) *Handler {
	return &Handler{
		cfg:     cfg,
		db:      db,
		service: service,
	}
}
