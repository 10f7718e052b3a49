package handler

import (
	clubdomain "bookclub-go/internal/domain/club"
	notificationdomain "bookclub-go/internal/domain/notification"
	readerdomain "bookclub-go/internal/domain/reader"
	"bookclub-go/pkg/logger"
	"bookclub-go/pkg/token"

	"github.com/go-playground/validator/v10"
)

type Handlers struct {
	Readers       *readerdomain.Service
	Clubs         *clubdomain.Service
	Notifications *notificationdomain.Service

	tokens   *token.Manager
	validate *validator.Validate
	log      logger.Logger
}

func New(readers *readerdomain.Service, clubs *clubdomain.Service, notifications *notificationdomain.Service, tokens *token.Manager, log logger.Logger) *Handlers {
	return &Handlers{
		Readers:       readers,
		Clubs:         clubs,
		Notifications: notifications,
		tokens:        tokens,
		validate:      validator.New(),
		log:           log,
	}
}
