package app

import (
	"net/http"

	"bookclub-go/internal/config"
	"bookclub-go/internal/db"
	clubdomain "bookclub-go/internal/domain/club"
	notificationdomain "bookclub-go/internal/domain/notification"
	readerdomain "bookclub-go/internal/domain/reader"
	clubrepo "bookclub-go/internal/repository/postgres/club"
	notificationrepo "bookclub-go/internal/repository/postgres/notification"
	readerrepo "bookclub-go/internal/repository/postgres/reader"
	"bookclub-go/internal/transport/httpserver"
	"bookclub-go/internal/transport/httpserver/handler"
	"bookclub-go/pkg/logger"
	"bookclub-go/pkg/token"

	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: applying migrations")
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	notifications := notificationdomain.NewService(notificationrepo.NewPostgres(dbConn))
	readers := readerdomain.NewService(readerrepo.NewPostgres(dbConn), notifications, cfg.Auth.BcryptCost)
	clubs := clubdomain.NewService(clubrepo.NewPostgres(dbConn), notifications)

	tokens := token.NewManager(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	log.Info("app: initializing router")
	handlers := handler.New(readers, clubs, notifications, tokens, log)
	router := httpserver.NewRouter(handlers, tokens)

	return &App{
		cfg:        cfg,
		httpServer: httpserver.New(cfg, router),
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
