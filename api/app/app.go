package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Astemirdum/bookshelf/api/config"
	"github.com/Astemirdum/bookshelf/api/internal/events"
	"github.com/Astemirdum/bookshelf/api/internal/handler"
	"github.com/Astemirdum/bookshelf/api/internal/repository"
	"github.com/Astemirdum/bookshelf/api/internal/server"
	"github.com/Astemirdum/bookshelf/api/internal/service"
	"github.com/Astemirdum/bookshelf/api/migrations"
	"github.com/Astemirdum/bookshelf/pkg/auth"
	"github.com/Astemirdum/bookshelf/pkg/kafka"
	"github.com/Astemirdum/bookshelf/pkg/logger"
	md "github.com/Astemirdum/bookshelf/pkg/middleware"
	"github.com/Astemirdum/bookshelf/pkg/postgres"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "bookshelf")
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return errors.Wrap(err, "db init")
	}
	defer db.Close()

	tokens, err := auth.NewTokens(cfg.Auth)
	if err != nil {
		return errors.Wrap(err, "tokens")
	}

	pub, closePub, err := newPublisher(cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closePub()

	users := repository.NewUsers(db, log)
	userSvc := service.NewUsers(users, pub, log)
	bookSvc := service.NewBooks(repository.NewBooks(db, log), pub, log)
	authSvc := service.NewAuth(users, tokens, log)

	if !cfg.IsProd() {
		if err := seedUsers(ctx, userSvc); err != nil {
			return err
		}
	}

	h := handler.New(bookSvc, userSvc, authSvc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter(handler.RouterConfig{
		DisableSwagger: cfg.DisableSwagger,
		Session:        md.Session(db),
	}))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server start ON: ", zap.String("addr", srv.Addr()))
		return srv.Run()
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("Graceful shutdown")
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWait)
		defer cancel()
		return srv.Stop(closeCtx)
	})
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "server")
	}
	log.Info("Graceful shutdown finished")
	return nil
}

func newPublisher(cfg kafka.Config, log *zap.Logger) (events.Publisher, func(), error) {
	if !cfg.Enabled() {
		log.Info("kafka disabled, change events are dropped")
		return events.Noop{}, func() {}, nil
	}
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "kafka.NewProducer")
	}
	p := events.NewKafkaPublisher(producer, cfg.Topic, log)
	return p, func() {
		if err := p.Close(); err != nil {
			log.Warn("kafka producer close", zap.Error(err))
		}
	}, nil
}
