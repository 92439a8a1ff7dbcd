package cli

import (
	"context"
	"database/sql"
	"fmt"

	"franchise_ops_worker/internal/app"
	"franchise_ops_worker/internal/domain/event"
	"franchise_ops_worker/internal/domain/lock"
	"franchise_ops_worker/internal/infra/config"
	"franchise_ops_worker/internal/infra/database"
	"franchise_ops_worker/internal/infra/locker"
	"franchise_ops_worker/internal/infra/logger"
	"franchise_ops_worker/internal/infra/messaging"
	"franchise_ops_worker/internal/infra/scheduler"
	"franchise_ops_worker/internal/infra/telegram"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	jobExpiryNotifier = "expiry-notifier"
	jobAutoConfirm    = "auto-confirm"
)

type closingPublisher interface {
	event.Publisher
	Close()
}

// worker holds everything built from configuration.
type worker struct {
	cfg       *config.AppConfig
	log       *logrus.Entry
	db        *sql.DB
	rdb       *redis.Client
	publisher closingPublisher
	bot       *telebot.Bot
	relay     *app.OpsRelay

	keepAlive *app.KeepAlive
	jobs      map[string]app.Job // lock-wrapped, keyed by CLI name
}

func newWorker(ctx context.Context) (*worker, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)

	w := &worker{cfg: cfg, log: logger.WithComponent("worker")}
	w.log.WithFields(logrus.Fields{
		"environment":  cfg.Environment,
		"driver":       cfg.DatabaseDriver,
		"lock_backend": cfg.LockBackend,
	}).Info("Configuration loaded")

	if err := w.build(ctx); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func (w *worker) build(ctx context.Context) error {
	cfg := w.cfg

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	w.db = db
	w.log.Info("Database connection established")

	dialect, err := database.NewDialect(cfg.DatabaseDriver)
	if err != nil {
		return err
	}

	lk, err := w.buildLocker(ctx)
	if err != nil {
		return err
	}

	if cfg.AMQPURL != "" {
		producer, err := messaging.NewEventProducer(cfg.AMQPURL, cfg.AMQPExchange, logger.WithComponent("rabbitmq"))
		if err != nil {
			return fmt.Errorf("could not connect to rabbitmq: %w", err)
		}
		w.publisher = producer
		w.log.WithField("exchange", cfg.AMQPExchange).Info("Event publishing enabled")
	} else {
		w.publisher = messaging.NewNoopPublisher(logger.WithComponent("rabbitmq"))
	}

	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg.TelegramToken, logger.WithComponent("telegram"))
		if err != nil {
			return err
		}
		w.bot = bot
		w.relay = app.NewOpsRelay(telegram.NewTelebotAdapter(bot), cfg.TelegramOpsChatID)
	}

	clock := app.SystemClock{}
	jobLog := logger.WithComponent("jobs")
	exclusive := app.NewExclusiveRunner(lk, logger.WithComponent("exclusive_runner"))

	notifier := app.NewExpiryNotifier(
		database.NewSQLMembershipRepository(db, dialect),
		w.publisher, clock, cfg.ExpiryWindowDays, jobLog,
	)
	confirmer := app.NewAutoConfirmer(
		database.NewSQLShippingRepository(db, dialect),
		w.publisher, clock, cfg.AutoConfirmGracePeriod, cfg.AutoConfirmWorkers, jobLog,
	)

	w.keepAlive = app.NewKeepAlive(db)
	w.jobs = map[string]app.Job{
		jobExpiryNotifier: exclusive.Wrap(app.LockName(notifier), notifier),
		jobAutoConfirm:    exclusive.Wrap(app.LockName(confirmer), confirmer),
	}
	return nil
}

func (w *worker) buildLocker(ctx context.Context) (lock.Locker, error) {
	if w.cfg.LockBackend == config.LockBackendRedis {
		rdb, err := locker.NewRedisClient(ctx, w.cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		w.rdb = rdb
		return locker.NewRedisLocker(rdb, w.cfg.LockTTL), nil
	}
	return locker.NewDatabaseLocker(w.db, w.cfg.DatabaseDriver)
}

// announcers lists the sinks told about finished scheduled runs.
func (w *worker) announcers() []scheduler.Announcer {
	if w.relay == nil {
		return nil
	}
	return []scheduler.Announcer{w.relay}
}

func (w *worker) Close() {
	if w.publisher != nil {
		w.publisher.Close()
	}
	if w.rdb != nil {
		if err := w.rdb.Close(); err != nil {
			w.log.WithError(err).Warn("Error closing redis client")
		}
	}
	if w.db != nil {
		if err := w.db.Close(); err != nil {
			w.log.WithError(err).Warn("Error closing database")
		}
	}
}
