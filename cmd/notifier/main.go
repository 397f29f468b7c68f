package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"

	chathandler "github.com/aliskhannn/crm-notifier/internal/api/handlers/chat"
	queuehandler "github.com/aliskhannn/crm-notifier/internal/api/handlers/queue"
	reminderhandler "github.com/aliskhannn/crm-notifier/internal/api/handlers/reminder"
	wshandler "github.com/aliskhannn/crm-notifier/internal/api/handlers/ws"
	"github.com/aliskhannn/crm-notifier/internal/api/router"
	"github.com/aliskhannn/crm-notifier/internal/api/server"
	"github.com/aliskhannn/crm-notifier/internal/config"
	"github.com/aliskhannn/crm-notifier/internal/metrics"
	"github.com/aliskhannn/crm-notifier/internal/queue"
	"github.com/aliskhannn/crm-notifier/internal/rabbitmq/broker"
	"github.com/aliskhannn/crm-notifier/internal/rabbitmq/handlers/telegram"
	chatrepo "github.com/aliskhannn/crm-notifier/internal/repository/chat"
	reminderrepo "github.com/aliskhannn/crm-notifier/internal/repository/reminder"
	"github.com/aliskhannn/crm-notifier/internal/scanner"
	chatsvc "github.com/aliskhannn/crm-notifier/internal/service/chat"
	notifsvc "github.com/aliskhannn/crm-notifier/internal/service/notification"
	"github.com/aliskhannn/crm-notifier/internal/worker"
	"github.com/aliskhannn/crm-notifier/internal/ws"
	"github.com/aliskhannn/crm-notifier/pkg/email"
	tgclient "github.com/aliskhannn/crm-notifier/pkg/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		dbNum, err := strconv.Atoi(cfg.Redis.Database)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to parse redis database")
		}

		rdb = redis.New(cfg.Redis.Address, cfg.Redis.Password, dbNum)
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}

	queueConfigs := cfg.QueueConfigs()

	var (
		jobBroker   queue.Broker
		closeBroker func()
	)

	switch cfg.Broker.Kind {
	case config.BrokerMemory:
		zlog.Logger.Warn().Msg("using in-memory broker, queued jobs are lost on restart")

		mem := queue.NewMemoryBroker()
		jobBroker = mem
		closeBroker = func() {
			if err := mem.Close(); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to close memory broker")
			}
		}
	default:
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Retries, cfg.RabbitMQ.Pause)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}

		ch, err := conn.Channel()
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to open channel")
		}

		names := make([]string, 0, len(queueConfigs))
		for _, qc := range queueConfigs {
			names = append(names, qc.Name)
		}

		jobBroker, err = broker.New(ch, cfg.RabbitMQ.Exchange, names, cfg.Retry)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to declare queues")
		}

		closeBroker = func() {
			// закрываем канал
			if err := ch.Close(); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ channel")
			}

			// закрываем соединение
			if err := conn.Close(); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ connection")
			}
		}
	}

	manager, err := queue.NewManager(jobBroker, nil, queueConfigs...)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create queue manager")
	}

	bot := tgclient.NewClient(cfg.Telegram.Token)
	if cfg.Telegram.BaseURL != "" {
		bot.WithBaseURL(cfg.Telegram.BaseURL)
	}

	pool := worker.NewPool(manager, telegram.NewHandler(bot, val), nil, cfg.Retry)

	smtpPort, err := strconv.Atoi(cfg.Email.SMTPPort)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to parse email smtp port")
	}

	emailClient := email.NewClient(
		cfg.Email.SMTPHost,
		smtpPort,
		cfg.Email.Username,
		cfg.Email.Password,
		cfg.Email.From,
	).WithTimeout(cfg.Email.Timeout)

	hub := ws.NewHub()

	policy, err := notifsvc.ParsePolicy(cfg.Dispatcher.NotifiedWhen)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("invalid dispatcher config")
	}

	dispatchCfg := notifsvc.Config{
		NotifiedWhen:    policy,
		DefaultTimezone: cfg.Dispatcher.DefaultTimezone,
		Retry:           cfg.Retry,
	}

	// nil interfaces, not typed nil pointers, when redis is off
	var (
		dispatcher *notifsvc.Service
		sc         *scanner.Scanner
	)

	if rdb != nil {
		dispatcher, err = notifsvc.NewService(emailClient, hub, manager, rdb, dispatchCfg)
	} else {
		dispatcher, err = notifsvc.NewService(emailClient, hub, manager, nil, dispatchCfg)
	}
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create dispatcher")
	}

	reminders := reminderrepo.NewRepository(db)
	if rdb != nil {
		sc, err = scanner.New(reminders, dispatcher, rdb, cfg.Scanner)
	} else {
		sc, err = scanner.New(reminders, dispatcher, nil, cfg.Scanner)
	}
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create reminder scanner")
	}

	chatLoc, err := cfg.ChatLocation()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("invalid chat timezone")
	}
	chatService := chatsvc.NewService(chatrepo.NewRepository(db), chatLoc)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(reg)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	poolDone := make(chan struct{})
	go func() {
		defer close(poolDone)
		pool.Run(workerCtx)
	}()

	if err := sc.Start(ctx); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to start reminder scanner")
	}

	r := router.New(router.Handlers{
		Queue:    queuehandler.NewHandler(manager, val),
		Reminder: reminderhandler.NewHandler(sc),
		Chat:     chathandler.NewHandler(chatService),
		WS:       wshandler.NewHandler(hub),
	}, reg)
	s := server.New(cfg.Server.HTTPPort, r)

	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	zlog.Logger.Info().Str("addr", cfg.Server.HTTPPort).Str("broker", cfg.Broker.Kind).Msg("crm notifier started")

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	// сначала сканер, чтобы не появлялись новые задачи
	sc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	// воркеры возвращают недоделанные задачи в очередь
	cancelWorkers()
	select {
	case <-poolDone:
	case <-shutdownCtx.Done():
		zlog.Logger.Warn().Msg("workers did not stop in time")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	hub.Close()

	// закрываем мастер
	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}

	// закрываем слейвы
	for i, s := range db.Slaves {
		if err := s.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close redis")
		}
	}

	closeBroker()
}
