package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/auth"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/config"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/db"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/mq"
	redisconn "github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/redis"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/adapters/in/ops"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/adapters/in/socket"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/adapters/out/messaging"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/adapters/out/repo"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/adapters/out/spool"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/usecase"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// Run запускает сервис пользователей и блокируется до отмены ctx
// или до фатальной ошибки одного из серверов
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	log.Info(logger.Entry{Action: "user_service_starting", Message: "initializing user service"})

	// 1. Инициализация PostgreSQL
	dbPool, err := db.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close(dbPool, log)

	// Применяем миграции (идемпотентно)
	if err := db.Migrate(ctx, dbPool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// 2. RabbitMQ: подключение ленивое, отказ брокера не фатален
	broker := mq.NewRabbitMQ(cfg.RabbitMQ, log)
	defer broker.Close()
	publisher := messaging.NewNotificationPublisher(broker, cfg.RabbitMQ.RoutingKey, log)

	// 3. Redis: опционально, только для спула уведомлений
	var (
		rdb          *redis.Client
		pendingSpool out.NotificationSpool
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redisconn.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Warn(logger.Entry{
				Action:  "redis_unavailable",
				Message: err.Error() + "; failed notifications will be dropped",
			})
		} else {
			defer rdb.Close()
			pendingSpool = spool.NewRedisSpool(rdb, log)
		}
	}

	dispatcher := messaging.NewDispatcher(publisher, pendingSpool, cfg.RabbitMQ.QueueSize, log)

	// 4. Репозиторий и use cases
	userRepo := repo.NewUserPgRepository(dbPool, log)
	hasher := auth.NewPasswordHasher(bcrypt.DefaultCost)
	jwtService := auth.NewJWTService(cfg.JWT)

	handlers := socket.NewHandlers(socket.UseCases{
		CreateUser:   usecase.NewCreateUserService(userRepo, hasher, dispatcher, log),
		Authenticate: usecase.NewAuthenticateService(userRepo, hasher, jwtService, log),
		GetUser:      usecase.NewGetUserService(userRepo),
		UpdateUser:   usecase.NewUpdateUserService(userRepo, hasher, dispatcher, log),
		DeleteUser:   usecase.NewDeleteUserService(userRepo, dispatcher, log),
		ListUsers:    usecase.NewListUsersService(userRepo, log),
		VerifyToken:  usecase.NewVerifyTokenService(jwtService, log),
	})

	// 5. Серверы
	server := socket.NewServer(cfg.Server, log)
	handlers.Register(server)

	deps := []ops.Dependency{
		{Name: "postgres", Check: dbPool.Ping, Critical: true},
		{Name: "rabbitmq", Check: func(context.Context) error {
			if !broker.Connected() {
				return mq.ErrUnavailable
			}
			return nil
		}},
	}
	if rdb != nil {
		deps = append(deps, ops.Dependency{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	opsServer := ops.NewServer(cfg.Ops.Port, deps, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return server.Serve(gctx) })
	g.Go(func() error { return opsServer.Run(gctx) })
	g.Go(func() error { return dispatcher.Run(gctx) })
	if pendingSpool != nil {
		replayer := messaging.NewReplayer(pendingSpool, publisher, cfg.Redis.ReplayInterval, log)
		g.Go(func() error { return replayer.Run(gctx) })
	}

	// прогреваем соединение с брокером, не блокируя старт
	g.Go(func() error {
		connectCtx, cancel := context.WithTimeout(gctx, time.Minute)
		defer cancel()
		if err := broker.Connect(connectCtx); err != nil {
			log.Warn(logger.Entry{
				Action:  "rabbitmq_not_ready",
				Message: err.Error() + "; will retry on next notification",
			})
		}
		return nil
	})

	log.Info(logger.Entry{
		Action:  "user_service_started",
		Message: fmt.Sprintf("protocol on %s, ops on :%d", cfg.Server.Addr(), cfg.Ops.Port),
	})

	err = g.Wait()
	log.Info(logger.Entry{Action: "user_service_stopped", Message: "user service stopped"})
	return err
}
