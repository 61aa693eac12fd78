package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/laisky-qa-bot/internal/library/webapi"
	"github.com/Laisky/laisky-qa-bot/internal/qa/dao"
	"github.com/Laisky/laisky-qa-bot/internal/qa/service"
	"github.com/Laisky/laisky-qa-bot/internal/web"
	rdb "github.com/Laisky/laisky-qa-bot/library/db/redis"
	"github.com/Laisky/laisky-qa-bot/library/log"
)

const (
	pendingBackendMemory = "memory"
	pendingBackendRedis  = "redis"
)

var botCMD = &cobra.Command{
	Use:   "bot",
	Short: "bot",
	Long:  `run the telegram question answering bot`,
	Args:  cobra.NoArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return runBot(ctx)
	},
}

func init() {
	rootCMD.AddCommand(botCMD)
}

func seconds(key string, fallback time.Duration) time.Duration {
	if n := gconfig.S.GetInt(key); n > 0 {
		return time.Duration(n) * time.Second
	}

	return fallback
}

// setupPendingStore opens the configured pending question store,
// the returned backlog is nil-safe for the memory backend.
func setupPendingStore(ctx context.Context) (dao.PendingStore, dao.RelayBacklog, string, error) {
	ttl := seconds("settings.pending.ttl_seconds", dao.DefaultPendingTTL)
	backend := strings.ToLower(strings.TrimSpace(gconfig.S.GetString("settings.pending.backend")))

	switch backend {
	case pendingBackendRedis:
		db := rdb.NewDB(&redis.Options{
			Addr:     gconfig.S.GetString("settings.db.redis.addr"),
			Password: gconfig.S.GetString("settings.db.redis.password"),
			DB:       gconfig.S.GetInt("settings.db.redis.db"),
		})
		if err := db.Ping(ctx); err != nil {
			_ = db.Close()
			return nil, nil, "", errors.Wrap(err, "connect redis")
		}

		store := dao.NewRedis(db, ttl)
		return store, store, backend, nil
	default:
		store, err := dao.NewMemory(ttl)
		if err != nil {
			return nil, nil, "", errors.Wrap(err, "new memory store")
		}

		return store, store, pendingBackendMemory, nil
	}
}

func runBot(ctx context.Context) error {
	logger := log.Logger.Named("bot")

	api, err := webapi.New(
		gconfig.S.GetString("settings.api.url"),
		seconds("settings.api.timeout_seconds", 10*time.Second),
	)
	if err != nil {
		return errors.Wrap(err, "new web api client")
	}
	defer api.Close()

	pending, backlog, backend, err := setupPendingStore(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if err := pending.Close(); err != nil {
			logger.Error("close pending store", zap.Error(err))
		}
	}()

	registry, err := service.LoadPredictorRegistry(ctx, api)
	if err != nil {
		return errors.Wrap(err, "load predictors")
	}

	bot, err := service.NewBot(
		gconfig.S.GetString("settings.telegram.token"),
		gconfig.S.GetString("settings.telegram.api"),
		seconds("settings.telegram.poll_timeout_seconds", 10*time.Second),
	)
	if err != nil {
		return errors.WithStack(err)
	}

	expertChatID, err := parseStrictInt64(gconfig.S.Get("settings.telegram.expert_chat_id"))
	if err != nil {
		return errors.Wrap(err, "parse expert chat id")
	}
	qa, err := service.New(api, service.NewTelegram(bot), pending, backlog, registry, service.Options{
		ExpertChatID:     expertChatID,
		BotUsername:      bot.Me.Username,
		Debug:            gconfig.S.GetBool("debug"),
		PredictorTimeout: seconds("settings.api.predictor_timeout_seconds", service.DefaultPredictorTimeout),
	})
	if err != nil {
		return errors.Wrap(err, "new qa service")
	}
	service.RegisterHandlers(ctx, bot, qa)

	pool, gctx := errgroup.WithContext(ctx)
	pool.Go(func() error {
		logger.Info("bot started",
			zap.String("username", bot.Me.Username),
			zap.Strings("predictors", registry.Names()),
			zap.String("pending_backend", backend))
		bot.Start()
		return nil
	})
	pool.Go(func() error {
		<-gctx.Done()
		bot.Stop()
		logger.Info("bot stopped")
		return nil
	})

	if listen := gconfig.S.GetString("settings.web.listen"); listen != "" {
		router := web.NewRouter(func(context.Context) (*web.Status, error) {
			return &web.Status{
				Predictors:     qa.Registry().Names(),
				PendingBackend: backend,
				ExpertChatID:   expertChatID,
				StartedAt:      web.StartedAt(),
			}, nil
		})
		pool.Go(func() error {
			return web.RunServer(gctx, listen, router)
		})
	}

	return pool.Wait()
}
