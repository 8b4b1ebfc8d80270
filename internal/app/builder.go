package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pb0420/trademonke/internal/auth/blacklist"
	"github.com/pb0420/trademonke/internal/auth/password"
	"github.com/pb0420/trademonke/internal/auth/token"
	"github.com/pb0420/trademonke/internal/cache/memory"
	"github.com/pb0420/trademonke/internal/config"
	"github.com/pb0420/trademonke/internal/domain"
	redisx "github.com/pb0420/trademonke/internal/infra/cache/redis"
	"github.com/pb0420/trademonke/internal/infra/database/memdb"
	"github.com/pb0420/trademonke/internal/infra/database/postgres"
	s3storage "github.com/pb0420/trademonke/internal/infra/storage/s3"
	"github.com/pb0420/trademonke/internal/transport/web"
)

type App struct {
	config  *config.Config
	server  *web.Server
	log     *log.Logger
	storage domain.MediaStorage
	cache   domain.Cache
	users   domain.UsersRepo
	janitor *memory.Cache // nil when the redis backend is selected
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	pgLog := log.New(base.Writer(), base.Prefix()+"[postgres] ", base.Flags())
	memLog := log.New(base.Writer(), base.Prefix()+"[memdb] ", base.Flags())
	cacheLog := log.New(base.Writer(), base.Prefix()+"[cache] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	app := &App{config: cfg, log: base}

	// Primary store is PostgreSQL; when it is not reachable the app runs on
	// the seeded in-memory store so the API stays fully usable in demos and
	// local frontend work.
	repos := buildRepos(ctx, base, pgLog, memLog, cfg, app)

	switch cfg.CacheBackend {
	case "redis":
		base.Println("init Redis cache")
		rc := redisx.New(redisx.Config{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		}, cacheLog)
		if err := rc.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed init redis: %w", err)
		}
		app.cache = rc
	default:
		base.Println("init in-process cache")
		mc := memory.New(cacheLog)
		mc.StartJanitor(memory.DefaultCleanupInterval)
		app.cache = mc
		app.janitor = mc
	}

	if cfg.S3Endpoint != "" {
		base.Println("init S3 storage")
		s3, err := s3storage.New(ctx, s3storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("failed init s3: %w", err)
		}
		app.storage = s3
	} else {
		base.Println("S3 not configured, media upload disabled")
	}

	// Auth primitives
	hasher := password.NewDefault()
	tm := token.New(cfg.AuthJWTSecret, cfg.AuthJWTIssuer, cfg.AuthTokenTTL)
	bl := blacklist.NewStore(app.cache)

	base.Println("init Server")
	auth := web.AuthDeps{Hasher: hasher, Tokens: tm, Blacklist: bl}
	app.server = web.New(serverLog, cfg, repos, auth, app.cache, app.storage)
	base.Println("Server is initialized")

	base.Println("build ended")
	return app, nil
}

func buildRepos(ctx context.Context, base, pgLog, memLog *log.Logger,
	cfg *config.Config, app *App) web.Repos {

	if cfg.DBHost != "" {
		base.Println("init PostgreSQL")
		pg, err := postgres.NewPGRepo(ctx, pgLog, cfg.GetDSN(), cfg.DBScheme)
		if err == nil {
			perr := pg.Ping(ctx)
			if perr == nil {
				base.Println("PostgreSQL is initialized")
				app.users = pg
				return web.Repos{
					Users: pg, Plans: pg, Posts: pg, Categories: pg,
					Media: pg, Notifications: pg, Conversations: pg, Reviews: pg,
				}
			}
			pg.Close()
			err = perr
		}
		base.Printf("PostgreSQL unavailable, falling back to in-memory store: %v", err)
	} else {
		base.Println("DB_HOST not set, using in-memory store")
	}

	mem := memdb.NewSeeded(memLog)
	app.users = mem
	return web.Repos{
		Users: mem, Plans: mem, Posts: mem, Categories: mem,
		Media: mem, Notifications: mem, Conversations: mem, Reviews: mem,
	}
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	if a.janitor != nil {
		a.janitor.StopJanitor()
	}
	a.users.Close()
	a.cache.Close()

	return nil
}
