// Package web provides the HTTP server of the allblack panel: routing,
// sessions, push notifications and scheduled jobs.
package web

import (
	"context"
	"embed"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/allblack/allblack-panel/caching"
	"github.com/allblack/allblack-panel/config"
	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/util/common"
	"github.com/allblack/allblack-panel/web/cache"
	"github.com/allblack/allblack-panel/web/controller"
	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/job"
	"github.com/allblack/allblack-panel/web/locale"
	"github.com/allblack/allblack-panel/web/middleware"
	"github.com/allblack/allblack-panel/web/notify"
	"github.com/allblack/allblack-panel/web/service"
	"github.com/allblack/allblack-panel/web/session"
	"github.com/allblack/allblack-panel/web/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

//go:embed translation/*
var i18nFS embed.FS

// Server represents the web server with its controllers, push hub and
// scheduled jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	index *controller.IndexController
	api   *controller.APIController
	ws    *controller.WebSocketController

	settingService service.SettingService
	authService    service.AuthService
	tgbot          *service.Tgbot

	hub  *websocket.Hub
	amqp *notify.AMQPSink
	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web server instance with a cancellable context.
func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{ctx: ctx, cancel: cancel, tgbot: service.NewTgbot()}
}

func (s *Server) sessionStore(secret []byte) sessions.Store {
	if config.GetRedisAddr() != "" {
		logger.Info("Storing sessions in redis")
		return cache.NewRedisStore(cache.GetClient(), secret)
	}
	return cookie.NewStore(secret)
}

// initRouter initializes Gin, registers middleware and controllers and
// returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	basePath, err := s.settingService.GetBasePath()
	if err != nil {
		return nil, err
	}
	secret, err := s.settingService.GetSecret()
	if err != nil {
		return nil, err
	}
	origins, err := s.settingService.GetCorsOrigins()
	if err != nil {
		return nil, err
	}

	if len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
		corsConfig.AddAllowHeaders("Authorization")
		engine.Use(cors.New(corsConfig))
	}
	// the websocket upgrade must not be wrapped by gzip
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{basePath + "ws"}),
	))
	engine.Use(sessions.Sessions(session.Name, s.sessionStore(secret)))
	engine.Use(locale.LocalizerMiddleware())
	engine.Use(middleware.BearerAuth(&s.authService))

	limit := middleware.RateLimitMiddleware(caching.NewCache(time.Minute), middleware.DefaultRateLimitConfig())

	g := engine.Group(basePath)
	s.index = controller.NewIndexController(g, limit)
	s.api = controller.NewAPIController(g)
	s.ws = controller.NewWebSocketController(g, s.hub)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// initNotify registers the sinks that order and menu events fan out to.
func (s *Server) initNotify() {
	notify.Reset()
	notify.Register(websocket.Sink{Hub: s.hub})

	if url := config.GetAMQPURL(); url != "" {
		sink, err := notify.DialAMQP(url, config.GetAMQPExchange())
		if err != nil {
			logger.Warning("amqp notifications disabled:", err)
		} else {
			s.amqp = sink
			notify.Register(sink)
		}
	}

	if enabled, err := s.settingService.GetTgbotEnabled(); err == nil && enabled {
		if err := s.tgbot.Start(); err != nil {
			logger.Warning("start telegram bot failed:", err)
		} else {
			notify.Register(s.tgbot)
		}
	}
}

// startTask schedules the report and cleanup jobs.
func (s *Server) startTask() {
	runtime, err := s.settingService.GetStatsCron()
	if err != nil || runtime == "" {
		logger.Errorf("stats cron error[%v], runtime[%s] invalid, will run default", err, runtime)
		runtime = "@daily"
	}
	if _, err := s.cron.AddJob(runtime, job.NewDailyStatsJob(s.tgbot)); err != nil {
		logger.Warning("Add NewDailyStatsJob error", err)
	}
	s.cron.AddJob("@hourly", job.NewHiddenCleanupJob())
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	if err = locale.InitLocalizer(i18nFS); err != nil {
		return err
	}
	if err = cache.InitRedis(config.GetRedisAddr()); err != nil {
		return err
	}

	loc, err := s.settingService.GetTimeLocation()
	if err != nil {
		return err
	}
	s.cron = cron.New(cron.WithLocation(loc), cron.WithParser(entity.CronParser))
	s.cron.Start()

	s.hub = websocket.NewHub()
	go s.hub.Run()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listen, err := s.settingService.GetListen()
	if err != nil {
		return err
	}
	port, err := s.settingService.GetPort()
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", net.JoinHostPort(listen, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("web server stopped:", err)
		}
	}()

	s.initNotify()
	s.startTask()
	return nil
}

// Stop shuts down the HTTP server, the jobs, the bot and the push hub.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.tgbot.IsRunning() {
		s.tgbot.Stop()
	}
	notify.Wait()
	notify.Reset()
	if s.amqp != nil {
		s.amqp.Close()
	}
	s.hub.Stop()

	var err1, err2, err3 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			err2 = err
		}
	}
	err3 = cache.Close()
	return common.Combine(err1, err2, err3)
}

// GetWSHub returns the push hub.
func (s *Server) GetWSHub() any { return s.hub }
