package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/diary-upload-go/api/controllers"
	"github.com/moyoez/diary-upload-go/api/middlewares"
	"github.com/moyoez/diary-upload-go/api/notifyhub"
	"github.com/moyoez/diary-upload-go/notify"
	"github.com/moyoez/diary-upload-go/tool"
	"github.com/moyoez/diary-upload-go/transfer"
	"github.com/moyoez/diary-upload-go/weather"
)

// Options wires the control API to the diary server and the weather provider.
type Options struct {
	Port         int
	AllowOrigins []string // CORS origins of a browser UI; empty disables CORS
	Endpoints    transfer.Endpoints
	Poll         transfer.PollOptions
	HTTPClient   *http.Client
	Weather      *weather.Client
	Location     *weather.Location
}

// Server is the local control API: it starts uploads on behalf of a local
// UI and streams their progress.
type Server struct {
	opts   Options
	hub    *notifyhub.Hub
	engine *gin.Engine
	server *http.Server
	mu     sync.RWMutex
}

func NewServer(opts Options) *Server {
	return &Server{
		opts: opts,
		hub:  notifyhub.New(),
	}
}

// Handler builds the routes. Sessions started through it live as long as ctx.
func (s *Server) Handler(ctx context.Context) http.Handler {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	if len(s.opts.AllowOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins: s.opts.AllowOrigins,
			AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		}))
	}

	notify.SetHub(s.hub)

	uploadCtrl := controllers.NewUploadController(ctx, s.opts.Endpoints, s.opts.Poll, s.opts.HTTPClient)
	weatherCtrl := controllers.NewWeatherController(s.opts.Weather, s.opts.Location)

	self := engine.Group("/api/self/v1", middlewares.OnlyAllowLocal, middlewares.OnlyAllowOrigins(s.opts.AllowOrigins))
	{
		self.GET("/status", controllers.HandleStatus)
		self.POST("/upload", uploadCtrl.HandleUpload)                          // start an upload session
		self.GET("/upload/:sessionId", uploadCtrl.HandleSnapshot)              // session snapshot
		self.DELETE("/upload/:sessionId", uploadCtrl.HandleRemove)             // forget a finished session
		self.GET("/upload/:sessionId/qrcode", controllers.HandleSessionQRCode) // QR of the snapshot link
		self.GET("/weather", weatherCtrl.HandleWeather)
		self.POST("/diary/sort", controllers.HandleDiarySort)
		self.POST("/diary/validate", controllers.HandleDiaryValidate)
		self.GET("/notify-ws", notifyhub.HandleNotifyWS(s.hub, s.opts.AllowOrigins))
	}

	s.mu.Lock()
	s.engine = engine
	s.mu.Unlock()
	return engine
}

// Start serves on localhost until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	handler := s.Handler(ctx)

	s.mu.Lock()
	s.server = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.opts.Port),
		Handler: handler,
	}
	srv := s.server
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting control API on http://%s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
