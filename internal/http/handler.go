package http

import (
	"context"
	"errors"
	"fmt"
	gohttp "net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/pool-sniper/internal/config"
	"github.com/hxuan190/pool-sniper/internal/http/httputil"
	"github.com/hxuan190/pool-sniper/internal/http/middlewares"
	"github.com/hxuan190/pool-sniper/internal/processor"
	"github.com/hxuan190/pool-sniper/internal/services/market"
	"github.com/hxuan190/pool-sniper/internal/services/quote"
)

const (
	API_VERSION  = "v1"
	HTTP_SERVICE = "http-service"
)

// Sniper is the read side of the event processor the API exposes.
type Sniper interface {
	Registry() *market.Registry
	Fees() quote.Fees
	State() processor.State
	UnsubscribePool(addr solana.PublicKey) bool
}

type HTTPService struct {
	container.BaseDIInstance

	sniper      Sniper
	rateLimiter *middlewares.RateLimiter
	server      *gohttp.Server
	conf        *config.GeneralConfig

	handlers []httputil.IHttpHandler
}

func (svc *HTTPService) ID() string {
	return HTTP_SERVICE
}

func (svc *HTTPService) Start() error {
	svc.server = &gohttp.Server{
		Addr:    svc.conf.HTTPHost + ":" + svc.conf.HTTPPort,
		Handler: svc.Router(),
	}
	log.Info().Str("host", svc.conf.HTTPHost).Str("port", svc.conf.HTTPPort).Msg("http server started")

	if err := svc.server.ListenAndServe(); err != nil && err != gohttp.ErrServerClosed {
		return err
	}

	return nil
}

// Router builds the gin engine with every handler mounted under /api/v1.
func (svc *HTTPService) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	corsConf.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsConf))

	r.Use(middlewares.MetricsMiddleware())
	r.Use(svc.rateLimiter.RateLimitMiddleware())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(gohttp.StatusOK, gin.H{"status": "ok", "state": svc.sniper.State().String()})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("api")
	pub := api.Group(API_VERSION)
	priv := api.Group(API_VERSION)

	admin := api.Group(fmt.Sprintf("%s/admin", API_VERSION))

	httputil.Mount(pub, priv, admin, svc.handlers...)
	return r
}

func (svc *HTTPService) Configure(c container.IContainer) error {
	svc.conf = c.GetConfig(config.GENERAL_CONFIG_KEY).(*config.GeneralConfig)
	if svc.conf == nil {
		return errors.New("invalid server config")
	}

	sniperSvc := c.Instance(processor.SNIPER_SERVICE).(*processor.Service)
	svc.init(sniperSvc.Processor())
	return nil
}

func (svc *HTTPService) init(sniper Sniper) {
	svc.sniper = sniper
	svc.rateLimiter = middlewares.NewRateLimiter(10, 20)
	svc.handlers = []httputil.IHttpHandler{
		NewPoolHandler(sniper),
		NewQuoteHandler(sniper),
	}
}

func (svc *HTTPService) Stop() error {
	if svc.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to stop http server")
		return err
	}
	log.Info().Msg("http server stopped gracefully")
	return nil
}
