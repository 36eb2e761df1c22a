// README: API gateway; builds the gin engine and delegates to module services.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deliveryeta/internal/http/handlers"
)

type ServerDeps struct {
	Prediction handlers.Predictor
	// Places may be nil; /restaurants then answers 503.
	Places         handlers.RestaurantFinder
	Logger         *zap.Logger
	RequestTimeout time.Duration
}

type Server struct {
	prediction     handlers.Predictor
	places         handlers.RestaurantFinder
	log            *zap.Logger
	requestTimeout time.Duration
}

func NewServer(deps ServerDeps) *Server {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		prediction:     deps.Prediction,
		places:         deps.Places,
		log:            log,
		requestTimeout: deps.RequestTimeout,
	}
}

func (s *Server) Routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	return NewRouter(s.log, s.requestTimeout, s.prediction, s.places)
}

// HTTPServer wraps Routes in an http.Server with conservative timeouts.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
