// README: HTTP router registration.
package http

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"deliveryeta/internal/http/handlers"
	"deliveryeta/internal/http/middleware"
)

const welcome = "Welcome to the Food Delivery Time Prediction App"

func NewRouter(
	log *zap.Logger,
	requestTimeout time.Duration,
	predictionService handlers.Predictor,
	places handlers.RestaurantFinder,
) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(wireFieldName)
	}

	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logging(log), middleware.Timeout(requestTimeout))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, welcome)
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	predictionHandler := handlers.NewPredictionHandler(predictionService)
	r.POST("/predict", predictionHandler.Predict)
	r.POST("/features", predictionHandler.Features)
	r.GET("/predictions/:id", predictionHandler.Get)
	r.GET("/model", predictionHandler.Model)

	restaurantHandler := handlers.NewRestaurantHandler(places)
	r.GET("/restaurants", restaurantHandler.Nearby)

	return r
}

// wireFieldName reports validation failures under the JSON or query name.
func wireFieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}
