package main

import (
	"fmt"
	"log"

	"dropcore/file-api/api"
	"dropcore/file-api/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	if err := config.Setup(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	a, err := api.NewRouter()
	if err != nil {
		zap.L().Fatal("Failed to initialize API", zap.Error(err))
	}

	port := viper.GetInt("host.port")
	zap.L().Info("Server starting", zap.Int("port", port))

	if err := a.Router.Run(fmt.Sprintf(":%d", port)); err != nil {
		zap.L().Fatal("Server crashed", zap.Error(err))
	}
}
