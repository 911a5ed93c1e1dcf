package main

import (
	"errors"
	stdLog "log"
	"os"
	"time"

	"github.com/Astemirdum/bookshelf/api/app"
	"github.com/Astemirdum/bookshelf/api/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// @title       Bookshelf API
// @version     1.0
// @description Books and users with JWT bearer authentication.
// @BasePath    /v1
// @securityDefinitions.apikey Bearer
// @in   header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		stdLog.Fatal("load envs from .env ", err)
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)

	if err := app.Run(cfg); err != nil {
		stdLog.Fatal(err)
	}
}
