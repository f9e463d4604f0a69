// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/dalmuti-online/server/internal/auth"
	"github.com/dalmuti-online/server/internal/cache"
	"github.com/dalmuti-online/server/internal/handlers"
	"github.com/dalmuti-online/server/internal/middleware"
	"github.com/dalmuti-online/server/internal/visitors"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := auth.Init(); err != nil {
		log.Fatalf("failed to init session keys: %v", err)
	}

	// Redis is optional; the action feed is skipped when it is unreachable.
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, action feed disabled: %v", err)
	}

	visitorFile := os.Getenv("VISITOR_FILE")
	if visitorFile == "" {
		visitorFile = "visitors.json"
	}
	counter := visitors.Load(visitorFile)

	srv := handlers.NewRoomServer(logger, counter)

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomWSHandler(logger, srv),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
