package main

import (
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/emersongin/cardbattle-service/internal/auth"
	"github.com/emersongin/cardbattle-service/internal/cache"
	"github.com/emersongin/cardbattle-service/internal/catalog"
	"github.com/emersongin/cardbattle-service/internal/handlers"
	"github.com/emersongin/cardbattle-service/internal/middleware"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// The journal is optional: without REDIS_ADDR matches run in memory only.
	if os.Getenv("REDIS_ADDR") != "" {
		if err := cache.ConnectRedis(); err != nil {
			logger.Warnf("event journal disabled: %v", err)
			cache.Rdb = nil
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var cat *catalog.Catalog
	if path := os.Getenv("CARD_CATALOG_FILE"); path != "" {
		var err error
		cat, err = catalog.Load(path, rng)
		if err != nil {
			log.Fatalf("failed to load card catalog %s: %v", path, err)
		}
		logger.Infof("Loaded card catalog from %s", path)
	} else {
		cat = catalog.New(rng)
	}

	rs := handlers.NewRoomServer(logger, cat)

	mux := http.NewServeMux()
	mux.HandleFunc("/", handlers.PingHandler)

	// room endpoints
	mux.Handle("/room/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateRoomHandler(rs),
	)))
	mux.Handle("/room/join", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.JoinRoomHandler(rs),
	)))
	mux.Handle("/room/folders", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ListFoldersHandler(rs),
	)))
	mux.Handle("/room/state", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomStateHandler(rs),
	)))

	// room ws
	mux.Handle("/room/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomWSHandler(logger, rs),
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
