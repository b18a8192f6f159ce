package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/solutions-systems/bolas-locas/configs"
	"github.com/solutions-systems/bolas-locas/internal/audit"
	natsconn "github.com/solutions-systems/bolas-locas/internal/nats"
	"github.com/solutions-systems/bolas-locas/internal/notify"
	"github.com/solutions-systems/bolas-locas/internal/payment"
	"github.com/solutions-systems/bolas-locas/internal/websvc/db"
	"github.com/solutions-systems/bolas-locas/internal/websvc/dialog"
	handlers "github.com/solutions-systems/bolas-locas/internal/websvc/handlers"
	"github.com/solutions-systems/bolas-locas/internal/websvc/service"
	"github.com/solutions-systems/bolas-locas/internal/websvc/store"
	"github.com/solutions-systems/bolas-locas/internal/websvc/ws"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "web"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	playerStore := store.NewPlayerStore(dbpool)
	playerService := service.NewPlayerService(playerStore)

	boardStore := store.NewBoardStore(dbpool)
	entryStore := store.NewEntryStore(dbpool)
	boardService := service.NewBoardService(boardStore, entryStore)

	jackpotStore := store.NewJackpotStore(dbpool)
	jackpotService := service.NewJackpotService(jackpotStore)

	purchaseStore := store.NewPurchaseStore(dbpool)
	albumStore := store.NewAlbumStore(dbpool)

	// Operator notifications over Telegram, disabled when no token is set.
	var notifier service.Notifier
	if tn := notify.FromEnv(); tn != nil {
		notifier = tn
	}

	// Connect to NATS. The jackpot feed is best-effort: without a broker the
	// service still handles webhook and REST traffic.
	var publisher service.JackpotPublisher
	hub := ws.NewHub()
	n, err := natsconn.Connect()
	if err != nil {
		log.Warnf("unable to connect to NATS server, jackpot feed disabled: %v", err)
	} else {
		defer n.Conn.Close()
		log.Printf("NATS connection established successfully %s", n.Url)

		publisher = natsconn.NewPublisher(n)

		broker := ws.NewBroker(n.Conn, hub)
		sub, err := broker.Subscribe()
		if err != nil {
			log.Fatalf("unable to subscribe to jackpot subject: %v", err)
		}
		defer sub.Unsubscribe()
	}

	purchaseService := service.NewPurchaseService(purchaseStore, publisher, notifier)
	albumService := service.NewAlbumService(albumStore, payment.NewClient(), notifier)
	simulationService := service.NewSimulationService(playerStore, boardStore, purchaseStore)

	dispatcher := dialog.NewDispatcher(playerService, boardService, jackpotService, purchaseService, albumService)

	// Webhook audit trail in Mongo, disabled when no URI is set.
	auditCtx, auditCancel := context.WithTimeout(context.Background(), 10*time.Second)
	auditLog, err := audit.Connect(auditCtx)
	auditCancel()
	if err != nil {
		log.Warnf("unable to connect to Mongo, webhook audit disabled: %v", err)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(dispatcher, boardService, jackpotService, albumService, simulationService, auditLogOrNil(auditLog), hub)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}

// auditLogOrNil keeps the handler's nil check meaningful: a typed nil
// *audit.Log wrapped in the interface would not compare equal to nil.
func auditLogOrNil(l *audit.Log) handlers.AuditLog {
	if l == nil {
		return nil
	}
	return l
}
