// Package server assembles every collaborator package into one running
// instance: the TCP accept loop, the Prometheus metrics HTTP endpoint, and
// graceful shutdown. Grounded on tinode's server/shutdown.go signal
// handling and listen-then-wait-for-stop shape, adapted from its HTTP
// long-poll/websocket listener to this engine's plain TCP accept loop.
package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/berrym/lair-chat/internal/auth"
	"github.com/berrym/lair-chat/internal/config"
	"github.com/berrym/lair-chat/internal/connio"
	"github.com/berrym/lair-chat/internal/dispatcher"
	"github.com/berrym/lair-chat/internal/logging"
	"github.com/berrym/lair-chat/internal/metrics"
	"github.com/berrym/lair-chat/internal/notify"
	"github.com/berrym/lair-chat/internal/security"
	"github.com/berrym/lair-chat/internal/session"
	"github.com/berrym/lair-chat/internal/store"
	"github.com/redis/go-redis/v9"
)

// systemMetricsInterval is how often Run polls the shared state and room
// store to refresh the users/rooms gauges and check spec.md §4.7's
// configured thresholds.
const systemMetricsInterval = 15 * time.Second

// Server holds every injected collaborator plus the listeners it drives.
type Server struct {
	cfg       *config.Config
	store     store.Store
	shared    *session.SharedState
	handler   *connio.Handler
	threshold metrics.Thresholds
}

// New wires every package together over an already-open Store, per spec.md
// §9's injected-handle discipline: nothing here reaches for ambient global
// state.
func New(cfg *config.Config, st store.Store) (*Server, error) {
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	secmw, err := security.NewMiddleware(redisClient)
	if err != nil {
		return nil, err
	}

	shared := session.NewSharedState()
	fabric := notify.NewFabric(shared, st.Rooms())
	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), 24*time.Hour)
	flow := auth.NewFlow(st.Users(), st.Sessions(), tokens, secmw)
	executor := dispatcher.NewExecutor(st, fabric, shared, secmw)

	handler := &connio.Handler{
		Shared:   shared,
		Fabric:   fabric,
		Flow:     flow,
		Executor: executor,
		SecMW:    secmw,
	}

	threshold := metrics.Thresholds{MaxConnections: cfg.MaxConnections, MaxRoomsActive: cfg.MaxRoomsActive}
	return &Server{cfg: cfg, store: st, shared: shared, handler: handler, threshold: threshold}, nil
}

// Run starts the TCP accept loop and the metrics HTTP endpoint, blocking
// until a termination signal arrives or ctx is cancelled. It then closes the
// listener, waits for the accept loop to exit and shuts down the metrics
// endpoint; connections already being served are not waited for.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.TCPAddr)
	if err != nil {
		return err
	}
	logging.L().Info("listening for chat connections", zap.String("addr", s.cfg.TCPAddr))

	metricsSrv := &http.Server{Addr: s.cfg.RESTAddr, Handler: s.metricsMux()}
	go func() {
		logging.L().Info("listening for metrics requests", zap.String("addr", s.cfg.RESTAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics server stopped unexpectedly", zap.Error(err))
		}
	}()

	stop := signalChan()
	acceptDone := make(chan struct{})
	var conns int64

	go func() {
		defer close(acceptDone)
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			atomic.AddInt64(&conns, 1)
			metrics.SetConnectionsActive(int(atomic.LoadInt64(&conns)))
			go func(conn net.Conn) {
				defer func() {
					atomic.AddInt64(&conns, -1)
					metrics.SetConnectionsActive(int(atomic.LoadInt64(&conns)))
				}()
				s.handler.Serve(ctx, conn)
			}(conn)
		}
	}()

	metricsTicker := time.NewTicker(systemMetricsInterval)
	defer metricsTicker.Stop()
	go func() {
		for {
			select {
			case <-metricsTicker.C:
				s.refreshSystemMetrics(ctx, int(atomic.LoadInt64(&conns)))
			case <-acceptDone:
				return
			}
		}
	}()

	select {
	case <-stop:
		logging.L().Info("shutdown signal received")
	case <-ctx.Done():
	}

	ln.Close()
	<-acceptDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)

	logging.Sync()
	return nil
}

// refreshSystemMetrics polls the shared state and room store for a full
// gauge snapshot and logs any configured threshold breach (spec.md §4.7).
func (s *Server) refreshSystemMetrics(ctx context.Context, connectionsActive int) {
	rooms, err := s.store.Rooms().List(ctx, nil, store.Page{Limit: 10000})
	if err != nil {
		logging.L().Warn("failed to list rooms for metrics refresh", zap.Error(err))
		return
	}
	snapshot := metrics.SystemSnapshot{
		ConnectionsActive: connectionsActive,
		UsersConnected:    len(s.shared.AllConnectedUsers()),
		RoomsActive:       len(rooms),
	}
	metrics.UpdateSystemMetrics(snapshot)
	for _, reason := range metrics.CheckThresholds(snapshot, s.threshold) {
		logging.L().Warn("system metrics threshold breached", zap.String("reason", reason))
	}
}

func (s *Server) metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func signalChan() <-chan os.Signal {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	return c
}
