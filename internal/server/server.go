package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/wanderbook/apiserver/config"
	"github.com/wanderbook/apiserver/internal/db"
	"github.com/wanderbook/apiserver/internal/handlers"
	"github.com/wanderbook/apiserver/internal/mq"
	"github.com/wanderbook/apiserver/internal/services"
	"github.com/wanderbook/apiserver/internal/storage"
	"github.com/wanderbook/apiserver/internal/store"
	"github.com/wanderbook/apiserver/internal/token"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mq         *mq.MQ
}

// New opens the database, wires the services, and builds the router.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	codec, err := token.NewCodec(cfg.JWT)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	imageStore, err := buildImageStore(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	broker, err := buildBroker(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	tripRepo := store.NewTripRepository(dbConn)
	bookingRepo := store.NewBookingRepository(dbConn)

	// Assign through typed checks so a disabled backend yields a nil
	// interface, not a nil pointer inside one.
	var images services.ImageStore
	if imageStore != nil {
		images = imageStore
	}
	var publisher services.EventPublisher
	if broker != nil {
		publisher = broker
	}

	policy := services.NewPolicy()
	userService := services.NewUserService(userRepo, cfg.Auth)
	tripService := services.NewTripService(tripRepo, images, cfg.Storage)
	bookingService := services.NewBookingService(bookingRepo, tripRepo, policy, publisher)

	authMiddleware := handlers.RequireAuth(codec)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	// Credentials must be allowed so the session cookie survives
	// cross-origin requests from the frontend.
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	router.Get("/healthz", handlers.Healthz)
	// Locally served assets, including the default trip image. Uploaded
	// images live in object storage behind the same public prefix.
	router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir("uploads"))))
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, codec)
	})
	router.Route("/trips", func(r chi.Router) {
		handlers.TripRouter(r, tripService, authMiddleware)
	})
	router.Route("/bookings", func(r chi.Router) {
		handlers.BookingRouter(r, bookingService, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		mq:         broker,
	}, nil
}

// buildImageStore selects the object storage backend. An empty backend
// disables uploads; trips fall back to the default image.
func buildImageStore(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		st := storage.NewStorage(client)
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return st, nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		st := storage.NewStorage(client)
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// buildBroker selects the event broker. An empty backend disables
// booking events.
func buildBroker(ctx context.Context, cfg config.MQConfig) (*mq.MQ, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.mq != nil {
		_ = s.mq.Close()
	}
	return s.httpServer.Close()
}
