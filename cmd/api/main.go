package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shinyyama/localaid-backend/internal/ai"
	"github.com/shinyyama/localaid-backend/internal/config"
	"github.com/shinyyama/localaid-backend/internal/db"
	appmw "github.com/shinyyama/localaid-backend/internal/middleware"
	"github.com/shinyyama/localaid-backend/internal/realtime"
	"github.com/shinyyama/localaid-backend/internal/server"
	"github.com/shinyyama/localaid-backend/internal/storage"
	"google.golang.org/api/option"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if cfg.DBAutoMigrate {
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("auto migrate error: %v", err)
		}
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		log.Fatalf("auth init error: %v", err)
	}

	deps := server.Deps{DB: conn, Hub: realtime.NewHub(), Verifier: verifier}
	if cfg.StorageBucket != "" {
		var opts []option.ClientOption
		if cfg.FirebaseCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
		}
		uploader, err := storage.NewGCSUploader(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			log.Fatalf("storage init error: %v", err)
		}
		defer uploader.Close()
		deps.Uploader = uploader
	} else {
		log.Printf("STORAGE_BUCKET not set; uploads disabled")
	}
	if cfg.GeminiAPIKey != "" {
		deps.Suggester = ai.NewPostClassifier(cfg.GeminiAPIKey, cfg.GeminiModel)
	} else {
		log.Printf("GEMINI_API_KEY not set; post suggestions disabled")
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	go deps.Hub.Run(hubCtx)

	srv := server.New(cfg, deps)
	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting server on %s (auth=%s sha=%s)", addr, cfg.AuthMode, cfg.GitSHA)
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	case <-ctx.Done():
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
	stopHub()
}

func newVerifier(ctx context.Context, cfg *config.Config) (appmw.TokenVerifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		return appmw.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	case config.AuthModeFirebase, "":
		return appmw.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	}
	return nil, errors.New("unknown AUTH_MODE " + cfg.AuthMode)
}
