package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/shinyyama/localaid-backend/internal/config"
	"github.com/shinyyama/localaid-backend/internal/db"
	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/repository"
	"github.com/shinyyama/localaid-backend/internal/storage"
	"google.golang.org/api/option"
)

type Options struct {
	TimeoutSeconds int  `env:"TIMEOUT_SECONDS" envDefault:"300"`
	Force          bool `env:"FORCE_SEED" envDefault:"false"`
}

func main() {
	_ = godotenv.Load()
	var opts Options
	if err := env.Parse(&opts); err != nil {
		log.Fatalf("failed to parse env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(opts.TimeoutSeconds)*time.Second)
	defer cancel()

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	var clientOpts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}
	uploader, err := storage.NewGCSUploader(ctx, cfg.StorageBucket, clientOpts...)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}
	defer uploader.Close()

	var users []model.User
	q := gdb.WithContext(ctx).Model(&model.User{})
	if !opts.Force {
		q = q.Where("avatar_url IS NULL OR avatar_url = ''")
	}
	if err := q.Find(&users).Error; err != nil {
		log.Fatalf("failed to list users: %v", err)
	}
	log.Printf("avatar targets=%d (force=%v)", len(users), opts.Force)

	userRepo := repository.NewUserRepository(gdb)
	for _, u := range users {
		data, err := fetchPlaceholder(ctx, u.UID)
		if err != nil {
			log.Printf("[user %s] placeholder failed: %v", u.UID, err)
			continue
		}
		mime, ext, err := storage.SniffImage(data)
		if err != nil {
			log.Printf("[user %s] placeholder rejected: %v", u.UID, err)
			continue
		}
		publicURL, err := uploader.Upload(ctx, storage.ObjectPath("profiles", u.UID, ext), mime, data)
		if err != nil {
			log.Printf("[user %s] upload failed: %v", u.UID, err)
			continue
		}
		if _, err := userRepo.UpdateProfile(ctx, u.UID, nil, &publicURL); err != nil {
			log.Printf("[user %s] db update failed: %v", u.UID, err)
			continue
		}
		log.Printf("[user %s] avatar set: %s", u.UID, publicURL)
	}
	log.Println("seed-avatars completed")
}

func fetchPlaceholder(ctx context.Context, seed string) ([]byte, error) {
	u := fmt.Sprintf("https://picsum.photos/seed/%s/256/256", url.PathEscape(seed))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("placeholder status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, storage.MaxImageBytes+1))
}
