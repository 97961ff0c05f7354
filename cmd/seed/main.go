package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shinyyama/localaid-backend/internal/config"
	"github.com/shinyyama/localaid-backend/internal/db"
	appmw "github.com/shinyyama/localaid-backend/internal/middleware"
	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/repository"
	"github.com/shinyyama/localaid-backend/internal/service"
	"gorm.io/gorm"
)

type seedUser struct {
	UID  string
	Name string
}

type seedPost struct {
	Owner       string
	Type        model.PostType
	Title       string
	Description string
	Category    string
}

var users = []seedUser{
	{UID: "demo-hana", Name: "Hana"},
	{UID: "demo-kenji", Name: "Kenji"},
	{UID: "demo-maria", Name: "Maria"},
}

var posts = []seedPost{
	{Owner: "demo-hana", Type: model.PostTypeRequest, Title: "Borrow a ladder this weekend", Description: "Need to clean the gutters on Saturday morning.", Category: "tools"},
	{Owner: "demo-kenji", Type: model.PostTypeOffer, Title: "Walking dogs in the evening", Description: "I walk mine around 6pm and can take one more.", Category: "pets"},
	{Owner: "demo-maria", Type: model.PostTypeRequest, Title: "Groceries while I recover", Description: "Twisted my ankle, could use help with a weekly shop.", Category: "errands"},
	{Owner: "demo-hana", Type: model.PostTypeOffer, Title: "Extra homemade bread", Description: "Baked too much, two loaves free to collect.", Category: "food"},
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("posts already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	userRepo := repository.NewUserRepository(gdb)
	convRepo := repository.NewConversationRepository(gdb)
	postRepo := repository.NewPostRepository(gdb)

	for _, u := range users {
		if _, err := userRepo.Ensure(ctx, u.UID, u.Name); err != nil {
			return fmt.Errorf("ensure user %s: %w", u.UID, err)
		}
	}

	created := make([]*model.Post, 0, len(posts))
	for _, p := range posts {
		post := &model.Post{
			OwnerUID:    p.Owner,
			Type:        p.Type,
			Title:       p.Title,
			Description: p.Description,
			Category:    p.Category,
			Status:      model.PostStatusOpen,
		}
		if err := postRepo.Create(ctx, post); err != nil {
			return fmt.Errorf("create post %q: %w", p.Title, err)
		}
		created = append(created, post)
	}

	conv, err := convRepo.FindOrCreate(ctx, "demo-hana", "demo-kenji")
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	for _, m := range []struct{ from, text string }{
		{"demo-kenji", "Hi! I have a ladder you can borrow."},
		{"demo-hana", "That would be great, thank you!"},
		{"demo-kenji", "I'll drop it off Saturday at 9."},
	} {
		if err := convRepo.CreateMessage(ctx, &model.Message{ConversationID: conv.ID, SenderUID: m.from, Text: m.text}); err != nil {
			return fmt.Errorf("create message: %w", err)
		}
	}

	ladder := created[0]
	_, karma, err := postRepo.Fulfill(ctx, ladder.ID, ladder.OwnerUID, "demo-kenji", service.KarmaAward)
	if err != nil {
		return fmt.Errorf("fulfill demo post: %w", err)
	}
	log.Printf("fulfilled post=%d helper=demo-kenji karma=%d", ladder.ID, karma)

	log.Printf("seeded users=%d posts=%d conversation=%d", len(users), len(created), conv.ID)

	if cfg.AuthMode == config.AuthModeJWT {
		return printTokens(cfg)
	}
	return nil
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	if strings.EqualFold(os.Getenv("FORCE_SEED"), "true") {
		return true, nil
	}
	var n int64
	if err := gdb.WithContext(ctx).Model(&model.Post{}).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count posts: %w", err)
	}
	return n == 0, nil
}

// printTokens issues a day-long token per demo user for local testing.
func printTokens(cfg *config.Config) error {
	v, err := appmw.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return err
	}
	for _, u := range users {
		tok, err := v.Issue(u.UID, u.Name, 24*time.Hour)
		if err != nil {
			return fmt.Errorf("issue token for %s: %w", u.UID, err)
		}
		log.Printf("token uid=%s: %s", u.UID, tok)
	}
	return nil
}
