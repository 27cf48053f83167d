package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"glaminator/internal/logger"
	"glaminator/internal/model"
	"glaminator/internal/repository"
)

// SeedUser is a user entry of a seed dataset.
type SeedUser struct {
	ID       string           `json:"id"`
	Username string           `json:"username"`
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Rewards  map[string]int64 `json:"rewards"`
}

// SeedPost is a post entry of a seed dataset.
type SeedPost struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	ImageURLs []string `json:"image_urls"`
	Tags      []string `json:"tags"`
	Timestamp int64    `json:"timestamp"`
}

// Dataset is the document read by the seeder.
type Dataset struct {
	Users []SeedUser `json:"users"`
	Posts []SeedPost `json:"posts"`
}

// SeedReport counts what a seed run changed.
type SeedReport struct {
	UsersCreated int `json:"users_created"`
	UsersUpdated int `json:"users_updated"`
	PostsCreated int `json:"posts_created"`
	PostsUpdated int `json:"posts_updated"`
	Skipped      int `json:"skipped"`
}

// LoadDataset reads a dataset from an http(s) URL or a local file.
func LoadDataset(ctx context.Context, source string) (*Dataset, error) {
	var r io.Reader
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch dataset: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch dataset: status code %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()
		r = f
	}

	var ds Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return &ds, nil
}

// SeedService loads fixture data into the store.
type SeedService interface {
	Seed(ctx context.Context, ds *Dataset) (*SeedReport, error)
}

type seedService struct {
	tx         repository.Transactor
	bcryptCost int
	log        *logger.Logger
}

// NewSeedService creates a seeder writing through tx.
func NewSeedService(tx repository.Transactor, bcryptCost int, log *logger.Logger) SeedService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &seedService{tx: tx, bcryptCost: bcryptCost, log: log}
}

// Seed upserts every user with its starting balances, then every post.
// Entries with malformed ids or tags are skipped.
func (s *seedService) Seed(ctx context.Context, ds *Dataset) (*SeedReport, error) {
	report := &SeedReport{}

	for _, u := range ds.Users {
		user, balances, err := s.buildUser(u)
		if err != nil {
			s.log.Warn("skipping seed user", "id", u.ID, "error", err)
			report.Skipped++
			continue
		}

		var created bool
		err = s.tx.WithTransaction(ctx, func(ctx context.Context, repos *repository.Repositories) error {
			var err error
			created, err = repos.Users.Upsert(ctx, user)
			if err != nil {
				return fmt.Errorf("upsert user %s: %w", user.ID, err)
			}
			for t, qty := range balances {
				if err := repos.Rewards.SetBalance(ctx, user.ID, t, qty); err != nil {
					return fmt.Errorf("set %s balance of %s: %w", t, user.ID, err)
				}
			}
			return nil
		})
		if err != nil {
			return report, err
		}
		if created {
			report.UsersCreated++
		} else {
			report.UsersUpdated++
		}
	}

	for _, p := range ds.Posts {
		post, err := buildPost(p)
		if err != nil {
			s.log.Warn("skipping seed post", "id", p.ID, "error", err)
			report.Skipped++
			continue
		}

		var created bool
		err = s.tx.WithTransaction(ctx, func(ctx context.Context, repos *repository.Repositories) error {
			var err error
			created, err = repos.Posts.Upsert(ctx, post)
			return err
		})
		if err != nil {
			return report, fmt.Errorf("upsert post %s: %w", post.ID, err)
		}
		if created {
			report.PostsCreated++
		} else {
			report.PostsUpdated++
		}
	}

	return report, nil
}

func (s *seedService) buildUser(u SeedUser) (*model.User, map[model.RewardType]int64, error) {
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid id: %w", err)
	}
	if err := validateRegistration(u.Username, u.Email, u.Password, u.Password); err != nil {
		return nil, nil, err
	}

	balances := make(map[model.RewardType]int64, len(u.Rewards))
	for name, qty := range u.Rewards {
		t, err := model.ParseRewardType(name)
		if err != nil {
			return nil, nil, err
		}
		if qty < 0 {
			return nil, nil, fmt.Errorf("negative %s balance", t)
		}
		balances[t] = qty
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	return &model.User{
		ID:           id,
		Username:     strings.TrimSpace(u.Username),
		Email:        strings.TrimSpace(u.Email),
		PasswordHash: string(hashed),
	}, balances, nil
}

func buildPost(p SeedPost) (*model.Post, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid id: %w", err)
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id: %w", err)
	}
	in := PostInput{Title: p.Title, Content: p.Content, ImageURLs: p.ImageURLs, Tags: p.Tags}
	tags, err := in.validate()
	if err != nil {
		return nil, err
	}

	return &model.Post{
		ID:        id,
		UserID:    userID,
		Title:     strings.TrimSpace(p.Title),
		Content:   p.Content,
		ImageURLs: p.ImageURLs,
		Timestamp: p.Timestamp,
		Tags:      tagLinks(id, tags),
	}, nil
}
