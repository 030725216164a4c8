package service

import (
	"context"
	"errors"
	"fmt"

	"dtm-test-service/internal/cache"
	"dtm-test-service/internal/config"
	"dtm-test-service/internal/event"
	"dtm-test-service/internal/models"
)

// ErrUnsupportedLanguage is returned when a language outside the
// configured set is selected.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// UserStore is the persisted side of user accounts.
type UserStore interface {
	Register(ctx context.Context, userID int64, username, firstName, defaultLanguage string) (bool, error)
	FindByID(ctx context.Context, userID int64) (*models.User, error)
	GetLanguage(ctx context.Context, userID int64, fallback string) string
	SetLanguage(ctx context.Context, userID int64, language string) error
}

// UserService handles registration and language preference, with an
// optional Redis read-through for the language lookups that happen on
// every inbound action.
type UserService struct {
	Repo      UserStore
	Cache     *cache.LanguageCache
	Publisher EventPublisher
	Config    *config.Config
}

func NewUserService(repo UserStore, langCache *cache.LanguageCache, publisher EventPublisher, cfg *config.Config) *UserService {
	return &UserService{Repo: repo, Cache: langCache, Publisher: publisher, Config: cfg}
}

func (s *UserService) publish(routingKey string, payload map[string]any) {
	if s.Publisher != nil {
		s.Publisher.Publish(routingKey, payload)
	}
}

// Register creates the user if absent and returns their profile. An
// existing user is returned unchanged and no registration event is
// published for them.
func (s *UserService) Register(ctx context.Context, userID int64, username, firstName string) (*models.User, error) {
	inserted, err := s.Repo.Register(ctx, userID, username, firstName, s.Config.DefaultLanguage)
	if err != nil {
		return nil, err
	}
	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if inserted {
		s.publish(event.UserRegistered, map[string]any{
			"user_id":  userID,
			"username": username,
		})
	}
	return user, nil
}

// Language returns the user's interface language, cache first, falling
// back to the configured default for unknown users.
func (s *UserService) Language(ctx context.Context, userID int64) string {
	if lang := s.Cache.Get(ctx, userID); lang != "" {
		return lang
	}
	lang := s.Repo.GetLanguage(ctx, userID, s.Config.DefaultLanguage)
	s.Cache.Set(ctx, userID, lang)
	return lang
}

// SetLanguage stores the user's language choice. Only configured
// languages are accepted.
func (s *UserService) SetLanguage(ctx context.Context, userID int64, language string) error {
	if !s.Config.IsSupportedLanguage(language) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	if err := s.Repo.SetLanguage(ctx, userID, language); err != nil {
		return err
	}
	s.Cache.Set(ctx, userID, language)
	s.publish(event.LanguageChanged, map[string]any{
		"user_id":  userID,
		"language": language,
	})
	return nil
}
