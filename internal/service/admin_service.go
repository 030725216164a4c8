package service

import (
	"context"
	"log"
	"math"

	"dtm-test-service/internal/config"
	"dtm-test-service/internal/repository"
	"dtm-test-service/internal/session"
)

// AdminStore is the persisted half of the admin allow-list.
type AdminStore interface {
	Add(ctx context.Context, userID int64) error
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// AdminService answers the capability check and serves the aggregate
// dashboard numbers.
type AdminService struct {
	SuperAdminID int64
	Admins       AdminStore

	Users     *repository.UserRepository
	Results   *repository.ResultRepository
	Questions *repository.QuestionRepository
	Registry  *session.Registry
	Config    *config.Config
}

func NewAdminService(cfg *config.Config, admins AdminStore, users *repository.UserRepository, results *repository.ResultRepository, questions *repository.QuestionRepository, reg *session.Registry) *AdminService {
	return &AdminService{
		SuperAdminID: cfg.SuperAdminID,
		Admins:       admins,
		Users:        users,
		Results:      results,
		Questions:    questions,
		Registry:     reg,
		Config:       cfg,
	}
}

// IsAdmin is the single capability check: the configured super admin OR
// membership in the stored admin set. A store error just denies.
func (s *AdminService) IsAdmin(ctx context.Context, userID int64) bool {
	if s.SuperAdminID != 0 && userID == s.SuperAdminID {
		return true
	}
	ok, err := s.Admins.IsAdmin(ctx, userID)
	if err != nil {
		log.Printf("Admin lookup failed for user %d: %v", userID, err)
		return false
	}
	return ok
}

// AddAdmin puts a user on the stored allow-list.
func (s *AdminService) AddAdmin(ctx context.Context, userID int64) error {
	return s.Admins.Add(ctx, userID)
}

// Statistics is the aggregate dashboard view.
type Statistics struct {
	TotalUsers        int64            `json:"total_users"`
	TotalTests        int64            `json:"total_tests"`
	AverageScore      float64          `json:"average_score"`
	ActiveTests       int              `json:"active_tests"`
	SubjectStatistics map[string]int64 `json:"subject_statistics"`
}

func (s *AdminService) Statistics(ctx context.Context) (*Statistics, error) {
	totalUsers, err := s.Users.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	totalTests, err := s.Results.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	avg, err := s.Results.AverageScore(ctx)
	if err != nil {
		return nil, err
	}
	bySubject, err := s.Results.CountBySubject(ctx)
	if err != nil {
		return nil, err
	}
	return &Statistics{
		TotalUsers:        totalUsers,
		TotalTests:        totalTests,
		AverageScore:      math.Round(avg*10) / 10,
		ActiveTests:       s.Registry.ActiveTests(),
		SubjectStatistics: bySubject,
	}, nil
}

// QuestionBankStats counts bank questions per subject and language.
type QuestionBankStats struct {
	Total     int64                       `json:"total"`
	BySubject map[string]map[string]int64 `json:"by_subject"`
}

func (s *AdminService) QuestionStats(ctx context.Context) (*QuestionBankStats, error) {
	stats := &QuestionBankStats{
		BySubject: make(map[string]map[string]int64, len(s.Config.Subjects)),
	}
	for _, subject := range s.Config.Subjects {
		perLang := make(map[string]int64, len(s.Config.SupportedLanguages))
		for _, lang := range s.Config.SupportedLanguages {
			n, err := s.Questions.Count(ctx, subject, lang)
			if err != nil {
				return nil, err
			}
			perLang[lang] = n
			stats.Total += n
		}
		stats.BySubject[subject] = perLang
	}
	return stats, nil
}
