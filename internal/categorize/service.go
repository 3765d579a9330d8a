// Package categorize suggests expense categories from descriptions seen before.
package categorize

import (
	"context"
	"errors"
	"strings"
)

var ErrEmpty = errors.New("pattern and category are required")

type Repository interface {
	FindMatch(ctx context.Context, description string) (string, error)
	SaveMapping(ctx context.Context, pattern, category string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the category of the longest learned pattern contained in
// description, ignoring case. It returns "" when nothing matches.
func (s *Service) Suggest(ctx context.Context, description string) (string, error) {
	description = normalize(description)
	if description == "" {
		return "", nil
	}

	return s.repo.FindMatch(ctx, description)
}

// Learn maps pattern to category. Learning a pattern again replaces its category.
func (s *Service) Learn(ctx context.Context, pattern, category string) error {
	pattern = normalize(pattern)
	category = strings.TrimSpace(category)

	if pattern == "" || category == "" {
		return ErrEmpty
	}

	return s.repo.SaveMapping(ctx, pattern, category)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
