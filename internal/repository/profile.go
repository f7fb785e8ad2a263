package repository

import (
	"context"

	"github.com/ottoassistant/otto/internal/domain"
)

// ProfileRepository owns the single-row user_profile table.
type ProfileRepository interface {
	Get(ctx context.Context) (*domain.UserProfile, error)
	Update(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error)
}
