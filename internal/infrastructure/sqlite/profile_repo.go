package sqlite

import (
	"context"
	"fmt"

	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/store"
)

type ProfileRepository struct {
	st *store.Store
}

func NewProfileRepository(st *store.Store) *ProfileRepository {
	return &ProfileRepository{st: st}
}

const profileColumns = `id, timezone, quiet_hours_start, quiet_hours_end, quiet_mode,
	mute_until, heartbeat_time_1, heartbeat_time_2, heartbeat_time_3,
	heartbeat_cadence_min, heartbeat_only_if_signal, onboarded_at, last_digest_at, updated_at`

func (r *ProfileRepository) Get(ctx context.Context) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := r.st.DB.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM user_profile WHERE id = ?`, domain.SingletonProfileID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error) {
	profile.ID = domain.SingletonProfileID
	_, err := r.st.DB.NamedExecContext(ctx, `
		UPDATE user_profile SET
			timezone = :timezone,
			quiet_hours_start = :quiet_hours_start,
			quiet_hours_end = :quiet_hours_end,
			quiet_mode = :quiet_mode,
			mute_until = :mute_until,
			heartbeat_time_1 = :heartbeat_time_1,
			heartbeat_time_2 = :heartbeat_time_2,
			heartbeat_time_3 = :heartbeat_time_3,
			heartbeat_cadence_min = :heartbeat_cadence_min,
			heartbeat_only_if_signal = :heartbeat_only_if_signal,
			onboarded_at = :onboarded_at,
			last_digest_at = :last_digest_at,
			updated_at = :updated_at
		WHERE id = :id`,
		profile,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}
