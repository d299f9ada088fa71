package trophy

import (
	"context"
	"errors"
	"time"

	"backend-trailquest/internal/db"

	"github.com/jackc/pgx/v5"
)

type Store struct {
	db db.Querier
}

func NewStore(db db.Querier) *Store {
	return &Store{db: db}
}

func (s *Store) ActiveTrophies(ctx context.Context) ([]Trophy, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, code, kind, name, description, COALESCE(icon_url,''), is_active, criteria,
		       target_lat, target_lng, COALESCE(radius_m,0),
		       COALESCE(valid_from,'0001-01-01'), COALESCE(valid_until,'0001-01-01'), created_at
		FROM trophies WHERE is_active
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trophies []Trophy
	for rows.Next() {
		var t Trophy
		if err := rows.Scan(&t.ID, &t.Code, &t.Kind, &t.Name, &t.Description, &t.IconURL, &t.IsActive,
			&t.Criteria, &t.TargetLat, &t.TargetLng, &t.RadiusM, &t.ValidFrom, &t.ValidUntil, &t.CreatedAt); err != nil {
			return nil, err
		}
		trophies = append(trophies, t)
	}
	return trophies, nil
}

func (s *Store) GetTrophy(ctx context.Context, id string) (Trophy, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, code, kind, name, description, COALESCE(icon_url,''), is_active, criteria,
		       target_lat, target_lng, COALESCE(radius_m,0),
		       COALESCE(valid_from,'0001-01-01'), COALESCE(valid_until,'0001-01-01'), created_at
		FROM trophies WHERE id=$1
	`, id)
	var t Trophy
	if err := row.Scan(&t.ID, &t.Code, &t.Kind, &t.Name, &t.Description, &t.IconURL, &t.IsActive,
		&t.Criteria, &t.TargetLat, &t.TargetLng, &t.RadiusM, &t.ValidFrom, &t.ValidUntil, &t.CreatedAt); err != nil {
		return Trophy{}, err
	}
	return t, nil
}

func (s *Store) HasAward(ctx context.Context, userID, trophyID string) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM trophy_awards WHERE user_id=$1 AND trophy_id=$2)
	`, userID, trophyID).Scan(&ok)
	return ok, err
}

// InsertAward records a new award. The (user_id, trophy_id) unique
// constraint makes the insert race-safe: a concurrent duplicate resolves to
// inserted=false rather than a second award row.
func (s *Store) InsertAward(ctx context.Context, award Award) (Award, bool, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO trophy_awards (user_id, trophy_id, activity_id)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id, trophy_id) DO NOTHING
		RETURNING awarded_at
	`, award.UserID, award.TrophyID, nullableID(award.ActivityID))
	if err := row.Scan(&award.AwardedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Award{}, false, nil
		}
		return Award{}, false, err
	}
	return award, true, nil
}

func (s *Store) AwardsForUser(ctx context.Context, userID string) ([]Award, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, trophy_id, COALESCE(activity_id,''), awarded_at
		FROM trophy_awards WHERE user_id=$1
		ORDER BY awarded_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var awards []Award
	for rows.Next() {
		var a Award
		if err := rows.Scan(&a.UserID, &a.TrophyID, &a.ActivityID, &a.AwardedAt); err != nil {
			return nil, err
		}
		awards = append(awards, a)
	}
	return awards, nil
}

// GetUser loads the account fields achievement rules need.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	var user User
	var birthDate *time.Time
	err := s.db.QueryRow(ctx, `
		SELECT id, birth_date FROM users WHERE id=$1
	`, id).Scan(&user.ID, &birthDate)
	if err != nil {
		return User{}, err
	}
	if birthDate != nil {
		user.BirthDate = *birthDate
	}
	return user, nil
}

func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
