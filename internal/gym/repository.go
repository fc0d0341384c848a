package gym

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateGym(ctx context.Context, name, code string) (*Gym, error) {
	query := `
		INSERT INTO gyms (gym_name, gym_code)
		VALUES ($1, $2)
		RETURNING id, gym_name, gym_code, created_at
	`

	var gym Gym
	err := r.db.GetContext(ctx, &gym, query, name, code)
	if err != nil {
		return nil, err
	}

	return &gym, nil
}

func (r *repository) GetAllGyms(ctx context.Context) ([]Gym, error) {
	query := `
		SELECT id, gym_name, gym_code, created_at
		FROM gyms
		ORDER BY id ASC
	`

	var gyms []Gym
	err := r.db.SelectContext(ctx, &gyms, query)
	if err != nil {
		return nil, err
	}

	return gyms, nil
}

func (r *repository) GetGymByID(ctx context.Context, id int) (*Gym, error) {
	query := `
		SELECT id, gym_name, gym_code, created_at
		FROM gyms
		WHERE id = $1
	`

	var gym Gym
	err := r.db.GetContext(ctx, &gym, query, id)
	if err != nil {
		return nil, err
	}

	return &gym, nil
}

func (r *repository) TrainerAssigned(ctx context.Context, userID string, gymID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM trainer_gyms
			WHERE user_id = $1 AND gyms_id = $2
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userID, gymID)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) AssignTrainer(ctx context.Context, userID string, gymID int) (*TrainerGym, error) {
	query := `
		INSERT INTO trainer_gyms (user_id, gyms_id)
		VALUES ($1, $2)
		RETURNING id, user_id, gyms_id, created_at
	`

	var link TrainerGym
	err := r.db.GetContext(ctx, &link, query, userID, gymID)
	if err != nil {
		return nil, err
	}

	return &link, nil
}

func (r *repository) RemoveTrainer(ctx context.Context, userID string, gymID int) (bool, error) {
	query := `
		DELETE FROM trainer_gyms
		WHERE user_id = $1 AND gyms_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, userID, gymID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *repository) GetTrainersByGym(ctx context.Context, gymID int) ([]Trainer, error) {
	query := `
		SELECT u.id AS user_id, u.username, u.name, u.email, u.phone
		FROM trainer_gyms tg
		JOIN users u ON u.id = tg.user_id
		WHERE tg.gyms_id = $1
		ORDER BY u.name ASC
	`

	var trainers []Trainer
	err := r.db.SelectContext(ctx, &trainers, query, gymID)
	if err != nil {
		return nil, err
	}

	return trainers, nil
}

// GetAssignableUsers lists active USER-role accounts an admin can pick as
// trainers.
func (r *repository) GetAssignableUsers(ctx context.Context) ([]Trainer, error) {
	query := `
		SELECT id AS user_id, username, name, email, phone
		FROM users
		WHERE role = 'USER' AND is_active = TRUE
		ORDER BY name ASC
	`

	var users []Trainer
	err := r.db.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, err
	}

	return users, nil
}

// IsNotFound reports whether err is the driver's empty-result error.
func IsNotFound(err error) bool {
	return err == sql.ErrNoRows
}
