package gym

import "time"

type Gym struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"gym_name" json:"gym_name"`
	Code      string    `db:"gym_code" json:"gym_code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TrainerGym links a user to a gym they teach at.
type TrainerGym struct {
	ID        int       `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	GymID     int       `db:"gyms_id" json:"gyms_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Trainer struct {
	UserID   string `db:"user_id" json:"user_id"`
	Username string `db:"username" json:"username"`
	Name     string `db:"name" json:"name"`
	Email    string `db:"email" json:"email"`
	Phone    string `db:"phone" json:"phone"`
}

type CreateGymRequest struct {
	Name string `json:"gym_name" binding:"required"`
	Code string `json:"gym_code" binding:"required"`
}

type AssignTrainerRequest struct {
	UserID string `json:"user_id" binding:"required"`
	GymID  int    `json:"gyms_id" binding:"required"`
}
