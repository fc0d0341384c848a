package gym

import "context"

type Repository interface {
	CreateGym(ctx context.Context, name, code string) (*Gym, error)
	GetAllGyms(ctx context.Context) ([]Gym, error)
	GetGymByID(ctx context.Context, id int) (*Gym, error)
	TrainerAssigned(ctx context.Context, userID string, gymID int) (bool, error)
	AssignTrainer(ctx context.Context, userID string, gymID int) (*TrainerGym, error)
	RemoveTrainer(ctx context.Context, userID string, gymID int) (bool, error)
	GetTrainersByGym(ctx context.Context, gymID int) ([]Trainer, error)
	GetAssignableUsers(ctx context.Context) ([]Trainer, error)
}
