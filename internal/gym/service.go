package gym

import (
	"context"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/activitylog"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/apperr"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/logger"
)

// Actor identifies who performed an admin action, for the audit trail.
type Actor struct {
	UserID    string
	UserName  string
	IPAddress string
}

type Service struct {
	repo     Repository
	recorder activitylog.Recorder
}

func NewService(repo Repository, recorder activitylog.Recorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

func (s *Service) CreateGym(ctx context.Context, req CreateGymRequest, actor Actor) (*Gym, error) {
	gym, err := s.repo.CreateGym(ctx, req.Name, req.Code)
	if err != nil {
		logger.Errorf("create gym failed: %v", err)
		return nil, err
	}

	s.recorder.Record(ctx, activitylog.Record{
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		Service:   activitylog.ServiceTrainerGym,
		Action:    "CREATE_GYM",
		Details:   map[string]interface{}{"gym_id": gym.ID, "gym_name": gym.Name, "gym_code": gym.Code},
		IPAddress: actor.IPAddress,
	})

	return gym, nil
}

func (s *Service) ListGyms(ctx context.Context) ([]Gym, error) {
	return s.repo.GetAllGyms(ctx)
}

func (s *Service) GetGym(ctx context.Context, id int) (*Gym, error) {
	gym, err := s.repo.GetGymByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperr.NotFound("Gym not found")
		}
		return nil, err
	}
	return gym, nil
}

// AssignTrainer links a user to a gym. Assigning the same pair twice is a
// conflict rather than a silent no-op so admin tooling can surface it.
func (s *Service) AssignTrainer(ctx context.Context, req AssignTrainerRequest, actor Actor) (*TrainerGym, error) {
	if _, err := s.GetGym(ctx, req.GymID); err != nil {
		return nil, err
	}

	assigned, err := s.repo.TrainerAssigned(ctx, req.UserID, req.GymID)
	if err != nil {
		return nil, err
	}
	if assigned {
		return nil, apperr.Conflict("Trainer is already assigned to this gym")
	}

	tg, err := s.repo.AssignTrainer(ctx, req.UserID, req.GymID)
	if err != nil {
		logger.Errorf("assign trainer failed (user=%s gym=%d): %v", req.UserID, req.GymID, err)
		return nil, err
	}

	s.recorder.Record(ctx, activitylog.Record{
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		Service:   activitylog.ServiceTrainerGym,
		Action:    "ASSIGN_TRAINER",
		Details:   map[string]interface{}{"trainer_user_id": req.UserID, "gym_id": req.GymID},
		IPAddress: actor.IPAddress,
	})

	return tg, nil
}

func (s *Service) RemoveTrainer(ctx context.Context, userID string, gymID int, actor Actor) error {
	removed, err := s.repo.RemoveTrainer(ctx, userID, gymID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("Trainer assignment not found")
	}

	s.recorder.Record(ctx, activitylog.Record{
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		Service:   activitylog.ServiceTrainerGym,
		Action:    "REMOVE_TRAINER",
		Details:   map[string]interface{}{"trainer_user_id": userID, "gym_id": gymID},
		IPAddress: actor.IPAddress,
	})

	return nil
}

func (s *Service) ListTrainers(ctx context.Context, gymID int) ([]Trainer, error) {
	if _, err := s.GetGym(ctx, gymID); err != nil {
		return nil, err
	}
	return s.repo.GetTrainersByGym(ctx, gymID)
}

func (s *Service) ListAssignableUsers(ctx context.Context) ([]Trainer, error) {
	return s.repo.GetAssignableUsers(ctx)
}
