package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) (*User, error)
	SetActive(ctx context.Context, id string, active bool) (bool, error)
}
