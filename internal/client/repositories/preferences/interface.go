package preferences

import (
	"context"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
)

type Repository interface {
	LoadProfile(ctx context.Context) (*models.User, error)
	SaveProfile(ctx context.Context, u models.User) error
	DeleteProfile(ctx context.Context) error
}
