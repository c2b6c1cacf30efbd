package profile

import (
	"context"
	"time"

	"github.com/khoahotran/careerfolio/pkg/patch"
)

type Profile struct {
	UserID         int64
	Name           string
	Email          string
	PhoneNumber    *string
	Nickname       *string
	Bio            *string
	PictureURL     *string
	ResumePhotoURL *string
	ResumeTitle    *string
	Introduction   *string
	UpdatedAt      time.Time
}

// Patch updates only the fields that are Set.
type Patch struct {
	Nickname   patch.Field[string]
	Bio        patch.Field[string]
	PictureURL patch.Field[string]
}

func (p Patch) Empty() bool {
	return !p.Nickname.Set && !p.Bio.Set && !p.PictureURL.Set
}

type Repository interface {
	// FindByUserID returns NotFound when the user has no profile row yet.
	FindByUserID(ctx context.Context, userID int64) (*Profile, error)
	// CreateDefault creates the profile row with the login id as nickname.
	// Returns NotFound when the user does not exist.
	CreateDefault(ctx context.Context, userID int64) error
	Update(ctx context.Context, userID int64, p Patch) error
}
