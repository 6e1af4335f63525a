package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/logger"
	"github.com/iliyamo/alumni-connect/internal/model"
	"github.com/iliyamo/alumni-connect/internal/storage"
)

// UserService manages profiles and the alumni directory.
type UserService struct {
	users    UserStore
	pictures PictureStore
}

func NewUserService(users UserStore, pictures PictureStore) *UserService {
	return &UserService{users: users, pictures: pictures}
}

// Profile returns the caller's full record.
func (s *UserService) Profile(ctx context.Context, a Actor) (*model.User, error) {
	if a.ID == 0 {
		return nil, apperrors.ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, a.ID)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

// UpdateProfile merges patch into the caller's profile.  Profile keys may be
// sent at the top level or under "profile"; keys that are absent keep their
// stored value.  "name" updates the display name.
func (s *UserService) UpdateProfile(ctx context.Context, a Actor, patch []byte) (*model.User, error) {
	u, err := s.Profile(ctx, a)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Name    *string         `json:"name"`
		Profile json.RawMessage `json:"profile"`
	}
	if err := json.Unmarshal(patch, &envelope); err != nil {
		return nil, apperrors.ErrValidation.WithMessage("Invalid JSON body").WithInternal(err)
	}

	picture := u.Profile.ProfilePicture
	p := u.Profile
	if err := json.Unmarshal(patch, &p); err != nil {
		return nil, apperrors.ErrValidation.WithMessage("Invalid profile fields").WithInternal(err)
	}
	if len(envelope.Profile) > 0 && string(envelope.Profile) != "null" {
		if err := json.Unmarshal(envelope.Profile, &p); err != nil {
			return nil, apperrors.ErrValidation.WithMessage("Invalid profile fields").WithInternal(err)
		}
	}
	// The picture only changes through the upload endpoint.
	p.ProfilePicture = picture

	name := u.Name
	if envelope.Name != nil {
		name = strings.TrimSpace(*envelope.Name)
		if name == "" {
			return nil, apperrors.ErrMissingField.WithDetail("missingFields", []string{"name"})
		}
	}
	if p.GraduationYear < 0 {
		return nil, apperrors.ErrValidation.WithDetail("fields", []string{"graduationYear"})
	}

	if err := s.users.UpdateProfile(ctx, u.ID, name, p); err != nil {
		return nil, notFound(err, "User")
	}
	return s.users.GetByID(ctx, u.ID)
}

// UploadPicture stores a new profile picture and removes the previous one.
func (s *UserService) UploadPicture(ctx context.Context, a Actor, r io.Reader) (*model.User, error) {
	u, err := s.Profile(ctx, a)
	if err != nil {
		return nil, err
	}
	public, err := s.pictures.Save(r)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			return nil, apperrors.ErrBadUpload.WithMessage("Picture exceeds the size limit")
		case errors.Is(err, storage.ErrUnsupportedType):
			return nil, apperrors.ErrBadUpload.WithMessage("Only JPEG, PNG, GIF and WebP images are accepted")
		case errors.Is(err, storage.ErrEmpty):
			return nil, apperrors.ErrBadUpload.WithMessage("No picture uploaded")
		}
		return nil, apperrors.Internal(err)
	}

	previous := u.Profile.ProfilePicture
	u.Profile.ProfilePicture = public
	if err := s.users.UpdateProfile(ctx, u.ID, u.Name, u.Profile); err != nil {
		_ = s.pictures.Remove(public)
		return nil, notFound(err, "User")
	}
	if previous != "" && previous != public {
		if err := s.pictures.Remove(previous); err != nil {
			logger.WithModule("users").Warn("remove previous picture", zap.String("path", previous), zap.Error(err))
		}
	}
	return u, nil
}

// ListAlumni returns the alumni directory with contact details filtered by
// each alumni's visibility settings.
func (s *UserService) ListAlumni(ctx context.Context) ([]*model.User, error) {
	list, err := s.users.ListByRole(ctx, model.RoleAlumni)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	out := make([]*model.User, 0, len(list))
	for _, u := range list {
		out = append(out, u.PublicView())
	}
	return out, nil
}

// Get returns another user's public profile.  Callers looking at themselves
// get the full record.
func (s *UserService) Get(ctx context.Context, a Actor, id uint64) (*model.User, error) {
	if id == 0 {
		return nil, apperrors.ErrInvalidID
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}
	if u.ID == a.ID {
		return u, nil
	}
	return u.PublicView(), nil
}
