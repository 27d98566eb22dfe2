package lifecycle

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/user"
	"github.com/mauv0809/shuttle-league/internal/validation"
)

var errNotYourProfile = errors.New("users can only change their own profile")

// RegisterUser creates the profile for an identity that has just signed up.
func (s *Service) RegisterUser(ctx context.Context, in user.NewUser) (*user.User, error) {
	u, err := s.users.CreateUser(ctx, in)
	if err != nil {
		return nil, s.fail("register user", err)
	}
	log.Info("Registered user", "userID", u.ID, "username", u.Username)
	return u, nil
}

// CheckSignUp validates a sign-up form and the availability of its username.
// The account itself is created by the identity provider, the profile by RegisterUser.
func (s *Service) CheckSignUp(ctx context.Context, form user.SignUp) error {
	if err := validation.Struct(ctx, form); err != nil {
		return s.fail("check sign up", err)
	}
	available, err := s.users.IsUsernameAvailable(ctx, form.Username)
	if err != nil {
		return s.fail("check sign up", err)
	}
	if !available {
		return s.fail("check sign up", apperr.ErrUsernameTaken)
	}
	return nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, s.fail("get user", err)
	}
	return u, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, s.fail("get user by username", err)
	}
	return u, nil
}

// SetVerified records the identity provider's email verification for the caller's own profile.
func (s *Service) SetVerified(ctx context.Context, actorID, userID string, verified bool) error {
	if actorID != userID {
		return s.fail("set verified", apperr.New(apperr.KindForbidden, "set verified", errNotYourProfile))
	}
	if err := s.users.SetVerified(ctx, userID, verified); err != nil {
		return s.fail("set verified", err)
	}
	log.Info("Updated email verification", "userID", userID, "verified", verified)
	return nil
}

// UpdateProfile changes the actor's own profile.
func (s *Service) UpdateProfile(ctx context.Context, actorID, userID string, update user.ProfileUpdate) (*user.User, error) {
	if actorID != userID {
		return nil, s.fail("update profile", apperr.New(apperr.KindForbidden, "update profile", errNotYourProfile))
	}
	u, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, s.fail("update profile", err)
	}
	return u, nil
}

func (s *Service) SearchUsers(ctx context.Context, prefix string, limit int) ([]user.User, error) {
	users, err := s.users.SearchUsers(ctx, prefix, limit)
	if err != nil {
		return nil, s.fail("search users", err)
	}
	return users, nil
}

func (s *Service) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	ok, err := s.users.IsUsernameAvailable(ctx, username)
	if err != nil {
		return false, s.fail("username available", err)
	}
	return ok, nil
}
