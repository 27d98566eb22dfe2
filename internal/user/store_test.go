package user_test

import (
	"context"
	"testing"

	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/database"
	"github.com/mauv0809/shuttle-league/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (user.UserStore, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	return user.New(db), teardown
}

func newUser(id, username string) user.NewUser {
	return user.NewUser{
		ID:          id,
		DisplayName: "Viktor Axelsen",
		Nickname:    "Viktor",
		Username:    username,
		Email:       username + "@example.com",
	}
}

func TestCreateAndGetUser(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	created, err := store.CreateUser(ctx, newUser("u1", "viktor_a"))
	require.NoError(t, err)
	assert.False(t, created.Verified)

	got, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "viktor_a", got.Username)
	assert.Equal(t, "Viktor Axelsen", got.DisplayName)

	byName, err := store.GetByUsername(ctx, "viktor_a")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	_, err = store.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestCreateUserUsernameTaken(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	_, err := store.CreateUser(ctx, newUser("u1", "viktor_a"))
	require.NoError(t, err)

	available, err := store.IsUsernameAvailable(ctx, "viktor_a")
	require.NoError(t, err)
	assert.False(t, available)

	_, err = store.CreateUser(ctx, newUser("u2", "viktor_a"))
	assert.ErrorIs(t, err, apperr.ErrUsernameTaken)
	assert.ErrorIs(t, err, apperr.Conflict)

	available, err = store.IsUsernameAvailable(ctx, "lee_zii_jia")
	require.NoError(t, err)
	assert.True(t, available)
}

func TestCreateUserValidation(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(*user.NewUser)
		field string
	}{
		{"bad email", func(u *user.NewUser) { u.Email = "a@b" }, "email"},
		{"short username", func(u *user.NewUser) { u.Username = "ab_c." }, "username"},
		{"uppercase username", func(u *user.NewUser) { u.Username = "Viktor_A" }, "username"},
		{"digits in full name", func(u *user.NewUser) { u.DisplayName = "Viktor 2" }, "display_name"},
		{"blank display name", func(u *user.NewUser) { u.DisplayName = "   " }, "display_name"},
		{"space in nickname", func(u *user.NewUser) { u.Nickname = "Vik tor" }, "nickname"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newUser("u1", "viktor_a")
			tt.edit(&in)
			_, err := store.CreateUser(ctx, in)
			require.ErrorIs(t, err, apperr.Validation)

			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestUpdateProfileAndVerify(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	_, err := store.CreateUser(ctx, newUser("u1", "viktor_a"))
	require.NoError(t, err)

	bio := "Left-handed, loves the net"
	nick := "Vik"
	updated, err := store.UpdateProfile(ctx, "u1", user.ProfileUpdate{Bio: &bio, Nickname: &nick})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, "Vik", updated.Nickname)

	bad := "V1k"
	_, err = store.UpdateProfile(ctx, "u1", user.ProfileUpdate{Nickname: &bad})
	assert.ErrorIs(t, err, apperr.Validation)

	blank := "  "
	_, err = store.UpdateProfile(ctx, "u1", user.ProfileUpdate{DisplayName: &blank})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "display_name", appErr.Field)

	_, err = store.UpdateProfile(ctx, "missing", user.ProfileUpdate{Bio: &bio})
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	require.NoError(t, store.SetVerified(ctx, "u1", true))
	got, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.Verified)

	assert.ErrorIs(t, store.SetVerified(ctx, "missing", true), apperr.ErrUserNotFound)
}

func TestSearchUsers(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	for id, username := range map[string]string{"u1": "viktor_a", "u2": "victor_s", "u3": "anders_a"} {
		_, err := store.CreateUser(ctx, newUser(id, username))
		require.NoError(t, err)
	}

	found, err := store.SearchUsers(ctx, "vi", 0)
	require.NoError(t, err)
	require.Len(t, found, 3, "display name matches too")

	found, err = store.SearchUsers(ctx, "vict", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "victor_s", found[0].Username)

	_, err = store.SearchUsers(ctx, " ", 0)
	assert.ErrorIs(t, err, apperr.Validation)
}
