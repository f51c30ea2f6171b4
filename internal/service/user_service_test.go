package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"drobeo/internal/models"
	"drobeo/internal/repository"
	"drobeo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserService_UpdateProfile_Validation(t *testing.T) {
	t.Parallel()

	t.Run("name too long", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Name: "original"}, nil
		}
		svc := NewUserService(repo, nil)
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			UserID: 1,
			Name:   strPtr(strings.Repeat("x", 101)),
		})
		assertValidationError(t, err)
	})

	t.Run("avatar must be a url", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		}
		svc := NewUserService(repo, nil)
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			UserID: 1,
			Avatar: strPtr("javascript:alert(1)"),
		})
		assertValidationError(t, err)
		assert.Equal(t, []string{"avatar"}, fieldNames(err))
	})
}

func TestUserService_UpdateProfile_PartialUpdate(t *testing.T) {
	t.Parallel()

	t.Run("only name changes when avatar is omitted", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Name: "Old", Avatar: "/media/a.webp"}, nil
		}
		var saved *models.User
		repo.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := NewUserService(repo, nil)
		user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			UserID: 1,
			Name:   strPtr("  New Name "),
		})
		require.NoError(t, err)
		assert.Equal(t, "New Name", user.Name)
		assert.Equal(t, "/media/a.webp", user.Avatar, "avatar should be unchanged when not provided")
		require.NotNil(t, saved)
		assert.Equal(t, "New Name", saved.Name)
	})

	t.Run("avatar can be cleared", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Name: "Sam", Avatar: "https://cdn.example.com/a.png"}, nil
		}
		svc := NewUserService(repo, nil)
		user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Avatar: strPtr("")})
		require.NoError(t, err)
		assert.Equal(t, "Sam", user.Name)
		assert.Empty(t, user.Avatar)
	})
}

func TestUserService_UpdateProfile_RepoError(t *testing.T) {
	t.Parallel()

	t.Run("GetByID error propagates", func(t *testing.T) {
		t.Parallel()
		repoErr := errors.New("db connection error")
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.User, error) {
			return nil, repoErr
		}
		svc := NewUserService(repo, nil)
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Name: strPtr("new")})
		assert.ErrorIs(t, err, repoErr)
	})

	t.Run("Update error propagates", func(t *testing.T) {
		t.Parallel()
		repoErr := errors.New("update failed")
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		}
		repo.updateFn = func(_ context.Context, _ *models.User) error {
			return repoErr
		}
		svc := NewUserService(repo, nil)
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Name: strPtr("new")})
		assert.ErrorIs(t, err, repoErr)
	})
}

func TestUserService_CompleteOnboarding(t *testing.T) {
	t.Parallel()

	t.Run("stores preferences", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		}
		var saved *models.User
		repo.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := NewUserService(repo, nil)
		prefs := models.Preferences{
			Styles:    []string{"minimal"},
			Seasons:   []models.Season{models.SeasonFall, models.SeasonWinter},
			Occasions: []models.Occasion{models.OccasionWork},
			Goals:     []string{"capsule wardrobe"},
		}
		user, err := svc.CompleteOnboarding(context.Background(), 3, prefs)
		require.NoError(t, err)
		assert.True(t, user.OnboardingComplete)
		require.NotNil(t, saved)
		assert.Equal(t, prefs, saved.Preferences.Data())
	})

	t.Run("rejects unknown enums before loading the user", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(context.Context, uint) (*models.User, error) {
			t.Fatal("user must not be loaded")
			return nil, nil
		}
		svc := NewUserService(repo, nil)
		_, err := svc.CompleteOnboarding(context.Background(), 3, models.Preferences{
			Seasons:   []models.Season{"monsoon"},
			Occasions: []models.Occasion{"brunch"},
		})
		assertValidationError(t, err)
		assert.ElementsMatch(t, []string{"seasons", "occasions"}, fieldNames(err))
	})
}

func TestUserService_Stats(t *testing.T) {
	t.Parallel()
	stats := &statsRepoStub{getUserStatsFn: func(_ context.Context, userID uint) (*models.UserStats, error) {
		return &models.UserStats{TotalItems: 12, OutfitsCreated: 4, ItemsWornPercentage: 50}, nil
	}}
	svc := NewUserService(noopUserRepo(), stats)
	got, err := svc.Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.TotalItems)
	assert.Equal(t, 50, got.ItemsWornPercentage)
}

func TestUserService_GetUserByID(t *testing.T) {
	t.Parallel()

	t.Run("returns user from repo", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "alice"}, nil
		}
		svc := NewUserService(repo, nil)
		user, err := svc.GetUserByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, uint(7), user.ID)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("missing user is not found", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), nil)
		_, err := svc.GetUserByID(context.Background(), 99)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestCategoryService(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedCategories(t, db)
	svc := NewCategoryService(repository.NewCategoryRepository(db))
	ctx := context.Background()

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(testutil.SeedCategoryNames))

	created, err := svc.Create(ctx, CategoryInput{Name: " Swimwear ", Icon: "waves", Color: "#00aaff"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Swimwear", created.Name)

	_, err = svc.Create(ctx, CategoryInput{Name: "shoes"})
	assertAppErrorCode(t, err, models.CodeConflict)

	_, err = svc.Create(ctx, CategoryInput{Name: ""})
	assertValidationError(t, err)
}
