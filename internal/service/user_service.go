package service

import (
	"context"
	"strings"

	"drobeo/internal/models"
	"drobeo/internal/repository"
	"drobeo/internal/validation"

	"gorm.io/datatypes"
)

type UserService struct {
	userRepo  repository.UserRepository
	statsRepo repository.StatsRepository
}

type UpdateProfileInput struct {
	UserID uint
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

func NewUserService(userRepo repository.UserRepository, statsRepo repository.StatsRepository) *UserService {
	return &UserService{userRepo: userRepo, statsRepo: statsRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	var v validation.Errors
	if in.Name != nil {
		validation.Name(&v, "name", *in.Name, 100)
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Avatar != nil {
		validation.URL(&v, "avatar", *in.Avatar)
		user.Avatar = *in.Avatar
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CompleteOnboarding stores the user's style preferences and marks onboarding done.
func (s *UserService) CompleteOnboarding(ctx context.Context, userID uint, prefs models.Preferences) (*models.User, error) {
	var v validation.Errors
	for _, season := range prefs.Seasons {
		validation.Season(&v, "seasons", season)
	}
	for _, occasion := range prefs.Occasions {
		validation.Occasion(&v, "occasions", occasion)
	}
	v.Check(len(prefs.Styles) <= 20, "styles", "too many values")
	v.Check(len(prefs.Goals) <= 20, "goals", "too many values")
	validation.Optional(&v, "age", prefs.Age, 20)
	validation.Optional(&v, "gender", prefs.Gender, 50)
	if err := v.Err(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Preferences = datatypes.NewJSONType(prefs)
	user.OnboardingComplete = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Stats summarises the user's wardrobe, outfits and wishlist.
func (s *UserService) Stats(ctx context.Context, userID uint) (*models.UserStats, error) {
	return s.statsRepo.GetUserStats(ctx, userID)
}

type CategoryInput struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type CategoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	var v validation.Errors
	validation.Name(&v, "name", in.Name, 50)
	validation.Optional(&v, "icon", in.Icon, 50)
	validation.Optional(&v, "color", in.Color, 20)
	if err := v.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Category already exists")
	}

	category := &models.Category{Name: name, Icon: in.Icon, Color: in.Color}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}
