package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"drobeo/internal/middleware"
	"drobeo/internal/models"
	"drobeo/internal/observability"
	"drobeo/internal/repository"
	"drobeo/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult is returned by every successful sign-in.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
	NewUser   bool         `json:"new_user,omitempty"`
}

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type PhoneVerifyInput struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
	Name        string `json:"name"`
}

type AuthService struct {
	users      repository.UserRepository
	codes      *VerificationService
	secret     string
	rdb        *redis.Client
	now        func() time.Time
	bcryptCost int
	log        *observability.ServiceLogger
}

func NewAuthService(users repository.UserRepository, codes *VerificationService, secret string, rdb *redis.Client) *AuthService {
	return &AuthService{
		users:      users,
		codes:      codes,
		secret:     secret,
		rdb:        rdb,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
		log:        observability.NewServiceLogger("auth"),
	}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	var v validation.Errors
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	v.AddErr("username", validation.ValidateUsername(in.Username))
	v.AddErr("email", validation.ValidateEmail(in.Email))
	v.AddErr("password", validation.ValidatePassword(in.Password))
	validation.Optional(&v, "name", in.Name, 100)
	if err := v.Err(); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}
	existing, err = s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	email := in.Email
	user := &models.User{
		Username: in.Username,
		Email:    &email,
		Password: string(hashed),
		Name:     strings.TrimSpace(in.Name),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user signed up", map[string]any{"user_id": user.ID, "method": "email"})

	return s.issue(user, true)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.HasPasswordLogin() {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	return s.issue(user, false)
}

// SendPhoneCode texts a fresh verification code to the number.
func (s *AuthService) SendPhoneCode(ctx context.Context, phone string) error {
	_, err := s.codes.RequestCode(ctx, phone)
	return err
}

// VerifyPhone redeems a code and signs the owner of the number in, creating
// an account on first use.
func (s *AuthService) VerifyPhone(ctx context.Context, in PhoneVerifyInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.PhoneNumber == "" || in.Code == "" || in.Name == "" {
		return nil, models.NewValidationError("Phone number, code, and name are required")
	}
	var v validation.Errors
	validation.Name(&v, "name", in.Name, 100)
	if err := v.Err(); err != nil {
		return nil, err
	}

	phone, err := s.codes.Consume(ctx, in.PhoneNumber, in.Code)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.createPhoneUser(ctx, phone, in.Name)
		if err != nil {
			return nil, err
		}
		s.log.Info(ctx, "user signed up", map[string]any{"user_id": user.ID, "method": "phone"})
		return s.issue(user, true)
	}

	if !user.PhoneVerified {
		user.PhoneVerified = true
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return s.issue(user, false)
}

// PhoneLogin redeems a code for an existing phone account.
func (s *AuthService) PhoneLogin(ctx context.Context, rawPhone, code string) (*AuthResult, error) {
	if rawPhone == "" || code == "" {
		return nil, models.NewValidationError("Phone number and code are required")
	}

	// The code stays usable for signup when no account owns the number.
	match, err := s.codes.Match(ctx, rawPhone, code)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByPhone(ctx, match.Phone)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &models.AppError{Code: models.CodeNotFound, Message: "No account found for this phone number"}
	}
	if err := s.codes.Redeem(ctx, match); err != nil {
		return nil, err
	}

	if !user.PhoneVerified {
		user.PhoneVerified = true
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return s.issue(user, false)
}

// Logout revokes the presented token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *middleware.Claims) error {
	if claims == nil {
		return nil
	}
	if err := middleware.RevokeToken(ctx, s.rdb, claims.JTI, claims.ExpiresAt); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) issue(user *models.User, created bool) (*AuthResult, error) {
	token, claims, err := middleware.IssueToken(s.secret, user.ID, user.Username, s.now())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user, NewUser: created}, nil
}

// maxPhoneUsernameAttempts bounds the suffixes tried when the derived
// username is already taken.
const maxPhoneUsernameAttempts = 5

// createPhoneUser stores a new phone account. Numbers that share their last
// ten digits get "_2", "_3", ... appended to the derived username.
func (s *AuthService) createPhoneUser(ctx context.Context, phone, name string) (*models.User, error) {
	base := PhoneUsername(phone)
	for attempt := 1; attempt <= maxPhoneUsernameAttempts; attempt++ {
		username := base
		if attempt > 1 {
			username = fmt.Sprintf("%s_%d", base, attempt)
		}
		user := &models.User{
			Username:      username,
			PhoneNumber:   &phone,
			PhoneVerified: true,
			Name:          name,
		}
		err := s.users.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !models.IsCode(err, models.CodeConflict) {
			return nil, err
		}
		taken, lookupErr := s.users.GetByUsername(ctx, username)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if taken == nil {
			// The conflict is on the phone number itself.
			return nil, err
		}
	}
	return nil, models.NewConflictError("Could not assign a username for this phone number")
}

// PhoneUsername derives the username given to accounts created by phone:
// "user_" followed by the last ten digits of the number.
func PhoneUsername(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return "user_" + digits
}
