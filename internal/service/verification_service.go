package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"drobeo/internal/models"
	"drobeo/internal/observability"
	"drobeo/internal/repository"
	"drobeo/internal/sms"
	"drobeo/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	// VerificationCodeTTL is how long an issued code stays usable.
	VerificationCodeTTL = 10 * time.Minute

	codeMin  = 100000
	codeSpan = 900000
)

func invalidCodeError() error {
	return models.NewUnauthorizedError("Invalid or expired verification code")
}

type VerificationService struct {
	repo       repository.PhoneVerificationRepository
	sender     sms.Sender
	now        func() time.Time
	bcryptCost int
	log        *observability.ServiceLogger
}

func NewVerificationService(repo repository.PhoneVerificationRepository, sender sms.Sender) *VerificationService {
	return &VerificationService{
		repo:       repo,
		sender:     sender,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
		log:        observability.NewServiceLogger("verification"),
	}
}

// WithClock replaces the time source.
func (s *VerificationService) WithClock(now func() time.Time) *VerificationService {
	s.now = now
	return s
}

// GenerateCode returns a uniformly distributed six digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// VerificationMessage is the SMS body sent for code.
func VerificationMessage(code string) string {
	return fmt.Sprintf("Your Drobeo verification code is: %s. This code expires in 10 minutes.", code)
}

// RequestCode issues a new code for the phone number and texts it. The
// normalised number is returned. When delivery fails the stored code stays
// valid and an SMS_DELIVERY_FAILED error is returned.
func (s *VerificationService) RequestCode(ctx context.Context, rawPhone string) (string, error) {
	phone, err := validation.NormalizePhoneNumber(rawPhone)
	if err != nil {
		return "", models.NewFieldValidationError(models.FieldError{Field: "phone_number", Message: err.Error()})
	}

	code, err := GenerateCode()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.bcryptCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	now := s.now().UTC()
	record := &models.PhoneVerification{
		PhoneNumber: phone,
		CodeHash:    string(hash),
		ExpiresAt:   now.Add(VerificationCodeTTL),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return "", err
	}
	observability.VerificationCodes.WithLabelValues("issued").Inc()

	if err := s.sender.Send(ctx, phone, VerificationMessage(code)); err != nil {
		observability.VerificationCodes.WithLabelValues("delivery_failed").Inc()
		s.log.Error(ctx, "verification code delivery failed", err, map[string]any{"verification_id": record.ID})
		return phone, models.NewSMSDeliveryFailedError(err)
	}
	observability.VerificationCodes.WithLabelValues("delivered").Inc()
	return phone, nil
}

// CodeMatch is a verified but not yet redeemed code.
type CodeMatch struct {
	// Phone is the normalised number the code was issued to.
	Phone    string
	recordID uint
}

// Match checks code against the active codes for the phone number without
// using it up. Callers that go on to act on the number must Redeem the match.
func (s *VerificationService) Match(ctx context.Context, rawPhone, code string) (*CodeMatch, error) {
	phone, err := validation.NormalizePhoneNumber(rawPhone)
	if err != nil {
		return nil, models.NewFieldValidationError(models.FieldError{Field: "phone_number", Message: err.Error()})
	}
	if len(code) != 6 {
		observability.VerificationCodes.WithLabelValues("rejected").Inc()
		return nil, invalidCodeError()
	}

	active, err := s.repo.ActiveForPhone(ctx, phone, s.now().UTC())
	if err != nil {
		return nil, err
	}
	for _, record := range active {
		if bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(code)) == nil {
			return &CodeMatch{Phone: phone, recordID: record.ID}, nil
		}
	}

	observability.VerificationCodes.WithLabelValues("rejected").Inc()
	return nil, invalidCodeError()
}

// Redeem marks a matched code consumed. It fails when the code was redeemed
// or expired since it was matched.
func (s *VerificationService) Redeem(ctx context.Context, m *CodeMatch) error {
	ok, err := s.repo.Consume(ctx, m.recordID, s.now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		observability.VerificationCodes.WithLabelValues("rejected").Inc()
		return invalidCodeError()
	}
	observability.VerificationCodes.WithLabelValues("consumed").Inc()
	return nil
}

// Consume redeems code for the phone number. Each code works at most once and
// only until it expires. The normalised number is returned.
func (s *VerificationService) Consume(ctx context.Context, rawPhone, code string) (string, error) {
	m, err := s.Match(ctx, rawPhone, code)
	if err != nil {
		return "", err
	}
	if err := s.Redeem(ctx, m); err != nil {
		return "", err
	}
	return m.Phone, nil
}
