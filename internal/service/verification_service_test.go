package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"drobeo/internal/models"
	"drobeo/internal/repository"
	"drobeo/internal/sms"
	"drobeo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var codeInMessage = regexp.MustCompile(`code is: (\d{6})\.`)

type failingSender struct{}

func (failingSender) Send(context.Context, string, string) error {
	return errors.New("carrier unavailable")
}

func newVerification(t *testing.T, sender sms.Sender) (*VerificationService, *fixedClock) {
	t.Helper()
	db := testutil.NewDB(t)
	clock := &fixedClock{t: time.Date(2024, 12, 15, 9, 0, 0, 0, time.UTC)}
	svc := NewVerificationService(repository.NewPhoneVerificationRepository(db), sender).WithClock(clock.Now)
	svc.bcryptCost = bcrypt.MinCost
	return svc, clock
}

func lastCode(t *testing.T, sender *sms.LogSender) string {
	t.Helper()
	msg, ok := sender.Last()
	require.True(t, ok, "no message sent")
	m := codeInMessage.FindStringSubmatch(msg.Body)
	require.Len(t, m, 2, "unexpected body %q", msg.Body)
	return m[1]
}

func TestGenerateCode_Range(t *testing.T) {
	t.Parallel()
	for i := 0; i < 500; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestVerification_MessageText(t *testing.T) {
	sender := sms.NewLogSender(nil)
	svc, _ := newVerification(t, sender)

	phone, err := svc.RequestCode(context.Background(), "(555) 123-4567")
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", phone)

	msg, ok := sender.Last()
	require.True(t, ok)
	assert.Equal(t, "+15551234567", msg.To)
	assert.Equal(t, VerificationMessage(lastCode(t, sender)), msg.Body)
	assert.Contains(t, msg.Body, "This code expires in 10 minutes.")
}

func TestVerification_ConsumeOnce(t *testing.T) {
	sender := sms.NewLogSender(nil)
	svc, _ := newVerification(t, sender)
	ctx := context.Background()

	_, err := svc.RequestCode(ctx, "+15551234567")
	require.NoError(t, err)
	code := lastCode(t, sender)

	phone, err := svc.Consume(ctx, "+15551234567", code)
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", phone)

	_, err = svc.Consume(ctx, "+15551234567", code)
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}

func TestVerification_MatchDoesNotConsume(t *testing.T) {
	sender := sms.NewLogSender(nil)
	svc, clock := newVerification(t, sender)
	ctx := context.Background()

	_, err := svc.RequestCode(ctx, "555-123-4567")
	require.NoError(t, err)
	code := lastCode(t, sender)

	first, err := svc.Match(ctx, "+15551234567", code)
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", first.Phone)
	second, err := svc.Match(ctx, "+15551234567", code)
	require.NoError(t, err)

	require.NoError(t, svc.Redeem(ctx, first))
	assertAppErrorCode(t, svc.Redeem(ctx, second), models.CodeUnauthorized)
	_, err = svc.Match(ctx, "+15551234567", code)
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	// A match that expires before redemption is rejected.
	_, err = svc.RequestCode(ctx, "+15551234567")
	require.NoError(t, err)
	late, err := svc.Match(ctx, "+15551234567", lastCode(t, sender))
	require.NoError(t, err)
	clock.Advance(VerificationCodeTTL + time.Second)
	assertAppErrorCode(t, svc.Redeem(ctx, late), models.CodeUnauthorized)
}

func TestVerification_Expiry(t *testing.T) {
	sender := sms.NewLogSender(nil)
	svc, clock := newVerification(t, sender)
	ctx := context.Background()

	_, err := svc.RequestCode(ctx, "+15551234567")
	require.NoError(t, err)
	code := lastCode(t, sender)

	clock.Advance(11 * time.Minute)
	_, err = svc.Consume(ctx, "+15551234567", code)
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}

func TestVerification_WrongCodeAndPhone(t *testing.T) {
	sender := sms.NewLogSender(nil)
	svc, _ := newVerification(t, sender)
	ctx := context.Background()

	_, err := svc.RequestCode(ctx, "+15551234567")
	require.NoError(t, err)
	code := lastCode(t, sender)

	_, err = svc.Consume(ctx, "+15551234567", "000000")
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	_, err = svc.Consume(ctx, "+15559999999", code)
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	_, err = svc.Consume(ctx, "+15551234567", "12")
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	// The right code still works after failed attempts.
	_, err = svc.Consume(ctx, "+15551234567", code)
	require.NoError(t, err)
}

func TestVerification_IndependentCodes(t *testing.T) {
	sender := sms.NewLogSender(nil)
	svc, _ := newVerification(t, sender)
	ctx := context.Background()

	_, err := svc.RequestCode(ctx, "+15551234567")
	require.NoError(t, err)
	first := lastCode(t, sender)
	_, err = svc.RequestCode(ctx, "+15551234567")
	require.NoError(t, err)
	second := lastCode(t, sender)

	_, err = svc.Consume(ctx, "+15551234567", first)
	require.NoError(t, err)
	_, err = svc.Consume(ctx, "+15551234567", second)
	require.NoError(t, err)
}

func TestVerification_InvalidPhone(t *testing.T) {
	svc, _ := newVerification(t, sms.NewLogSender(nil))
	_, err := svc.RequestCode(context.Background(), "not a phone")
	assertValidationError(t, err)
	assert.Equal(t, []string{"phone_number"}, fieldNames(err))
}

func TestVerification_DeliveryFailureKeepsRecord(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewPhoneVerificationRepository(db)
	svc := NewVerificationService(repo, failingSender{})
	svc.bcryptCost = bcrypt.MinCost

	_, err := svc.RequestCode(context.Background(), "+15551234567")
	assertAppErrorCode(t, err, models.CodeSMSDeliveryFailed)

	active, err := repo.ActiveForPhone(context.Background(), "+15551234567", time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
