package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/adapters/event"
	"github.com/khoahotran/careerfolio/internal/application/service"
	"github.com/khoahotran/careerfolio/internal/domain/user"
	"github.com/khoahotran/careerfolio/internal/domain/verification"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/auth"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

// RegisterUseCase drives the sign-up flow: duplicate check, email code,
// code verification and account creation.
type RegisterUseCase struct {
	userRepo        user.Repository
	codes           verification.Store
	publisher       service.EventPublisher
	verificationTTL time.Duration
	logger          logger.Logger
}

func NewRegisterUseCase(repo user.Repository, codes verification.Store, publisher service.EventPublisher, ttl time.Duration, log logger.Logger) *RegisterUseCase {
	return &RegisterUseCase{
		userRepo:        repo,
		codes:           codes,
		publisher:       publisher,
		verificationTTL: ttl,
		logger:          log,
	}
}

const DuplicateTypeID = "id"

type CheckDuplicateInput struct {
	Type  string
	Value string
}

// ExecuteCheckDuplicate reports whether the login id is already taken.
func (uc *RegisterUseCase) ExecuteCheckDuplicate(ctx context.Context, input CheckDuplicateInput) (bool, error) {
	ctx, span := tracer.Start(ctx, "CheckDuplicate")
	defer span.End()

	if input.Type != DuplicateTypeID {
		err := apperror.NewInvalidInput("unsupported duplicate check type", nil)
		span.RecordError(err)
		return false, err
	}
	if strings.TrimSpace(input.Value) == "" {
		err := apperror.NewInvalidInput("value is required", nil)
		span.RecordError(err)
		return false, err
	}
	exists, err := uc.userRepo.LoginIDExists(ctx, input.Value)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return exists, nil
}

type SendCodeInput struct {
	Email string
}

func (uc *RegisterUseCase) ExecuteSendCode(ctx context.Context, input SendCodeInput) error {
	ctx, span := tracer.Start(ctx, "SendCode")
	defer span.End()

	email, err := normalizeEmail(input.Email)
	if err != nil {
		span.RecordError(err)
		return err
	}

	exists, err := uc.userRepo.EmailExists(ctx, email)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if exists {
		err := apperror.NewConflict("user", "email", email)
		span.RecordError(err)
		return err
	}

	code, err := verification.NewCode()
	if err != nil {
		err = apperror.NewInternal("failed to generate verification code", err)
		span.RecordError(err)
		return err
	}
	if err := uc.codes.Save(ctx, email, verification.Entry{Code: code}, uc.verificationTTL); err != nil {
		span.RecordError(err)
		return err
	}

	payload := event.MailEventPayload{
		Kind:       event.MailKindVerificationCode,
		To:         email,
		Code:       code,
		TTLMinutes: int(uc.verificationTTL / time.Minute),
	}
	go func() {
		if err := uc.publisher.PublishMailEvent(context.Background(), payload); err != nil {
			uc.logger.Error("Failed to publish Kafka 'verification_code' event", err, zap.String("email", payload.To))
		}
	}()

	uc.logger.Info("Verification code issued", zap.String("email", email))
	return nil
}

type VerifyCodeInput struct {
	Email string
	Code  string
}

func (uc *RegisterUseCase) ExecuteVerifyCode(ctx context.Context, input VerifyCodeInput) error {
	ctx, span := tracer.Start(ctx, "VerifyCode")
	defer span.End()

	email, err := normalizeEmail(input.Email)
	if err != nil {
		span.RecordError(err)
		return err
	}

	entry, err := uc.codes.Get(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			err = apperror.NewInvalidInput("code not sent or expired", nil)
		}
		span.RecordError(err)
		return err
	}
	if entry.Code != strings.TrimSpace(input.Code) {
		err := apperror.NewInvalidInput("verification code does not match", nil)
		span.RecordError(err)
		return err
	}

	if err := uc.codes.MarkVerified(ctx, email); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			err = apperror.NewInvalidInput("code not sent or expired", nil)
		}
		span.RecordError(err)
		return err
	}
	return nil
}

type SignupInput struct {
	Name        string
	Email       string
	PhoneNumber *string
	LoginID     string
	Password    string
}

func (uc *RegisterUseCase) ExecuteSignup(ctx context.Context, input SignupInput) (int64, error) {
	ctx, span := tracer.Start(ctx, "Signup")
	defer span.End()

	email, err := normalizeEmail(input.Email)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.LoginID) == "" || input.Password == "" {
		err := apperror.NewInvalidInput("name, id and password are required", nil)
		span.RecordError(err)
		return 0, err
	}

	entry, err := uc.codes.Get(ctx, email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		span.RecordError(err)
		return 0, err
	}
	if entry == nil || !entry.Verified {
		err := apperror.NewInvalidInput("email is not verified", nil)
		span.RecordError(err)
		return 0, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		err = apperror.NewInternal("failed to hash password", err)
		span.RecordError(err)
		return 0, err
	}

	userID, err := uc.userRepo.CreateAccount(ctx, user.NewAccount{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PhoneNumber:  input.PhoneNumber,
		LoginID:      strings.TrimSpace(input.LoginID),
		PasswordHash: hash,
		Role:         auth.RoleUser,
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	if err := uc.codes.Delete(ctx, email); err != nil {
		uc.logger.Warn("Failed to delete verification entry", zap.String("email", email), zap.Error(err))
	}
	return userID, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperror.NewInvalidInput("email is required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperror.NewInvalidInput("email is malformed", err)
	}
	return email, nil
}
