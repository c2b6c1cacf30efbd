package auth

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/domain/user"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/auth"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

var (
	ErrInvalidCredentials = errors.New("id or password is incorrect")
)

type LoginUseCase struct {
	userRepo user.Repository
	jwtSvc   *auth.JWTService
	logger   logger.Logger
}

func NewLoginUseCase(repo user.Repository, jwtSvc *auth.JWTService, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		userRepo: repo,
		jwtSvc:   jwtSvc,
		logger:   log,
	}
}

type LoginInput struct {
	LoginID  string
	Password string
}

type LoginOutput struct {
	AccessToken string
	Account     *user.Account
}

var tracer = otel.Tracer("auth_usecase")

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	if strings.TrimSpace(input.LoginID) == "" || input.Password == "" {
		err := apperror.NewInvalidInput("id and password are required", nil)
		span.RecordError(err)
		return nil, err
	}

	cred, err := uc.userRepo.FindCredentialByLoginID(ctx, input.LoginID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			err = apperror.NewUnauthorized("unknown id", ErrInvalidCredentials)
		}
		span.RecordError(err)
		return nil, err
	}

	if !auth.CheckPasswordHash(input.Password, cred.PasswordHash) {
		err := apperror.NewUnauthorized("incorrect password", ErrInvalidCredentials)
		span.RecordError(err)
		return nil, err
	}

	account, err := uc.userRepo.FindAccountByID(ctx, cred.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	token, err := uc.jwtSvc.GenerateToken(auth.Principal{
		UserID:   account.ID,
		Role:     account.Role,
		Name:     account.Name,
		Email:    account.Email,
		Nickname: account.Nickname,
	})
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.Int64("user_id", account.ID))
		err = apperror.NewInternal("failed to generate token", err)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("user_id", account.ID))
	return &LoginOutput{AccessToken: token, Account: account}, nil
}
