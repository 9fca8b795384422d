package auth

import (
	"context"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/shiptrack/shiptrack-backend/internal/users"
	"github.com/shiptrack/shiptrack-backend/pkg/config"
	"github.com/shiptrack/shiptrack-backend/pkg/db"
	"github.com/shiptrack/shiptrack-backend/pkg/db/models"
	"github.com/shiptrack/shiptrack-backend/pkg/enums"
	pkgerrors "github.com/shiptrack/shiptrack-backend/pkg/errors"
	"github.com/shiptrack/shiptrack-backend/pkg/security"
)

const duplicateEmailMessage = "user with this email already exists"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SignupService creates self-service accounts with the user role.
type SignupService interface {
	Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type signupUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// SignupServiceParams packages the dependencies for the signup flow.
type SignupServiceParams struct {
	DB             txRunner
	PasswordConfig config.PasswordConfig
	// RepoFactory builds the user repository bound to the transaction handle.
	// Defaults to users.NewRepository.
	RepoFactory func(tx *gorm.DB) signupUserRepository
}

type signupService struct {
	db          txRunner
	passwordCfg config.PasswordConfig
	repoFactory func(tx *gorm.DB) signupUserRepository
}

// NewSignupService builds a signup service with the provided dependencies.
func NewSignupService(params SignupServiceParams) (SignupService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	factory := params.RepoFactory
	if factory == nil {
		factory = func(tx *gorm.DB) signupUserRepository { return users.NewRepository(tx) }
	}
	return &signupService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
		repoFactory: factory,
	}, nil
}

func (s *signupService) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := users.NormalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email, and password are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email format")
	}
	if err := security.ValidatePasswordLength(req.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "password must be between 12 and 25 characters")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, duplicateEmailMessage)
		} else if !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := repo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			Name:         &name,
			PasswordHash: passwordHash,
			Role:         enums.RoleUser,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, duplicateEmailMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "signup")
	}

	return &SignupResponse{
		Message: "user created successfully",
		User:    users.FromModel(created),
	}, nil
}
