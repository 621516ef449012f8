package user

import (
	"context"
	"errors"
	"strings"

	"agroMarket/domain"
	"agroMarket/pkg/logger"
	"agroMarket/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindNonAdmins(ctx context.Context) ([]domain.User, error)
	DeleteNonAdmin(ctx context.Context, id uint) (int64, error)
}

// SessionRevoker ends every login session of a user.
type SessionRevoker interface {
	DeleteUserSessions(ctx context.Context, userID uint) error
}

type userService struct {
	userRepo UserRepository
	sessions SessionRevoker
	validate *validator.Validate
}

func NewUserService(userRepo UserRepository, sessions SessionRevoker, validate *validator.Validate) *userService {
	return &userService{
		userRepo: userRepo,
		sessions: sessions,
		validate: validate,
	}
}

// RegisterInput is what the public register form submits.
type RegisterInput struct {
	Username string
	Email    string
	Whatsapp string
	Password string
	Role     string
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := s.validate.Var(email, "required,email"); err != nil {
		logger.Error("Invalid email format", err)
		return domain.User{}, errors.New("invalid email format")
	}

	if err := s.validate.Var(in.Password, "required,min=6"); err != nil {
		logger.Error("Invalid user password", err)
		return domain.User{}, errors.New("password must be at least 6 characters")
	}

	role, ok := domain.ParseRole(in.Role)
	if !ok || !role.SelfRegistrable() {
		logger.Error("Invalid register role", "role", in.Role)
		return domain.User{}, domain.ErrInvalidRole
	}

	// Check if email already exists
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existingUser.ID > 0 {
		logger.Warn("Email already exists", "email", email)
		return domain.User{}, domain.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		logger.Error("Failed to look up email", err)
		return domain.User{}, err
	}

	passwordHash, err := utils.HashPassword(in.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, errors.New("failed to hash password")
	}

	newUser := domain.User{
		Username: strings.TrimSpace(in.Username),
		Email:    email,
		Whatsapp: strings.TrimSpace(in.Whatsapp),
		Password: string(passwordHash),
		Role:     role,
	}

	// the unique index still catches a register racing this one
	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return domain.User{}, err
	}

	logger.Info("User registered", "user_id", newUser.ID, "role", role.String())

	newUser.Password = ""
	return newUser, nil
}

// Authenticate checks credentials. Unknown email and wrong password both return
// ErrInvalidCredentials.
func (s *userService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			logger.Warn("Login with unknown email")
			return domain.User{}, domain.ErrInvalidCredentials
		}
		logger.Error("Failed to find user for login", err)
		return domain.User{}, err
	}

	if !utils.CheckPassword(password, user.Password) {
		logger.Warn("User password incorrect", "user_id", user.ID)
		return domain.User{}, domain.ErrInvalidCredentials
	}

	user.Password = ""
	return user, nil
}

// GetNonAdminUsers lists farmers and customers for the admin overview
func (s *userService) GetNonAdminUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindNonAdmins(ctx)
	if err != nil {
		logger.Error("Failed to get users", err)
		return nil, err
	}

	for i := range users {
		users[i].Password = ""
	}

	return users, nil
}

// DeleteUser removes a farmer or customer. Admin accounts are left alone and the call
// returns ErrProtectedUser. Products and orders of the user are not touched.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	target, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("User not found for deletion", err)
		return err
	}

	if target.Role == domain.RoleAdmin {
		logger.Warn("Refused to delete admin account", "user_id", id)
		return domain.ErrProtectedUser
	}

	// the role predicate is repeated in the delete itself
	if _, err := s.userRepo.DeleteNonAdmin(ctx, id); err != nil {
		logger.Error("Failed to delete user", err)
		return err
	}

	if s.sessions != nil {
		if err := s.sessions.DeleteUserSessions(ctx, id); err != nil {
			logger.Error("Failed to revoke sessions of deleted user", err, "user_id", id)
			return err
		}
	}

	logger.Info("User deleted", "user_id", id)
	return nil
}

// EnsureAdmin creates the bootstrap admin account when its email is not registered yet.
func (s *userService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return errors.New("failed to hash password")
	}

	if username == "" {
		username = "admin"
	}

	admin := domain.User{
		Username: username,
		Email:    email,
		Password: string(passwordHash),
		Role:     domain.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, &admin); err != nil && !errors.Is(err, domain.ErrDuplicateEmail) {
		return err
	}

	logger.Info("Admin account bootstrapped", "email", email)
	return nil
}
