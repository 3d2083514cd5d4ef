package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"food-ordering-api/apperr"
	"food-ordering-api/models"
	"food-ordering-api/store"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	maxNicknameLen = 100
	minPasswordLen = 6
)

// AccountService covers registration, login, profile settings and admin user management.
type AccountService struct {
	users    UserStore
	tokens   TokenIssuer
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewAccountService(users UserStore, tokens TokenIssuer, log logrus.FieldLogger) *AccountService {
	return &AccountService{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
		log:      log,
	}
}

type RegisterInput struct {
	Nickname        string
	Email           string
	Password        string
	DeliveryAddress *string
}

// ProfileUpdate carries the editable profile fields. Empty Nickname or Email
// keeps the stored value; SetAddress replaces the address, nil included.
type ProfileUpdate struct {
	Nickname        string
	Email           string
	DeliveryAddress *string
	SetAddress      bool
}

func (s *AccountService) validateAccount(in RegisterInput) []string {
	var errs []string
	nickname := strings.TrimSpace(in.Nickname)
	switch {
	case nickname == "":
		errs = append(errs, "Nickname is required")
	case utf8.RuneCountInString(nickname) > maxNicknameLen:
		errs = append(errs, "Nickname must be 1-100 characters")
	}
	email := store.NormalizeEmail(in.Email)
	switch {
	case email == "":
		errs = append(errs, "Email is required")
	case s.validate.Var(email, "email") != nil:
		errs = append(errs, "Invalid email format")
	}
	if len(in.Password) < minPasswordLen {
		errs = append(errs, "Password must be at least 6 characters")
	}
	return errs
}

func (s *AccountService) createAccount(ctx context.Context, in RegisterInput, role models.Role) (*models.User, error) {
	if errs := s.validateAccount(in); len(errs) > 0 {
		return nil, apperr.Validation(errs...)
	}

	taken, err := s.users.EmailTaken(ctx, in.Email, 0)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to check email")
	}
	if taken {
		return nil, apperr.Conflicting("Email already exists")
	}

	u := &models.User{
		Nickname:        strings.TrimSpace(in.Nickname),
		Email:           in.Email,
		Role:            role,
		DeliveryAddress: in.DeliveryAddress,
	}
	if err := s.users.Create(ctx, u, in.Password); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflicting("Email already exists")
		}
		return nil, apperr.Wrap(err, "Failed to create account")
	}
	return u, nil
}

// Register creates a CUSTOMER account.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	u, err := s.createAccount(ctx, in, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	s.log.WithField("user_id", u.ID).Info("customer registered")
	return u, nil
}

// Login checks credentials and issues a token. Unknown email and wrong
// password produce the same error.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, apperr.BadInput("Email and password are required")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if store.IsNotFound(err) {
		return "", nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return "", nil, apperr.Wrap(err, "Login failed. Please try again.")
	}
	if !s.users.VerifyPassword(u, password) {
		return "", nil, apperr.Unauthorized("Invalid credentials")
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", nil, apperr.Wrap(err, "Login failed. Please try again.")
	}
	return token, u, nil
}

func (s *AccountService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if store.IsNotFound(err) {
		return nil, apperr.Missing("User not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch profile")
	}
	return u, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, upd ProfileUpdate) (*models.User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role == models.RoleStaff {
		return nil, apperr.Denied("Staff can only change password")
	}

	var errs []string
	if nickname := strings.TrimSpace(upd.Nickname); nickname != "" {
		if utf8.RuneCountInString(nickname) > maxNicknameLen {
			errs = append(errs, "Nickname must be 1-100 characters")
		}
		u.Nickname = nickname
	}
	emailChanged := false
	if email := store.NormalizeEmail(upd.Email); email != "" {
		if s.validate.Var(email, "email") != nil {
			errs = append(errs, "Invalid email format")
		}
		emailChanged = email != u.Email
		u.Email = email
	}
	if len(errs) > 0 {
		return nil, apperr.Validation(errs...)
	}

	if emailChanged {
		taken, err := s.users.EmailTaken(ctx, u.Email, u.ID)
		if err != nil {
			return nil, apperr.Wrap(err, "Failed to check email")
		}
		if taken {
			return nil, apperr.Conflicting("Email already exists")
		}
	}
	if upd.SetAddress {
		u.DeliveryAddress = upd.DeliveryAddress
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflicting("Email already exists")
		}
		return nil, apperr.Wrap(err, "Failed to update profile")
	}
	return u, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("Current password and new password are required")
	}
	if len(next) < minPasswordLen {
		return apperr.Validation("New password must be at least 6 characters")
	}

	u, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !s.users.VerifyPassword(u, current) {
		return apperr.Unauthorized("Current password is incorrect")
	}
	if err := s.users.UpdatePassword(ctx, userID, next); err != nil {
		return apperr.Wrap(err, "Failed to update password")
	}
	return nil
}

// ListUsers returns every account, newest first.
func (s *AccountService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch users")
	}
	return users, nil
}

// CreateStaff creates a STAFF account with the registration rules.
func (s *AccountService) CreateStaff(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.DeliveryAddress = nil
	u, err := s.createAccount(ctx, in, models.RoleStaff)
	if err != nil {
		return nil, err
	}
	s.log.WithField("user_id", u.ID).Info("staff account created")
	return u, nil
}

// RenameStaff changes the nickname of a STAFF account. Other roles are refused.
func (s *AccountService) RenameStaff(ctx context.Context, id uint, nickname string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if store.IsNotFound(err) {
		return nil, apperr.Missing("User not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to update staff account")
	}
	if u.Role != models.RoleStaff {
		return nil, apperr.Denied("Can only update staff accounts")
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, apperr.Validation("Nickname is required")
	}
	if utf8.RuneCountInString(nickname) > maxNicknameLen {
		return nil, apperr.Validation("Nickname must be 1-100 characters")
	}
	if err := s.users.UpdateNickname(ctx, id, nickname); err != nil {
		return nil, apperr.Wrap(err, "Failed to update staff account")
	}
	u.Nickname = nickname
	return u, nil
}

// DeleteUser removes an account. Admins cannot delete themselves or other admins.
func (s *AccountService) DeleteUser(ctx context.Context, actorID, targetID uint) error {
	u, err := s.users.FindByID(ctx, targetID)
	if store.IsNotFound(err) {
		return apperr.Missing("User not found")
	}
	if err != nil {
		return apperr.Wrap(err, "Failed to delete user")
	}
	if u.ID == actorID {
		return apperr.Denied("Cannot delete your own account")
	}
	if u.Role == models.RoleAdmin {
		return apperr.Denied("Cannot delete admin accounts")
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		if store.IsNotFound(err) {
			return apperr.Missing("User not found")
		}
		return apperr.Wrap(err, "Failed to delete user")
	}
	s.log.WithFields(logrus.Fields{"user_id": targetID, "actor_id": actorID}).Info("user deleted")
	return nil
}

// EnsureAdmin creates the bootstrap ADMIN account unless email is empty or
// already registered. It reports whether an account was created.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password, nickname string) (bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return false, nil
	}
	taken, err := s.users.EmailTaken(ctx, email, 0)
	if err != nil {
		return false, err
	}
	if taken {
		return false, nil
	}
	if _, err := s.createAccount(ctx, RegisterInput{Nickname: nickname, Email: email, Password: password}, models.RoleAdmin); err != nil {
		return false, err
	}
	s.log.WithField("email", store.NormalizeEmail(email)).Info("admin account seeded")
	return true, nil
}
