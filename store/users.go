package store

import (
	"context"
	"errors"
	"strings"

	"food-ordering-api/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = gorm.ErrRecordNotFound

// UserStore persists accounts. Plaintext passwords only ever pass through
// Create and UpdatePassword, which hash them before writing.
type UserStore struct {
	db   *gorm.DB
	cost int
}

func NewUserStore(db *gorm.DB, bcryptCost int) *UserStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserStore{db: db, cost: bcryptCost}
}

// NormalizeEmail lower-cases and trims an address before it is stored or compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create hashes password and inserts u. u.ID is set on success.
func (s *UserStore) Create(ctx context.Context, u *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	u.Email = NormalizeEmail(u.Email)
	u.PasswordHash = string(hash)
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailTaken reports whether another account (not excludeID) uses email.
func (s *UserStore) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", NormalizeEmail(email))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// VerifyPassword compares a plaintext candidate against the stored hash.
func (s *UserStore) VerifyPassword(u *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UpdateProfile writes the nickname, email and delivery address of u.
func (s *UserStore) UpdateProfile(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	return s.db.WithContext(ctx).Model(u).Select("Nickname", "Email", "DeliveryAddress").Updates(u).Error
}

func (s *UserStore) UpdateNickname(ctx context.Context, id uint, nickname string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("nickname", nickname)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, id uint, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", string(hash)).Error
}

// List returns all users, newest first.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&users).Error
	return users, err
}

func (s *UserStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err means "no such row".
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
