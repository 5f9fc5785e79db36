package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/storage"
)

type UserRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUserRepository(db *gorm.DB, now func() time.Time) *UserRepository {
	return &UserRepository{db: db, now: now}
}

type userModel struct {
	ID           string    `gorm:"column:id;primaryKey;size:64"`
	Email        string    `gorm:"column:email;uniqueIndex;size:255"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role;size:16"`
	Name         string    `gorm:"column:name"`
	Cognome      *string   `gorm:"column:cognome"`
	Phone        *string   `gorm:"column:phone"`
	Company      *string   `gorm:"column:company"`
	PartitaIva   *string   `gorm:"column:partita_iva"`
	AvatarURL    *string   `gorm:"column:avatar_url"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.UserRole(m.Role),
		Name:         m.Name,
		Cognome:      deref(m.Cognome),
		Phone:        deref(m.Phone),
		Company:      deref(m.Company),
		PartitaIva:   deref(m.PartitaIva),
		Avatar:       deref(m.AvatarURL),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	return userModel{
		ID:           u.ID,
		Email:        strings.TrimSpace(strings.ToLower(u.Email)),
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Name:         u.Name,
		Cognome:      nullable(u.Cognome),
		Phone:        nullable(u.Phone),
		Company:      nullable(u.Company),
		PartitaIva:   nullable(u.PartitaIva),
		AvatarURL:    nullable(u.Avatar),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, data domain.CreateUserData) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(data.Email))
	if email == "" {
		return nil, storage.Validation("email is required", "email")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, storage.Validation("password cannot be hashed", "password")
	}

	role := data.Role
	if role == "" {
		role = domain.RoleUser
	}
	now := r.now()
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Name:         data.Name,
		Cognome:      data.Cognome,
		Phone:        data.Phone,
		Company:      data.Company,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	m := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		err = storage.Normalize(err)
		if storage.IsCode(err, storage.CodeAlreadyExists) {
			return nil, storage.AlreadyExists("user", email)
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFoundAs(err, "user", id)
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var m userModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, notFoundAs(err, "user", email)
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	updates := map[string]any{"updated_at": r.now()}
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.Cognome != nil {
		updates["cognome"] = nullable(*upd.Cognome)
	}
	if upd.Phone != nil {
		updates["phone"] = nullable(*upd.Phone)
	}
	if upd.Company != nil {
		updates["company"] = nullable(*upd.Company)
	}
	if upd.PartitaIva != nil {
		updates["partita_iva"] = nullable(*upd.PartitaIva)
	}
	if upd.Avatar != nil {
		updates["avatar_url"] = nullable(*upd.Avatar)
	}

	res := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, storage.Normalize(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, storage.NotFound("user", id)
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, storage.Unauthorized()
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, storage.Unauthorized()
	}
	return u, nil
}
