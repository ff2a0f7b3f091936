package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaffContext holds the identity of a staff member resolved from a token.
// Tokens are opaque strings issued out of band and stored alongside the
// staff record.
type StaffContext struct {
	ID        uuid.UUID `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	Token     string    `gorm:"type:varchar(255);column:token;not null;uniqueIndex" json:"-"`
	Name      string    `gorm:"type:varchar(255);column:name;not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);column:email" json:"email"`
	Role      string    `gorm:"type:varchar(50);column:role;not null" json:"role"`
	CreatedAt time.Time `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamptz;column:updated_at;not null" json:"updatedAt"`
}

func (s *StaffContext) TableName() string {
	return "staff_contexts"
}

// AuthService resolves staff identities from bearer tokens.
type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// GetStaffContextByToken looks up the staff member owning the given token.
// Returns gorm.ErrRecordNotFound if the token is unknown.
func (s *AuthService) GetStaffContextByToken(token string) (*StaffContext, error) {
	var staff StaffContext
	if err := s.db.First(&staff, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

// TokenExtractor pulls the bearer token out of an Authorization header.
type TokenExtractor struct{}

func NewTokenExtractor() *TokenExtractor {
	return &TokenExtractor{}
}

// ExtractTokenFromHeader returns the token part of a "Bearer <token>" header.
func (e *TokenExtractor) ExtractTokenFromHeader(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("authorization header is not a bearer token")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", fmt.Errorf("bearer token is empty")
	}
	return token, nil
}
