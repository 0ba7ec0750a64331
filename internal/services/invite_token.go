package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/workhive/workspace-api/internal/models"
)

// ErrInvalidInviteToken covers malformed, tampered, and expired tokens alike;
// the caller cannot tell which, only that the link is dead.
var ErrInvalidInviteToken = errors.New("invalid or expired invitation token")

// InviteClaims is the signed payload of an invitation token. The token
// carries everything needed to render and accept the invite; the matching
// database row is still the source of truth for whether it may be consumed.
type InviteClaims struct {
	Email       string               `json:"email"`
	WorkspaceID uint64               `json:"workspace_id"`
	InvitedByID uint64               `json:"invited_by_id"`
	Role        models.WorkspaceRole `json:"role"`
	jwt.RegisteredClaims
}

// InviteTokenService signs and verifies invitation tokens with HS256.
type InviteTokenService struct {
	secretKey []byte
}

// NewInviteTokenService creates a new InviteTokenService.
func NewInviteTokenService(secretKey string) *InviteTokenService {
	return &InviteTokenService{
		secretKey: []byte(secretKey),
	}
}

// Sign issues a token for the given invite with the supplied validity window.
func (s *InviteTokenService) Sign(email string, workspaceID, invitedByID uint64, role models.WorkspaceRole, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &InviteClaims{
		Email:       email,
		WorkspaceID: workspaceID,
		InvitedByID: invitedByID,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign invitation token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a token, returning its claims.
func (s *InviteTokenService) Verify(tokenString string) (*InviteClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &InviteClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidInviteToken
	}

	claims, ok := token.Claims.(*InviteClaims)
	if !ok {
		return nil, ErrInvalidInviteToken
	}

	return claims, nil
}
