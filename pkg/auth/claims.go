package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kaigocloud/carebill-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID         uuid.UUID
	OrganizationID *uuid.UUID
	Role           enums.ActorRole
}

// AccessTokenClaims represents the typed JWT issued to clients. Operators
// carry their organization id; admin tokens have none and address
// organizations through the request path instead.
type AccessTokenClaims struct {
	UserID         uuid.UUID       `json:"user_id"`
	OrganizationID *uuid.UUID      `json:"organization_id,omitempty"`
	Role           enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
