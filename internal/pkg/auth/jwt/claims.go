package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims issued at login.
// It includes the standard claims required by the JWT specification and the custom
// claims needed to identify the authenticated user on subsequent requests.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the stable identifier of the account the token was issued to.
	UserID string `json:"userId"`

	// Email is the account email, carried for convenience so handlers can echo
	// identity without a user-store round trip.
	Email string `json:"email"`
}
