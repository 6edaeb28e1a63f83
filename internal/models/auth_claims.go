package models

import "github.com/golang-jwt/jwt/v5"

// JwtCustomClaims are the claims the external auth service puts in tokens
// for tracking clients. Role distinguishes reporting devices from
// dashboard readers.
type JwtCustomClaims struct {
	SubjectID string `json:"subjectID"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}
