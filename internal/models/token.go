package models

import "github.com/golang-jwt/jwt/v5"

// StationRole scopes what a bearer token may do.
type StationRole string

const (
	RoleAdmin   StationRole = "admin"
	RoleStation StationRole = "station"
)

// StationClaims is the JWT payload for scanner stations and admin tooling.
// StationID doubles as the default scan source label.
type StationClaims struct {
	StationID string      `json:"station_id"`
	Role      StationRole `json:"role"`
	jwt.RegisteredClaims
}
