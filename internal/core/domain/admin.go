package domain

import "time"

// RoleAdmin is the only privileged role. Anonymous callers carry no role.
const RoleAdmin = "admin"

// AdminSession is the signed, expiring credential issued on admin login.
type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
