package config

import (
	"fmt"
	"strings"
)

// Role selects which family of modules a process boots.
type Role string

const (
	RoleServer Role = "server"
	RoleClient Role = "client"
)

// Keywords used as the parent folder name of modules for each role.
const (
	KeywordServices    = "services"
	KeywordControllers = "controllers"
)

// ParseRole validates a role name. The empty string maps to RoleServer.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleServer:
		return RoleServer, nil
	case RoleClient:
		return RoleClient, nil
	default:
		return "", fmt.Errorf("invalid role %q: must be 'server' or 'client'", s)
	}
}

// Keyword returns the parent folder name modules of this role live in.
func (r Role) Keyword() string {
	if r == RoleClient {
		return KeywordControllers
	}
	return KeywordServices
}
