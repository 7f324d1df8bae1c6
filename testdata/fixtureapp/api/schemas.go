package api

import (
	"time"

	"fixtureapp/schema"
)

type TokenSchema struct {
	schema.Schema
	UUID      string    `json:"uuid"`
	ExpiresAt time.Time `json:"expires_at"`
	ACL       []string  `json:"acl,omitempty"`
}
