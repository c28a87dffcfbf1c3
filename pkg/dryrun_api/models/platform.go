/*
 * Publish Engine API v1
 *
 * Pre-publish validation & dry-run simulation API (publish-engine)
 *
 * API version: 1.0.0
 */

package models

import "time"

// PlatformType is the closed enumeration of publishing targets. Capability
// profiles and URL templates are keyed by it; adding a value here without
// extending those tables makes the simulation package panic at startup.
type PlatformType string

const (
	PlatformTwitter   PlatformType = "TWITTER"
	PlatformLinkedIn  PlatformType = "LINKEDIN"
	PlatformFacebook  PlatformType = "FACEBOOK"
	PlatformInstagram PlatformType = "INSTAGRAM"
	PlatformMedium    PlatformType = "MEDIUM"
	PlatformDevTo     PlatformType = "DEVTO"
	PlatformHashnode  PlatformType = "HASHNODE"
	PlatformWordPress PlatformType = "WORDPRESS"
)

// AllPlatformTypes lists every member of the enum, in a stable order.
var AllPlatformTypes = []PlatformType{
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformFacebook,
	PlatformInstagram,
	PlatformMedium,
	PlatformDevTo,
	PlatformHashnode,
	PlatformWordPress,
}

// Platform is a connected publishing target as seen by the registry.
// The dry-run engine treats it as a read-only snapshot.
type Platform struct {
	Id             string       `gorm:"column:id;primaryKey" json:"id"`
	ProjectId      string       `gorm:"column:project_id;index" json:"projectId"`
	Type           PlatformType `gorm:"column:platform_type" json:"type"`
	Name           string       `gorm:"column:name" json:"name"`
	Connected      bool         `gorm:"column:connected" json:"connected"`
	AccessToken    *string      `gorm:"column:access_token" json:"-"`
	TokenExpiresAt *time.Time   `gorm:"column:token_expires_at" json:"tokenExpiresAt,omitempty"`
	CreatedAt      time.Time    `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt      time.Time    `gorm:"column:updated_at" json:"updatedAt"`
}

// HasCredential reports whether a non-empty token is stored. Expiry is
// checked separately so the credential validator can tell the two apart.
func (p *Platform) HasCredential() bool {
	return p.AccessToken != nil && *p.AccessToken != ""
}

// PlatformSummary is the external view of a platform.
type PlatformSummary struct {
	Id             string       `json:"id"`
	Type           PlatformType `json:"type"`
	Name           string       `json:"name"`
	Connected      bool         `json:"connected"`
	HasCredential  bool         `json:"hasCredential"`
	TokenExpiresAt *time.Time   `json:"tokenExpiresAt,omitempty"`
}

type ListPlatformsParams struct {
	ProjectId *string `query:"projectId"`
}
