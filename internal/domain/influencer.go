package domain

import (
	"time"

	"github.com/reachlyapp/reachly-server/internal/discovery"
)

// Influencer is a creator profile offered to businesses. The discovery
// record carries every field the discovery filter reads.
type Influencer struct {
	discovery.Record `json:",inline" yaml:",inline"`

	// UserID links the profile to the influencer account that manages it.
	UserID string `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Slug   string `json:"slug" yaml:"slug,omitempty"`
	// Bio is markdown.
	Bio string `json:"bio,omitempty" yaml:"bio,omitempty"`
	// PricePerPost is in minor currency units.
	PricePerPost   int64      `json:"price_per_post" yaml:"price_per_post"`
	Currency       string     `json:"currency" yaml:"currency,omitempty"`
	AvatarPath     string     `json:"-" yaml:"-"`
	AvatarBlurHash string     `json:"avatar_blurhash,omitempty" yaml:"-"`
	CreatedAt      time.Time  `json:"created_at" yaml:"-"`
	UpdatedAt      time.Time  `json:"updated_at" yaml:"-"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" yaml:"-"`
}

// IsDeleted reports whether the profile was soft-deleted.
func (i *Influencer) IsDeleted() bool { return i.DeletedAt != nil }

// HasAvatar reports whether an avatar image was uploaded.
func (i *Influencer) HasAvatar() bool { return i.AvatarPath != "" }

// ManagedBy reports whether u may edit this profile.
func (i *Influencer) ManagedBy(u *User) bool {
	if u == nil {
		return false
	}
	return u.IsAdmin() || (i.UserID != "" && i.UserID == u.ID)
}

// Records extracts the discovery records in order.
func Records(influencers []*Influencer) []discovery.Record {
	out := make([]discovery.Record, len(influencers))
	for i, inf := range influencers {
		out[i] = inf.Record
	}
	return out
}
