package models

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "Free"
	TierStandard SubscriptionTier = "Standard"
	TierPremium  SubscriptionTier = "Premium"
	TierPlatinum SubscriptionTier = "Platinum"
)

func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierFree, TierStandard, TierPremium, TierPlatinum:
		return true
	}
	return false
}

// Tenant is one school. Slug is unique and doubles as the [domain] routing key.
type Tenant struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	Name             string           `json:"name" db:"name"`
	Address          *string          `json:"address" db:"address"`
	Motto            *string          `json:"motto" db:"motto"`
	LogoURL          *string          `json:"logo_url" db:"logo_url"`
	PrimaryColor     *string          `json:"primary_color" db:"primary_color"`
	SecondaryColor   *string          `json:"secondary_color" db:"secondary_color"`
	Slug             string           `json:"slug" db:"slug"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier" db:"subscription_tier"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}
