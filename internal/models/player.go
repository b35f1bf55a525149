package models

import "time"

// Player is a storefront account bound to one external (Steam) identity.
type Player struct {
	ID          int64     `json:"id" db:"id"`
	ExternalID  string    `json:"externalId" db:"external_id" example:"76561197960287930"`
	DisplayName string    `json:"displayName" db:"display_name" example:"Rex"`
	AvatarURL   string    `json:"avatarUrl,omitempty" db:"avatar_url"`
	CoinBalance int64     `json:"coinBalance" db:"coin_balance" example:"500"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// PlayerProfile is what the dashboard shows for the signed-in player.
type PlayerProfile struct {
	Player
	Slots []InventorySlot `json:"slots"`
}
