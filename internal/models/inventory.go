package models

// InventorySlot is a dinosaur slot on a game server. The storefront only
// reads these; slot management lives elsewhere.
type InventorySlot struct {
	ID           int64  `json:"id" db:"id"`
	PlayerID     int64  `json:"playerId" db:"player_id"`
	ServerName   string `json:"serverName" db:"server_name"`
	ActiveDinoID *int64 `json:"activeDinoId,omitempty" db:"active_dino_id"`
	Growth       int    `json:"growth" db:"growth"`
	Health       int    `json:"health" db:"health"`
	Stamina      int    `json:"stamina" db:"stamina"`
	Hunger       int    `json:"hunger" db:"hunger"`
	Thirst       int    `json:"thirst" db:"thirst"`
}
