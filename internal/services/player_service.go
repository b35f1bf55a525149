package services

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/dinostore/backend/internal/models"
)

const playerColumns = `id, external_id, display_name, avatar_url, coin_balance, created_at, updated_at`

type PlayerService struct {
	db *sql.DB
}

func NewPlayerService(db *sql.DB) *PlayerService {
	return &PlayerService{db: db}
}

// Upsert creates the player on first login. Later logins keep the same row
// and only refresh non-empty profile fields.
func (s *PlayerService) Upsert(ctx context.Context, externalID, displayName, avatarURL string) (*models.Player, error) {
	if externalID == "" {
		return nil, ErrMalformedIdentity
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO players (external_id, display_name, avatar_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_id) DO UPDATE SET
			display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), players.display_name),
			avatar_url = COALESCE(NULLIF(EXCLUDED.avatar_url, ''), players.avatar_url),
			updated_at = NOW()
		RETURNING `+playerColumns, externalID, displayName, avatarURL)

	player, err := scanPlayer(row)
	if err != nil {
		return nil, errors.Wrap(err, "players: Upsert")
	}

	log.WithFields(log.Fields{"player_id": player.ID, "external_id": externalID}).Info("[AUTH] Player upserted")
	return player, nil
}

func (s *PlayerService) GetByExternalID(ctx context.Context, externalID string) (*models.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE external_id = $1`, externalID)
	player, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "player %s", externalID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "players: GetByExternalID")
	}
	return player, nil
}

// GetProfile returns the player with their slots.
func (s *PlayerService) GetProfile(ctx context.Context, externalID string) (*models.PlayerProfile, error) {
	player, err := s.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, player_id, server_name, active_dino_id, growth, health, stamina, hunger, thirst
		FROM dino_slots
		WHERE player_id = $1
		ORDER BY id`, player.ID)
	if err != nil {
		return nil, errors.Wrap(err, "players: list slots")
	}
	defer rows.Close()

	profile := &models.PlayerProfile{Player: *player, Slots: []models.InventorySlot{}}
	for rows.Next() {
		var slot models.InventorySlot
		var activeDino sql.NullInt64
		if err := rows.Scan(&slot.ID, &slot.PlayerID, &slot.ServerName, &activeDino,
			&slot.Growth, &slot.Health, &slot.Stamina, &slot.Hunger, &slot.Thirst); err != nil {
			return nil, errors.Wrap(err, "players: scan slot")
		}
		if activeDino.Valid {
			id := activeDino.Int64
			slot.ActiveDinoID = &id
		}
		profile.Slots = append(profile.Slots, slot)
	}
	return profile, errors.Wrap(rows.Err(), "players: list slots")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	if err := row.Scan(&p.ID, &p.ExternalID, &p.DisplayName, &p.AvatarURL, &p.CoinBalance, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
