package services

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/dinostore/backend/internal/models"
)

// CatalogService reads coin packages and the dino catalog. Editing the
// catalog is an admin concern handled elsewhere.
type CatalogService struct {
	db *sql.DB
}

func NewCatalogService(db *sql.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) GetPackage(ctx context.Context, id int64) (*models.CoinPackage, error) {
	var p models.CoinPackage
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, coins_amount, price_usd
		FROM coin_packages
		WHERE id = $1`, id).Scan(&p.ID, &p.Name, &p.CoinsAmount, &p.PriceUSD)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "coin package %d", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "catalog: GetPackage")
	}
	return &p, nil
}

func (s *CatalogService) ListPackages(ctx context.Context) ([]models.CoinPackage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, coins_amount, price_usd
		FROM coin_packages
		ORDER BY price_usd, id`)
	if err != nil {
		return nil, errors.Wrap(err, "catalog: ListPackages")
	}
	defer rows.Close()

	packages := []models.CoinPackage{}
	for rows.Next() {
		var p models.CoinPackage
		if err := rows.Scan(&p.ID, &p.Name, &p.CoinsAmount, &p.PriceUSD); err != nil {
			return nil, errors.Wrap(err, "catalog: scan package")
		}
		packages = append(packages, p)
	}
	return packages, errors.Wrap(rows.Err(), "catalog: ListPackages")
}

func (s *CatalogService) ListDinos(ctx context.Context) ([]models.Dino, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, gender FROM dinos ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "catalog: ListDinos")
	}
	defer rows.Close()

	dinos := []models.Dino{}
	for rows.Next() {
		var d models.Dino
		if err := rows.Scan(&d.ID, &d.Name, &d.Gender); err != nil {
			return nil, errors.Wrap(err, "catalog: scan dino")
		}
		d.CoinCost = models.DinoCoinCost(d.Name)
		dinos = append(dinos, d)
	}
	return dinos, errors.Wrap(rows.Err(), "catalog: ListDinos")
}
