package models

import (
	"github.com/shopspring/decimal"
)

// CoinPackage is a purchasable bundle of coins.
type CoinPackage struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name" example:"500 Coins"`
	CoinsAmount int64           `json:"coinsAmount" db:"coins_amount" example:"500"`
	PriceUSD    decimal.Decimal `json:"priceUsd" db:"price_usd" swaggertype:"string" example:"4.99"`
}

// MinorUnits returns the price in cents, truncated toward zero.
func (p CoinPackage) MinorUnits() int64 {
	return ToMinorUnits(p.PriceUSD)
}

// ToMinorUnits converts a major-unit amount to cents, truncating toward zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// FromMinorUnits converts cents back to major units.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Dino is a creature players can place in their slots.
type Dino struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name" example:"Triceratops"`
	Gender   string `json:"gender,omitempty" db:"gender"`
	CoinCost int64  `json:"coinCost" db:"coin_cost" example:"2"`
}

var specialDinos = map[string]struct{}{
	"Tyrannosaurus rex": {},
	"Spinosaurus":       {},
	"Gigantspinosaurus": {},
	"Triceratops":       {},
}

// DinoCoinCost is 2 for the apex species and 1 for everything else.
func DinoCoinCost(name string) int64 {
	if _, ok := specialDinos[name]; ok {
		return 2
	}
	return 1
}
