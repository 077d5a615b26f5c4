/*
seed.go - Default account seeding

PURPOSE:
  Seeds the household's starting accounts so a fresh database is usable
  immediately. Seeding is skipped when any account already exists, so
  calling /api/init twice is harmless.
*/
package api

import (
	"context"

	"github.com/warp/budget-engine/ledger"
)

type seedAccount struct {
	name    string
	balance float64
	typ     string
}

var defaultAccounts = []seedAccount{
	{name: "Thomas", balance: 2500, typ: "Compte courant"},
	{name: "Thomas Livret A", balance: 5000, typ: "Livret A"},
	{name: "Mélissa", balance: 1800, typ: "Compte courant"},
	{name: "Compte Joint", balance: 3200, typ: "Compte joint"},
}

// SeedDefaults creates the default accounts when the store is empty.
// Returns true when seeding actually ran.
func SeedDefaults(ctx context.Context, svc *ledger.Service) (bool, error) {
	existing, err := svc.ListAccounts(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	inputs := make([]ledger.AccountInput, 0, len(defaultAccounts))
	for _, a := range defaultAccounts {
		balance := ledger.NewMoney(a.balance)
		inputs = append(inputs, ledger.AccountInput{
			Name:      a.name,
			Current:   balance,
			Projected: balance,
			Type:      a.typ,
		})
	}
	if _, err := svc.CreateAccounts(ctx, inputs); err != nil {
		return false, err
	}
	return true, nil
}
