/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
)

var CmdSeed = &cli.Command{
	Name:  "seed",
	Usage: "Fill an empty database with demonstration data",
	Flags: []cli.Flag{
		databaseURLFlag(),
	},
	Action: seed,
}

func seed(ctx context.Context, cmd *cli.Command) error {
	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	inserted, err := store.SeedDemoData(ctx)
	if err != nil {
		return err
	}

	if inserted {
		appLogger.Info("Demo data inserted")
	} else {
		appLogger.Info("Database is not empty, demo data skipped")
	}

	return nil
}
