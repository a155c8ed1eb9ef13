package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftforge/cubeleague/go/internal/dbconfig"
)

// CubeCard mirrors the cube snapshot JSON structure
type CubeCard struct {
	CardID      string `json:"card_id"`
	Name        string `json:"name"`
	Elo         int    `json:"elo"`
	CubucksCost int    `json:"cubucks_cost"`
}

func main() {
	var (
		path     = flag.String("file", "go/internal/assets/cube.json", "path to the cube snapshot JSON")
		seasonID = flag.String("season", "", "season id to import the pool into")
	)
	flag.Parse()

	if *seasonID == "" {
		fmt.Fprintln(os.Stderr, "-season is required")
		os.Exit(1)
	}

	// 1) Load the JSON snapshot
	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var cards []CubeCard
	if err := json.Unmarshal(data, &cards); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert and count
	var (
		total    = len(cards)
		inserted int
		skipped  int
		errs     int
	)

	for _, c := range cards {
		cmdTag, err := pool.Exec(context.Background(), `
            INSERT INTO card_pool (
              id, season_id, card_id, name, mana_cost, cmc,
              color_identity, rarity, elo, cubucks_cost
            ) VALUES (
              gen_random_uuid(), $1, $2, $3, '', 0, '{}', '', $4, $5
            )
            ON CONFLICT (season_id, name) DO NOTHING
        `,
			*seasonID, c.CardID, c.Name, c.Elo, c.CubucksCost,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting card %s: %v\n", c.Name, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Cube import complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}
