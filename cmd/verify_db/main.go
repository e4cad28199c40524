package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/david/rfq-pilot/internal/db"
)

func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	var total, bids, holds, skips, embedded int
	err = pool.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE final_decision = 'BID'),
			count(*) FILTER (WHERE final_decision = 'HOLD'),
			count(*) FILTER (WHERE final_decision = 'SKIP'),
			count(embedding)
		FROM rfq_analyses
	`).Scan(&total, &bids, &holds, &skips, &embedded)

	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	fmt.Printf("Total analyses: %d\n", total)
	fmt.Printf("BID: %d\n", bids)
	fmt.Printf("HOLD: %d\n", holds)
	fmt.Printf("SKIP: %d\n", skips)
	fmt.Printf("With embedding: %d\n", embedded)
}
