// Command server runs the docwatch HTTP server: list and rule management,
// corpus event ingestion, notification dispatch, and Atom feeds.
package main

import (
	"context"
	"log"

	"github.com/docwatch/docwatch-backend/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
