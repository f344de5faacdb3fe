package main

import (
	"log"

	"github.com/MrSnakeDoc/restore-sites/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ restore-sites failed to start: %v", err)
	}
}
