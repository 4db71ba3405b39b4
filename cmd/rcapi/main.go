package main

import (
	"context"
	"log"

	"github.com/MrSnakeDoc/rcapi/internal/app"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("❌ rcapi failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ rcapi stopped with an error: %v", err)
	}
}
