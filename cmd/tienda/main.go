package main

import (
	"context"
	"log"

	"github.com/mvaldeb/tienda/internal/cli"
	"github.com/mvaldeb/tienda/internal/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	app.Run(context.Background())
}
