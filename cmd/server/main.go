// Command server runs the development backend on its own, for clients
// started without -dev.
package main

import (
	"context"
	"log"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/server/config"
)

func main() {
	app, err := server.NewApp(config.LoadConfig())
	if err != nil {
		log.Fatalf("dev backend: %v", err)
	}

	app.Run(context.Background())
}
