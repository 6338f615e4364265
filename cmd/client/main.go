package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// a second interrupt kills the process even while the REPL waits for input
	go func() {
		<-ctx.Done()
		stop()
	}()

	cfg := config.LoadConfig()
	app, err := client.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
