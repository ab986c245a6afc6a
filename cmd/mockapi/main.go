package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophsession/internal/client/tokens"
	"github.com/dmitrijs2005/gophsession/internal/logging"
	"github.com/dmitrijs2005/gophsession/internal/mockapi"
)

func main() {
	cfg := mockapi.LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mockapi.NewServer(cfg, tokens.NewCodec(), logger)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
