package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrijs2005/scimaterials/internal/logging"
	"github.com/dmitrijs2005/scimaterials/internal/server"
	"github.com/dmitrijs2005/scimaterials/internal/server/auth"
	"github.com/dmitrijs2005/scimaterials/internal/server/config"
)

const tokenTTL = 30 * 24 * time.Hour

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	// server issue-token <subject> [-s secret] prints an access token and exits.
	if len(os.Args) > 2 && os.Args[1] == "issue-token" {
		if cfg.SecretKey == "" {
			log.Fatal("issue-token needs a secret key (-s)")
		}
		tok, err := auth.GenerateToken(os.Args[2], []byte(cfg.SecretKey), tokenTTL, time.Now())
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(tok)
		return
	}

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
