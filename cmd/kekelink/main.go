package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Temutjin2k/kekelink/config"
	_ "github.com/Temutjin2k/kekelink/docs"
	"github.com/Temutjin2k/kekelink/internal/app"
	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/internal/service/auth"
	"github.com/Temutjin2k/kekelink/pkg/logger"
)

var issueAdminToken = flag.Int64("issue-admin-token", 0, "print an admin access token for this user id and exit")

func main() {
	flag.Parse()
	if config.HelpRequested() {
		config.PrintHelp()
		return
	}

	ctx := context.Background()
	log := logger.InitLogger("kekelink", logger.LevelInfo)

	cfg, err := config.NewConfig("")
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		os.Exit(1)
	}

	if !logger.ValidateLogLevel(cfg.Log.Level) {
		log.Warn(ctx, "unknown log level, keeping INFO", "level", cfg.Log.Level)
		cfg.Log.Level = logger.LevelInfo
	}
	log = logger.InitLogger(cfg.Log.ServiceName, cfg.Log.Level)

	if *issueAdminToken > 0 {
		if err := printAdminToken(ctx, *cfg, *issueAdminToken, log); err != nil {
			log.Error(ctx, "failed to issue admin token", err)
			os.Exit(1)
		}
		return
	}

	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}

func printAdminToken(ctx context.Context, cfg config.Config, userID int64, log logger.Logger) error {
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, log)
	if err != nil {
		return err
	}

	token, exp, err := tokens.Issue(ctx, models.User{ID: userID, Name: "admin", Role: types.RoleAdmin})
	if err != nil {
		return err
	}

	fmt.Printf("%s\n# expires %s\n", token, exp.Format("2006-01-02 15:04:05 MST"))
	return nil
}
