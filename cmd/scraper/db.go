package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-jss-crawler/internal/database"

	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Connects to DATABASE_URL, applies the schema and prints server info.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is not set, check your .env file")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer repo.Close()

		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		version, size, err := repo.ServerInfo(ctx)
		if err != nil {
			return err
		}

		fmt.Println("✅ Successfully connected, schema applied")
		fmt.Println("🚀 Database Version:", version)
		fmt.Println("📦 Current Database Size:", size)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
}
