package main

import (
	"errors"
	"fmt"

	redisRepo "walink/internal/repository/redis"

	"github.com/spf13/cobra"
)

var flushCacheCmd = &cobra.Command{
	Use:   "flush-cache",
	Short: "Drop every cached short link from Redis",
	Long:  "Drop every cached short link from Redis. Rate limit counters are left alone.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Redis.Enabled {
			return errors.New("redis is disabled (REDIS_ENABLED=false)")
		}

		ctx := cmd.Context()
		client, err := redisRepo.InitRedis(ctx, cfg.Redis.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()

		n, err := redisRepo.NewCache(client, cfg.Redis.CacheTTL).Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached links\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flushCacheCmd)
}
