package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/snake-leaderboard/internal/config"
	"github.com/snake-leaderboard/internal/postgres"
	"github.com/snake-leaderboard/internal/redis"
	"github.com/snake-leaderboard/internal/service"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "snakectl",
		Usage: "administer the Snake game database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
			},
			&cli.StringFlag{
				Name:  "env",
				Value: ".env",
				Usage: "path to an optional .env file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create tables and indexes",
				Action: func(c *cli.Context) error {
					return withRepository(c, func(ctx context.Context, repo *postgres.Repository, _ *service.SnakeService) error {
						return repo.RunMigrations(ctx)
					})
				},
			},
			{
				Name:  "seed",
				Usage: "insert the default levels when the levels table is empty",
				Action: func(c *cli.Context) error {
					return withRepository(c, func(ctx context.Context, _ *postgres.Repository, svc *service.SnakeService) error {
						return seed(ctx, svc)
					})
				},
			},
			{
				Name:  "init",
				Usage: "migrate and seed in one step",
				Action: func(c *cli.Context) error {
					return withRepository(c, func(ctx context.Context, repo *postgres.Repository, svc *service.SnakeService) error {
						if err := repo.RunMigrations(ctx); err != nil {
							return err
						}
						return seed(ctx, svc)
					})
				},
			},
			{
				Name:  "leaderboard",
				Usage: "print the current leaderboard",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10, Usage: "number of entries"},
				},
				Action: func(c *cli.Context) error {
					return withRepository(c, func(ctx context.Context, _ *postgres.Repository, svc *service.SnakeService) error {
						entries, err := svc.Leaderboard(ctx, c.Int("limit"))
						if err != nil {
							return err
						}
						tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
						fmt.Fprintln(tw, "RANK\tUSERNAME\tTOTAL\tGAMES\tHIGHEST LEVEL")
						for _, e := range entries {
							fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", e.Rank, e.Username, e.TotalScore, e.GamesPlayed, e.HighestLevel)
						}
						return tw.Flush()
					})
				},
			},
			{
				Name:      "delete-player",
				Usage:     "delete a player and all of their games",
				ArgsUsage: "<username>",
				Action: func(c *cli.Context) error {
					username := c.Args().First()
					if username == "" {
						return errors.New("username is required")
					}
					return withRepository(c, func(ctx context.Context, _ *postgres.Repository, svc *service.SnakeService) error {
						if err := svc.DeletePlayer(ctx, username); err != nil {
							return err
						}
						fmt.Printf("Deleted player %s\n", username)
						return nil
					})
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func withRepository(c *cli.Context, fn func(ctx context.Context, repo *postgres.Repository, svc *service.SnakeService) error) error {
	if err := config.LoadDotEnv(c.String("env")); err != nil {
		return err
	}
	cfg, found, err := config.LoadOptional(c.String("config"))
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.SlogLevel()}))
	if !found {
		logger.Warn("config file not found, using defaults", "path", c.String("config"))
	}

	repo, err := postgres.NewRepository(c.Context, &cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, closeCache := newService(cfg, service.NewPostgresStore(repo), logger)
	defer closeCache()
	return fn(c.Context, repo, svc)
}

// newService builds the service and, when Redis is enabled, attaches the
// leaderboard cache so changes made here invalidate the snapshot the API
// serves. The returned func releases the cache connection.
func newService(cfg *config.Config, store service.Store, logger *slog.Logger) (*service.SnakeService, func()) {
	svc := service.NewSnakeService(store, &cfg.Leaderboard, logger)
	if !cfg.Redis.Enabled {
		return svc, func() {}
	}

	cache, err := redis.NewLeaderboardCache(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("leaderboard cache unavailable, cached snapshot may be stale until it expires", "error", err)
		return svc, func() {}
	}
	svc.SetCache(cache)
	return svc, func() { cache.Close() }
}

func seed(ctx context.Context, svc *service.SnakeService) error {
	inserted, err := svc.SeedLevels(ctx)
	if err != nil {
		return err
	}
	if inserted == 0 {
		fmt.Println("Levels already present, nothing to seed")
		return nil
	}
	fmt.Printf("Seeded %d levels\n", inserted)
	return nil
}
