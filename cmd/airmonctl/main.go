// Command airmonctl is the operator CLI for the popularity monitor.
//
// Usage:
//
//	airmonctl sweep --print
//	airmonctl sweep --lookback 180
//	airmonctl bind --discord 123456789 --dj "DJ Nightowl"
//	airmonctl unbind --discord 123456789
//	airmonctl whois --discord 123456789
//	airmonctl bindings list
//	airmonctl bindings clean
//	airmonctl nowplaying
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wvrb/airmon/internal/bindings"
	"github.com/wvrb/airmon/internal/catalog"
	"github.com/wvrb/airmon/internal/config"
	"github.com/wvrb/airmon/internal/db"
	"github.com/wvrb/airmon/internal/monitor"
	"github.com/wvrb/airmon/internal/notify"
	"github.com/wvrb/airmon/internal/spinitron"
	"github.com/wvrb/airmon/internal/status"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "airmonctl",
		Short: "Operator CLI for the broadcast popularity monitor",
	}

	root.AddCommand(sweepCmd())
	root.AddCommand(bindCmd())
	root.AddCommand(unbindCmd())
	root.AddCommand(whoisCmd())
	root.AddCommand(bindingsCmd())
	root.AddCommand(nowPlayingCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// sweep command
// --------------------------------------------------------------------------

// stdoutNotifier prints alerts instead of delivering them, for dry runs.
type stdoutNotifier struct{}

func (stdoutNotifier) SendAlert(_ context.Context, description string) error {
	fmt.Println("---- alert ----")
	fmt.Println(description)
	return nil
}

func sweepCmd() *cobra.Command {
	var (
		lookbackMin int
		printOnly   bool
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one popularity sweep over the recent window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCtl(func(ctx context.Context, cfg *config.Config) error {
				policy, err := config.LoadPolicy(cfg.PolicyFile)
				if err != nil {
					return fmt.Errorf("load policy: %w", err)
				}
				if lookbackMin > 0 {
					cfg.Lookback = time.Duration(lookbackMin) * time.Minute
				}

				meta := spinitron.NewClient(cfg.SpinitronBaseURL, cfg.SpinitronToken, cfg.SpinitronRateLimit, logger)
				cat := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTokenURL,
					cfg.CatalogClientID, cfg.CatalogClientSecret, cfg.CatalogRateLimit, logger)

				var notifier monitor.Notifier
				if printOnly {
					notifier = stdoutNotifier{}
				} else {
					notifier = notify.NewDiscordSender(cfg.DiscordBotToken, cfg.DiscordAlertChannelID, logger)
				}

				monCfg, err := monitor.ConfigFrom(cfg, policy)
				if err != nil {
					return fmt.Errorf("build monitor config: %w", err)
				}
				mon, err := monitor.New(monCfg, meta, cat, notifier, logger)
				if err != nil {
					return err
				}

				start := time.Now()
				result, err := mon.Sweep(ctx, time.Now())
				if err != nil {
					return err
				}
				logger.Info("Sweep finished",
					"duration", time.Since(start).Round(time.Second),
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("sweep error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&lookbackMin, "lookback", 0, "Override the lookback window in minutes")
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print alerts to stdout instead of sending them")
	return cmd
}

// --------------------------------------------------------------------------
// binding commands
// --------------------------------------------------------------------------

func bindCmd() *cobra.Command {
	var (
		discordID string
		djName    string
	)
	cmd := &cobra.Command{
		Use:   "bind",
		Short: "Bind a Discord account to a DJ persona by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			if discordID == "" || djName == "" {
				return fmt.Errorf("--discord and --dj are required")
			}
			return runStore(func(ctx context.Context, cfg *config.Config, store *bindings.Store) error {
				meta := spinitron.NewClient(cfg.SpinitronBaseURL, cfg.SpinitronToken, cfg.SpinitronRateLimit, logger)
				personas, err := meta.FindPersonas(ctx, djName)
				if err != nil {
					return fmt.Errorf("look up persona: %w", err)
				}
				if len(personas) == 0 {
					return fmt.Errorf("no persona named %q", djName)
				}
				persona := personas[0]
				if err := store.Bind(ctx, discordID, persona.ID); err != nil {
					return err
				}
				logger.Info("Bound", "discord_id", discordID, "persona_id", persona.ID, "dj", persona.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&discordID, "discord", "", "Discord account ID")
	cmd.Flags().StringVar(&djName, "dj", "", "DJ name on the metadata site")
	return cmd
}

func unbindCmd() *cobra.Command {
	var discordID string
	cmd := &cobra.Command{
		Use:   "unbind",
		Short: "Remove the binding for a Discord account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if discordID == "" {
				return fmt.Errorf("--discord is required")
			}
			return runStore(func(ctx context.Context, cfg *config.Config, store *bindings.Store) error {
				if err := store.Unbind(ctx, discordID); err != nil {
					return err
				}
				logger.Info("Unbound", "discord_id", discordID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&discordID, "discord", "", "Discord account ID")
	return cmd
}

func whoisCmd() *cobra.Command {
	var discordID string
	cmd := &cobra.Command{
		Use:   "whois",
		Short: "Resolve a Discord account to its DJ persona",
		RunE: func(cmd *cobra.Command, args []string) error {
			if discordID == "" {
				return fmt.Errorf("--discord is required")
			}
			return runStore(func(ctx context.Context, cfg *config.Config, store *bindings.Store) error {
				personaID, err := store.Whois(ctx, discordID)
				if err != nil {
					return err
				}
				fmt.Printf("%s -> persona %d (%s/dj/%d)\n",
					discordID, personaID, cfg.SpinitronBaseURL, personaID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&discordID, "discord", "", "Discord account ID")
	return cmd
}

func bindingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bindings",
		Short: "Inspect and maintain the bindings table",
	}
	cmd.AddCommand(bindingsListCmd())
	cmd.AddCommand(bindingsCleanCmd())
	return cmd
}

func bindingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all bindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, cfg *config.Config, store *bindings.Store) error {
				list, err := store.List(ctx)
				if err != nil {
					return err
				}
				for _, b := range list {
					fmt.Printf("%s -> persona %d (bound %s)\n",
						b.DiscordID, b.PersonaID, b.BoundAt.Format(time.RFC3339))
				}
				logger.Info("Listed bindings", "count", len(list))
				return nil
			})
		},
	}
}

func bindingsCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove bindings whose persona no longer exists upstream",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, cfg *config.Config, store *bindings.Store) error {
				meta := spinitron.NewClient(cfg.SpinitronBaseURL, cfg.SpinitronToken, cfg.SpinitronRateLimit, logger)
				list, err := store.List(ctx)
				if err != nil {
					return err
				}
				var stale []int
				for _, b := range list {
					_, err := meta.Persona(ctx, b.PersonaID)
					if errors.Is(err, spinitron.ErrNotFound) {
						stale = append(stale, b.PersonaID)
						continue
					}
					if err != nil {
						return fmt.Errorf("check persona %d: %w", b.PersonaID, err)
					}
				}
				removed, err := store.Clean(ctx, stale)
				if err != nil {
					return err
				}
				logger.Info("Cleaned bindings", "removed", removed)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// nowplaying command
// --------------------------------------------------------------------------

func nowPlayingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nowplaying",
		Short: "Print the current listening text",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCtl(func(ctx context.Context, cfg *config.Config) error {
				meta := spinitron.NewClient(cfg.SpinitronBaseURL, cfg.SpinitronToken, cfg.SpinitronRateLimit, logger)
				tracker := status.New(meta, nil, cfg.AutomationPersonaID, cfg.StationSlug, logger)
				if err := tracker.Refresh(ctx); err != nil {
					return err
				}
				fmt.Println(tracker.Current())
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runCtl handles config loading and context cancellation.
func runCtl(fn func(ctx context.Context, cfg *config.Config) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	return fn(ctx, cfg)
}

// runStore additionally connects the database-backed bindings store.
func runStore(fn func(ctx context.Context, cfg *config.Config, store *bindings.Store) error) error {
	return runCtl(func(ctx context.Context, cfg *config.Config) error {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for binding commands")
		}
		if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		return fn(ctx, cfg, bindings.NewStore(pool))
	})
}
