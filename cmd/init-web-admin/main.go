// Command init-web-admin runs maintenance tasks against the web server's storage.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/initcareer/init-web/config"
	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/bootstrap"
	"github.com/initcareer/init-web/internal/migrate"
	"github.com/initcareer/init-web/internal/ports"
	"github.com/initcareer/init-web/internal/service"
)

const defaultMigrationTimeout = 5 * time.Minute

// app carries what every subcommand needs. The open funcs are swapped in tests.
type app struct {
	cfg    config.AppConfig
	logger *slog.Logger

	openDB      func(ctx context.Context) (*sql.DB, error)
	openStorage func(ctx context.Context) (bootstrap.Storage, func() error, error)
	httpClient  *http.Client
}

func main() {
	logger := bootstrap.InitLogger()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	bootstrap.SetLogLevel(cfg.Observability.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp(cfg, logger)).ExecuteContext(ctx); err != nil {
		logger.ErrorContext(ctx, "command failed", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must exit with failure status when a command fails
	}
}

func newApp(cfg config.AppConfig, logger *slog.Logger) *app {
	a := &app{cfg: cfg, logger: logger, httpClient: &http.Client{Timeout: 10 * time.Second}}
	a.openDB = func(ctx context.Context) (*sql.DB, error) {
		return bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{DBConfig: a.cfg.Postgres, Logger: a.logger})
	}
	a.openStorage = func(ctx context.Context) (bootstrap.Storage, func() error, error) {
		if a.cfg.Storage.Backend == config.StorageBackendMemory {
			return bootstrap.Storage{}, nil, errors.New("memory storage lives inside the server process; nothing to inspect")
		}
		infra, err := bootstrap.ConnectInfrastructure(ctx, &a.cfg, a.logger)
		if err != nil {
			return bootstrap.Storage{}, nil, err
		}
		st, err := bootstrap.BuildStorage(a.cfg.Storage, infra, a.logger)
		if err != nil {
			return bootstrap.Storage{}, nil, errors.Join(err, infra.Close())
		}
		return st, infra.Close, nil
	}
	return a
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "init-web-admin",
		Short:         "Maintenance tasks for the init-web server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(a),
		newStorageCmd(a),
		newPruneCmd(a),
		newSessionStatusCmd(a),
	)
	return root
}

func newMigrateCmd(a *app) *cobra.Command {
	var statusOnly bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending client_storage migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultMigrationTimeout)
			defer cancel()

			db, err := a.openDB(ctx)
			if err != nil {
				return fmt.Errorf("connect db: %w", err)
			}
			defer func() {
				if cerr := db.Close(); cerr != nil {
					a.logger.Warn("close database", "error", cerr)
				}
			}()

			pending, err := migrate.Status(ctx, db)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if statusOnly {
				if len(pending) == 0 {
					_, err = fmt.Fprintln(out, "schema is up to date")
					return err
				}
				_, err = fmt.Fprintf(out, "pending: %s\n", strings.Join(pending, ", "))
				return err
			}
			if err := migrate.Run(ctx, db); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			_, err = fmt.Fprintf(out, "applied %d migration(s)\n", len(pending))
			return err
		},
	}
	cmd.Flags().BoolVar(&statusOnly, "status", false, "List pending migrations without applying them")
	return cmd
}

// pickTier maps the --tier flag onto the durable ("local") or session store.
func pickTier(st bootstrap.Storage, tier string) (ports.KeyValueStore, error) {
	switch tier {
	case "local", "durable", "":
		return st.Durable, nil
	case "session":
		return st.Session, nil
	default:
		return nil, fmt.Errorf("unknown tier %q (valid: local, session)", tier)
	}
}

func validDevice(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("device id %q is not a uuid: %w", raw, err)
	}
	return id.String(), nil
}

func newStorageCmd(a *app) *cobra.Command {
	var tier string
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect or clear one device's stored values",
	}
	cmd.PersistentFlags().StringVar(&tier, "tier", "local", "Storage tier: local or session")

	withTier := func(cmd *cobra.Command, args []string, fn func(ctx context.Context, store ports.KeyValueStore, device string) error) error {
		device, err := validDevice(args[0])
		if err != nil {
			return err
		}
		st, closeFn, err := a.openStorage(cmd.Context())
		if err != nil {
			return err
		}
		if closeFn != nil {
			defer func() {
				if cerr := closeFn(); cerr != nil {
					a.logger.Warn("close storage", "error", cerr)
				}
			}()
		}
		store, err := pickTier(st, tier)
		if err != nil {
			return err
		}
		return fn(cmd.Context(), store, device)
	}

	show := &cobra.Command{
		Use:   "show <device-id>",
		Short: "Print a device's stored keys; tokens are masked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTier(cmd, args, func(ctx context.Context, store ports.KeyValueStore, device string) error {
				values, err := store.GetAll(ctx, device)
				if err != nil {
					return err
				}
				return printValues(cmd.OutOrStdout(), values)
			})
		},
	}

	var keys []string
	clear := &cobra.Command{
		Use:   "clear <device-id>",
		Short: "Delete a device's stored values, or only --key ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTier(cmd, args, func(ctx context.Context, store ports.KeyValueStore, device string) error {
				if len(keys) > 0 {
					if err := store.Delete(ctx, device, keys...); err != nil {
						return err
					}
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s for %s\n", strings.Join(keys, ", "), device)
					return err
				}
				if err := store.Clear(ctx, device); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "cleared %s tier for %s\n", tier, device)
				return err
			})
		},
	}
	clear.Flags().StringSliceVar(&keys, "key", nil, "Only delete these keys")

	cmd.AddCommand(show, clear)
	return cmd
}

// secretKeys are masked by storage show.
var secretKeys = map[string]bool{
	domainauth.KeyAuthToken:   true,
	domainauth.KeyAccessToken: true,
}

func printValues(w io.Writer, values map[string]string) error {
	if len(values) == 0 {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		v := values[k]
		if secretKeys[k] {
			v = maskSecret(v)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", k, v); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func maskSecret(v string) string {
	if len(v) <= 8 {
		return strings.Repeat("*", len(v))
	}
	return v[:4] + strings.Repeat("*", 8) + v[len(v)-4:]
}

func newPruneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete expired session rows once (postgres storage only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, closeFn, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			if closeFn != nil {
				defer func() {
					if cerr := closeFn(); cerr != nil {
						a.logger.Warn("close storage", "error", cerr)
					}
				}()
			}
			if st.Pruner == nil {
				return fmt.Errorf("storage backend %q expires rows on its own", a.cfg.Storage.Backend)
			}
			pruner, err := service.NewStoragePruner(service.StoragePrunerOptions{
				Repo:   st.Pruner,
				Config: a.cfg.Pruner,
				Logger: a.logger,
			})
			if err != nil {
				return err
			}
			n, err := pruner.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired row(s)\n", n)
			return err
		},
	}
}

func newSessionStatusCmd(a *app) *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "session-status <device-id>",
		Short: "Ask a running server which backend session a device is tracking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			device, err := validDevice(args[0])
			if err != nil {
				return err
			}
			if baseURL == "" {
				baseURL = a.cfg.HTTP.BaseURL
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet,
				strings.TrimRight(baseURL, "/")+"/auth/session-status", nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/json")
			req.AddCookie(&http.Cookie{Name: domainauth.KeyDeviceCookie, Value: device})

			resp, err := a.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("query server: %w", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server answered %s", resp.Status)
			}

			var body map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return fmt.Errorf("decode session status: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(body)
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "", "Server base URL (defaults to APP_BASE_URL)")
	return cmd
}
