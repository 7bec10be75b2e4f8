package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/layer-3/walletgate/adapters/sessionstore"
	"github.com/layer-3/walletgate/adapters/verifier"
	"github.com/layer-3/walletgate/adapters/wallet"
	"github.com/layer-3/walletgate/client"
	"github.com/layer-3/walletgate/config"
	"github.com/layer-3/walletgate/ports"
)

type clientEnv struct {
	cfg     config.ClientConfig
	manager *client.Manager
	close   func()
}

func newClientEnv(ctx context.Context, needWallet bool) (*clientEnv, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	logger := watermill.NewStdLogger(false, false)

	var (
		store   ports.SessionStore
		closeFn = func() {}
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		redisClient := redis.NewClient(opts)
		store = sessionstore.NewRedisStore(redisClient, sessionstore.DefaultKey)
		closeFn = func() { _ = redisClient.Close() }
	} else {
		store = sessionstore.NewFileStore(cfg.SessionPath)
	}

	lookup := client.NewRemoteAuthorizationLookup(cfg.ServerURL, nil, logger)
	env := &clientEnv{
		cfg:     cfg,
		manager: client.NewManager(store, lookup, verifier.New(), logger),
		close:   closeFn,
	}

	if needWallet {
		w, err := wallet.Load(cfg.KeyPath)
		if err != nil {
			closeFn()
			return nil, err
		}
		if err := env.manager.Connect(ctx, w); err != nil {
			closeFn()
			return nil, err
		}
	}
	return env, nil
}

func loginCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign a challenge with the local wallet and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newClientEnv(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer env.close()

			snap := env.manager.Snapshot()
			if snap.State == client.StateAuthenticated && !force {
				fmt.Fprintf(cmd.OutOrStdout(), "Already signed in as %s (%s)\n", snap.Identity, snap.Authorization.Role)
				return nil
			}
			if snap.State == client.StateUnauthorized {
				return fmt.Errorf("wallet %s is not authorized", snap.Identity)
			}

			if err := env.manager.Authenticate(cmd.Context(), "login"); err != nil {
				return err
			}
			snap = env.manager.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", snap.Identity, snap.Authorization.Role)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Sign a fresh challenge even if a valid session exists")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newClientEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.manager.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity the server sees for the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newClientEnv(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer env.close()

			if env.manager.Snapshot().State != client.StateAuthenticated {
				return fmt.Errorf("not signed in, run walletgate login")
			}

			endpoint := strings.TrimRight(env.cfg.ServerURL, "/") + "/api/me"
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, endpoint, nil)
			if err != nil {
				return err
			}
			resp, err := client.NewHTTPClient(env.manager, nil).Do(req)
			if err != nil {
				return fmt.Errorf("request identity: %w", err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server answered %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}

			var out json.RawMessage = body
			pretty, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
			return nil
		},
	}
}
