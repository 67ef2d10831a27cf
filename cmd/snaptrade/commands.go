package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/tjfontaine/snaptrade-go/internal/config"
	"github.com/tjfontaine/snaptrade-go/internal/sandbox"
	"github.com/tjfontaine/snaptrade-go/internal/signing"
	"github.com/tjfontaine/snaptrade-go/internal/storage"
	"github.com/tjfontaine/snaptrade-go/internal/storage/sqlite"
	"github.com/tjfontaine/snaptrade-go/pkg/snaptrade"
)

func newCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "snaptrade",
		Usage:     "call the SnapTrade API",
		Writer:    a.out,
		ErrWriter: a.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath,
				Usage:   "path to the YAML config file",
				Sources: cli.EnvVars("SNAPTRADE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "end user ID; the secret is read from the local store",
				Sources: cli.EnvVars("SNAPTRADE_USER"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, a.setup(cmd.String("config"))
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			return a.close(context.WithoutCancel(ctx))
		},
		Commands: []*cli.Command{
			statusCommand(a),
			registerUserCommand(a),
			deleteUserCommand(a),
			usersCommand(a),
			loginURLCommand(a),
			accountsCommand(a),
			balancesCommand(a),
			positionsCommand(a),
			holdingsCommand(a),
			quotesCommand(a),
			currenciesCommand(a),
			signCommand(a),
			sandboxCommand(a),
		},
	}
}

func statusCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "check that the API is online",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			resp, err := client.APIStatus(ctx)
			if err != nil {
				return err
			}
			return a.printJSON(resp.Data)
		},
	}
}

func registerUserCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "register-user",
		Usage: "register an end user and store its secret",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user-id", Usage: "ID to register (default: a new UUID)"},
			&cli.StringFlag{Name: "rsa-public-key-file", Usage: "PEM file with the user's RSA public key, used to encrypt its JWT"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			store, err := a.userStore()
			if err != nil {
				return err
			}

			userID := cmd.String("user-id")
			if userID == "" {
				userID = uuid.New().String()
			}

			var publicKey string
			if path := cmd.String("rsa-public-key-file"); path != "" {
				pem, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read RSA public key: %w", err)
				}
				publicKey = strings.TrimSpace(string(pem))
			}

			resp, err := client.RegisterUserWithKey(ctx, userID, publicKey)
			if err != nil {
				return err
			}
			if err := store.SaveUser(ctx, &storage.User{ID: resp.Data.UserID, Secret: resp.Data.UserSecret}); err != nil {
				return err
			}

			a.logger.Info("user registered", "user_id", resp.Data.UserID)
			// The secret stays in the store.
			return a.printJSON(map[string]string{"userId": resp.Data.UserID})
		},
	}
}

func deleteUserCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "delete-user",
		Usage: "delete the --user end user and forget its secret",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			user, err := a.user(ctx, cmd.String("user"))
			if err != nil {
				return err
			}

			resp, err := client.DeleteUser(ctx, user)
			if err != nil {
				return err
			}
			if err := a.store.DeleteUser(ctx, user.ID); err != nil && !errors.Is(err, storage.ErrUserNotFound) {
				return err
			}
			return a.printJSON(resp.Data)
		},
	}
}

func usersCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "list users registered under the partner",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			resp, err := client.ListUsers(ctx)
			if err != nil {
				return err
			}
			return a.printJSON(resp.Data)
		},
	}
}

func loginURLCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "login-url",
		Usage: "generate a connection portal link for --user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "broker", Usage: "preselect a brokerage slug"},
			&cli.StringFlag{Name: "redirect", Usage: "URL to return to after connecting"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			user, err := a.user(ctx, cmd.String("user"))
			if err != nil {
				return err
			}
			resp, err := client.LoginRedirectURI(ctx, user, snaptrade.LoginOptions{
				Broker:         cmd.String("broker"),
				CustomRedirect: cmd.String("redirect"),
			})
			if err != nil {
				return err
			}
			return a.printJSON(resp.Data)
		},
	}
}

// userAction wraps commands that call the API on behalf of --user.
func userAction(a *app, fn func(ctx context.Context, cmd *cli.Command, client *snaptrade.Client, user snaptrade.User) (any, error)) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		client, err := a.client()
		if err != nil {
			return err
		}
		user, err := a.user(ctx, cmd.String("user"))
		if err != nil {
			return err
		}
		data, err := fn(ctx, cmd, client, user)
		if err != nil {
			return err
		}
		return a.printJSON(data)
	}
}

func accountArg(cmd *cli.Command) (string, error) {
	id := cmd.Args().First()
	if id == "" {
		return "", errors.New("account ID argument required")
	}
	return id, nil
}

func accountsCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: "list --user's accounts",
		Action: userAction(a, func(ctx context.Context, cmd *cli.Command, client *snaptrade.Client, user snaptrade.User) (any, error) {
			resp, err := client.ListAccounts(ctx, user)
			if err != nil {
				return nil, err
			}
			return resp.Data, nil
		}),
	}
}

func balancesCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "balances",
		Usage:     "show cash balances of an account",
		ArgsUsage: "<account-id>",
		Action: userAction(a, func(ctx context.Context, cmd *cli.Command, client *snaptrade.Client, user snaptrade.User) (any, error) {
			accountID, err := accountArg(cmd)
			if err != nil {
				return nil, err
			}
			resp, err := client.AccountBalances(ctx, user, accountID)
			if err != nil {
				return nil, err
			}
			return resp.Data, nil
		}),
	}
}

func positionsCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "positions",
		Usage:     "show positions held in an account",
		ArgsUsage: "<account-id>",
		Action: userAction(a, func(ctx context.Context, cmd *cli.Command, client *snaptrade.Client, user snaptrade.User) (any, error) {
			accountID, err := accountArg(cmd)
			if err != nil {
				return nil, err
			}
			resp, err := client.AccountPositions(ctx, user, accountID)
			if err != nil {
				return nil, err
			}
			return resp.Data, nil
		}),
	}
}

func holdingsCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "holdings",
		Usage: "show holdings across --user's accounts",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "authorization", Usage: "limit to these brokerage authorization IDs"},
		},
		Action: userAction(a, func(ctx context.Context, cmd *cli.Command, client *snaptrade.Client, user snaptrade.User) (any, error) {
			resp, err := client.UserHoldings(ctx, user, cmd.StringSlice("authorization"))
			if err != nil {
				return nil, err
			}
			return resp.Data, nil
		}),
	}
}

func quotesCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "quotes",
		Usage:     "get live quotes through an account's brokerage",
		ArgsUsage: "<account-id>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "symbols", Usage: "symbols or universal symbol IDs", Required: true},
			&cli.BoolFlag{Name: "ticker", Usage: "treat --symbols as tickers"},
		},
		Action: userAction(a, func(ctx context.Context, cmd *cli.Command, client *snaptrade.Client, user snaptrade.User) (any, error) {
			accountID, err := accountArg(cmd)
			if err != nil {
				return nil, err
			}
			resp, err := client.Quotes(ctx, user, accountID, cmd.StringSlice("symbols"), cmd.Bool("ticker"))
			if err != nil {
				return nil, err
			}
			return resp.Data, nil
		}),
	}
}

func currenciesCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "currencies",
		Usage: "list supported currencies",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			resp, err := client.Currencies(ctx)
			if err != nil {
				return err
			}
			return a.printJSON(resp.Data)
		},
	}
}

// signedRequest is what the sign command prints.
type signedRequest struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	Query     string `json:"query"`
	Canonical string `json:"canonical"`
	Signature string `json:"signature"`
}

func signCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "print the canonical string and signature for a partner request",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "method", Value: http.MethodGet},
			&cli.StringFlag{Name: "path", Required: true, Usage: "endpoint path, e.g. /api/v1/accounts"},
			&cli.StringSliceFlag{Name: "query", Usage: "extra query parameter as key=value"},
			&cli.StringFlag{Name: "body", Usage: "JSON request body"},
			&cli.StringFlag{Name: "user-id", Usage: "include userId in the query"},
			&cli.Int64Flag{Name: "timestamp", Usage: "unix seconds (default: now)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			signer, err := signing.NewSigner(a.cfg.API.ConsumerKey)
			if err != nil {
				return err
			}

			method := strings.ToUpper(cmd.String("method"))
			timestamp := cmd.Int64("timestamp")
			if timestamp == 0 {
				timestamp = time.Now().Unix()
			}

			var params signing.Params
			params.Add("timestamp", strconv.FormatInt(timestamp, 10))
			params.Add("clientId", a.cfg.API.ClientID)
			if userID := cmd.String("user-id"); userID != "" {
				params.Add("userId", userID)
			}
			for _, kv := range cmd.StringSlice("query") {
				key, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("--query %q: want key=value", kv)
				}
				params.Add(key, value)
			}

			var body []byte
			if raw := cmd.String("body"); raw != "" && (method == http.MethodPost || method == http.MethodPut) {
				if !json.Valid([]byte(raw)) {
					return errors.New("--body is not valid JSON")
				}
				body = []byte(raw)
			}

			query := params.Encode()
			signature, canonical, err := signer.SignRequest(body, cmd.String("path"), query)
			if err != nil {
				return err
			}
			return a.printJSON(signedRequest{
				Method:    method,
				Path:      cmd.String("path"),
				Query:     query,
				Canonical: canonical,
				Signature: signature,
			})
		},
	}
}

func sandboxCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "sandbox",
		Usage: "serve a local, signature-verifying fake of the API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (default: sandbox.addr)"},
			&cli.StringFlag{Name: "db", Usage: "persist sandbox users to this sqlite file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			addr := cmd.String("addr")
			if addr == "" {
				addr = a.cfg.Sandbox.Addr
			}

			opts := sandbox.Options{
				Partners: map[string]string{a.cfg.API.ClientID: a.cfg.API.ConsumerKey},
				Skew:     a.cfg.Sandbox.TimestampSkew,
			}
			if path := cmd.String("db"); path != "" {
				store, err := sqlite.New(path)
				if err != nil {
					return fmt.Errorf("failed to open sandbox store: %w", err)
				}
				defer store.Close()
				opts.Users = store
			}

			srv, err := sandbox.NewServer(addr, a.logger, opts)
			if err != nil {
				return err
			}
			return srv.Start(ctx)
		},
	}
}
