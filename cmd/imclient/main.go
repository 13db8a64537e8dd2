package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"

	"github.com/ZentaChain/zentalk-session/pkg/api"
	"github.com/ZentaChain/zentalk-session/pkg/config"
	"github.com/ZentaChain/zentalk-session/pkg/logging"
	"github.com/ZentaChain/zentalk-session/pkg/network"
	"github.com/ZentaChain/zentalk-session/pkg/session"
	"github.com/ZentaChain/zentalk-session/pkg/storage"
	"github.com/ZentaChain/zentalk-session/pkg/tick"
	"github.com/ZentaChain/zentalk-session/pkg/transport"
)

func main() {
	app := &cli.App{
		Name:  "imclient",
		Usage: "keep one authenticated IM session online",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "TOML config file"},
			&cli.StringFlag{Name: "address", Usage: "server address (host:port or multiaddr)", EnvVars: []string{"ZENTALK_ADDRESS"}},
			&cli.StringFlag{Name: "token", Usage: "session token", EnvVars: []string{"ZENTALK_TOKEN"}},
			&cli.StringFlag{Name: "aes-key", Usage: "payload AES key (16, 24 or 32 bytes)", EnvVars: []string{"ZENTALK_AES_KEY"}},
			&cli.StringFlag{Name: "db", Usage: "SQLite database path"},
			&cli.StringFlag{Name: "db-password", Usage: "password protecting the stored session", EnvVars: []string{"ZENTALK_DB_PASSWORD"}},
			&cli.IntFlag{Name: "api-port", Usage: "serve the local HTTP API on this port"},
		},
		Before: func(*cli.Context) error {
			logging.ConfigureRuntime()
			return nil
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if c.IsSet("address") {
		cfg.Server.Address = c.String("address")
	}
	if c.IsSet("token") {
		cfg.Session.Token = c.String("token")
	}
	if c.IsSet("aes-key") {
		cfg.Session.AESKey = c.String("aes-key")
	}
	if c.IsSet("db") {
		cfg.Storage.Path = c.String("db")
	}
	if c.IsSet("db-password") {
		cfg.Storage.Password = c.String("db-password")
	}
	if c.IsSet("api-port") {
		cfg.API.Enabled = true
		cfg.API.Port = c.Int("api-port")
	}

	return cfg, nil
}

// resolveSession prefers explicit credentials and falls back to the stored session
func resolveSession(cfg config.Config, store *storage.SessionStore) (*session.Session, error) {
	if cfg.Session.Token != "" {
		return session.New(cfg.Session.Token, cfg.Server.Address, cfg.Session.AESKey)
	}

	sess, err := store.Load()
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("no token given and no stored session in %s", cfg.Storage.Path)
	}
	return sess, err
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, err := storage.OpenSessionStore(cfg.Storage.Path, cfg.Storage.Password)
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := resolveSession(cfg, store)
	if err != nil {
		return err
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = sess.Address()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	holder := session.NewHolder()
	store.Attach(holder)
	holder.Set(sess)

	inbox, err := storage.OpenInbox(cfg.Storage.Path, time.Duration(cfg.Storage.InboxTTL), nil)
	if err != nil {
		return err
	}
	defer inbox.Close()

	observables := network.NewObservables()
	client, err := network.NewClient(sess, network.Deps{
		Holder:      holder,
		Observables: observables,
		Broadcaster: tick.NewBroadcaster(nil, time.Duration(cfg.Client.TickInterval)),
		Queue:       inbox,
		Transport:   transport.TCPFactory(cfg.TCPConfig()),
	}, cfg.NetworkConfig())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// Any forced logout or lost link ends the process
	kicked := network.NewClientEventListener(func(*network.Client) {
		logrus.Warn("⛔ Session kicked by server")
		cancel()
	})
	expired := network.NewClientEventListener(func(*network.Client) {
		logrus.Warn("🔑 Session token expired, log in again")
		cancel()
	})
	closed := network.NewConnectionStateListener(func(_ *network.Client, state transport.State) {
		if state == transport.StateClosed {
			cancel()
		}
	})
	observables.Kicked.Register(kicked)
	observables.TokenExpired.Register(expired)
	observables.ConnectionState.Register(closed)

	printBanner(sess)

	if err := client.Connect(ctx); err != nil {
		return err
	}

	if cfg.API.Enabled {
		apiConfig := api.DefaultConfig()
		apiConfig.Port = cfg.API.Port
		server := api.NewServer(client, inbox, apiConfig)
		go func() {
			if err := server.Start(ctx); err != nil {
				logrus.Errorf("API server: %v", err)
			}
		}()
	}

	waitForShutdown(ctx, client)

	runtime.KeepAlive(kicked)
	runtime.KeepAlive(expired)
	runtime.KeepAlive(closed)
	return nil
}

func printBanner(sess *session.Session) {
	fmt.Println("╔═══════════════════════════════════════════════════╗")
	fmt.Println("║            Zentalk Session Client v1.0            ║")
	fmt.Println("╚═══════════════════════════════════════════════════╝")
	fmt.Printf("   Server: %s\n", sess.Address())
	fmt.Printf("   Token:  %s\n", sess.Fingerprint())
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()
}

func waitForShutdown(ctx context.Context, client *network.Client) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		fmt.Println()
		logrus.Info("Shutting down gracefully...")
	case <-ctx.Done():
		logrus.Info("Session ended")
	}

	client.Disconnect()
	logrus.Info("Goodbye! 👋")
}
