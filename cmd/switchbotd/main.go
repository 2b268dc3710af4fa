// switchbotd - SwitchBot device controller
//
// This is the main entry point for the switchbotd daemon. It keeps the
// SwitchBot cloud credentials, mirrors the device and scene lists, polls
// device status, and serves the REST/WebSocket API used by clients.
// MQTT publishing and InfluxDB history are optional.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/0suu/SwitchBotController/internal/api"
	"github.com/0suu/SwitchBotController/internal/infrastructure/config"
	"github.com/0suu/SwitchBotController/internal/infrastructure/database"
	"github.com/0suu/SwitchBotController/internal/infrastructure/influxdb"
	"github.com/0suu/SwitchBotController/internal/infrastructure/logging"
	"github.com/0suu/SwitchBotController/internal/infrastructure/metrics"
	"github.com/0suu/SwitchBotController/internal/infrastructure/mqtt"
	"github.com/0suu/SwitchBotController/internal/orchestrator"
	"github.com/0suu/SwitchBotController/internal/store"
	"github.com/0suu/SwitchBotController/internal/switchbot"
	"github.com/0suu/SwitchBotController/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// mqttHandlerTimeout bounds a command received over MQTT.
const mqttHandlerTimeout = 30 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting switchbotd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Persistence
	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// Cloud bridge
	var bridge switchbot.Bridge
	if cfg.SwitchBot.Mock {
		bridge = switchbot.NewMockBridge()
		log.Warn("using the built-in demo bridge; no cloud calls are made")
	} else {
		bridge = switchbot.NewClient(switchbot.Options{
			BaseURL:    cfg.SwitchBot.BaseURL,
			Timeout:    time.Duration(cfg.SwitchBot.Timeout) * time.Second,
			RetryCount: cfg.SwitchBot.RetryCount,
			Logger:     log,
		})
	}

	m := metrics.New()
	core := orchestrator.New(orchestrator.Config{
		Store:                  st,
		Bridge:                 bridge,
		DefaultIntervalSeconds: cfg.Polling.DefaultIntervalSeconds,
		Logger:                 log,
		Recorder:               m,
	})
	defer func() {
		log.Info("stopping orchestrator")
		core.Stop()
	}()

	// MQTT (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = startMQTT(cfg, core, log)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		core.SetPublisher(mqttClient)
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		core.SetHistory(influxClient)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// API server
	srv, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Core:     core,
		Metrics:  m,
		MQTT:     mqttClient,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	core.SetBroadcaster(srv.Hub())

	if err := core.Start(ctx, orchestrator.Seed{Token: cfg.SwitchBot.Token, Secret: cfg.SwitchBot.Secret}); err != nil {
		return fmt.Errorf("starting orchestrator: %w", err)
	}
	log.Info("orchestrator started",
		"validated", core.Credentials.Validated(),
		"devices", len(core.Devices.Devices()),
		"scenes", len(core.Scenes.List()),
	)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order: API server, InfluxDB, MQTT,
	// orchestrator, store.
	log.Info("switchbotd stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SWITCHBOT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SWITCHBOT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadConfig reads path. A missing file at the default location falls back
// to the built-in defaults; an explicitly named file must exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == defaultConfigPath && errors.Is(err, fs.ErrNotExist) {
		return config.Default()
	}
	return nil, err
}

// openStore opens the configured key/value backend and returns a function
// releasing it.
func openStore(ctx context.Context, cfg *config.Config, log *logging.Logger) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		log.Warn("using the in-memory store; settings are lost on restart")
		return store.NewMemoryStore(), func() {}, nil

	case config.StoreBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Address,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		rs := store.NewRedisStore(rdb, cfg.Store.Redis.KeyPrefix)
		if err := rs.HealthCheck(ctx); err != nil {
			rdb.Close() //nolint:errcheck // already failing
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		log.Info("redis store connected", "address", cfg.Store.Redis.Address)
		return rs, func() {
			log.Info("closing redis")
			if err := rdb.Close(); err != nil {
				log.Error("error closing redis", "error", err)
			}
		}, nil

	default:
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.Migrate(ctx, migrations.FS, migrations.Dir); err != nil {
			db.Close() //nolint:errcheck // already failing
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("database connected", "path", cfg.Database.Path)
		return store.NewSQLiteStore(db.DB), func() {
			log.Info("closing database")
			if err := db.Close(); err != nil {
				log.Error("error closing database", "error", err)
			}
		}, nil
	}
}

// startMQTT connects to the broker and routes inbound set requests to the
// orchestrator's command dispatch.
func startMQTT(cfg *config.Config, core *orchestrator.Orchestrator, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg.MQTT, cfg.Site.ID)
	if err != nil {
		return nil, err
	}
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	err = client.SubscribeDeviceSets(func(deviceID string, req mqtt.SetRequest) error {
		ctx, cancel := context.WithTimeout(context.Background(), mqttHandlerTimeout)
		defer cancel()
		_, sendErr := core.SendCommand(ctx, deviceID, orchestrator.CommandRequest{
			Command:      req.Command,
			Parameter:    req.Parameter,
			CommandType:  req.CommandType,
			CommandLabel: req.CommandLabel,
			Value:        req.Value,
		})
		return sendErr
	})
	if err != nil {
		client.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("subscribing to device set topics: %w", err)
	}
	return client, nil
}
