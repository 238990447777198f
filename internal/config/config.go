// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/utils/logger"
	"github.com/spf13/viper"
)

const (
	StorageMemory = "memory"
	StorageBadger = "badger"
)

type Config struct {
	Ledger            LedgerConfig   `mapstructure:"ledger"`
	Settings          SettingsConfig `mapstructure:"settings"`
	Genesis           GenesisConfig  `mapstructure:"genesis"`
	Logging           LoggingConfig  `mapstructure:"logging"`
	Workers           int            `mapstructure:"workers"`
	Retries           int            `mapstructure:"retries"`
	RetryIntervalMs   int            `mapstructure:"retry_interval_ms"`
	RetryMaxElapsedMs int            `mapstructure:"retry_max_elapsed_ms"`
	WalletsPath       string         `mapstructure:"wallets_path"`
	LaunchesPath      string         `mapstructure:"launches_path"`
	MetricsAddr       string         `mapstructure:"metrics_addr"`

	RetryInterval   time.Duration `mapstructure:"-"`
	RetryMaxElapsed time.Duration `mapstructure:"-"`
}

type LedgerConfig struct {
	Storage          string `mapstructure:"storage"`
	BadgerPath       string `mapstructure:"badger_path"`
	SyncWrites       bool   `mapstructure:"sync_writes"`
	ComputeUnitLimit uint64 `mapstructure:"compute_unit_limit"`
	MaxInvokeDepth   int    `mapstructure:"max_invoke_depth"`
	Parallelism      int    `mapstructure:"parallelism"`
	SlotIntervalMs   int    `mapstructure:"slot_interval_ms"`

	SlotInterval time.Duration `mapstructure:"-"`
}

// SettingsConfig describes the platform record written at genesis.
type SettingsConfig struct {
	Admin          string   `mapstructure:"admin"`
	Treasury       string   `mapstructure:"treasury"`
	TransactionFee uint64   `mapstructure:"transaction_fee"`
	CollectionName string   `mapstructure:"collection_name"`
	CollectionURI  string   `mapstructure:"collection_uri"`
	PassHolders    []string `mapstructure:"pass_holders"`

	TreasuryKey solana.PublicKey `mapstructure:"-"`
}

type Airdrop struct {
	Wallet   string `mapstructure:"wallet"`
	Lamports uint64 `mapstructure:"lamports"`
}

type GenesisConfig struct {
	// DefaultAirdrop funds every loaded wallet not listed in Airdrops.
	DefaultAirdrop uint64    `mapstructure:"default_airdrop"`
	Airdrops       []Airdrop `mapstructure:"airdrops"`
}

type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Debug      bool   `mapstructure:"debug"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
	Quiet      bool   `mapstructure:"quiet"`
}

const (
	DefaultWorkers          = 4
	DefaultRetries          = 5
	DefaultRetryIntervalMs  = 50
	DefaultRetryMaxElapsed  = 10_000
	DefaultComputeUnitLimit = 200_000
	MaxComputeUnitLimit     = 1_400_000
	DefaultMaxInvokeDepth   = 4
	DefaultSlotIntervalMs   = 400
	DefaultTransactionFee   = 1_000_000
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	defaults := map[string]interface{}{
		"ledger.storage":            StorageMemory,
		"ledger.badger_path":        "data/ledger",
		"ledger.sync_writes":        false,
		"ledger.compute_unit_limit": DefaultComputeUnitLimit,
		"ledger.max_invoke_depth":   DefaultMaxInvokeDepth,
		"ledger.parallelism":        0,
		"ledger.slot_interval_ms":   DefaultSlotIntervalMs,
		"settings.admin":            "admin",
		"settings.transaction_fee":  DefaultTransactionFee,
		"settings.collection_name":  "Platform Pass",
		"settings.collection_uri":   "",
		"genesis.default_airdrop":   uint64(10_000_000_000),
		"logging.file":              "launchpad.log",
		"logging.debug":             false,
		"logging.max_size_mb":       100,
		"logging.max_age_days":      7,
		"logging.max_backups":       3,
		"logging.compress":          true,
		"logging.quiet":             false,
		"workers":                   DefaultWorkers,
		"retries":                   DefaultRetries,
		"retry_interval_ms":         DefaultRetryIntervalMs,
		"retry_max_elapsed_ms":      DefaultRetryMaxElapsed,
		"wallets_path":              "configs/wallets.yaml",
		"launches_path":             "configs/launches.yaml",
		"metrics_addr":              "",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	cfg.RetryInterval = time.Duration(cfg.RetryIntervalMs) * time.Millisecond
	cfg.RetryMaxElapsed = time.Duration(cfg.RetryMaxElapsedMs) * time.Millisecond
	cfg.Ledger.SlotInterval = time.Duration(cfg.Ledger.SlotIntervalMs) * time.Millisecond
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Ledger.Storage {
	case StorageMemory:
	case StorageBadger:
		if cfg.Ledger.BadgerPath == "" {
			return errors.New("ledger.badger_path is required for badger storage")
		}
	default:
		return fmt.Errorf("unknown ledger.storage %q", cfg.Ledger.Storage)
	}

	if cfg.Settings.Treasury == "" {
		return errors.New("missing settings.treasury in configuration")
	}
	treasury, err := solana.PublicKeyFromBase58(cfg.Settings.Treasury)
	if err != nil {
		return fmt.Errorf("invalid settings.treasury: %w", err)
	}
	cfg.Settings.TreasuryKey = treasury

	if cfg.Settings.Admin == "" {
		return errors.New("missing settings.admin in configuration")
	}
	for _, airdrop := range cfg.Genesis.Airdrops {
		if airdrop.Wallet == "" {
			return errors.New("genesis airdrop without wallet")
		}
	}

	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.Ledger.ComputeUnitLimit == 0 || cfg.Ledger.ComputeUnitLimit > MaxComputeUnitLimit {
		return fmt.Errorf("invalid ledger.compute_unit_limit: must be in (0, %d]", MaxComputeUnitLimit)
	}
	if cfg.Ledger.MaxInvokeDepth <= 0 {
		return errors.New("invalid ledger.max_invoke_depth")
	}
	if cfg.Ledger.Parallelism < 0 {
		return errors.New("invalid ledger.parallelism")
	}
	if cfg.Ledger.SlotIntervalMs < 0 {
		return errors.New("invalid ledger.slot_interval_ms")
	}
	if cfg.Workers < 0 {
		return errors.New("invalid workers count")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.RetryIntervalMs <= 0 {
		return errors.New("invalid retry_interval_ms")
	}
	if cfg.RetryMaxElapsedMs <= 0 {
		return errors.New("invalid retry_max_elapsed_ms")
	}
	return nil
}

// LoggerConfig maps the logging section onto the logger package.
func (c *Config) LoggerConfig() *logger.Config {
	return &logger.Config{
		LogFile:     c.Logging.File,
		MaxSize:     c.Logging.MaxSizeMB,
		MaxAge:      c.Logging.MaxAgeDays,
		MaxBackups:  c.Logging.MaxBackups,
		Compress:    c.Logging.Compress,
		Development: c.Logging.Debug,
		Quiet:       c.Logging.Quiet,
	}
}
