package providers

import (
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"strings"
	"time"
	"zoblogs/internal/structures"
)

const (
	ZeroAddress   = "0x0000000000000000000000000000000000000000"
	BaseChainID   = 8453
	PlatformName  = "zo-blogs"
	PublicGateway = "https://ipfs.io"
	PinningAPI    = "https://api.pinata.cloud"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("cache.ttl", 30*time.Second)
	v.SetDefault("platform.name", PlatformName)
	v.SetDefault("platform.address", ZeroAddress)
	v.SetDefault("platform.chainId", BaseChainID)
	v.SetDefault("protocol.timeout", 15*time.Second)
	v.SetDefault("storage.pinningUrl", PinningAPI)
	v.SetDefault("storage.gateway", PublicGateway)
	v.SetDefault("storage.timeout", 30*time.Second)
	v.SetDefault("registry.driver", "file")
	v.SetDefault("registry.maxAttempts", 5)
	v.SetDefault("trade.minAmount", "0.000001")
	v.SetDefault("trade.maxAmount", "10")
	v.SetDefault("trade.defaultSlippage", 0.05)
	v.SetDefault("trade.maxSlippage", 0.5)
	v.SetDefault("trade.lowMarketCap", "1000")
	v.SetDefault("trade.lowVolume", "10")
	v.SetDefault("reader.concurrency", 8)
	v.SetDefault("scheduler.warmInterval", time.Minute)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config
	v := viper.New()

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setDefaults(v)

	v.BindEnv("logger.level", "ZOBLOGS_LOG_LEVEL")
	v.BindEnv("platform.address", "ZOBLOGS_PLATFORM_ADDRESS")
	v.BindEnv("protocol.apiKey", "ZOBLOGS_PROTOCOL_API_KEY")
	v.BindEnv("wallet.connectProjectId", "ZOBLOGS_WALLETCONNECT_PROJECT_ID")
	v.BindEnv("storage.jwt", "ZOBLOGS_PINNING_JWT")
	v.BindEnv("registry.driver", "ZOBLOGS_REGISTRY_DRIVER")
	v.BindEnv("registry.redisUrl", "ZOBLOGS_REDIS_URL")
	v.BindEnv("registry.postgresDsn", "ZOBLOGS_POSTGRES_DSN")
	v.BindEnv("cache.enabled", "ZOBLOGS_CACHE_ENABLED")
	v.BindEnv("cache.size", "ZOBLOGS_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "ZoBlogs"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
