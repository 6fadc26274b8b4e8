package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// PlatformConfig identifies this deployment on chain. Address receives the
// platform referrer share of every coin minted through the service.
type PlatformConfig struct {
	Name    string `yaml:"name" validate:"required"`
	Address string `yaml:"address" validate:"required|ethAddress"`
	ChainID int64  `yaml:"chainId" validate:"required|min:1"`
}

type ProtocolConfig struct {
	ApiUrl      string        `yaml:"apiUrl" validate:"required|fullUrl"`
	ApiKey      string        `yaml:"apiKey"`
	DeployerUrl string        `yaml:"deployerUrl" validate:"required|fullUrl"`
	TradeUrl    string        `yaml:"tradeUrl" validate:"required|fullUrl"`
	Timeout     time.Duration `yaml:"timeout"`
}

type ContentStorageConfig struct {
	PinningUrl string        `yaml:"pinningUrl" validate:"required|fullUrl"`
	Jwt        string        `yaml:"jwt"`
	Gateway    string        `yaml:"gateway" validate:"required|fullUrl"`
	Timeout    time.Duration `yaml:"timeout"`
}

type WalletConfig struct {
	ConnectProjectId string `yaml:"connectProjectId"`
}

type RegistryConfig struct {
	Driver      string `yaml:"driver" validate:"required|in:memory,file,redis,postgres"`
	Dir         string `yaml:"dir"`
	RedisUrl    string `yaml:"redisUrl"`
	PostgresDsn string `yaml:"postgresDsn"`
	MaxAttempts int    `yaml:"maxAttempts"`
}

// TradeConfig bounds are decimal strings in whole units of the sold asset.
type TradeConfig struct {
	MinAmount       string  `yaml:"minAmount"`
	MaxAmount       string  `yaml:"maxAmount"`
	DefaultSlippage float64 `yaml:"defaultSlippage"`
	MaxSlippage     float64 `yaml:"maxSlippage"`
	LowMarketCap    string  `yaml:"lowMarketCap"`
	LowVolume       string  `yaml:"lowVolume"`
}

type ReaderConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type SchedulerConfig struct {
	WarmInterval time.Duration `yaml:"warmInterval"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server               `yaml:"webServer"`
	Logger    LoggerConfig         `yaml:"logger"`
	Cache     CacheConfig          `yaml:"cache"`
	Metrics   MetricsConfig        `yaml:"metrics"`
	Platform  PlatformConfig       `yaml:"platform"`
	Protocol  ProtocolConfig       `yaml:"protocol"`
	Storage   ContentStorageConfig `yaml:"storage"`
	Wallet    WalletConfig         `yaml:"wallet"`
	Registry  RegistryConfig       `yaml:"registry"`
	Trade     TradeConfig          `yaml:"trade"`
	Reader    ReaderConfig         `yaml:"reader"`
	Scheduler SchedulerConfig      `yaml:"scheduler"`
}
