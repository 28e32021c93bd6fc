package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type GeoConfig struct {
	GeoIPPath        string
	PostalCodeFile   string
	PostalPrefixLen  int
	MapsApiKey       string
	AllowIpOverride  bool
	DefaultMaxKm     float64
	DefaultMaxResult int
}

type Config struct {
	Country      string
	DataFolder   string
	Listen       string
	DebugListen  string
	Development  bool
	CatalogStore string // static, disk or postgres
	DatabaseUrl  string
	RabbitUrl    string
	InstanceId   string
	Redis        RedisConfig
	Geo          GeoConfig
	TokenHash    string
	ApiKey       string
}

func (c Config) String() string {
	return fmt.Sprintf(
		"[CONFIG: Country: %s | Listen: %s | Debug: %s | Catalog: %s | Redis: %t | Rabbit: %t | GeoIP: %s]",
		c.Country,
		c.Listen,
		c.DebugListen,
		c.CatalogStore,
		c.Redis.Addr != "",
		c.RabbitUrl != "",
		c.Geo.GeoIPPath,
	)
}

const ConfigFilePath = "./config.yaml"

// Load reads .env, config.yaml and the environment, in increasing priority.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	return FromViper(newViper(ConfigFilePath))
}

func newViper(configFile string) *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("country", "ca")
	v.SetDefault("data.folder", "data")
	v.SetDefault("listen", ":8080")
	v.SetDefault("debug.listen", ":8081")
	v.SetDefault("catalog.store", "static")
	v.SetDefault("redis.db", 0)
	v.SetDefault("geoip.path", "GeoLite2-City.mmdb")
	v.SetDefault("postal.file", "postcode-map.csv")
	v.SetDefault("default.maxdistance", 25.0)
	v.SetDefault("default.maxresults", 5)

	if configFile != "" {
		v.SetConfigFile(configFile)
		_ = v.ReadInConfig()
	}

	_ = v.BindEnv("country", "COUNTRY")
	_ = v.BindEnv("redis.addr", "REDIS_URL")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("rabbit.url", "RABBIT_URL")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("maps.apikey", "GOOGLE_MAPS_API_KEY")
	_ = v.BindEnv("token.hash", "SLASK_TOKEN_HASH")
	_ = v.BindEnv("api.key", "SLASK_API_KEY")
	_ = v.BindEnv("instance.id", "POD_NAME", "HOSTNAME")
	return v
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Country:      strings.ToLower(v.GetString("country")),
		DataFolder:   v.GetString("data.folder"),
		Listen:       v.GetString("listen"),
		DebugListen:  v.GetString("debug.listen"),
		Development:  v.GetBool("development"),
		CatalogStore: strings.ToLower(v.GetString("catalog.store")),
		DatabaseUrl:  v.GetString("database.url"),
		RabbitUrl:    v.GetString("rabbit.url"),
		InstanceId:   v.GetString("instance.id"),
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Geo: GeoConfig{
			GeoIPPath:        v.GetString("geoip.path"),
			PostalCodeFile:   v.GetString("postal.file"),
			PostalPrefixLen:  v.GetInt("postal.prefix"),
			MapsApiKey:       v.GetString("maps.apikey"),
			AllowIpOverride:  v.GetBool("geoip.override"),
			DefaultMaxKm:     v.GetFloat64("default.maxdistance"),
			DefaultMaxResult: v.GetInt("default.maxresults"),
		},
		TokenHash: v.GetString("token.hash"),
		ApiKey:    v.GetString("api.key"),
	}
	if cfg.Country == "ca" && !v.IsSet("postal.prefix") {
		cfg.Geo.PostalPrefixLen = 3
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.CatalogStore {
	case "static", "disk":
	case "postgres":
		if c.DatabaseUrl == "" {
			return fmt.Errorf("catalog store postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown catalog store %q", c.CatalogStore)
	}
	if c.Geo.DefaultMaxKm <= 0 {
		return fmt.Errorf("default max distance must be positive, got %v", c.Geo.DefaultMaxKm)
	}
	if c.Geo.DefaultMaxResult <= 0 {
		return fmt.Errorf("default max results must be positive, got %d", c.Geo.DefaultMaxResult)
	}
	return nil
}
