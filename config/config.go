package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the application's configuration values.
type Config struct {
	AppName string `json:"appname"`
	AppEnv  string `json:"appenv"`
	AppPort uint16 `json:"appport"`
	AppTZ   string `json:"apptz"`
	GinMode string `json:"ginmode"`

	DBDriver   string `json:"dbdriver"`
	DBHost     string `json:"dbhost"`
	DBPort     uint16 `json:"dbport"`
	DBName     string `json:"dbname"`
	DBUSER     string `json:"dbuser"`
	DBPass     string `json:"dbpass"`
	SQLitePath string `json:"sqlite_path"`

	RedisEnabled bool   `json:"redis_enabled"`
	RedisAddr    string `json:"redis_addr"`
	RedisPass    string `json:"-"`
	RedisDB      int    `json:"redis_db"`

	JWTSecret     string        `json:"-"`
	SessionTTL    time.Duration `json:"session_ttl"`
	CORSOrigins   []string      `json:"cors_origins"`
	LogLevel      string        `json:"log_level"`
	DefaultLocale string        `json:"default_locale"`
	GeoIPDBPath   string        `json:"geoip_db_path"`
	RateLimit     int           `json:"rate_limit"`
	RateWindow    time.Duration `json:"rate_window"`
	PurgeInterval time.Duration `json:"purge_interval"`
}

var config *Config
var once sync.Once

func setDefaults(v *viper.Viper) {
	v.SetDefault("APPNAME", "nutritrack")
	v.SetDefault("APPENV", "development")
	v.SetDefault("APPPORT", 8080)
	v.SetDefault("APPTZ", "UTC")
	v.SetDefault("GINMODE", "debug")
	v.SetDefault("DBDRIVER", "sqlite")
	v.SetDefault("DBHOST", "localhost")
	v.SetDefault("DBPORT", 3306)
	v.SetDefault("SQLITE_PATH", "nutritrack.db")
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEFAULT_LOCALE", "es")
	v.SetDefault("RATE_LIMIT", 10)
	v.SetDefault("RATE_WINDOW", "1m")
	v.SetDefault("PURGE_INTERVAL", "1h")
}

// LoadConfig loads the environment variables from an optional .env file, and
// returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Debug().Err(err).Msg("no .env file loaded")
		}

		v := viper.New()
		v.AutomaticEnv()
		setDefaults(v)

		var origins []string
		for _, o := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}

		config = &Config{
			AppName:       v.GetString("APPNAME"),
			AppEnv:        v.GetString("APPENV"),
			AppPort:       v.GetUint16("APPPORT"),
			AppTZ:         v.GetString("APPTZ"),
			GinMode:       v.GetString("GINMODE"),
			DBDriver:      strings.ToLower(v.GetString("DBDRIVER")),
			DBHost:        v.GetString("DBHOST"),
			DBPort:        v.GetUint16("DBPORT"),
			DBName:        v.GetString("DBNAME"),
			DBUSER:        v.GetString("DBUSER"),
			DBPass:        v.GetString("DBPASS"),
			SQLitePath:    v.GetString("SQLITE_PATH"),
			RedisEnabled:  v.GetBool("REDIS_ENABLED"),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPass:     v.GetString("REDIS_PASS"),
			RedisDB:       v.GetInt("REDIS_DB"),
			JWTSecret:     v.GetString("JWTSECRET"),
			SessionTTL:    v.GetDuration("SESSION_TTL"),
			CORSOrigins:   origins,
			LogLevel:      v.GetString("LOG_LEVEL"),
			DefaultLocale: v.GetString("DEFAULT_LOCALE"),
			GeoIPDBPath:   v.GetString("GEOIP_DB_PATH"),
			RateLimit:     v.GetInt("RATE_LIMIT"),
			RateWindow:    v.GetDuration("RATE_WINDOW"),
			PurgeInterval: v.GetDuration("PURGE_INTERVAL"),
		}
	})
	return config
}

// ResetConfigForTest drops the cached config so the next LoadConfig re-reads
// the environment.
func ResetConfigForTest() {
	config = nil
	once = sync.Once{}
}

// Location resolves AppTZ, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTZ)
	if err != nil {
		log.Warn().Err(err).Str("tz", c.AppTZ).Msg("unknown APPTZ, using UTC")
		return time.UTC
	}
	return loc
}

// Dialector picks the gorm driver for DBDRIVER. The test environment always
// gets a private in-memory sqlite database.
func (c *Config) Dialector() (gorm.Dialector, error) {
	if c.AppEnv == "test" {
		return sqlite.Open(fmt.Sprintf("file:nutritrack_test_%d?mode=memory&cache=shared", time.Now().UnixNano())), nil
	}
	switch c.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC", c.DBUSER, c.DBPass, c.DBHost, c.DBPort, c.DBName)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC", c.DBHost, c.DBPort, c.DBUSER, c.DBPass, c.DBName)
		return postgres.Open(dsn), nil
	case "sqlite", "":
		return sqlite.Open(c.SQLitePath), nil
	}
	return nil, fmt.Errorf("unsupported DBDRIVER %q", c.DBDriver)
}

// ConnectDatabase opens the configured database.
func ConnectDatabase() (*gorm.DB, error) {
	cfg := LoadConfig()
	dialector, err := cfg.Dialector()
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{}
	if cfg.AppEnv != "development" {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	// sqlite allows a single writer; serialize through one connection.
	if cfg.AppEnv == "test" || cfg.DBDriver == "sqlite" || cfg.DBDriver == "" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}
