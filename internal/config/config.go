package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Render struct {
		Locale         string `mapstructure:"locale"`
		CurrencySymbol string `mapstructure:"currency_symbol"`
		FontRegular    string `mapstructure:"font_regular"`
		FontBold       string `mapstructure:"font_bold"`
		Background     string `mapstructure:"background"`
		ItemRows       int    `mapstructure:"item_rows"`
	} `mapstructure:"render"`

	Preview struct {
		NominalWidth float64 `mapstructure:"nominal_width"`
		Padding      float64 `mapstructure:"padding"`
	} `mapstructure:"preview"`

	Export struct {
		Factor         float64 `mapstructure:"factor"`
		SuppressShadow bool    `mapstructure:"suppress_shadow"`
		PNGFilename    string  `mapstructure:"png_filename"`
		PDFFilename    string  `mapstructure:"pdf_filename"`
		CacheTTLMin    int     `mapstructure:"cache_ttl_minutes"`
	} `mapstructure:"export"`

	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	R2 R2Config `mapstructure:"r2"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(configPath())

	// INVOICE_EXPORT_FACTOR overrides export.factor, and so on
	v.SetEnvPrefix("invoice")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Kubernetes style service variables win over the config file
	if host := os.Getenv("REDIS_SERVICE_HOST"); host != "" {
		port := os.Getenv("REDIS_SERVICE_PORT")
		if port == "" {
			port = "6379"
		}
		cfg.Redis.Addr = host + ":" + port
		cfg.Redis.Enabled = true
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}

	cfg.R2.applyEnv()

	return &cfg
}

func configPath() string {
	if p := os.Getenv("INVOICE_CONFIG"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Content-Type"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("render.locale", "en")
	v.SetDefault("render.currency_symbol", "¥")
	v.SetDefault("render.background", "#ffffff")
	v.SetDefault("render.item_rows", 10)

	v.SetDefault("preview.nominal_width", 793.7)
	v.SetDefault("preview.padding", 32)

	v.SetDefault("export.factor", 3)
	v.SetDefault("export.suppress_shadow", true)
	v.SetDefault("export.png_filename", "invoice.png")
	v.SetDefault("export.pdf_filename", "invoice.pdf")
	v.SetDefault("export.cache_ttl_minutes", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("r2.enabled", false)
	v.SetDefault("r2.region", "auto")
	v.SetDefault("r2.prefix", "exports")
}

// BackgroundColor parses render.background (#rgb or #rrggbb). The result is
// always opaque; an unparseable value falls back to white.
func (c *Config) BackgroundColor() color.RGBA {
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	bg, err := ParseHexColor(c.Render.Background)
	if err != nil {
		log.Printf("[Config] Invalid render.background %q, using white: %v", c.Render.Background, err)
		return white
	}
	return bg
}

// ParseHexColor parses #rgb or #rrggbb into an opaque color
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("want 3 or 6 hex digits, got %d", len(s))
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

// SetupLogging applies log.level and log.format to the standard logger
func (c *Config) SetupLogging() {
	if strings.EqualFold(c.Log.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
