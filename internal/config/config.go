package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string        `env:"ADDR" envDefault:":8080"`
	DBPath       string        `env:"DB_PATH" envDefault:"./data/blog.db"`
	UploadDir    string        `env:"UPLOAD_DIR" envDefault:"./data/uploads"`
	TemplateGlob string        `env:"TEMPLATE_GLOB" envDefault:"web/templates/*.html"`
	StaticDir    string        `env:"STATIC_DIR" envDefault:"./web/static"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	MaxImageMB   int64         `env:"MAX_IMAGE_MB" envDefault:"2"`
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
