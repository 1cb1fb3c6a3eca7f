package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Player backends.
const (
	PlayerFFPlay = "ffplay"
	PlayerSilent = "silent"
)

type Config struct {
	Addr     string
	DBPath   string
	LogLevel string
	LogFile  string

	CatalogPath string
	AudioRoot   string
	AudioIndex  string
	BatchSize   int

	Player       string
	PlayerPath   string
	SilentClipMS int
	Volume       float64

	PrefetchWorkers int
	PrefetchQueue   int
	PrefetchAhead   int

	Defaults SessionDefaults
}

// SessionDefaults seeds every new flashcard session.
type SessionDefaults struct {
	Loop          bool
	Shuffle       bool
	Manual        bool
	Speed         float64
	RepeatEnglish int
	RepeatChinese int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:            envOr("ADDR", ":8080"),
		DBPath:          envOr("DB_PATH", "file:hanziflash.db"),
		LogLevel:        envOr("LOG_LEVEL", "INFO"),
		LogFile:         envOr("LOG_FILE", ""),
		CatalogPath:     envOr("CATALOG_PATH", ""),
		AudioRoot:       envOr("AUDIO_ROOT", "assets/audio"),
		AudioIndex:      envOr("AUDIO_INDEX", ""),
		BatchSize:       envIntOr("BATCH_SIZE", 100),
		Player:          strings.ToLower(envOr("PLAYER", PlayerFFPlay)),
		PlayerPath:      envOr("PLAYER_PATH", "ffplay"),
		SilentClipMS:    envIntOr("SILENT_CLIP_MS", 0),
		Volume:          envFloatOr("VOLUME", 1.0),
		PrefetchWorkers: envIntOr("PREFETCH_WORKERS", 2),
		PrefetchQueue:   envIntOr("PREFETCH_QUEUE", 32),
		PrefetchAhead:   envIntOr("PREFETCH_AHEAD", 1),
		Defaults: SessionDefaults{
			Loop:          envBoolOr("DEFAULT_LOOP", true),
			Shuffle:       envBoolOr("DEFAULT_SHUFFLE", true),
			Manual:        envBoolOr("DEFAULT_MANUAL", false),
			Speed:         envFloatOr("DEFAULT_SPEED", 1.0),
			RepeatEnglish: envIntOr("DEFAULT_REPEAT_ENGLISH", 1),
			RepeatChinese: envIntOr("DEFAULT_REPEAT_CHINESE", 2),
		},
	}
}

// Validate reports the first configuration value that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.AudioRoot == "" && c.AudioIndex == "" {
		return fmt.Errorf("AUDIO_ROOT cannot be empty when AUDIO_INDEX is unset")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be > 0, got %d", c.BatchSize)
	}
	switch c.Player {
	case PlayerFFPlay:
		if c.PlayerPath == "" {
			return fmt.Errorf("PLAYER_PATH cannot be empty for the ffplay player")
		}
	case PlayerSilent:
	default:
		return fmt.Errorf("PLAYER must be %q or %q, got %q", PlayerFFPlay, PlayerSilent, c.Player)
	}
	if c.SilentClipMS < 0 {
		return fmt.Errorf("SILENT_CLIP_MS cannot be negative")
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("VOLUME must be between 0 and 1, got %.2f", c.Volume)
	}
	if c.PrefetchWorkers < 1 {
		return fmt.Errorf("PREFETCH_WORKERS must be >= 1")
	}
	if c.PrefetchQueue < 1 {
		return fmt.Errorf("PREFETCH_QUEUE must be >= 1")
	}
	if c.PrefetchAhead < 0 {
		return fmt.Errorf("PREFETCH_AHEAD cannot be negative")
	}
	d := c.Defaults
	if d.Speed < 0.1 || d.Speed > 3.0 {
		return fmt.Errorf("DEFAULT_SPEED must be between 0.10 and 3.00, got %.2f", d.Speed)
	}
	if d.RepeatEnglish < 0 || d.RepeatEnglish > 3 {
		return fmt.Errorf("DEFAULT_REPEAT_ENGLISH must be between 0 and 3, got %d", d.RepeatEnglish)
	}
	if d.RepeatChinese < 0 || d.RepeatChinese > 3 {
		return fmt.Errorf("DEFAULT_REPEAT_CHINESE must be between 0 and 3, got %d", d.RepeatChinese)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %.2f", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
