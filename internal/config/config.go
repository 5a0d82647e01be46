package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by VERISIGHT_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("VERISIGHT_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// VisionProvider returns the configured vision model provider.
// Defaults to "anthropic" if not set.
// Valid values: anthropic, openai, mock
func VisionProvider() string {
	p := os.Getenv("VISION_PROVIDER")
	if p == "" {
		return "anthropic"
	}
	return p
}

// VisionAPIKey returns the API key for the configured vision provider.
func VisionAPIKey() string {
	switch VisionProvider() {
	case "openai":
		return OpenAIAPIKey()
	case "mock":
		return ""
	default:
		return AnthropicAPIKey()
	}
}

// UploadDir returns the directory uploaded media is stored in.
// Defaults to "uploads" if not set.
func UploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		return "uploads"
	}
	return dir
}

// CritiqueHistorySize bounds the red-team critique history ring buffer.
// Defaults to 200 if not set.
func CritiqueHistorySize() int {
	size, err := strconv.Atoi(os.Getenv("CRITIQUE_HISTORY_SIZE"))
	if err != nil || size <= 0 {
		return 200
	}
	return size
}

// MaxUploadBytes limits the accepted media file size.
// Defaults to 32 MiB if not set.
func MaxUploadBytes() int64 {
	size, err := strconv.ParseInt(os.Getenv("MAX_UPLOAD_BYTES"), 10, 64)
	if err != nil || size <= 0 {
		return 32 << 20
	}
	return size
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
