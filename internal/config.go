package internal

import (
	"fmt"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StorageJSON   = "json"
	StorageBadger = "badger"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=4003" validate:"min=1,max=65535"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	StorageBackend string `env:"STORAGE_BACKEND,default=json" validate:"oneof=json badger"`
	MessagesPath   string `env:"MESSAGES_PATH,default=data/messages.json" validate:"required_if=StorageBackend json"`
	BadgerFilepath string `env:"BADGER_FILEPATH,default=data/badger" validate:"required_if=StorageBackend badger"`
	LimitMessages  *int   `env:"LIMIT_MESSAGES" validate:"omitempty,min=1"`

	ChatImagesDir string `env:"CHAT_IMAGES_DIR,default=chat_images" validate:"required"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE,default=10485760" validate:"min=1"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64" validate:"min=1"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=200ms"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=10s" validate:"min=1ms"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`

	DebugPort int `env:"DEBUG_PORT,default=8081"`

	CensoredWordsPath string `env:"CENSORED_WORDS_PATH"`
	CharReplacement   string `env:"CHARACTER_REPLACEMENT,default=*"`
}

// LoadConfig reads an optional .env file then the process environment.
// Variables already set in the environment take precedence over the file.
func LoadConfig(dotenv string) (Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("loading %s: %w", dotenv, err)
		}
	}
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := CharacterRune(c.CharReplacement); err != nil {
		return err
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
