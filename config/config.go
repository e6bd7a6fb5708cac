package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tryon-bot/internal/domain/entity"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Vision     VisionConfig     `mapstructure:"vision"`
	Generation GenerationConfig `mapstructure:"generation"`
	Mask       MaskConfig       `mapstructure:"mask"`
	Guard      GuardConfig      `mapstructure:"guard"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

// RedisConfig пустой адрес отключает второй уровень кэша
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	TTL     time.Duration `mapstructure:"ttl"`
	Cleanup time.Duration `mapstructure:"cleanup"`
}

type VisionConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PigoCascade string        `mapstructure:"pigo_cascade"`
	HaarCascade string        `mapstructure:"haar_cascade"`
}

type GenerationConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type MaskConfig struct {
	Padding       float64 `mapstructure:"padding"`
	FeatherRadius int     `mapstructure:"feather_radius"`
	Resolution    int     `mapstructure:"resolution"`
}

type GuardConfig struct {
	Threshold           float64 `mapstructure:"threshold"`
	InpaintingThreshold float64 `mapstructure:"inpainting_threshold"`
	HardFloor           float64 `mapstructure:"hard_floor"`
	ColorCorrection     bool    `mapstructure:"color_correction"`
	FeatherRadius       int     `mapstructure:"feather_radius"`
	Validation          bool    `mapstructure:"validation"`
	MaxRetries          int     `mapstructure:"max_retries"`
	// Scorer default или strict
	Scorer string `mapstructure:"scorer"`
}

// Load читает .env, затем YAML; переменные окружения TRYON_* перекрывают файл.
// Отсутствие файла не ошибка: используются значения по умолчанию и окружение.
func Load(configPath string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TRYON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// New загружает config.yaml из рабочего каталога
func New() (*Config, error) {
	return Load("config.yaml")
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func setDefaults(v *viper.Viper) {
	d := getDefaultConfig()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.max_body_size", d.Server.MaxBodySize)

	v.SetDefault("telegram.token", d.Telegram.Token)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)

	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup", d.Cache.Cleanup)

	v.SetDefault("vision.endpoint", d.Vision.Endpoint)
	v.SetDefault("vision.api_key", d.Vision.APIKey)
	v.SetDefault("vision.timeout", d.Vision.Timeout)
	v.SetDefault("vision.pigo_cascade", d.Vision.PigoCascade)
	v.SetDefault("vision.haar_cascade", d.Vision.HaarCascade)

	v.SetDefault("generation.endpoint", d.Generation.Endpoint)
	v.SetDefault("generation.api_key", d.Generation.APIKey)
	v.SetDefault("generation.timeout", d.Generation.Timeout)

	v.SetDefault("mask.padding", d.Mask.Padding)
	v.SetDefault("mask.feather_radius", d.Mask.FeatherRadius)
	v.SetDefault("mask.resolution", d.Mask.Resolution)

	v.SetDefault("guard.threshold", d.Guard.Threshold)
	v.SetDefault("guard.inpainting_threshold", d.Guard.InpaintingThreshold)
	v.SetDefault("guard.hard_floor", d.Guard.HardFloor)
	v.SetDefault("guard.color_correction", d.Guard.ColorCorrection)
	v.SetDefault("guard.feather_radius", d.Guard.FeatherRadius)
	v.SetDefault("guard.validation", d.Guard.Validation)
	v.SetDefault("guard.max_retries", d.Guard.MaxRetries)
	v.SetDefault("guard.scorer", d.Guard.Scorer)
}

func getDefaultConfig() *Config {
	mask := entity.DefaultMaskOptions()
	guard := entity.DefaultPostProcessingOptions()

	return &Config{
		Server: ServerConfig{
			Port:            ":8080",
			Mode:            "debug",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxBodySize:     32 << 20,
		},
		Cache: CacheConfig{
			TTL:     5 * time.Minute,
			Cleanup: time.Minute,
		},
		Vision: VisionConfig{
			Timeout: 30 * time.Second,
		},
		Generation: GenerationConfig{
			Timeout: 90 * time.Second,
		},
		Mask: MaskConfig{
			Padding:       mask.Padding,
			FeatherRadius: mask.FeatherRadius,
			Resolution:    mask.Resolution,
		},
		Guard: GuardConfig{
			Threshold:           guard.Threshold,
			InpaintingThreshold: entity.InpaintingPostProcessingOptions().Threshold,
			HardFloor:           guard.HardFloor,
			ColorCorrection:     guard.ColorCorrection,
			FeatherRadius:       guard.FeatherRadius,
			Validation:          guard.Validation,
			MaxRetries:          guard.MaxRetries,
			Scorer:              "default",
		},
	}
}

// MaskOptions настройки масок для сегментации
func (c *Config) MaskOptions() entity.MaskOptions {
	return entity.MaskOptions{
		Padding:       c.Mask.Padding,
		FeatherRadius: c.Mask.FeatherRadius,
		Resolution:    c.Mask.Resolution,
	}
}

// PostProcessingOptions настройки IdentityGuard для режима.
func (c *Config) PostProcessingOptions(mode entity.Mode) entity.PostProcessingOptions {
	opts := entity.PostProcessingOptions{
		Threshold:       c.Guard.Threshold,
		HardFloor:       c.Guard.HardFloor,
		ColorCorrection: c.Guard.ColorCorrection,
		FeatherRadius:   c.Guard.FeatherRadius,
		Validation:      c.Guard.Validation,
		MaxRetries:      c.Guard.MaxRetries,
	}
	if mode == entity.ModeInpainting {
		opts.Threshold = c.Guard.InpaintingThreshold
	}
	return opts
}
