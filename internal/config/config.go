package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "COCODRY"

// PlaceholderSecret is the jwt secret shipped in configs/config.yml. It is
// only accepted when running against the simulator.
const PlaceholderSecret = "change-me"

const maxThresholdC = 100.0

// Config is the typed view of configs/config.yml plus env overrides.
type Config struct {
	Port     string
	LogLevel string

	DB      DBConfig
	Backend BackendConfig
	Poll    PollConfig
	Hazard  HazardConfig
	Batch   BatchConfig
	Alarm   AlarmConfig
	Auth    AuthConfig
	WS      WSConfig
	HTTP    HTTPConfig
}

type DBConfig struct {
	Path     string
	LockPath string
}

type BackendConfig struct {
	BaseURL         string
	Timeout         time.Duration
	Simulate        bool
	BreakerFailures int
	BreakerOpenFor  time.Duration
}

type PollConfig struct {
	Interval     time.Duration
	IdleInterval time.Duration // temperature watch between batches; 0 disables it
}

type HazardConfig struct {
	ThresholdC       float64
	CountdownSeconds int
}

type BatchConfig struct {
	DefaultTargetMoisture float64
}

type AlarmConfig struct {
	SoundEnabled bool
	MQTT         MQTTConfig
}

// MQTTConfig points at the broker driving the plant siren. An empty Broker
// means the alarm is only logged and streamed to screens.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
	Retries  int
}

type AuthConfig struct {
	JWTSecret string
}

type WSConfig struct {
	DefaultInterval time.Duration
}

type HTTPConfig struct {
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

var (
	errEmptyBaseURL     = errors.New("backend.base_url must be set unless backend.simulate is true")
	errBadPollInterval  = errors.New("poll.interval must be > 0")
	errBadIdleInterval  = errors.New("poll.idle_interval must be >= 0")
	errBadThreshold     = errors.New("hazard.threshold_c must be within (0, 100]")
	errBadCountdown     = errors.New("hazard.countdown_seconds must be >= 0")
	errBadTargetDefault = errors.New("batch.default_target_moisture must be within 0..100")
	errEmptySecret      = errors.New("auth.jwt_secret must be set")
	errPlaceholder      = errors.New("auth.jwt_secret is the shipped placeholder; set COCODRY_AUTH_JWT_SECRET")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8090")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "cocodry.db")
	v.SetDefault("db.lock_path", "")
	v.SetDefault("backend.base_url", "http://localhost:8080/api")
	v.SetDefault("backend.timeout", "4s")
	v.SetDefault("backend.simulate", false)
	v.SetDefault("backend.breaker.failures", 5)
	v.SetDefault("backend.breaker.open_for", "30s")
	v.SetDefault("poll.interval", "5s")
	v.SetDefault("poll.idle_interval", "15s")
	v.SetDefault("hazard.threshold_c", 35.0)
	v.SetDefault("hazard.countdown_seconds", 10)
	v.SetDefault("batch.default_target_moisture", 12.0)
	v.SetDefault("alarm.sound_enabled", true)
	v.SetDefault("alarm.mqtt.broker", "")
	v.SetDefault("alarm.mqtt.client_id", "cocodry-siren")
	v.SetDefault("alarm.mqtt.topic", "dryer/alarm/siren")
	v.SetDefault("alarm.mqtt.retries", 5)
	v.SetDefault("ws.default_interval", "1s")
	v.SetDefault("http.read_header_timeout", "10s")
	v.SetDefault("http.write_timeout", "10s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.shutdown_timeout", "10s")
}

// Load reads config.yml from the given directories (default "configs"),
// applies .env and COCODRY_* overrides, and validates the result.
// A missing config file is not an error; defaults apply.
func Load(paths ...string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:     v.GetString("port"),
		LogLevel: v.GetString("log.level"),
		DB: DBConfig{
			Path:     v.GetString("db.path"),
			LockPath: v.GetString("db.lock_path"),
		},
		Backend: BackendConfig{
			BaseURL:         strings.TrimRight(strings.TrimSpace(v.GetString("backend.base_url")), "/"),
			Timeout:         v.GetDuration("backend.timeout"),
			Simulate:        v.GetBool("backend.simulate"),
			BreakerFailures: v.GetInt("backend.breaker.failures"),
			BreakerOpenFor:  v.GetDuration("backend.breaker.open_for"),
		},
		Poll: PollConfig{
			Interval:     v.GetDuration("poll.interval"),
			IdleInterval: v.GetDuration("poll.idle_interval"),
		},
		Hazard: HazardConfig{
			ThresholdC:       v.GetFloat64("hazard.threshold_c"),
			CountdownSeconds: v.GetInt("hazard.countdown_seconds"),
		},
		Batch: BatchConfig{DefaultTargetMoisture: v.GetFloat64("batch.default_target_moisture")},
		Alarm: AlarmConfig{
			SoundEnabled: v.GetBool("alarm.sound_enabled"),
			MQTT: MQTTConfig{
				Broker:   v.GetString("alarm.mqtt.broker"),
				ClientID: v.GetString("alarm.mqtt.client_id"),
				Topic:    v.GetString("alarm.mqtt.topic"),
				Username: v.GetString("alarm.mqtt.username"),
				Password: v.GetString("alarm.mqtt.password"),
				Retries:  v.GetInt("alarm.mqtt.retries"),
			},
		},
		Auth: AuthConfig{JWTSecret: v.GetString("auth.jwt_secret")},
		WS:   WSConfig{DefaultInterval: v.GetDuration("ws.default_interval")},
		HTTP: HTTPConfig{
			ReadHeaderTimeout: v.GetDuration("http.read_header_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("http.shutdown_timeout"),
		},
	}
	if cfg.DB.LockPath == "" && cfg.DB.Path != "" {
		cfg.DB.LockPath = cfg.DB.Path + ".lock"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the control loop depends on.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" && !c.Backend.Simulate {
		return errEmptyBaseURL
	}
	if c.Poll.Interval <= 0 {
		return errBadPollInterval
	}
	if c.Poll.IdleInterval < 0 {
		return errBadIdleInterval
	}
	if c.Hazard.ThresholdC <= 0 || c.Hazard.ThresholdC > maxThresholdC {
		return errBadThreshold
	}
	if c.Hazard.CountdownSeconds < 0 {
		return errBadCountdown
	}
	if c.Batch.DefaultTargetMoisture < 0 || c.Batch.DefaultTargetMoisture > 100 {
		return errBadTargetDefault
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errEmptySecret
	}
	if c.Auth.IsPlaceholder() && !c.Backend.Simulate {
		return errPlaceholder
	}
	return nil
}

// IsPlaceholder reports whether the secret is still the shipped one.
func (a AuthConfig) IsPlaceholder() bool {
	return strings.TrimSpace(a.JWTSecret) == PlaceholderSecret
}
