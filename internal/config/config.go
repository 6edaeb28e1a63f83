package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable the service reads at startup. Values come
// from app.env (if present) overridden by environment variables.
type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`

	// Tracking engine tunables.
	HistorySize         int           `mapstructure:"HISTORY_SIZE"`
	MaxSpeedKMH         float64       `mapstructure:"MAX_SPEED_KMH"`
	MinSpeedKMH         float64       `mapstructure:"MIN_SPEED_KMH"`
	MaxAccuracyM        float64       `mapstructure:"MAX_ACCURACY_M"`
	DeviationDistanceKM float64       `mapstructure:"DEVIATION_DISTANCE_KM"`
	DeviationDuration   time.Duration `mapstructure:"DEVIATION_DURATION"`
	StalenessWindow     time.Duration `mapstructure:"STALENESS_WINDOW"`
	SweepInterval       time.Duration `mapstructure:"SWEEP_INTERVAL"`

	// Notification dispatch.
	NotifyRetries        int           `mapstructure:"NOTIFY_RETRIES"`
	NotifyBackoff        time.Duration `mapstructure:"NOTIFY_BACKOFF"`
	NotifyAttemptTimeout time.Duration `mapstructure:"NOTIFY_ATTEMPT_TIMEOUT"`
	NotifyQueueSize      int           `mapstructure:"NOTIFY_QUEUE_SIZE"`
	AMQPURL              string        `mapstructure:"AMQP_URL"`
	AMQPExchange         string        `mapstructure:"AMQP_EXCHANGE"`
	SESRegion            string        `mapstructure:"SES_REGION"`
	SESFromEmail         string        `mapstructure:"SES_FROM_EMAIL"`
	SESAlertEmail        string        `mapstructure:"SES_ALERT_EMAIL"`
}

// LoadConfig reads configuration from app.env in the given path and from
// the environment. Environment variables win over file values.
func LoadConfig(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; everything can come from the
		// environment and defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("CLIENT_ORIGIN", "http://localhost:5173")

	viper.SetDefault("HISTORY_SIZE", 10)
	viper.SetDefault("MAX_SPEED_KMH", 200.0)
	viper.SetDefault("MIN_SPEED_KMH", 1.0)
	viper.SetDefault("MAX_ACCURACY_M", 500.0)
	viper.SetDefault("DEVIATION_DISTANCE_KM", 2.0)
	viper.SetDefault("DEVIATION_DURATION", 5*time.Minute)
	viper.SetDefault("STALENESS_WINDOW", 10*time.Minute)
	viper.SetDefault("SWEEP_INTERVAL", time.Minute)

	viper.SetDefault("NOTIFY_RETRIES", 3)
	viper.SetDefault("NOTIFY_BACKOFF", 2*time.Second)
	viper.SetDefault("NOTIFY_ATTEMPT_TIMEOUT", 5*time.Second)
	viper.SetDefault("NOTIFY_QUEUE_SIZE", 256)
	viper.SetDefault("AMQP_EXCHANGE", "tracking_events")
}
