package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text or json
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL string `yaml:"ttl"`
		// DefaultTimeLimit in minutes for quizzes created without one; nil means 10, 0 means untimed.
		DefaultTimeLimit *int `yaml:"defaultTimeLimit"`
		AllowResubmit    bool `yaml:"allowResubmit"`
		// AttemptGrace is how long an unfinished attempt is kept past its countdown,
		// both in process and as its Redis marker.
		AttemptGrace string `yaml:"attemptGrace"`
	} `yaml:"quiz"`
	Attendance struct {
		// Timezone whose midnight starts a new attendance day (IANA name). Empty means local.
		Timezone string `yaml:"timezone"`
	} `yaml:"attendance"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// DefaultTimeLimit returns the configured quiz default in minutes.
func (c Config) DefaultTimeLimit() int {
	if c.Quiz.DefaultTimeLimit == nil {
		return 10
	}
	return *c.Quiz.DefaultTimeLimit
}

// Location resolves the attendance timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Attendance.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Attendance.Timezone)
}
