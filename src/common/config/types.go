package config

import "time"

// Config holds settings shared by the data-clean and time-sort commands.
// Values come from an optional YAML file, then the environment, then flags.
type Config struct {
	Database    string       `yaml:"database"`
	OutputFile  string       `yaml:"output_file"`
	MetricsFile string       `yaml:"metrics_file"`
	LogLevel    string       `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Redis       RedisConfig  `yaml:"redis"`
	Rabbit      RabbitConfig `yaml:"rabbit"`
}

type RedisConfig struct {
	Addr      string        `yaml:"addr" validate:"omitempty,hostname_port"`
	TTL       time.Duration `yaml:"ttl" validate:"gte=0"`
	KeyPrefix string        `yaml:"key_prefix" validate:"required"`
}

type RabbitConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port" validate:"omitempty,numeric"`
	Queue    string `yaml:"queue"`
}
