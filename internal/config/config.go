package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type SettlementConfig struct {
	Env           string `yaml:"env"`
	SettlementDB  `yaml:"settlement_db"`
	LogConfig     `yaml:"log_config"`
	KafkaService  `yaml:"kafka-service"`
	Settlement    `yaml:"settlement"`
	Notifications `yaml:"notifications"`
	MetricsServer `yaml:"metrics_server"`
}

type SettlementDB struct {
	Dsn            string `yaml:"dsn"`
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type KafkaService struct {
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	SettlementTopic string `yaml:"settlement_topic" env-default:"settlement-events"`
	AuditTopic      string `yaml:"audit_topic" env-default:"audit-events"`
	DeadLetterTopic string `yaml:"dead_letter_topic" env-default:"settlement.dead-letter"`
	ConsumerGroup   string `yaml:"consumer_group" env-default:"settlement-service"`
}

type Settlement struct {
	FeeBasisPoints      int           `yaml:"fee_basis_points" env-default:"200"`
	DisputeWindow       time.Duration `yaml:"dispute_window" env-default:"24h"`
	PayoutBatchSize     int           `yaml:"payout_batch_size" env-default:"100"`
	ResolutionWorkers   int           `yaml:"resolution_workers" env-default:"2"`
	PayoutWorkers       int           `yaml:"payout_workers" env-default:"5"`
	RefundWorkers       int           `yaml:"refund_workers" env-default:"2"`
	MaxJobAttempts      int           `yaml:"max_job_attempts" env-default:"5"`
	RetryBackoff        time.Duration `yaml:"retry_backoff" env-default:"3s"`
	JobTimeout          time.Duration `yaml:"job_timeout" env-default:"1m"`
	MultiSigApprovals   int           `yaml:"multisig_approvals" env-default:"2"`
	WindowSweepInterval time.Duration `yaml:"window_sweep_interval" env-default:"30s"`
}

type Notifications struct {
	DispatchURL string `yaml:"dispatch_url"`
}

type MetricsServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"9091"`
}

func MustLoad() *SettlementConfig {

	// Processing env config variable and file
	configPath := os.Getenv("SETTLEMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("SETTLEMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg SettlementConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
