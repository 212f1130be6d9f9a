package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"studygate"`

	// PostgreSQL 配置
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"studygate"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"30"`
	PostgreSQLMaxOpen  int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"200"`
	// 只读副本，留空则读写都走主库
	PostgreSQLReplicaHost string `env:"POSTGRESQL_REPLICA_HOST"`
	PostgreSQLReplicaPort string `env:"POSTGRESQL_REPLICA_PORT" envDefault:"5432"`

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"sg"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// JWT 配置
	JWTSecret        string `env:"JWT_SECRET"` // 必填，用于签名 JWT
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"30"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// 升级调度（mentor dispatch）配置
	// 打卡未通过后通知人工调度系统的回调地址，失败不回滚打卡结果
	EscalationEndpoint       string `env:"ESCALATION_ENDPOINT"`
	EscalationTimeoutSeconds int    `env:"ESCALATION_TIMEOUT_SECONDS" envDefault:"5"`
	EscalationProvider       string `env:"ESCALATION_PROVIDER" envDefault:"http"` // http, mock

	// 调度系统回调鉴权密钥
	WorkflowSecret string `env:"WORKFLOW_SECRET"`

	// 干预工单配置
	TicketExpiryHours     int `env:"TICKET_EXPIRY_HOURS" envDefault:"12"`
	TicketReminderHours   int `env:"TICKET_REMINDER_HOURS" envDefault:"6"`
	TicketAutoAssignHours int `env:"TICKET_AUTO_ASSIGN_HOURS" envDefault:"12"`
	TicketForceHours      int `env:"TICKET_FORCE_HOURS" envDefault:"24"`
	// 自动指派的默认补救任务
	DefaultTaskText      string `env:"DEFAULT_TASK_TEXT" envDefault:"Review today's material and redo the practice set"`
	DefaultMentorContact string `env:"DEFAULT_MENTOR_CONTACT" envDefault:"mentor-desk@studygate.local"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	TracingEnabled bool   `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`

	// 速率限制配置, 配置在中间件内
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"100"` // 每秒请求数

	// 历史查询分页上限
	HistoryMaxLimit int `env:"HISTORY_MAX_LIMIT" envDefault:"100"`

	// SSE 推送通道每会话缓冲大小，写满即丢弃（推送本身不保证送达）
	PushSessionBuffer int `env:"PUSH_SESSION_BUFFER" envDefault:"16"`
}

func init() {

	if err := godotenv.Load(); err != nil {

		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.JWTSecret == "" {
		if Cfg.IsProduction() {
			log.Fatal("JWT_SECRET is required")
		}
		log.Printf("WARN: JWT_SECRET is not set, using an insecure development default")
		Cfg.JWTSecret = "studygate-dev-secret"
	}

	if Cfg.WorkflowSecret == "" {
		if Cfg.IsProduction() {
			log.Fatal("WORKFLOW_SECRET is required (authenticates the dispatch workflow callback)")
		}
		log.Printf("WARN: WORKFLOW_SECRET is not set, using an insecure development default")
		Cfg.WorkflowSecret = "studygate-dev-workflow-secret"
	}

	if Cfg.EscalationEndpoint == "" {
		log.Printf("WARN: ESCALATION_ENDPOINT is not set, failed check-ins will not reach the dispatch workflow")
	}

	if Cfg.TicketExpiryHours <= 0 {
		log.Fatal("TICKET_EXPIRY_HOURS must be positive")
	}

	if Cfg.TicketForceHours < Cfg.TicketAutoAssignHours {
		log.Fatal("TICKET_FORCE_HOURS must not be smaller than TICKET_AUTO_ASSIGN_HOURS")
	}
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

// GetReplicaDSN 只读副本 DSN，未配置副本时返回空串
func (c *Config) GetReplicaDSN() string {
	if c.PostgreSQLReplicaHost == "" {
		return ""
	}
	return "host=" + c.PostgreSQLReplicaHost +
		" port=" + c.PostgreSQLReplicaPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
