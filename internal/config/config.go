package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ismaiel54/fix-counterparty-sim/internal/handler"
	"github.com/ismaiel54/fix-counterparty-sim/internal/rules"
	"github.com/quickfixgo/quickfix"
)

// Config holds configuration for all services
type Config struct {
	// Service name
	ServiceName string

	// FIX acceptor socket
	FIXBindHost string
	FIXBindPort int

	// FIX session identity
	BeginString      string
	SenderCompID     string
	TargetCompID     string
	HeartBtIntSecond int

	// Values the validation rules accept
	AcceptedSymbol  string
	AcceptedAccount string
	Username        string
	Password        string

	// Feature flags for the staged handler variants
	EnableOrders     bool
	EnableMarketData bool

	// gRPC health port
	GRPCPort int

	// HTTP health/metrics port
	HTTPPort int

	// Log level: debug, info, warn, error
	LogLevel string

	// Directory for the drop-copy outbox
	DataDir string

	// Journal outbound messages and publish them to Kafka
	DropCopyEnabled bool

	// Kafka brokers (comma-separated)
	KafkaBrokers string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig(serviceName string) *Config {
	defaults := rules.DefaultConfig()

	cfg := &Config{
		ServiceName:      serviceName,
		FIXBindHost:      getEnvAsString("FIX_BIND_HOST", "0.0.0.0"),
		FIXBindPort:      getEnvAsInt("FIX_BIND_PORT", 9878),
		BeginString:      getEnvAsString("FIX_BEGIN_STRING", quickfix.BeginStringFIX44),
		SenderCompID:     getEnvAsString("FIX_SENDER_COMP_ID", "SERVER"),
		TargetCompID:     getEnvAsString("FIX_TARGET_COMP_ID", "CLIENT"),
		HeartBtIntSecond: getEnvAsInt("FIX_HEARTBEAT_SECONDS", 30),
		AcceptedSymbol:   getEnvAsString("ACCEPTED_SYMBOL", defaults.Symbol),
		AcceptedAccount:  getEnvAsString("ACCEPTED_ACCOUNT", defaults.Account),
		Username:         getEnvAsString("FIX_USERNAME", defaults.Username),
		Password:         getEnvAsString("FIX_PASSWORD", defaults.Password),
		EnableOrders:     getEnvAsBool("ENABLE_ORDERS", true),
		EnableMarketData: getEnvAsBool("ENABLE_MARKET_DATA", true),
		GRPCPort:         getEnvAsInt("PORT_GRPC", 50051),
		HTTPPort:         getEnvAsInt("PORT_HTTP", 8080),
		LogLevel:         getEnvAsString("LOG_LEVEL", "info"),
		DataDir:          getEnvAsString("DATA_DIR", "./.data"),
		DropCopyEnabled:  getEnvAsBool("DROPCOPY_ENABLED", false),
		KafkaBrokers:     getEnvAsString("KAFKA_BROKERS", "127.0.0.1:9092"),
	}

	return cfg
}

// Rules returns the rule configuration
func (c *Config) Rules() rules.Config {
	return rules.Config{
		Symbol:   c.AcceptedSymbol,
		Account:  c.AcceptedAccount,
		Username: c.Username,
		Password: c.Password,
	}
}

// Features returns the enabled message kinds
func (c *Config) Features() handler.Features {
	return handler.Features{
		Orders:     c.EnableOrders,
		MarketData: c.EnableMarketData,
	}
}

// Brokers returns the Kafka broker list
func (c *Config) Brokers() []string {
	brokers := strings.Split(c.KafkaBrokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	return brokers
}

// GRPCAddr returns the gRPC server address
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// HTTPAddr returns the HTTP server address
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// FIXAddr returns the FIX acceptor address
func (c *Config) FIXAddr() string {
	return fmt.Sprintf("%s:%d", c.FIXBindHost, c.FIXBindPort)
}

// SessionSettings renders the acceptor's quickfix settings. Sessions from
// unknown target comp ids are created on logon.
func (c *Config) SessionSettings() (*quickfix.Settings, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[DEFAULT]\n")
	fmt.Fprintf(&sb, "SocketAcceptHost=%s\n", c.FIXBindHost)
	fmt.Fprintf(&sb, "SocketAcceptPort=%d\n", c.FIXBindPort)
	fmt.Fprintf(&sb, "SenderCompID=%s\n", c.SenderCompID)
	fmt.Fprintf(&sb, "HeartBtInt=%d\n", c.HeartBtIntSecond)
	fmt.Fprintf(&sb, "ResetOnLogon=Y\n")
	fmt.Fprintf(&sb, "DynamicSessions=Y\n")
	fmt.Fprintf(&sb, "UseDataDictionary=N\n")
	fmt.Fprintf(&sb, "\n[SESSION]\n")
	fmt.Fprintf(&sb, "BeginString=%s\n", c.BeginString)
	fmt.Fprintf(&sb, "TargetCompID=%s\n", c.TargetCompID)

	settings, err := quickfix.ParseSettings(strings.NewReader(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse session settings: %w", err)
	}
	return settings, nil
}

// ClientSessionSettings renders the initiator settings a test client uses to
// reach this acceptor: the comp ids are mirrored and it connects to host.
func (c *Config) ClientSessionSettings(host string) (*quickfix.Settings, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[DEFAULT]\n")
	fmt.Fprintf(&sb, "SocketConnectHost=%s\n", host)
	fmt.Fprintf(&sb, "SocketConnectPort=%d\n", c.FIXBindPort)
	fmt.Fprintf(&sb, "HeartBtInt=%d\n", c.HeartBtIntSecond)
	fmt.Fprintf(&sb, "ReconnectInterval=5\n")
	fmt.Fprintf(&sb, "ResetOnLogon=Y\n")
	fmt.Fprintf(&sb, "UseDataDictionary=N\n")
	fmt.Fprintf(&sb, "\n[SESSION]\n")
	fmt.Fprintf(&sb, "BeginString=%s\n", c.BeginString)
	fmt.Fprintf(&sb, "SenderCompID=%s\n", c.TargetCompID)
	fmt.Fprintf(&sb, "TargetCompID=%s\n", c.SenderCompID)

	settings, err := quickfix.ParseSettings(strings.NewReader(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse client session settings: %w", err)
	}
	return settings, nil
}

func getEnvAsString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
