package connector

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Konsultn-Engineering/pinotconn/logger"
	"github.com/Konsultn-Engineering/pinotconn/query"
)

const (
	DefaultPort      = 8099
	DefaultScheme    = "http"
	DefaultQueryPath = "/query"
	HealthPath       = "/health"
)

// Config represents broker connection configuration.
type Config struct {
	Host     string `mapstructure:"host" json:"host" yaml:"host"`
	Port     int    `mapstructure:"port" json:"port" yaml:"port"`
	Scheme   string `mapstructure:"scheme" json:"scheme" yaml:"scheme"`
	Username string `mapstructure:"username" json:"username" yaml:"username"`
	Password string `mapstructure:"password" json:"password" yaml:"password"`
	Database string `mapstructure:"database" json:"database" yaml:"database"`

	QueryPath string `mapstructure:"query_path" json:"query_path" yaml:"query_path"`

	// AllowPartialResults accepts responses where fewer servers responded
	// than were queried.
	AllowPartialResults bool `mapstructure:"allow_partial_results" json:"allow_partial_results" yaml:"allow_partial_results"`

	QueryOptions query.Options `mapstructure:"query_options" json:"query_options" yaml:"query_options"`
	Client       ClientOptions `mapstructure:"client" json:"client" yaml:"client"`
	Log          logger.Config `mapstructure:"log" json:"log" yaml:"log"`
}

// ClientOptions configure the HTTP client a connection builds for itself.
type ClientOptions struct {
	Timeout            time.Duration     `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
	MaxConnsPerHost    int               `mapstructure:"max_conns_per_host" json:"max_conns_per_host" yaml:"max_conns_per_host"`
	MaxIdleConns       int               `mapstructure:"max_idle_conns" json:"max_idle_conns" yaml:"max_idle_conns"`
	FollowRedirects    bool              `mapstructure:"follow_redirects" json:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects       int               `mapstructure:"max_redirects" json:"max_redirects" yaml:"max_redirects"`
	InsecureSkipVerify bool              `mapstructure:"insecure_skip_verify" json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	Proxy              string            `mapstructure:"proxy" json:"proxy" yaml:"proxy"`
	TrustEnv           bool              `mapstructure:"trust_env" json:"trust_env" yaml:"trust_env"`
	Headers            map[string]string `mapstructure:"headers" json:"headers" yaml:"headers"`
}

// RequestOptions override client settings for a single execute. A zero
// Timeout keeps the client's.
type RequestOptions struct {
	Timeout time.Duration
	Headers map[string]string
	Cookies []*http.Cookie
}

// DefaultClientOptions mirror the settings of a freshly built client.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:         5 * time.Second,
		MaxConnsPerHost: 100,
		MaxIdleConns:    20,
		MaxRedirects:    20,
		TrustEnv:        true,
	}
}

// DefaultConfig returns a config for a broker on localhost.
func DefaultConfig() Config {
	return Config{
		Host:      "localhost",
		Port:      DefaultPort,
		Scheme:    DefaultScheme,
		QueryPath: DefaultQueryPath,
		Client:    DefaultClientOptions(),
		Log:       logger.Config{Level: "INFO", Format: "text"},
	}
}

// withDefaults fills zero numeric and string fields. Booleans are taken as given.
func (c Config) withDefaults() Config {
	def := DefaultClientOptions()
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Scheme == "" {
		c.Scheme = DefaultScheme
	}
	if c.QueryPath == "" {
		c.QueryPath = DefaultQueryPath
	}
	if !strings.HasPrefix(c.QueryPath, "/") {
		c.QueryPath = "/" + c.QueryPath
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = def.Timeout
	}
	if c.Client.MaxConnsPerHost == 0 {
		c.Client.MaxConnsPerHost = def.MaxConnsPerHost
	}
	if c.Client.MaxIdleConns == 0 {
		c.Client.MaxIdleConns = def.MaxIdleConns
	}
	if c.Client.MaxRedirects == 0 {
		c.Client.MaxRedirects = def.MaxRedirects
	}
	return c
}

// Validate checks the config after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()
	if err := c.urlBuilder().Validate(); err != nil {
		return err
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("invalid client timeout: %s", c.Client.Timeout)
	}
	if err := c.QueryOptions.Validate(); err != nil {
		return fmt.Errorf("query options: %w", err)
	}
	return nil
}

func (c Config) urlBuilder() *URLBuilder {
	return NewURLBuilder(c.Scheme).Host(c.Host, c.Port)
}

// LoadConfig reads a config from an optional file and from environment
// variables. With prefix "PINOT", PINOT_HOST sets host and
// PINOT_CLIENT_TIMEOUT sets client.timeout.
func LoadConfig(path, envPrefix string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can find it on Unmarshal.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("host", def.Host)
	v.SetDefault("port", def.Port)
	v.SetDefault("scheme", def.Scheme)
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("database", "")
	v.SetDefault("query_path", def.QueryPath)
	v.SetDefault("allow_partial_results", false)

	v.SetDefault("client.timeout", def.Client.Timeout)
	v.SetDefault("client.max_conns_per_host", def.Client.MaxConnsPerHost)
	v.SetDefault("client.max_idle_conns", def.Client.MaxIdleConns)
	v.SetDefault("client.follow_redirects", def.Client.FollowRedirects)
	v.SetDefault("client.max_redirects", def.Client.MaxRedirects)
	v.SetDefault("client.insecure_skip_verify", false)
	v.SetDefault("client.proxy", "")
	v.SetDefault("client.trust_env", def.Client.TrustEnv)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.add_source", false)
}
