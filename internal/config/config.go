// Package config resolves the effective exporter configuration from three
// competing sources: a structured config file, environment variables and
// command-line flags. Exactly one resolution path is taken per run - either
// the config file defines everything, or the flag/environment path does.
// The two schemas are never merged.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hadoop-jmx-exporter/internal/collector"
	"github.com/hadoop-jmx-exporter/pkg/logger"
)

var valid = validator.New()

// Built-in defaults, the lowest precedence tier.
const (
	DefaultCluster = "hadoop_cluster"
	DefaultAddress = "127.0.0.1"
	DefaultPort    = 9130
	DefaultPath    = "/metrics"
	DefaultPeriod  = 30 * time.Second
)

// ServerConfig holds the exposition listener settings.
type ServerConfig struct {
	Address string        `mapstructure:"address" validate:"required"`
	Port    int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	Path    string        `mapstructure:"path" validate:"required,startswith=/"`
	Period  time.Duration `validate:"gt=0"`
}

// ListenAddr renders the address:port the listener binds.
func (s ServerConfig) ListenAddr() string {
	return net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
}

// ServiceSpec is one monitored endpoint. URL and Type are immutable once
// constructed; Cluster defaults to the global default when unset.
type ServiceSpec struct {
	Cluster string
	URL     string
	Type    collector.Type
	Name    string
}

func (s ServiceSpec) String() string {
	out := fmt.Sprintf("(cluster: %s, url: %s, collector: %s", s.Cluster, s.URL, s.Type)
	if s.Name != "" {
		out += ", name: " + s.Name
	}
	return out + ")"
}

// Config is the resolved, effective configuration. It is immutable after
// startup and owned by the orchestrator.
type Config struct {
	Server    ServerConfig
	Log       logger.Config
	Cluster   string
	Whitelist Whitelist

	AutoDiscovery bool
	DiscoveryURL  string

	// FromFile marks config-file mode; Services is then the complete
	// monitored set. In flag/environment mode ServiceURLs carries the
	// explicitly supplied URL per short code and the orchestrator
	// synthesizes the service list.
	FromFile    bool
	Services    []ServiceSpec
	ServiceURLs map[string]string
}

// RegisterFlags declares every exporter flag on the given set. Flag names
// mirror the environment variables; pflag has no multi-letter single-dash
// form, so the classic short options become long flags (--nn, --adw, ...).
func RegisterFlags(f *pflag.FlagSet) {
	f.String("cfg", "", "exporter config file; when set and readable it overrides all other sources")
	f.StringP("cluster", "c", "", "cluster label attached to every metric (default \"hadoop_cluster\")")

	for _, kind := range ServiceKinds {
		f.String(kind.Code, "", fmt.Sprintf("%s (example %q)", kind.Help, kind.DefaultURL))
	}

	f.String("ad", "", "enable service auto-discovery if \"true\" (default \"false\")")
	f.String("adw", "", "comma-separated whitelist of service short codes eligible for auto-registration")
	f.String("discovery-url", "", "discovery endpoint returning the cluster topology document")

	f.String("addr", "", "exposition listen address (default \"127.0.0.1\")")
	f.StringP("port", "p", "", "exposition listen port (default \"9130\")")
	f.String("path", "", "path under which to expose metrics (default \"/metrics\")")
	f.String("period", "", "seconds between registration ticks (default \"30\")")

	f.String("log-level", "", "log level [debug,info,warn,error]")
	f.String("log-format", "", "console log format [console,json]")
	f.String("log-path", "", "log file directory")
}

// Load resolves the effective configuration. A readable config file wins
// outright; a missing or malformed one degrades to the flag/environment
// path with a logged warning, never a crash.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if path := resolve(flags, "cfg", "EXPORTER_CONFIG", ""); path != "" {
		logger.Info("using provided config file", zap.String("path", path))
		cfg, err := loadFile(path)
		if err == nil {
			cfg.Log = logConfig(flags)
			return cfg, cfg.validate()
		}
		logger.Warn("failed to load config file, falling back to flags/environment",
			zap.String("path", path), zap.Error(err))
	}

	cfg := loadFlat(flags)
	return cfg, cfg.validate()
}

// resolve applies the flag > environment > default precedence for one field.
// Only a flag the user actually set counts as explicit.
func resolve(flags *pflag.FlagSet, name, env, def string) string {
	if f := flags.Lookup(name); f != nil && f.Changed && f.Value.String() != "" {
		return f.Value.String()
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func logConfig(flags *pflag.FlagSet) logger.Config {
	return logger.Config{
		Level:  resolve(flags, "log-level", "EXPORTER_LOG_LEVEL", "info"),
		Format: resolve(flags, "log-format", "EXPORTER_LOG_FORMAT", "console"),
		Path:   resolve(flags, "log-path", "EXPORTER_LOGS_DIR", "./logs"),
	}
}

// fileConfig is the structured config file schema: a server section plus a
// list of jmx service entries.
type fileConfig struct {
	Server struct {
		Address string `mapstructure:"address"`
		Port    int    `mapstructure:"port"`
		Path    string `mapstructure:"path"`
		Period  int    `mapstructure:"period"`
	} `mapstructure:"server"`
	JMX []struct {
		Cluster   string `mapstructure:"cluster"`
		URL       string `mapstructure:"url"`
		Component string `mapstructure:"component"`
		Service   string `mapstructure:"service"`
		Name      string `mapstructure:"name"`
	} `mapstructure:"jmx"`
}

func loadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fc,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg := &Config{
		FromFile: true,
		Cluster:  DefaultCluster,
		Server: ServerConfig{
			Address: DefaultAddress,
			Port:    DefaultPort,
			Path:    DefaultPath,
			Period:  DefaultPeriod,
		},
	}
	if fc.Server.Address != "" {
		cfg.Server.Address = fc.Server.Address
	}
	if fc.Server.Port != 0 {
		cfg.Server.Port = fc.Server.Port
	}
	if fc.Server.Path != "" {
		cfg.Server.Path = fc.Server.Path
	}
	if fc.Server.Period != 0 {
		cfg.Server.Period = time.Duration(fc.Server.Period) * time.Second
	}

	for _, entry := range fc.JMX {
		typ, err := collector.Lookup(entry.Component, entry.Service)
		if err != nil {
			// One unresolvable entry never aborts the whole load.
			logger.Warn("skipping jmx entry",
				zap.String("component", entry.Component),
				zap.String("service", entry.Service),
				zap.Error(err))
			continue
		}
		if entry.URL == "" {
			logger.Warn("skipping jmx entry without url",
				zap.String("component", entry.Component),
				zap.String("service", entry.Service))
			continue
		}
		spec := ServiceSpec{
			Cluster: entry.Cluster,
			URL:     entry.URL,
			Type:    typ,
			Name:    entry.Name,
		}
		if spec.Cluster == "" {
			spec.Cluster = DefaultCluster
		}
		logger.Info("added service", zap.Stringer("service", spec))
		cfg.Services = append(cfg.Services, spec)
	}
	return cfg, nil
}

func loadFlat(flags *pflag.FlagSet) *Config {
	cfg := &Config{
		Cluster: resolve(flags, "cluster", "EXPORTER_CLUSTER_NAME", DefaultCluster),
		Server: ServerConfig{
			Address: resolve(flags, "addr", "EXPORTER_ADDRESS", DefaultAddress),
			Port:    resolveInt(flags, "port", "EXPORTER_PORT", DefaultPort),
			Path:    resolve(flags, "path", "EXPORTER_PATH", DefaultPath),
			Period:  time.Duration(resolveInt(flags, "period", "EXPORTER_PERIOD", int(DefaultPeriod/time.Second))) * time.Second,
		},
		Log:          logConfig(flags),
		DiscoveryURL: resolve(flags, "discovery-url", "EXPORTER_DISCOVERY_URL", ""),
		Whitelist:    ParseWhitelist(resolve(flags, "adw", "EXPORTER_DISCOVERY_WHITELIST", "")),
		ServiceURLs:  map[string]string{},
	}

	ad := resolve(flags, "ad", "EXPORTER_AUTO_DISCOVERY", "false")
	cfg.AutoDiscovery = strings.EqualFold(ad, "true")

	for _, kind := range ServiceKinds {
		if url := resolve(flags, kind.Code, kind.Env, ""); url != "" {
			cfg.ServiceURLs[kind.Code] = url
		}
	}
	return cfg
}

func resolveInt(flags *pflag.FlagSet, name, env string, def int) int {
	raw := resolve(flags, name, env, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("invalid numeric value, using default",
			zap.String("field", name), zap.String("value", raw), zap.Int("default", def))
		return def
	}
	return n
}

// validate checks the resolved server section. Failures here mean the user
// supplied an unusable explicit value; the process exits non-zero rather
// than listening on a broken address.
func (c *Config) validate() error {
	if err := valid.Struct(&c.Server); err != nil {
		return fmt.Errorf("server config invalid: %w", err)
	}
	if _, err := net.ResolveTCPAddr("tcp", c.Server.ListenAddr()); err != nil {
		return fmt.Errorf("server address invalid (expected ip and port), got %s: %w", c.Server.ListenAddr(), err)
	}
	return nil
}
