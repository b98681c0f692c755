package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-pdf-filler/internal/forms"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 5000
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultWorkers     = 1

	// MaxWorkers bounds batch parallelism
	MaxWorkers = 32

	// EnvPrefix prefixes every environment variable
	EnvPrefix = "PDF_FILLER"
)

// ErrVersionRequested is returned by LoadFromFlags when --version is given
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the PDF form filler
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Template configuration
	TemplateDirectory string
	MaxFileSize       int64 // Maximum template file size in bytes
	Companions        map[string][]string

	// Filling configuration
	Workers         int
	DefaultLanguage string
	ProviderNumber  string
	ProviderName    string

	// Application configuration
	ConfigFile string
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:              ModeStdio,
		Host:              DefaultHost,
		Port:              DefaultPort,
		TemplateDirectory: currentDir,
		MaxFileSize:       DefaultMaxFileSize,
		Workers:           DefaultWorkers,
		DefaultLanguage:   string(forms.DefaultLanguage),
		ProviderNumber:    forms.DefaultProviderNumber,
		ProviderName:      forms.DefaultProviderName,
		Version:           "1.0.0",
		ServerName:        "mcp-pdf-filler",
		LogLevel:          DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags, the environment and an optional
// config file, and returns a validated configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	if err := readConfigFile(); err != nil {
		return nil, err
	}

	if err := populateConfigFromViper(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.TemplateDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.TemplateDirectory); err == nil {
			cfg.TemplateDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// PORT is what most hosting platforms set
	_ = viper.BindEnv("port", EnvPrefix+"_PORT", "PORT")

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.TemplateDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("lang", cfg.DefaultLanguage)
	viper.SetDefault("provider-number", cfg.ProviderNumber)
	viper.SetDefault("provider-name", cfg.ProviderName)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.TemplateDirectory, "Directory containing the template PDF files")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum template file size in bytes")
	pflag.Int("workers", cfg.Workers, "Documents generated in parallel within a batch")
	pflag.String("lang", cfg.DefaultLanguage, "Language used when a request names none (fr, nl)")
	pflag.String("provider-number", cfg.ProviderNumber, "Enterprise number of the service provider printed on the procuration")
	pflag.String("provider-name", cfg.ProviderName, "Name of the service provider printed on the procuration")
	pflag.StringArray("companion", nil, "Static companion file of a document, as document=file (repeatable)")
	pflag.String("config", "", "Config file (YAML, TOML or JSON)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, key := range []string{
		"mode", "host", "port", "dir", "loglevel", "maxfilesize",
		"workers", "lang", "provider-number", "provider-name",
	} {
		_ = viper.BindPFlag(key, pflag.Lookup(key))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP PDF Filler - fills administrative PDF forms over MCP or HTTP\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --dir=/srv/templates                          "+
			"# stdio mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/srv/templates            # HTTP server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --workers=4 --config=filler.yaml # parallel batches\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --companion=mensura=Conditions_Generales_Mensura.pdf\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDF_FILLER_MODE             Server mode\n")
		fmt.Fprintf(os.Stderr, "  PDF_FILLER_HOST             Server host\n")
		fmt.Fprintf(os.Stderr, "  PDF_FILLER_PORT, PORT       Server port\n")
		fmt.Fprintf(os.Stderr, "  PDF_FILLER_DIR              Template directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_FILLER_LOGLEVEL         Log level\n")
		fmt.Fprintf(os.Stderr, "  PDF_FILLER_MAXFILESIZE      Maximum template size\n")
		fmt.Fprintf(os.Stderr, "  PDF_FILLER_WORKERS          Batch parallelism\n")
		fmt.Fprintf(os.Stderr, "  PDF_FILLER_LANG             Default language\n")
		fmt.Fprintf(os.Stderr, "  PDF_FILLER_PROVIDER_NUMBER  Provider enterprise number\n")
		fmt.Fprintf(os.Stderr, "  PDF_FILLER_PROVIDER_NAME    Provider name\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// readConfigFile loads the --config file when one is given
func readConfigFile() error {
	path, _ := pflag.CommandLine.GetString("config")
	if path == "" {
		return nil
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	viper.Set("config", path)
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) error {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.TemplateDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Workers = viper.GetInt("workers")
	cfg.DefaultLanguage = viper.GetString("lang")
	cfg.ProviderNumber = viper.GetString("provider-number")
	cfg.ProviderName = viper.GetString("provider-name")
	cfg.ConfigFile = viper.GetString("config")

	if viper.IsSet("companions") {
		cfg.Companions = viper.GetStringMapStringSlice("companions")
	}

	flags, _ := pflag.CommandLine.GetStringArray("companion")
	for _, spec := range flags {
		document, file, ok := strings.Cut(spec, "=")
		document, file = strings.TrimSpace(document), strings.TrimSpace(file)
		if !ok || document == "" || file == "" {
			return fmt.Errorf("companion must be document=file, got %q", spec)
		}
		if cfg.Companions == nil {
			cfg.Companions = make(map[string][]string)
		}
		cfg.Companions[document] = append(cfg.Companions[document], file)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Port only matters in server mode
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.TemplateDirectory == "" {
		return errors.New("template directory cannot be empty")
	}
	info, err := os.Stat(c.TemplateDirectory)
	if err != nil {
		return fmt.Errorf("cannot access template directory %s: %w", c.TemplateDirectory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("template directory %s is not a directory", c.TemplateDirectory)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.Workers < 1 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d", MaxWorkers)
	}

	if _, err := forms.ParseLanguage(c.DefaultLanguage); err != nil {
		return fmt.Errorf("invalid default language: %w", err)
	}

	if strings.TrimSpace(c.ProviderNumber) == "" || strings.TrimSpace(c.ProviderName) == "" {
		return errors.New("provider number and name cannot be empty")
	}

	catalog := forms.Default()
	for document, files := range c.Companions {
		if _, ok := catalog.Lookup(document); !ok {
			return fmt.Errorf("companion configured for unknown document %q", document)
		}
		for _, f := range files {
			if filepath.IsAbs(f) || strings.HasPrefix(filepath.Clean(f), "..") {
				return fmt.Errorf("companion %q of %s must be relative to the template directory", f, document)
			}
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Language returns the parsed default language
func (c *Config) Language() forms.Language {
	lang, err := forms.ParseLanguage(c.DefaultLanguage)
	if err != nil {
		return forms.DefaultLanguage
	}
	return lang
}

// DefaultValues returns the values merged under every request
func (c *Config) DefaultValues() forms.Values {
	return forms.Values{
		"prestataire_num_entreprise": forms.Text(c.ProviderNumber),
		"prestataire_nom":            forms.Text(c.ProviderName),
	}
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	documents := make([]string, 0, len(c.Companions))
	for d := range c.Companions {
		documents = append(documents, d)
	}
	sort.Strings(documents)

	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, TemplateDirectory: %s, LogLevel: %s, "+
		"MaxFileSize: %d, Workers: %d, Language: %s, Companions: %v}",
		c.Mode, c.Host, c.Port, c.TemplateDirectory, c.LogLevel,
		c.MaxFileSize, c.Workers, c.DefaultLanguage, documents)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
