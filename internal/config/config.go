package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/Veraticus/consulta-proyectos/internal/common"
	"github.com/spf13/viper"
)

// Config keys understood by the application.
const (
	KeyDatabasePath   = "database.path"
	KeyDocumentsDir   = "documents.dir"
	KeyPageSize       = "query.page_size"
	KeyStrictEntity   = "query.strict_entity"
	KeyPDFCommand     = "extract.pdf_command"
	KeyExtractTimeout = "extract.timeout"
	KeyExtractRetry   = "extract.retries"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
)

// Config is the resolved application configuration.
type Config struct {
	DatabasePath   string
	DocumentsDir   string
	PDFCommand     []string
	LogLevel       string
	LogFormat      string
	ExtractTimeout time.Duration
	ExtractRetries int
	PageSize       int
	StrictEntity   bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, "~/.local/share/proyectos/proyectos.db")
	v.SetDefault(KeyDocumentsDir, "~/.local/share/proyectos/documentos")
	v.SetDefault(KeyPageSize, 50)
	v.SetDefault(KeyStrictEntity, false)
	v.SetDefault(KeyPDFCommand, []string{"pdftotext", "-layout", "{file}", "-"})
	v.SetDefault(KeyExtractTimeout, 30*time.Second)
	v.SetDefault(KeyExtractRetry, 2)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath:   ExpandPath(v.GetString(KeyDatabasePath)),
		DocumentsDir:   ExpandPath(v.GetString(KeyDocumentsDir)),
		PageSize:       v.GetInt(KeyPageSize),
		StrictEntity:   v.GetBool(KeyStrictEntity),
		PDFCommand:     v.GetStringSlice(KeyPDFCommand),
		ExtractTimeout: v.GetDuration(KeyExtractTimeout),
		ExtractRetries: v.GetInt(KeyExtractRetry),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	if c.DatabasePath != ":memory:" && !filepath.IsAbs(c.DatabasePath) {
		abs, err := filepath.Abs(c.DatabasePath)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, KeyDatabasePath, err)
		}
		c.DatabasePath = abs
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", common.ErrInvalidConfig, KeyPageSize, c.PageSize)
	}
	if len(c.PDFCommand) == 0 {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyPDFCommand)
	}
	if c.ExtractTimeout <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyExtractTimeout)
	}
	if c.ExtractRetries < 0 {
		return fmt.Errorf("%w: %s cannot be negative", common.ErrInvalidConfig, KeyExtractRetry)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
