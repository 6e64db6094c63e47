package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// AnalyticsConfig is the margin, alert and export policy. It is read from
// analytics.yml and reloaded on change.
type AnalyticsConfig struct {
	Thresholds     ThresholdsConfig `mapstructure:"thresholds"`
	Overrun        OverrunConfig    `mapstructure:"overrun"`
	TopAlerts      int              `mapstructure:"topAlerts"`
	DefaultVATRate float64          `mapstructure:"defaultVatRate"`
	VATRegime      string           `mapstructure:"vatRegime"`
	RateSources    []string         `mapstructure:"rateSources"`
	Ledger         LedgerConfig     `mapstructure:"ledger"`
}

// ThresholdsConfig holds margin-rate percentages. They must be increasing.
type ThresholdsConfig struct {
	Critical float64 `mapstructure:"critical"`
	Warning  float64 `mapstructure:"warning"`
	Good     float64 `mapstructure:"good"`
}

// OverrunConfig drives the budget overrun alert: expected cost is
// revenue × progress × CostRatio and the alert fires above Tolerance × that.
type OverrunConfig struct {
	CostRatio float64 `mapstructure:"costRatio"`
	Tolerance float64 `mapstructure:"tolerance"`
}

// LedgerConfig holds the entry descriptions written to the FEC file. The
// {number} placeholder is replaced with the invoice number and {label} with
// the expense description.
type LedgerConfig struct {
	InvoiceLabel    string `mapstructure:"invoiceLabel"`
	InvoiceVATLabel string `mapstructure:"invoiceVatLabel"`
	ExpenseFallback string `mapstructure:"expenseFallback"`
	ExpenseVATLabel string `mapstructure:"expenseVatLabel"`
}

const (
	VATRegimeMonthly   = "monthly"
	VATRegimeQuarterly = "quarterly"
	VATRegimeFranchise = "franchise"
)

func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		Thresholds: ThresholdsConfig{Critical: 10, Warning: 20, Good: 30},
		Overrun:    OverrunConfig{CostRatio: 0.7, Tolerance: 1.2},
		TopAlerts:  10,
		// Standard French rate applied when a document carries no rate.
		DefaultVATRate: 20,
		VATRegime:      VATRegimeQuarterly,
		RateSources:    []string{"hourly_rate", "loaded_hourly_cost"},
		Ledger: LedgerConfig{
			InvoiceLabel:    "Facture {number}",
			InvoiceVATLabel: "TVA Facture {number}",
			ExpenseFallback: "Achat",
			ExpenseVATLabel: "TVA {label}",
		},
	}
}

type AnalyticsConfigHolder struct {
	current atomic.Value // holds AnalyticsConfig
}

// NewStaticAnalyticsConfigHolder wraps a fixed configuration.
func NewStaticAnalyticsConfigHolder(cfg AnalyticsConfig) *AnalyticsConfigHolder {
	holder := &AnalyticsConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

// NewAnalyticsConfigHolder looks for analytics.yml in the usual locations and
// falls back to defaults when none exists.
func NewAnalyticsConfigHolder(log *zap.Logger) (*AnalyticsConfigHolder, error) {
	return LoadAnalyticsConfig("", log)
}

// LoadAnalyticsConfig reads the analytics policy from path, or from the
// default search paths when path is empty, and watches it for changes.
func LoadAnalyticsConfig(path string, log *zap.Logger) (*AnalyticsConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.analytics")

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("analytics")
		v.SetConfigType("yml")
		v.AddConfigPath("/var/lib/chantierpro/config")
		v.AddConfigPath("/etc/chantierpro")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CHANTIERPRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultAnalyticsConfig()
	v.SetDefault("analytics.thresholds.critical", defaults.Thresholds.Critical)
	v.SetDefault("analytics.thresholds.warning", defaults.Thresholds.Warning)
	v.SetDefault("analytics.thresholds.good", defaults.Thresholds.Good)
	v.SetDefault("analytics.overrun.costRatio", defaults.Overrun.CostRatio)
	v.SetDefault("analytics.overrun.tolerance", defaults.Overrun.Tolerance)
	v.SetDefault("analytics.topAlerts", defaults.TopAlerts)
	v.SetDefault("analytics.defaultVatRate", defaults.DefaultVATRate)
	v.SetDefault("analytics.vatRegime", defaults.VATRegime)
	v.SetDefault("analytics.rateSources", defaults.RateSources)
	v.SetDefault("analytics.ledger.invoiceLabel", defaults.Ledger.InvoiceLabel)
	v.SetDefault("analytics.ledger.invoiceVatLabel", defaults.Ledger.InvoiceVATLabel)
	v.SetDefault("analytics.ledger.expenseFallback", defaults.Ledger.ExpenseFallback)
	v.SetDefault("analytics.ledger.expenseVatLabel", defaults.Ledger.ExpenseVATLabel)

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		found = false
		log.Info("analytics config not found, using defaults")
	}

	cfg, err := decodeAnalytics(v)
	if err != nil {
		return nil, err
	}
	if err := ValidateAnalyticsConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticAnalyticsConfigHolder(cfg)
	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeAnalytics(v)
		if err != nil {
			log.Warn("analytics config reload failed", zap.Error(err))
			return
		}
		if err := ValidateAnalyticsConfig(updated); err != nil {
			log.Warn("invalid analytics config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("analytics config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// decodeAnalytics goes through AllSettings so defaults fill the keys a
// partial file leaves out.
func decodeAnalytics(v *viper.Viper) (AnalyticsConfig, error) {
	var wrapper struct {
		Analytics AnalyticsConfig `mapstructure:"analytics"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return AnalyticsConfig{}, err
	}
	return wrapper.Analytics, nil
}

func (h *AnalyticsConfigHolder) Get() AnalyticsConfig {
	return h.current.Load().(AnalyticsConfig)
}

// ValidateAnalyticsConfig rejects policies the calculators cannot apply.
func ValidateAnalyticsConfig(cfg AnalyticsConfig) error {
	t := cfg.Thresholds
	if t.Critical < 0 || t.Critical > t.Warning || t.Warning > t.Good {
		return fmt.Errorf("analytics.thresholds must satisfy 0 <= critical <= warning <= good, got %v/%v/%v", t.Critical, t.Warning, t.Good)
	}
	if cfg.Overrun.CostRatio <= 0 {
		return errors.New("analytics.overrun.costRatio must be positive")
	}
	if cfg.Overrun.Tolerance < 1 {
		return errors.New("analytics.overrun.tolerance must be at least 1")
	}
	if cfg.TopAlerts <= 0 {
		return errors.New("analytics.topAlerts must be positive")
	}
	if cfg.DefaultVATRate < 0 || cfg.DefaultVATRate > 100 {
		return errors.New("analytics.defaultVatRate must be between 0 and 100")
	}
	if len(cfg.RateSources) == 0 {
		return errors.New("analytics.rateSources cannot be empty")
	}
	switch cfg.VATRegime {
	case VATRegimeMonthly, VATRegimeQuarterly, VATRegimeFranchise:
	default:
		return fmt.Errorf("analytics.vatRegime %q is not supported", cfg.VATRegime)
	}
	return nil
}
