package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Input  InputConfig  `yaml:"input" mapstructure:"input"`
	Score  ScoreConfig  `yaml:"score" mapstructure:"score"`
	Prep   PrepConfig   `yaml:"prep" mapstructure:"prep"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run history backend. An empty driver
// disables persistence.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// InputConfig locates the vehicle and feature tables.
type InputConfig struct {
	CarsPath      string `yaml:"cars_path" mapstructure:"cars_path"`
	FeaturesPath  string `yaml:"features_path" mapstructure:"features_path"`
	CarsSheet     string `yaml:"cars_sheet" mapstructure:"cars_sheet"`
	FeaturesSheet string `yaml:"features_sheet" mapstructure:"features_sheet"`
	Charset       string `yaml:"charset" mapstructure:"charset"`
	Delimiter     string `yaml:"delimiter" mapstructure:"delimiter"`
}

// ScoreConfig holds the scoring policy. The plug-in hybrid factor and the
// stratification switches are empirical and under domain review.
type ScoreConfig struct {
	EngineColumn               string   `yaml:"engine_column" mapstructure:"engine_column"`
	BodyColumn                 string   `yaml:"body_column" mapstructure:"body_column"`
	PriceColumn                string   `yaml:"price_column" mapstructure:"price_column"`
	ElectricLabel              string   `yaml:"electric_label" mapstructure:"electric_label"`
	PluginHybridLabel          string   `yaml:"plugin_hybrid_label" mapstructure:"plugin_hybrid_label"`
	ConsumptionColumn          string   `yaml:"consumption_column" mapstructure:"consumption_column"`
	SecondaryConsumptionColumn string   `yaml:"secondary_consumption_column" mapstructure:"secondary_consumption_column"`
	StratifiedColumns          []string `yaml:"stratified_columns" mapstructure:"stratified_columns"`
	PHEVConsumptionFactor      float64  `yaml:"phev_consumption_factor" mapstructure:"phev_consumption_factor"`
	StratifyByBody             bool     `yaml:"stratify_by_body" mapstructure:"stratify_by_body"`
	PlaceholderTokens          []string `yaml:"placeholder_tokens" mapstructure:"placeholder_tokens"`
	OrderingsPath              string   `yaml:"orderings_path" mapstructure:"orderings_path"`
}

// PrepConfig controls the optional preparation steps that run before scoring.
type PrepConfig struct {
	Enabled              bool     `yaml:"enabled" mapstructure:"enabled"`
	MinSeats             float64  `yaml:"min_seats" mapstructure:"min_seats"`
	SeatsColumn          string   `yaml:"seats_column" mapstructure:"seats_column"`
	TransmissionColumn   string   `yaml:"transmission_column" mapstructure:"transmission_column"`
	ExcludeTransmissions []string `yaml:"exclude_transmissions" mapstructure:"exclude_transmissions"`
	ExcludeBodyTypes     []string `yaml:"exclude_body_types" mapstructure:"exclude_body_types"`
	RequiredColumns      []string `yaml:"required_columns" mapstructure:"required_columns"`
	NumericColumns       []string `yaml:"numeric_columns" mapstructure:"numeric_columns"`
	FillMissing          bool     `yaml:"fill_missing" mapstructure:"fill_missing"`
	CostToOwn            bool     `yaml:"cost_to_own" mapstructure:"cost_to_own"`
	GermanDiscount       bool     `yaml:"german_discount" mapstructure:"german_discount"`
	Models               []string `yaml:"models" mapstructure:"models"`
	OnlyMentioned        bool     `yaml:"only_mentioned" mapstructure:"only_mentioned"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Limit  int    `yaml:"limit" mapstructure:"limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultNumericColumns are the ADAC columns that carry numbers with units.
var DefaultNumericColumns = []string{
	"Höchstgeschwindigkeit",
	"Beschleunigung 0-100km/h",
	"Fahrgeräusch",
	"Länge",
	"Kofferraumvolumen normal",
	"Kofferraumvolumen dachhoch mit umgeklappter Rücksitzbank",
	"Bodenfreiheit maximal",
	"Wertverlust",
	"Betriebskosten",
	"Fixkosten",
	"Werkstattkosten",
	"KFZ-Steuer pro Jahr ohne Steuerbefreiung",
	"Haftpflichtbeitrag 100%",
	"Vollkaskobetrag 100% 500 € SB",
	"Klassenübliche Ausstattung nach ADAC-Vorgabe",
	"Grundpreis",
	"Tankgröße",
	"Batteriekapazität (Netto) in kWh",
	"Verbrauch Gesamt (NEFZ)",
	"Verbrauch kombiniert (WLTP)",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AUTOSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "")
	v.SetDefault("store.database_url", "autoscore.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("input.cars_path", "adac.csv")
	v.SetDefault("input.features_path", "feature.csv")
	v.SetDefault("input.features_sheet", "Spec")
	v.SetDefault("input.charset", "utf-8")
	v.SetDefault("input.delimiter", ",")
	v.SetDefault("score.engine_column", "Motorart")
	v.SetDefault("score.body_column", "Karosserie")
	v.SetDefault("score.price_column", "Grundpreis")
	v.SetDefault("score.electric_label", "Elektro")
	v.SetDefault("score.plugin_hybrid_label", "PlugIn-Hybrid")
	v.SetDefault("score.consumption_column", "Verbrauch kombiniert (WLTP)")
	v.SetDefault("score.secondary_consumption_column", "Verbrauch Gesamt (NEFZ)")
	v.SetDefault("score.stratified_columns", []string{"Verbrauch kombiniert (WLTP)", "Verbrauch Gesamt (NEFZ)"})
	v.SetDefault("score.phev_consumption_factor", 4.0)
	v.SetDefault("score.stratify_by_body", false)
	v.SetDefault("score.placeholder_tokens", []string{"nicht bekannt", "n.b.", "keine", "a.W.", "-", "nicht lieferbar"})
	v.SetDefault("prep.enabled", false)
	v.SetDefault("prep.min_seats", 4)
	v.SetDefault("prep.seats_column", "Sitzanzahl")
	v.SetDefault("prep.transmission_column", "Getriebeart")
	v.SetDefault("prep.exclude_transmissions", []string{"Schaltgetriebe"})
	v.SetDefault("prep.exclude_body_types", []string{"Kombi"})
	v.SetDefault("prep.required_columns", []string{"Autom. Abstandsregelung", "Regensensor", "Lichtsensor"})
	v.SetDefault("prep.numeric_columns", DefaultNumericColumns)
	v.SetDefault("prep.fill_missing", true)
	v.SetDefault("prep.cost_to_own", true)
	v.SetDefault("prep.german_discount", false)
	v.SetDefault("prep.only_mentioned", false)
	v.SetDefault("output.format", "table")
	v.SetDefault("output.limit", 20)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the scoring policy for values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []string
	if c.Score.EngineColumn == "" {
		errs = append(errs, "score.engine_column is required")
	}
	if c.Score.PriceColumn == "" {
		errs = append(errs, "score.price_column is required")
	}
	if c.Score.PHEVConsumptionFactor <= 0 {
		errs = append(errs, "score.phev_consumption_factor must be > 0")
	}
	switch c.Store.Driver {
	case "", "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite, postgres or empty")
	}
	switch c.Output.Format {
	case "table", "csv", "xlsx":
	default:
		errs = append(errs, "output.format must be table, csv or xlsx")
	}
	if c.Output.Limit < 0 {
		errs = append(errs, "output.limit must be >= 0")
	}
	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
