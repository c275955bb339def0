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
	Inputs   InputsConfig   `yaml:"inputs" mapstructure:"inputs"`
	Columns  ColumnsConfig  `yaml:"columns" mapstructure:"columns"`
	Linkage  LinkageConfig  `yaml:"linkage" mapstructure:"linkage"`
	Mobility MobilityConfig `yaml:"mobility" mapstructure:"mobility"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// InputsConfig points at the four source tables consumed by the pipeline.
type InputsConfig struct {
	SchoolsCSV       string `yaml:"schools_csv" mapstructure:"schools_csv"`
	TractShapefile   string `yaml:"tract_shapefile" mapstructure:"tract_shapefile"`
	DemographicsXLSX string `yaml:"demographics_xlsx" mapstructure:"demographics_xlsx"`
	CZEquivalency    string `yaml:"cz_equivalency" mapstructure:"cz_equivalency"`
}

// ColumnsConfig names the source columns; defaults match the upstream
// GreatSchools export and the Census/USDA lookup workbooks.
type ColumnsConfig struct {
	SchoolID       string `yaml:"school_id" mapstructure:"school_id"`
	Lon            string `yaml:"lon" mapstructure:"lon"`
	Lat            string `yaml:"lat" mapstructure:"lat"`
	TractGEOID     string `yaml:"tract_geoid" mapstructure:"tract_geoid"`
	DemoCountyFIPS string `yaml:"demo_county_fips" mapstructure:"demo_county_fips"`
	DemoState      string `yaml:"demo_state" mapstructure:"demo_state"`
	DemoTractFIPS  string `yaml:"demo_tract_fips" mapstructure:"demo_tract_fips"`
	CZID           string `yaml:"cz_id" mapstructure:"cz_id"`
	CZCountyFIPS   string `yaml:"cz_county_fips" mapstructure:"cz_county_fips"`
}

// LinkageConfig configures the hierarchy join.
type LinkageConfig struct {
	States           []string `yaml:"states" mapstructure:"states"`
	DemoHeaderOffset int      `yaml:"demo_header_offset" mapstructure:"demo_header_offset"`
}

// MobilityConfig points at the intergenerational mobility tables.
type MobilityConfig struct {
	CZCSV     string `yaml:"cz_csv" mapstructure:"cz_csv"`
	CountyCSV string `yaml:"county_csv" mapstructure:"county_csv"`
}

// OutputConfig configures where link tables are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// StoreConfig configures the local run store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MOBILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("output.dir", "data/links")
	v.SetDefault("store.path", "mobility.db")
	v.SetDefault("linkage.states", []string{"IL", "IN", "WI", "MI"})
	v.SetDefault("linkage.demo_header_offset", 1)
	v.SetDefault("columns.school_id", "universal-id")
	v.SetDefault("columns.lon", "lon")
	v.SetDefault("columns.lat", "lat")
	v.SetDefault("columns.tract_geoid", "GEOID")
	v.SetDefault("columns.demo_county_fips", "State-County FIPS Code")
	v.SetDefault("columns.demo_state", "Select State")
	v.SetDefault("columns.demo_tract_fips", "State-County-Tract FIPS Code")
	v.SetDefault("columns.cz_id", "Commuting Zone ID, 1990")
	v.SetDefault("columns.cz_county_fips", "FIPS")
	v.SetDefault("mobility.cz_csv", "data/mobility_cz.csv")
	v.SetDefault("mobility.county_csv", "data/mobility_county.csv")

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
