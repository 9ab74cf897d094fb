package configuration

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/markusressel/pid2go/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	ConfigName = "pid2go"
	EnvPrefix  = "PID2GO"
)

type Configuration struct {
	DbPath string `json:"dbPath" yaml:"dbPath"`

	Api        ApiConfig        `json:"api" yaml:"api"`
	Statistics StatisticsConfig `json:"statistics" yaml:"statistics"`

	// decoded separately, see decodeSimulations
	Simulations []SimulationConfig `json:"simulations" yaml:"simulations" mapstructure:"-"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName(ConfigName)

	home, err := homedir.Dir()
	if err != nil {
		ui.Error("Couldn't detect home directory: %v", err)
		os.Exit(1)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/pid2go/")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues(home)
}

func setDefaultValues(home string) {
	viper.SetDefault("dbpath", filepath.Join(home, ".pid2go", "pid2go.db"))

	viper.SetDefault("api.enabled", true)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9001)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)

	viper.SetDefault("simulations", []interface{}{})
}

// DetectAndReadConfigFile reads the config file, if one could be found,
// and returns its path. A missing config file is not an error since every
// value has a default.
func DetectAndReadConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			ui.Warning("No configuration file found, using defaults")
			return ""
		}
		ui.Fatal("Error reading config file, %s", err)
	}
	// this is only populated _after_ ReadInConfig()
	return viper.ConfigFileUsed()
}

// LoadConfig decodes the current viper state into CurrentConfig
func LoadConfig() {
	config, err := decodeConfig(viper.GetViper())
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
	CurrentConfig = config
}

func decodeConfig(v *viper.Viper) (Configuration, error) {
	var config Configuration
	err := v.Unmarshal(&config, viper.DecodeHook(DecodeHook()))
	if err != nil {
		return config, err
	}

	config.Simulations, err = decodeSimulations(v.Get("simulations"))
	if err != nil {
		return config, err
	}
	return config, nil
}

// FindSimulationConfig returns the simulation config with the given id.
// An empty id selects the first configured simulation.
func (c *Configuration) FindSimulationConfig(id string) (*SimulationConfig, error) {
	if len(c.Simulations) == 0 {
		return nil, errors.New("no simulations configured")
	}
	if id == "" {
		return &c.Simulations[0], nil
	}
	var available []string
	for i := range c.Simulations {
		if c.Simulations[i].ID == id {
			return &c.Simulations[i], nil
		}
		available = append(available, c.Simulations[i].ID)
	}
	return nil, &UnknownSimulationError{ID: id, Available: available}
}
