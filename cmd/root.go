package cmd

import (
	"log"
	"os"
	"time"

	"jobagent/internal/logger"
	"jobagent/internal/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "jobagent"
)

type Config struct {
	Skills     string            `mapstructure:"skills"`
	Listings   string            `mapstructure:"listings"`
	Database   string            `mapstructure:"database"`
	Profile    string            `mapstructure:"profile"`
	Automation *AutomationConfig `mapstructure:"automation"`
	AI         *AIConfig         `mapstructure:"ai"`
}

type AutomationConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	FieldDelay   time.Duration `mapstructure:"field-delay"`
	Headless     bool          `mapstructure:"headless"`
	SubmitPolicy string        `mapstructure:"submit-policy"`
}

type AIConfig struct {
	Model      string `mapstructure:"model"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobagent is a cli for scoring scraped job listings and driving applications through their lifecycle",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobagent.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is not needed for the version command.
	if versionCmd.CalledAs() != "" {
		return
	}

	// A .env file is optional. Environment wins over it.
	_ = godotenv.Load()

	viper.SetDefault("database", app+".db")
	viper.SetDefault("automation.timeout", "120s")
	viper.SetDefault("automation.field-delay", "500ms")
	viper.SetDefault("automation.headless", true)
	viper.SetDefault("automation.submit-policy", "human-confirm")

	if cfgFile == "" {
		cfgFile = os.Getenv("JOBAGENT_CONFIG")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// mustSetup builds the logger, config and store every job-facing command
// starts from. Failures here are not recoverable by the command itself.
func mustSetup() (*zap.Logger, *Config, *store.Store) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	st, err := store.Open(config.Database)
	if err != nil {
		logger.Fatal("opening the job store", zap.Error(err), zap.String("database", config.Database))
	}

	return logger, config, st
}
