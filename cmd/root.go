/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/suderio/dicer/internal/engine"
	"github.com/suderio/dicer/internal/logger"
	"github.com/suderio/dicer/internal/parser"
	"github.com/suderio/dicer/internal/persistence"
	"github.com/suderio/dicer/internal/session"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dicer",
	Short: "Parse and roll dice expressions",
	Long: `dicer rolls expressions such as 3d6+, 2d20max + $dex or 1d(1d8+3)*2.

Each table keeps its named dices in game.yaml, one sheet per player under
players/ and an append-only log.jsonl of every roll. Dices remember what
they rolled: a face that just came up is less likely to come up again.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dicer.yaml)")
	flags.String("tables_dir", "./tables", "Directory holding the tables")
	flags.StringP("player", "p", session.DefaultPlayer, "Player rolling when none is named")
	flags.Int64("seed", 0, "Seed the dice for reproducible rolls")
	flags.String("log_level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")
	flags.String("log_file", "", "Write logs to a rotated file instead of stderr")

	cobra.CheckErr(viper.BindPFlag("tables_dir", flags.Lookup("tables_dir")))
	cobra.CheckErr(viper.BindPFlag("player", flags.Lookup("player")))
	cobra.CheckErr(viper.BindPFlag("seed", flags.Lookup("seed")))
	cobra.CheckErr(viper.BindPFlag("log.level", flags.Lookup("log_level")))
	cobra.CheckErr(viper.BindPFlag("log.file", flags.Lookup("log_file")))

	viper.SetDefault("max_how_many", parser.MaximumDiceHowMany)
	viper.SetDefault("max_faces", parser.MaximumDiceFaces)
	viper.SetDefault("telegram_rate", 1.0)
	viper.SetDefault("telegram_burst", 5)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dicer")
	}

	viper.SetEnvPrefix("dicer")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the logger described by the log.* settings.
func newLogger() (*zap.Logger, error) {
	cfg := logger.DefaultConfig()
	if level := viper.GetString("log.level"); level != "" {
		cfg.Level = level
	}
	cfg.FileName = viper.GetString("log.file")
	return logger.New(cfg)
}

// newRoller seeds the dice with --seed when given, from crypto/rand otherwise.
func newRoller() (*engine.Roller, error) {
	if viper.IsSet("seed") && viper.GetInt64("seed") != 0 {
		return engine.NewRoller(viper.GetInt64("seed")), nil
	}
	return engine.NewRandomRoller()
}

func tableManager() *persistence.CampaignManager {
	return persistence.NewCampaignManager(viper.GetString("tables_dir"))
}

// openSession loads an existing table and replays its log.
func openSession(table string, log *zap.Logger) (*session.Session, error) {
	manager := tableManager()
	store, err := manager.Load(table)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'dicer table create %s' first)", err, table)
	}

	roller, err := newRoller()
	if err != nil {
		store.Close()
		return nil, err
	}

	s, err := session.NewSession(manager.Loader(table), store, engine.NewResolver(roller, log),
		session.WithLogger(log),
		session.WithDefaultPlayer(viper.GetString("player")),
		session.WithLimits(viper.GetInt("max_how_many"), viper.GetInt("max_faces")),
	)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}
