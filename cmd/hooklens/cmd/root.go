package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tender-barbarian/hooklens/internal/config"
	"github.com/tender-barbarian/hooklens/internal/reflector"
	"github.com/tender-barbarian/hooklens/internal/store"
)

var (
	cfgFile string
	// Verbose enables debug logging
	Verbose bool
	// AppVersion stores the build version
	AppVersion string
	// AppBuildTime stores the build time
	AppBuildTime string
)

var rootCmd = &cobra.Command{
	Use:   "hooklens",
	Short: "Re-identify obfuscated host classes and enums by their structure",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if Verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	rootCmd.Version = AppVersion
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	log.SetHandler(clihandler.New(os.Stderr))

	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/hooklens/config.yaml)")
	pf.BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
	pf.String("store-driver", store.DriverFile, "hook cache backend (file|sqlite)")
	pf.String("store-path", "", "hook cache location (default is under the user config dir)")
	pf.String("registry", "", "signature registry YAML overriding the built-in one")
	pf.Bool("strict", false, "treat signatures matching more than one candidate as misses")
	viper.BindPFlag("verbose", pf.Lookup("verbose"))
	viper.BindPFlag("store.driver", pf.Lookup("store-driver"))
	viper.BindPFlag("store.path", pf.Lookup("store-path"))
	viper.BindPFlag("registry", pf.Lookup("registry"))
	viper.BindPFlag("strict", pf.Lookup("strict"))

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "hooklens"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}

// env is what every subcommand needs: the resolved config, the opened hook
// cache and a reflector over both.
type env struct {
	cfg   *config.Config
	store store.Store
	refl  *reflector.Reflector
}

func openEnv() (*env, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	reg, err := cfg.LoadRegistry()
	if err != nil {
		return nil, err
	}
	s, err := cfg.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("opening hook cache: %w", err)
	}
	return &env{
		cfg:   cfg,
		store: s,
		refl:  reflector.New(s, reflector.WithRegistry(reg), reflector.WithStrict(cfg.Strict)),
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		log.WithError(err).Warn("failed to close hook cache")
	}
}
