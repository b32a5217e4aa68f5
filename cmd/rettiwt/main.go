package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anatolykoptev/go-rettiwt"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "rettiwt",
	Short: "X web API client",
	Long: `A command-line client for the X web API.

Without an API key requests run as a guest; commands that act on behalf of a user
need --api-key or RETTIWT_API_KEY.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "config file (default is $HOME/.rettiwt/config.yml)")
	pf.StringP("api-key", "k", "", "user credential")
	pf.String("proxy", "", "proxy URL")
	pf.Duration("timeout", 30*time.Second, "request timeout")
	pf.BoolP("verbose", "v", false, "log requests to stderr")
	pf.Bool("store-logs", false, "write JSON logs to --log-file")
	pf.String("log-file", "rettiwt.log", "rotating log file")
	pf.Bool("cache", false, "cache detail lookups")
	pf.String("cache-url", "", "redis URL for the cache (default in-memory)")
	pf.String("data-db", "", "archive database (sqlite path or postgres URL)")

	for _, name := range []string{"config", "api-key", "proxy", "timeout", "verbose", "store-logs", "log-file", "cache", "cache-url", "data-db"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	rootCmd.AddCommand(newTweetCommand())
	rootCmd.AddCommand(newUserCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newUploadCommand())
	rootCmd.AddCommand(newServeCommand())
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".rettiwt"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("RETTIWT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig translates flags, environment and config file into a client Config.
func loadConfig() rettiwt.Config {
	return rettiwt.Config{
		APIKey:     viper.GetString("api-key"),
		Proxy:      viper.GetString("proxy"),
		Timeout:    viper.GetDuration("timeout"),
		Logging:    viper.GetBool("verbose"),
		StoreLogs:  viper.GetBool("store-logs"),
		LogFile:    viper.GetString("log-file"),
		UseCache:   viper.GetBool("cache"),
		CacheDBURL: viper.GetString("cache-url"),
		DataDBURL:  viper.GetString("data-db"),
		AppPort:    viper.GetInt("port"),
	}
}

func newClient() (*rettiwt.Client, error) {
	return rettiwt.New(loadConfig())
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
