package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port     string
		LogLevel string
	}
	Data struct {
		Dir     string
		FraudDB string
	}
	Agent struct {
		Name     string
		Greeting string
	}
}

func Load() Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("data.dir", "data")
	v.SetDefault("data.fraud_db", "")

	v.SetDefault("agent.name", "Parley")
	v.SetDefault("agent.greeting", "Hi, thanks for calling. How can I help today?")

	// Map envs
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.log_level", "LOG_LEVEL")

	v.BindEnv("data.dir", "DATA_DIR")
	v.BindEnv("data.fraud_db", "FRAUD_DB_PATH")

	v.BindEnv("agent.name", "AGENT_NAME")
	v.BindEnv("agent.greeting", "AGENT_GREETING")

	var c Config
	c.Server.Port = toString(v.Get("server.port"))
	c.Server.LogLevel = v.GetString("server.log_level")

	c.Data.Dir = v.GetString("data.dir")
	c.Data.FraudDB = v.GetString("data.fraud_db")
	if c.Data.FraudDB == "" {
		c.Data.FraudDB = filepath.Join(c.Data.Dir, "fraud.db")
	}

	c.Agent.Name = v.GetString("agent.name")
	c.Agent.Greeting = v.GetString("agent.greeting")

	log.Printf("config loaded: port=%s data_dir=%s", c.Server.Port, c.Data.Dir)
	return c
}

// LedgerPath resolves a ledger file name inside the data directory.
func (c Config) LedgerPath(name string) string {
	return filepath.Join(c.Data.Dir, name)
}

func toString(v any) string { return fmt.Sprint(v) }
