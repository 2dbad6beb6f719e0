package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type Config struct {
	Server          string        `yaml:"server"`
	Database        string        `yaml:"database"`
	Dsn             string        `yaml:"dsn"`
	Cache           bool          `yaml:"cache"`
	Seed            bool          `yaml:"seed"`
	Language        string        `yaml:"language"`
	Title           string        `yaml:"title"`
	Description     string        `yaml:"description"`
	SessionSecret   string        `yaml:"session_secret"`
	EmailDomain     string        `yaml:"email_domain"`
	PostBlockExpire time.Duration `yaml:"post_block_expire"`
	Static          string        `yaml:"static"`
	EnvFile         string        `yaml:"env_file"`
	SMTP            SMTPConfig    `yaml:"smtp"`
}

func NewConfig() *Config {
	return &Config{
		Server:          ":8080",
		Database:        "sqlite",
		Dsn:             "./db/campusmap.sqlite?_pragma=busy_timeout(5000)",
		Cache:           true,
		Seed:            true,
		Language:        "ko",
		Title:           "Campus map",
		Description:     "Campus community map comments",
		EmailDomain:     "@sunchang.hs.kr",
		PostBlockExpire: 5 * time.Second,
		Static:          "./public_html",
		EnvFile:         ".env",
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
	}
}

// Load applies, in order, the YAML file named by -config, the env file,
// environment variables and finally the command line flags that were set.
func (c *Config) Load(args []string) error {
	set := flag.NewFlagSet("campusmap", flag.ContinueOnError)
	configFile := set.String("config", "", "YAML configuration file")
	flags := *c
	set.StringVar(&flags.Server, "server", c.Server, "listen address")
	set.StringVar(&flags.Database, "database", c.Database, "database driver: sqlite, postgres or memory")
	set.StringVar(&flags.Dsn, "dsn", c.Dsn, "database connection string")
	set.BoolVar(&flags.Cache, "cache", c.Cache, "cache spaces and users in memory")
	set.BoolVar(&flags.Seed, "seed", c.Seed, "insert the default spaces into an empty database")
	set.StringVar(&flags.Language, "lang", c.Language, "message language")
	set.DurationVar(&flags.PostBlockExpire, "post-block", c.PostBlockExpire, "minimum time between posts of one user")
	if err := set.Parse(args); err != nil {
		return err
	}

	if *configFile != "" {
		b, err := os.ReadFile(*configFile)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return fmt.Errorf("parsing %s: %w", *configFile, err)
		}
	}

	if c.EnvFile != "" {
		if err := godotenv.Load(c.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", c.EnvFile, err)
		}
	}
	if err := c.loadEnv(); err != nil {
		return err
	}

	set.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "server":
			c.Server = flags.Server
		case "database":
			c.Database = flags.Database
		case "dsn":
			c.Dsn = flags.Dsn
		case "cache":
			c.Cache = flags.Cache
		case "seed":
			c.Seed = flags.Seed
		case "lang":
			c.Language = flags.Language
		case "post-block":
			c.PostBlockExpire = flags.PostBlockExpire
		}
	})
	return nil
}

func (c *Config) loadEnv() error {
	setString := func(key string, target *string) {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}
	setString("PORT", &c.Server)
	setString("DB_DRIVER", &c.Database)
	setString("DB_DSN", &c.Dsn)
	setString("CAMPUSMAP_LANGUAGE", &c.Language)
	setString("SESSION_SECRET", &c.SessionSecret)
	setString("SMTP_HOST", &c.SMTP.Host)
	setString("GMAIL_USER", &c.SMTP.User)
	setString("GMAIL_APP_PASSWORD", &c.SMTP.Password)
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.SMTP.Port = port
	}
	if c.SMTP.From == "" {
		c.SMTP.From = c.SMTP.User
	}
	return nil
}

func (c *Config) listenAddr() string {
	if c.Server != "" && c.Server[0] != ':' {
		if _, err := strconv.Atoi(c.Server); err == nil {
			return ":" + c.Server
		}
	}
	return c.Server
}
