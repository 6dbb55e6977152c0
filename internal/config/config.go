package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"net/url"
	"os"
	"strconv"
	"time"
)

type JsonUrl struct {
	*url.URL
}

func (j *JsonUrl) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	configUrl, err := url.Parse(s)
	j.URL = configUrl
	return err
}

func (j *JsonUrl) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.URL.String())
}

type JsonDuration struct {
	time.Duration
}

func (j *JsonDuration) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	var duration time.Duration
	duration, err = time.ParseDuration(s)
	if err != nil {
		return err
	}
	j.Duration = duration
	return err
}

type Configuration struct {
	Logging struct {
		MaxSize         int
		MaxBackups      int
		MaxAge          int
		Level           zapcore.Level
		ConsoleLogLevel zapcore.Level
		File            string
		HttpAccessFile  string
		DbLogFile       string
		LogAlerts       bool
	}
	ListeningPort    string
	ListeningAddress string
	// SiteUrl is the public base URL used for absolute links in minutes and mails.
	SiteUrl  *JsonUrl
	Database struct {
		Host            string
		Port            uint
		Username        string
		Password        string
		DatabaseName    string
		MaxIdleConns    int
		MaxOpenConns    int
		ConnMaxLifetime *JsonDuration
	}
	Storage struct {
		MediaRoot    string
		MediaUrl     string
		TemplatesDir string
	}
	Toolchain struct {
		Txt2tags string
		Pdflatex string
	}
	Pad struct {
		Url             *JsonUrl
		ApiKey          string
		ApiVersion      string
		SessionDuration *JsonDuration
	}
	Mail struct {
		// Backend is one of "smtp", "sendgrid" or "log"
		Backend        string
		From           string
		SmtpHost       string
		SmtpPort       int
		SmtpUsername   string
		SmtpPassword   string
		SmtpTls        bool
		SendgridApiKey string
	}
	Redis struct {
		Host     string
		Port     int
		Password string
		DB       int
		LockTtl  *JsonDuration
	}
	Auth struct {
		SigningKey string
	}
	RateLimitPerMinute int
	// AllowedOrigin is the frontend origin for CORS, "*" if empty.
	AllowedOrigin string
}

var config *Configuration

func InitConfig() *Configuration {
	configFile := flag.String("config", "config.json", "Path to config file (json)")
	envFile := flag.String("env", ".env", "Path to an optional .env file")
	flag.Parse()
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "\nUsage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		_, _ = fmt.Fprint(os.Stderr, "\n")
	}

	c, err := Load(*configFile, *envFile)
	if err != nil {
		flag.Usage()
		panic("Error parsing config file: " + err.Error())
	}

	config = c
	return config
}

// Load reads the json config file, applies defaults and overrides secrets
// from the environment. The env file is optional.
func Load(configFile, envFile string) (*Configuration, error) {
	if len(envFile) > 0 {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("loading %s: %w", envFile, err)
			}
		}
	}

	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var c Configuration
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&c); err != nil {
		return nil, err
	}

	applyDefaults(&c)
	applyEnvOverrides(&c)

	return &c, nil
}

func applyDefaults(c *Configuration) {
	if c.Logging.MaxSize <= 0 {
		c.Logging.MaxSize = 500
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAge <= 0 {
		c.Logging.MaxAge = 28
	}
	if c.Database.ConnMaxLifetime == nil {
		c.Database.ConnMaxLifetime = &JsonDuration{Duration: time.Hour}
	}
	if len(c.Storage.MediaRoot) == 0 {
		c.Storage.MediaRoot = "media"
	}
	if len(c.Storage.MediaUrl) == 0 {
		c.Storage.MediaUrl = "/media/"
	}
	if len(c.Storage.TemplatesDir) == 0 {
		c.Storage.TemplatesDir = "templates"
	}
	if len(c.Toolchain.Txt2tags) == 0 {
		c.Toolchain.Txt2tags = "txt2tags"
	}
	if len(c.Toolchain.Pdflatex) == 0 {
		c.Toolchain.Pdflatex = "pdflatex"
	}
	if len(c.Pad.ApiVersion) == 0 {
		c.Pad.ApiVersion = "1.2.13"
	}
	if c.Pad.SessionDuration == nil {
		c.Pad.SessionDuration = &JsonDuration{Duration: 12 * time.Hour}
	}
	if len(c.Mail.Backend) == 0 {
		c.Mail.Backend = "log"
	}
	if c.Mail.SmtpPort <= 0 {
		c.Mail.SmtpPort = 587
	}
	if c.Redis.LockTtl == nil {
		c.Redis.LockTtl = &JsonDuration{Duration: 5 * time.Minute}
	}
	if c.RateLimitPerMinute <= 0 {
		c.RateLimitPerMinute = 30
	}
	if len(c.AllowedOrigin) == 0 {
		c.AllowedOrigin = "*"
	}
}

// applyEnvOverrides lets secrets stay out of the config file.
func applyEnvOverrides(c *Configuration) {
	if v := os.Getenv("FS_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("FS_PAD_APIKEY"); v != "" {
		c.Pad.ApiKey = v
	}
	if v := os.Getenv("FS_SMTP_PASSWORD"); v != "" {
		c.Mail.SmtpPassword = v
	}
	if v := os.Getenv("FS_SENDGRID_APIKEY"); v != "" {
		c.Mail.SendgridApiKey = v
	}
	if v := os.Getenv("FS_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("FS_JWT_SIGNING_KEY"); v != "" {
		c.Auth.SigningKey = v
	}
	if v := os.Getenv("FS_LISTENING_PORT"); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			c.ListeningPort = v
		}
	}
}

func Config() *Configuration {
	return config
}

func Port() string {
	return config.ListeningPort
}

func Address() string {
	return config.ListeningAddress
}

// SiteBase returns the public base url without a trailing slash.
func (c *Configuration) SiteBase() string {
	if c.SiteUrl == nil || c.SiteUrl.URL == nil {
		return ""
	}
	s := c.SiteUrl.String()
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
