package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName          string
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Server    ServerConfig
		Database  DatabaseConfig
		Filestore FilestoreConfig
		Catalog   CatalogConfig
		Crowd     CrowdConfig
	}

	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	FilestoreConfig struct {
		Root          string
		URLPath       string
		MaxUploadSize int64
	}

	CatalogConfig struct {
		Categories  []string
		InitialYear int
	}

	CrowdConfig struct {
		URL         string
		AppName     string
		AppPassword string
		AdminGroup  string
		Timeout     time.Duration
	}
)

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Markis")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "o0e+w2#$y7!ejv1)p83t&5m*g$r9(qu^z4-x6_d")
	v.SetDefault("frontendBaseURL", "http://localhost:8080")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8080")
	v.SetDefault("serverDebugHost", "localhost:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseName", "markis")
	v.SetDefault("databaseDisableTLS", true)
	v.SetDefault("filestoreRoot", "filestore")
	v.SetDefault("filestoreURLPath", "/api/files")
	v.SetDefault("maxUploadSize", int64(32*1024*1024)) // 32MB
	v.SetDefault("categories", []string{"exams", "homework", "literature", "misc", "summaries"})
	v.SetDefault("initialYear", 2010) // earliest year for which files are stored
	v.SetDefault("crowdURL", "http://localhost:8095/crowd/")
	v.SetDefault("crowdAdminGroup", "Admin")
	v.SetDefault("crowdTimeout", 10*time.Second)

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Addr:                      v.GetString("serverAddr"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("databaseEngine"),
			Host:          v.GetString("databaseHost"),
			Port:          v.GetString("databasePort"),
			Name:          v.GetString("databaseName"),
			User:          v.GetString("databaseUser"),
			Password:      v.GetString("databasePassword"),
			AdminUser:     v.GetString("databaseAdminUser"),
			AdminPassword: v.GetString("databaseAdminPassword"),
			DisableTLS:    v.GetBool("databaseDisableTLS"),
		},
		Filestore: FilestoreConfig{
			Root:          v.GetString("filestoreRoot"),
			URLPath:       v.GetString("filestoreURLPath"),
			MaxUploadSize: v.GetInt64("maxUploadSize"),
		},
		Catalog: CatalogConfig{
			Categories:  v.GetStringSlice("categories"),
			InitialYear: v.GetInt("initialYear"),
		},
		Crowd: CrowdConfig{
			URL:         v.GetString("crowdURL"),
			AppName:     v.GetString("crowdAppName"),
			AppPassword: v.GetString("crowdAppPassword"),
			AdminGroup:  v.GetString("crowdAdminGroup"),
			Timeout:     v.GetDuration("crowdTimeout"),
		},
	}
}
