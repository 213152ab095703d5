package main

import (
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	gymserver "github.com/pandarack/gym-server"
	"github.com/pandarack/gym-server/log"
)

func loadConfig() {
	viper.SetEnvPrefix("GYM_SERVER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/gym-server")
	_ = viper.ReadInConfig()

	viper.SetDefault("server.port", ":3001")
	viper.SetDefault("server.public_url", "http://localhost:3001")
	viper.SetDefault("upload.dir", "uploads")
	viper.SetDefault("log.level", "INFO")
}

func main() {
	loadConfig()

	if err := log.Initialize(viper.GetString("log.level"), viper.GetBool("debug")); err != nil {
		panic(err)
	}

	environment := viper.GetString("environment")

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         viper.GetString("sentry.dsn"),
		Environment: environment,
	}); err != nil {
		log.Panic("Sentry initialization failed", zap.Error(err))
	}

	uploadDir := viper.GetString("upload.dir")
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		log.Panic("fail to create upload directory", zap.Error(err))
	}

	relationStore, err := gymserver.NewPGRelationStore(viper.GetString("store.dsn"))
	if err != nil {
		log.Panic("fail to initiate relation store", zap.Error(err))
	}
	if err := relationStore.AutoMigrate(); err != nil {
		log.Panic("fail to migrate relation store", zap.Error(err))
	}

	metadataStore := gymserver.NewMetadataStore(uploadDir)
	catalog := gymserver.NewCatalog(uploadDir, viper.GetString("server.public_url"), metadataStore, relationStore)

	s := NewGymServer(
		catalog,
		metadataStore,
		relationStore,
		viper.GetString("server.api_token"),
		[]byte(viper.GetString("server.jwt_secret")),
	)
	s.SetupRoute()
	if err := s.Run(viper.GetString("server.port")); err != nil {
		log.Panic("server interrupted", zap.Error(err))
	}
}
