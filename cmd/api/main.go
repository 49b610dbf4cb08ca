package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/feastflow/feastflow-api/internal/config"
	"github.com/feastflow/feastflow-api/internal/logging"
	"github.com/feastflow/feastflow-api/internal/repository/minio"
	"github.com/feastflow/feastflow-api/internal/repository/ports"
	"github.com/feastflow/feastflow-api/internal/repository/postgres"
	"github.com/feastflow/feastflow-api/internal/service"
	transport "github.com/feastflow/feastflow-api/internal/transport/http"
	"github.com/feastflow/feastflow-api/internal/transport/mail"
	"github.com/feastflow/feastflow-api/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		lw, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("Warning: logstash disabled: %v", err)
		} else {
			defer lw.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, lw))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userRepo := postgres.NewUserRepo(db)

	var storage ports.ObjectStorage
	if cfg.MinIOEndpoint != "" {
		client, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			log.Fatalf("connect minio: %v", err)
		}
		storage = minio.NewStorage(client, cfg.MinIOBucket, cfg.MinIOPublicURL)
	} else {
		log.Println("Warning: MINIO_ENDPOINT not set, avatar uploads disabled")
	}

	var mailer service.PasswordResetSender
	if cfg.SMTPHost != "" {
		mailer = mail.NewPasswordResetMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		log.Println("Warning: SMTP_HOST not set, reset emails disabled")
	}

	tokens := util.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(userRepo, tokens, mailer, cfg.PasswordResetTTL)
	userService := service.NewUserService(userRepo, storage, cfg.AvatarMaxBytes)

	e := transport.NewRouter(cfg.AllowOrigins)
	transport.NewAuthHandler(authService).Register(e)
	transport.NewUserHandler(userService, authService).Register(e)
	transport.RegisterSwagger(e)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
