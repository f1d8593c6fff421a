package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/akhil189709/dermaBackend/internal/payment"
)

type Config struct {
	HTTPPort         string
	GatewayBaseURL   string
	GatewayClientID  string
	GatewaySecret    string
	RedirectBaseURL  string
	CallbackUsername string
	CallbackPassword string
	KafkaBrokers     []string
	KafkaTopic       string
	RequestTimeout   time.Duration
	ShutdownTimeout  time.Duration
}

func loadConfig() *Config {
	cfg := &Config{
		HTTPPort:         getEnv("HTTP_PORT", "3000"),
		GatewayBaseURL:   getEnv("GATEWAY_BASE_URL", "https://api.phonepe.com/apis/pg"),
		GatewayClientID:  os.Getenv("GATEWAY_CLIENT_ID"),
		GatewaySecret:    os.Getenv("GATEWAY_CLIENT_SECRET"),
		RedirectBaseURL:  getEnv("REDIRECT_BASE_URL", "http://localhost:5173/payment-result"),
		CallbackUsername: os.Getenv("CALLBACK_USERNAME"),
		CallbackPassword: os.Getenv("CALLBACK_PASSWORD"),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "payment-callbacks"),
		RequestTimeout:   30 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	if cfg.GatewayClientID == "" || cfg.GatewaySecret == "" {
		log.Fatal("GATEWAY_CLIENT_ID and GATEWAY_CLIENT_SECRET are required")
	}

	client := payment.NewBreakerClient(
		payment.NewRESTClient(cfg.GatewayBaseURL, cfg.GatewayClientID, cfg.GatewaySecret),
	)

	var pub payment.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub := payment.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer kafkaPub.Close()
		pub = kafkaPub
		log.Printf("publishing callback events to %s", cfg.KafkaTopic)
	}

	handler := payment.NewHandler(client, pub, payment.Config{
		RedirectBaseURL:  cfg.RedirectBaseURL,
		CallbackUsername: cfg.CallbackUsername,
		CallbackPassword: cfg.CallbackPassword,
	}, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      payment.NewRouter(handler, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Payments wrapper listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down payments wrapper...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("payments wrapper stopped")
}
