package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/velmark/storefront/internal/config"
	"github.com/velmark/storefront/internal/es"
	"github.com/velmark/storefront/internal/gateway"
	"github.com/velmark/storefront/internal/handlers"
	"github.com/velmark/storefront/internal/logging"
	mwauth "github.com/velmark/storefront/internal/middleware/auth"
	loggingmw "github.com/velmark/storefront/internal/middleware/logging"
	"github.com/velmark/storefront/internal/mykafka"
	"github.com/velmark/storefront/internal/tokens"
	httpserver "github.com/velmark/storefront/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	} else {
		logger.Warn("KAFKA_ADDRESS not set, domain events disabled")
	}

	var esClient *elasticsearch.Client
	if configuration.ES_URL != "" {
		esClient, err = es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
	} else {
		logger.Warn("ES_URL not set, product search disabled")
	}

	bt, err := gateway.NewBraintree(
		configuration.BRAINTREE_ENV,
		configuration.BRAINTREE_MERCHANT_ID,
		configuration.BRAINTREE_PUBLIC_KEY,
		configuration.BRAINTREE_PRIVATE_KEY,
	)
	if err != nil {
		log.Fatalf("braintree init error: %v", err)
	}

	codec := &tokens.Codec{Secret: []byte(configuration.JWT_SECRET)}
	guard := &mwauth.Guard{DB: db, Codec: codec}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Guard:           guard,
		AuthHandler:     &handlers.AuthHandler{DB: db, Codec: codec, Producer: prod},
		OrderHandler:    &handlers.OrderHandler{DB: db, Producer: prod},
		PaymentHandler:  &handlers.PaymentHandler{DB: db, Gateway: bt, Producer: prod},
		ProductHandler:  &handlers.ProductHandler{DB: db, Producer: prod},
		CategoryHandler: &handlers.CategoryHandler{DB: db},
		SearchHandler:   &handlers.SearchHandler{ES: esClient, Index: "products"},
	}
	httpserver.Register(e, &deps)

	port := configuration.PORT
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
