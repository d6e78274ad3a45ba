package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiwari-pos/cafe/internal/catalog"
	"github.com/kiwari-pos/cafe/internal/config"
	"github.com/kiwari-pos/cafe/internal/database"
	"github.com/kiwari-pos/cafe/internal/events"
	"github.com/kiwari-pos/cafe/internal/metrics"
	"github.com/kiwari-pos/cafe/internal/router"
	"github.com/kiwari-pos/cafe/internal/ws"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	var cache catalog.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("WARN: redis unreachable, catalog cache disabled: %v", err)
		} else {
			cache = catalog.NewRedisCache(rdb, cfg.CatalogCacheTTL)
			log.Printf("Catalog cache enabled (ttl %s)", cfg.CatalogCacheTTL)
		}
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	publishers := events.Multi{events.NewHubPublisher(hub)}

	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaOrdersTopic))
		defer kp.Close()
		publishers = append(publishers, kp)
		log.Printf("Publishing order events to kafka topic %s", cfg.KafkaOrdersTopic)
	}

	if cfg.AMQPURL != "" {
		kitchen, closeKitchen, err := dialKitchen(cfg.AMQPURL, cfg.KitchenExchange)
		if err != nil {
			log.Fatalf("Unable to set up kitchen tickets: %v", err)
		}
		defer closeKitchen()
		publishers = append(publishers, kitchen)
		log.Printf("Sending kitchen tickets to exchange %s", cfg.KitchenExchange)
	}

	m := metrics.New()
	queries := database.New(pool)
	r := router.New(cfg, queries, pool, hub, cache, publishers, m)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("ERROR: shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// dialKitchen opens the RabbitMQ connection and channel for kitchen tickets.
// The returned func closes both.
func dialKitchen(url, exchange string) (*events.KitchenPublisher, func(), error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	kitchen, err := events.NewKitchenPublisher(ch, exchange)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}

	return kitchen, func() {
		kitchen.Close()
		conn.Close()
	}, nil
}
