package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"chatapp/backend/internal/config"
	"chatapp/backend/internal/storage"

	"github.com/joho/godotenv"
)

func usage() {
	fmt.Println("Usage: admin <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  users                    list every user")
	fmt.Println("  online                   list users marked online in Redis")
	fmt.Println("  reset-presence           clear the Redis presence set")
	fmt.Println("  conversation <a> <b>     print the messages between two users")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	command := os.Args[1]

	switch command {
	case "users":
		s := openStorage(ctx, cfg, false)
		if err := listUsers(ctx, s); err != nil {
			log.Fatalf("Error listing users: %v", err)
		}
	case "online":
		s := openStorage(ctx, cfg, true)
		if err := listOnline(ctx, s); err != nil {
			log.Fatalf("Error listing online users: %v", err)
		}
	case "reset-presence":
		s := openStorage(ctx, cfg, true)
		if err := s.ResetPresence(ctx); err != nil {
			log.Fatalf("Error resetting presence: %v", err)
		}
		fmt.Println("Presence set cleared.")
	case "conversation":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin conversation <user_a> <user_b>")
			os.Exit(1)
		}
		s := openStorage(ctx, cfg, false)
		if err := printConversation(ctx, s, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Error reading conversation: %v", err)
		}
	default:
		fmt.Println("Unknown command")
		usage()
		os.Exit(1)
	}
}

func openStorage(ctx context.Context, cfg config.Config, needRedis bool) *storage.Service {
	db, err := storage.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if !needRedis {
		return storage.NewStorageService(db, nil) // No redis needed
	}
	if cfg.RedisAddr == "" {
		log.Fatal("REDIS_ADDR is not set")
	}
	rdb, err := storage.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	return storage.NewStorageService(db, rdb)
}

func listUsers(ctx context.Context, s storage.Storage) error {
	users, err := s.ListUsersExcept(ctx, "")
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Printf("%s\t%s\n", u.ID, u.FullName)
	}
	fmt.Printf("%d users\n", len(users))
	return nil
}

func listOnline(ctx context.Context, p storage.PresenceStore) error {
	ids, err := p.OnlineUsers(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	fmt.Printf("%d online\n", len(ids))
	return nil
}

func printConversation(ctx context.Context, s storage.Storage, userA, userB string) error {
	conv, err := s.FindConversation(ctx, userA, userB)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Printf("No conversation between %s and %s.\n", userA, userB)
		return nil
	}
	if err != nil {
		return err
	}

	msgs, err := s.ListMessages(ctx, conv.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Conversation %s (%d messages)\n", conv.ID, len(msgs))
	for _, m := range msgs {
		fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format(time.RFC3339), m.SenderID, m.Body)
	}
	return nil
}
