package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"jkvs"
	"jkvs/internal/config"
	"jkvs/internal/server"
)

func main() {
	// .env опционален: в проде env приходит снаружи
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment variables from .env")
	}

	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <port> <path-to-journal>\n", os.Args[0])
		os.Exit(2)
	}

	port, err := strconv.Atoi(os.Args[1])
	if err != nil || port <= 0 || port > 65535 {
		fmt.Fprintf(os.Stderr, "invalid port: %s\n", os.Args[1])
		os.Exit(2)
	}
	journalPath := os.Args[2]

	cfg := config.Load()

	db := jkvs.OpenWithConfig(journalPath, cfg)

	if cfg.AdminAddr != "" {
		server.StartAdmin(cfg.AdminAddr)
	}

	// Graceful shutdown: перехватываем SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Println("shutting down gracefully...")
		db.Close()
		log.Println("bye!")
		os.Exit(0)
	}()

	if err := db.ListenAndServe(":" + strconv.Itoa(port)); err != nil {
		log.Fatal(err)
	}
}
