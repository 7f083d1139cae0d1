package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"cryptowallet/configs"
	"cryptowallet/internal/client"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}
	cfg := configs.Load()

	conn, err := client.Dial(cfg.Server.Addr(), 5*time.Second)
	if err != nil {
		fmt.Println(client.ConnectionInterrupted)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Println("Connected to server.")
	if err := client.Run(conn, os.Stdin, os.Stdout); err != nil {
		fmt.Println(client.ConnectionInterrupted)
	}
}
