package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/urban-guardian/urban-guardian-api/internal/api"
	"github.com/urban-guardian/urban-guardian-api/internal/properties"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	port := properties.ServerPort()
	if len(os.Args) > 1 {
		parsed, err := strconv.Atoi(os.Args[1])
		if err != nil || parsed <= 0 {
			log.Fatalf("invalid port %q", os.Args[1])
		}
		port = parsed
	}

	server := api.NewServer(properties.MaxUploadBytes(), properties.OutputPath())
	if err := server.Run(port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
