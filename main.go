package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/hannes/kiji-ner/cli"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file from current directory")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
