package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/stemsi/course-feed/internal/config"
	"github.com/stemsi/course-feed/internal/service"
)

func main() {
	var subject string
	flag.StringVar(&subject, "subject", "", "Name of the operator the token is issued to")
	flag.Parse()

	if subject == "" {
		log.Fatal("Subject is required (-subject)")
	}

	cfg := config.Load()
	authService := service.NewAuthService(cfg)

	token, err := authService.GenerateAdminToken(subject)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
