package main

import (
	"fmt"
	"log"
	"net/http"

	"promise-console/internal/config"
	"promise-console/internal/server"
)

const version = "0.1.0"

func main() {
	cfg := config.LoadConfig()

	handler := server.NewHandler(version)
	router := server.NewRouter(handler)

	fmt.Printf("Starting mock OTP backend on port %s\n", cfg.Port)
	fmt.Println("Available endpoints:")
	fmt.Println("  POST /otp/promise - Evaluate delivery promise")
	fmt.Println("  GET  /otp/sales-orders - List sales orders")
	fmt.Println("  GET  /otp/sales-orders/{orderId} - Sales order details")
	fmt.Println("  GET  /otp/items - List item codes")
	fmt.Println("  GET  /health - Health check")

	log.Fatal(http.ListenAndServe(":"+cfg.Port, router))
}
