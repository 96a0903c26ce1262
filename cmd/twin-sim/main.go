package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lalmajed/camera-health-digital-twin/internal/twinsim"
)

var port = flag.Int("port", 8000, "Port to listen on")

func main() {
	flag.Parse()

	sim := twinsim.NewServer()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      sim.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down simulator...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("Simulator shutdown error: %v", err)
		}
	}()

	log.Printf("[TwinSim] Serving simulated twin on :%d", *port)
	log.Printf("[TwinSim] Days: %s", strings.Join(sim.Days(), ", "))
	log.Printf("[TwinSim] Sites: %s", strings.Join(sim.Sites(), ", "))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Simulator error: %v", err)
	}
}
