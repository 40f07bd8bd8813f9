// Command console reads one command per line from stdin and prints each
// response as JSON.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/app"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/config"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/service"
)

func main() {
	cfg := config.LoadConfig()
	app.SetupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	assistant, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build assistant")
	}
	defer func() {
		if err := assistant.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to release resources")
		}
	}()

	encoder := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stderr, "> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		command := strings.TrimSpace(scanner.Text())
		if command == "" {
			fmt.Fprint(os.Stderr, "> ")
			continue
		}

		resp := assistant.Interpreter.Interpret(service.WithRequestID(ctx, uuid.NewString()), command)
		if err := encoder.Encode(resp); err != nil {
			log.Error().Err(err).Msg("Failed to encode response")
		}
		fmt.Fprint(os.Stderr, "> ")
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("Failed to read stdin")
	}
}
