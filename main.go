package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "amazon_config.json", "Path to the autobuy configuration file")
	titlesPath := flag.String("titles", "", "Optional YAML file with extra page-title variants")
	profileDir := flag.String("profile", ".profile-amz", "Browser profile directory (keeps the session)")
	delay := flag.Float64("delay", 3, "Seconds between stock checks")
	headless := flag.Bool("headless", false, "Run the browser headless")
	checkShipping := flag.Bool("check-shipping", false, "Count shipping cost against the reserve")
	test := flag.Bool("test", false, "Test mode: find the place-order button but never click it")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	godotenv.Load()
	initLogger(*debug)

	config, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	config.Headless = *headless
	config.CheckShipping = *checkShipping
	config.TestMode = *test

	if *titlesPath != "" {
		if err := LoadTitleOverrides(*titlesPath); err != nil {
			log.Warn().Err(err).Str("file", *titlesPath).Msg("Could not load title overrides, using built-ins")
		}
	}

	log.Info().
		Str("website", config.AmazonWebsite).
		Int("groups", len(config.ASINGroups)).
		Bool("check_shipping", config.CheckShipping).
		Bool("test_mode", config.TestMode).
		Msg("Starting up")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver, err := NewRodDriver(config.Headless, *profileDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up browser")
	}
	defer driver.Close()

	history, err := OpenHistory(config.HistoryPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer history.Close()

	bot := NewBot(config, driver, NewSolver(config.SolverURL), buildNotifier(config), history)

	pollDelay := time.Duration(*delay * float64(time.Second))
	if err := bot.Run(ctx, pollDelay); err != nil {
		if ctx.Err() != nil {
			log.Info().Msg("Interrupted, shutting down")
			return
		}
		log.Fatal().Err(err).Msg("Run failed")
	}
}

func initLogger(debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		if parsed, err := zerolog.ParseLevel(env); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}
