package main

import (
	"bufio"
	"context"
	"direct-chat/client"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config is read from the environment, after an optional .env file.
type Config struct {
	ServerAddr string `envconfig:"CHAT_SERVER_ADDR" default:"localhost:12345"`
	Colours    bool   `envconfig:"CHAT_COLOURS" default:"true"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"WARN"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run pipes stdin lines to the relay and prints everything it sends back.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	color.Enable = config.Colours

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := client.Dial(ctx, log, config.ServerAddr)
	if err != nil {
		return exitRuntime, err
	}
	defer func() { _ = c.Close() }()
	color.Info.Printf("Connected to %s (Ctrl+C to quit)\n", config.ServerAddr)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := c.Send(scanner.Text()); err != nil {
				color.Error.Println(err)
			}
		}
		// stdin closed: leave politely, the relay closes the socket
		_ = c.Send("LOGOUT")
	}()

	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case line, ok := <-c.Lines():
			if !ok {
				color.Comment.Println("Connection closed by server")
				return exitOK, nil
			}
			render(line)
		}
	}
}

func render(line client.Line) {
	switch line.Kind {
	case client.KindError:
		color.Red.Println(line.Text)
	case client.KindMessage:
		color.Green.Println(line.Text)
	case client.KindPresence:
		color.Cyan.Println(line.Text)
	default:
		color.White.Println(line.Text)
	}
}
