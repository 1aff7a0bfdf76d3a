package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"CHAT_SERVER_ADDR,default=localhost:4003"`
	Identity      string `env:"CHAT_IDENTITY,required=true"`
	LogLevel      string `env:"LOG_LEVEL,default=INFO"`
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type message struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Text      string `json:"text"`
	Image     string `json:"image"`
	CreatedAt int64  `json:"createdAt"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run registers the identity on the socket, prints every pushed message
// and sends stdin lines of the form "@bob hello" through POST /messages.
func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	socketURL := url.URL{Scheme: "ws", Host: config.ServerAddress, Path: "/socket"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, socketURL.String(), nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	register, _ := json.Marshal(config.Identity)
	if err := conn.WriteJSON(frame{Event: "register", Data: register}); err != nil {
		return exitRuntime, fmt.Errorf("register failed: %w", err)
	}
	color.Green.Printf(">>> Connected to %s as %s (Ctrl+C to quit)\n", config.ServerAddress, config.Identity)

	go sendLines(ctx, config, log.Warn)

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("socket error: %w", err)
		}
		if f.Event != "new_message" {
			continue
		}
		var m message
		if err := json.Unmarshal(f.Data, &m); err != nil {
			log.Warn("Unreadable message", "error", err)
			continue
		}
		printMessage(config.Identity, m)
	}
}

func printMessage(self string, m message) {
	at := time.UnixMilli(m.CreatedAt).Format(time.TimeOnly)
	body := m.Text
	if m.Image != "" {
		body = strings.TrimSpace(body + " [image " + m.Image + "]")
	}
	who := color.Cyan.Sprintf("%s -> %s", m.From, m.To)
	if m.From == self {
		who = color.Gray.Sprintf("%s -> %s", m.From, m.To)
	}
	fmt.Printf("[%s] %s: %s\n", at, who, body)
}

func sendLines(ctx context.Context, config Config, warn func(msg string, args ...any)) {
	endpoint := url.URL{Scheme: "http", Host: config.ServerAddress, Path: "/messages"}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		to, text, ok := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		if !ok || !strings.HasPrefix(to, "@") {
			color.Yellow.Println("usage: @recipient text")
			continue
		}
		body, _ := json.Marshal(map[string]string{"from": config.Identity, "to": to[1:], "text": text})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
		if err != nil {
			warn("Send failed", "error", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			warn("Send failed", "error", err)
			continue
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			color.Red.Printf("send refused: %s\n", resp.Status)
		}
	}
}
