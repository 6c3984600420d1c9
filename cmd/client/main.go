package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL    string `envconfig:"CHAT_SERVER_URL" default:"http://localhost:8080"`
	Conversation string `envconfig:"CHAT_CONVERSATION" required:"true"`
	Username     string `envconfig:"CHAT_USERNAME" required:"true"`
	Password     string `envconfig:"CHAT_PASSWORD" required:"true"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, err := login(ctx, config)
	if err != nil {
		return exitRuntime, fmt.Errorf("login failed: %w", err)
	}

	conn, err := dial(ctx, config, token)
	if err != nil {
		return exitRuntime, err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	color.Green.Printf(">>> Connected to %s as %s (Ctrl+C to quit)\n",
		config.Conversation, config.Username)

	// Reader goroutine: renders server events until the context ends.
	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				stop()
				return
			}
			render(data)
		}
	}()

	// Input loop: each line becomes a chat_message event.
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			color.Yellow.Println("Disconnected.")
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			payload, _ := json.Marshal(map[string]string{
				"type":    "chat_message",
				"message": line,
			})
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				return exitRuntime, fmt.Errorf("send failed: %w", err)
			}
		}
	}
}

func login(ctx context.Context, config Config) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username": config.Username,
		"password": config.Password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		config.ServerURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server answered %s", resp.Status)
	}

	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	return parsed.Token, nil
}

func dial(ctx context.Context, config Config, token string) (*websocket.Conn, error) {
	wsURL := strings.Replace(config.ServerURL, "http", "ws", 1) +
		"/ws/chat/" + config.Conversation

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", wsURL, err)
	}
	return conn, nil
}

// serverEvent is loose on purpose: one shape per event type, decoded by
// branching on Type. Message is raw because it is an object for echoes
// and a plain string for greeting responses.
type serverEvent struct {
	Type     string          `json:"type"`
	Users    []string        `json:"users"`
	User     string          `json:"user"`
	Name     string          `json:"name"`
	Message  json.RawMessage `json:"message"`
	Messages []historyRow    `json:"messages"`
	HasMore  bool            `json:"has_more"`
}

type historyRow struct {
	FromUser  string    `json:"from_user"`
	ToUser    string    `json:"to_user"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func render(data []byte) {
	var evt serverEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return
	}

	switch evt.Type {
	case "online_user_list":
		color.Cyan.Printf("online: %s\n", strings.Join(evt.Users, ", "))
	case "user_join":
		color.Green.Printf("* %s joined\n", evt.User)
	case "user_leave":
		color.Yellow.Printf("* %s left\n", evt.User)
	case "last_50_messages":
		renderHistory(evt.Messages, evt.HasMore)
	case "chat_message_echo":
		var msg historyRow
		if err := json.Unmarshal(evt.Message, &msg); err != nil {
			return
		}
		color.Bold.Printf("%s: ", evt.Name)
		fmt.Println(msg.Content)
	case "greeting_response":
		var reply string
		_ = json.Unmarshal(evt.Message, &reply)
		color.Magenta.Printf("server: %s\n", reply)
	}
}

// renderHistory prints the backfill newest-first, the way the server
// sends it.
func renderHistory(rows []historyRow, hasMore bool) {
	if len(rows) == 0 {
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "From", "Message"})
	for _, row := range rows {
		table.Append([]string{
			row.Timestamp.Local().Format("15:04:05"),
			row.FromUser,
			row.Content,
		})
	}
	table.Render()
	if hasMore {
		color.Gray.Println("(older messages not shown)")
	}
}
