// Command liketail logs in as a company and prints like events for its posts as they happen.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

type likeEvent struct {
	Type    string `json:"type"`
	Payload struct {
		PostID         uint      `json:"post_id"`
		OwnerCompanyID uint      `json:"owner_company_id"`
		LikedBy        uint      `json:"liked_by_company_id"`
		LikedAt        time.Time `json:"liked_at"`
	} `json:"payload"`
}

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("base", envOr("BOOSTLY_URL", "http://localhost:8375"), "API base URL")
	email := flag.String("email", os.Getenv("BOOSTLY_EMAIL"), "Company account email")
	password := flag.String("password", os.Getenv("BOOSTLY_PASSWORD"), "Company account password")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("email and password are required (flags or BOOSTLY_EMAIL / BOOSTLY_PASSWORD)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, err := login(ctx, http.DefaultClient, *baseURL, *email, *password)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}

	if err := tail(ctx, *baseURL, token, os.Stdout); err != nil {
		log.Fatalf("stream closed: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func login(ctx context.Context, client *http.Client, baseURL, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		Token string `json:"token"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, out.Error)
	}
	if out.Token == "" {
		return "", errors.New("login response carried no token")
	}
	return out.Token, nil
}

// streamURL maps the API base URL onto the websocket endpoint.
func streamURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/likes"
	return u.String(), nil
}

func tail(ctx context.Context, baseURL, token string, out io.Writer) error {
	target, err := streamURL(baseURL)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: %w (status %d)", target, err, resp.StatusCode)
		}
		return fmt.Errorf("dial %s: %w", target, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	fmt.Fprintf(out, "listening on %s\n", target)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		fmt.Fprintln(out, formatEvent(msg))
	}
}

func formatEvent(msg []byte) string {
	var ev likeEvent
	if err := json.Unmarshal(msg, &ev); err != nil || ev.Type == "" {
		return string(msg)
	}
	return fmt.Sprintf("%s  %s  post=%d by company=%d",
		ev.Payload.LikedAt.Format(time.RFC3339), ev.Type, ev.Payload.PostID, ev.Payload.LikedBy)
}
