// Command feedwatch is a terminal viewer for the live feed. It logs in,
// loads a feed page over HTTP, then follows broadcast events over the
// websocket and reprints the page whenever it changes.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"livefeed/internal/feedview"
	"livefeed/internal/notifications"

	"github.com/gorilla/websocket"
)

func main() {
	host := flag.String("host", "localhost:8080", "API server host")
	email := flag.String("email", "demo@example.com", "Login email")
	password := flag.String("password", "password123", "Login password")
	page := flag.Int("page", 1, "Feed page to follow")
	flag.Parse()

	token, err := login(*host, *email, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	view := feedview.NewClient(&httpFetcher{host: *host, token: token})
	if err := view.Load(ctx, *page); err != nil {
		log.Fatalf("Failed to load feed page %d: %v", *page, err)
	}
	render(view)

	wsURL := url.URL{Scheme: "ws", Host: *host, Path: "/api/ws/feed", RawQuery: "token=" + url.QueryEscape(token)}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		log.Fatalf("Websocket dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()
	log.Printf("Following feed on %s (page %d). Ctrl-C to quit.", *host, *page)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	messages := make(chan []byte, 16)
	go func() {
		defer close(messages)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			messages <- raw
		}
	}()

	for {
		select {
		case raw, ok := <-messages:
			if !ok {
				log.Println("Connection closed by server")
				return
			}
			if err := view.HandleMessage(ctx, raw); err != nil {
				log.Printf("Skipping message: %v", err)
				continue
			}
			render(view)
		case <-interrupt:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func render(view *feedview.Client) {
	fmt.Printf("\n=== Feed page %d (%d posts total) ===\n", view.Page(), view.TotalItems())
	for _, item := range view.Items() {
		fmt.Printf("#%d [v%d] %s by %s (%s)\n",
			item.ID, item.Version, item.Title, item.Creator.Name,
			item.UpdatedAt.Format(time.RFC822))
	}
}

// httpFetcher loads feed pages from the REST API, matching the shape the
// feed handlers return.
type httpFetcher struct {
	host  string
	token string
}

func (f *httpFetcher) FetchPage(ctx context.Context, page int) ([]notifications.PostSnapshot, int, error) {
	reqURL := fmt.Sprintf("http://%s/api/feed/posts?page=%d", f.host, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+f.token)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("feed request failed with status %d", resp.StatusCode)
	}

	var result struct {
		Posts      []notifications.PostSnapshot `json:"posts"`
		TotalItems int                          `json:"totalItems"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, 0, err
	}
	return result.Posts, result.TotalItems, nil
}

func login(host, email, password string) (string, error) {
	payload, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	resp, err := http.Post(fmt.Sprintf("http://%s/api/auth/login", host),
		"application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}
