package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
)

// Acts as the voice agent: joins a room over the session websocket,
// starts the session and plays a scripted conversation.

type tokenResponse struct {
	Data struct {
		Token    string `json:"token"`
		Room     string `json:"room"`
		Identity string `json:"identity"`
	} `json:"data"`
}

type frame struct {
	Type string `json:"type"`
	Item *struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"item,omitempty"`
	CallID  string `json:"call_id,omitempty"`
	Output  string `json:"output,omitempty"`
	Message string `json:"message,omitempty"`
}

var (
	systemColor    = color.New(color.FgHiBlack)
	assistantColor = color.New(color.FgCyan, color.Bold)
	userColor      = color.New(color.FgGreen)
	toolColor      = color.New(color.FgYellow)
	errorColor     = color.New(color.FgRed, color.Bold)
)

func main() {
	baseURL := flag.String("base", "http://localhost:5001", "backend base URL")
	room := flag.String("room", "", "room name (generated when empty)")
	docPath := flag.String("document", "", "text document to upload before the session starts")
	profileID := flag.String("profile", "sim-user", "profile id used for the lookup tool call")
	flag.Parse()

	fmt.Println("=== Voice Coach Session Simulation ===")

	token, roomName, err := getToken(*baseURL, *room)
	if err != nil {
		log.Fatalf("Failed to get token: %v", err)
	}
	fmt.Printf("Room: %s\n", roomName)

	if *docPath != "" {
		if err := uploadDocument(*baseURL, roomName, *docPath); err != nil {
			log.Fatalf("Failed to upload document: %v", err)
		}
		fmt.Printf("Uploaded %s\n", *docPath)
	}

	conn, err := dial(*baseURL, roomName, token)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go printFrames(conn, done)

	send(conn, map[string]interface{}{"type": "session_started"})
	time.Sleep(1 * time.Second)

	utterances := []string{
		"Hi, I want to become a product manager.",
		"What should I work on first?",
	}
	for _, text := range utterances {
		userColor.Printf("\nUSER: %s\n", text)
		send(conn, map[string]interface{}{"type": "utterance_committed", "content": text})
		time.Sleep(1 * time.Second)
	}

	args, _ := json.Marshal(map[string]string{"id": *profileID})
	send(conn, map[string]interface{}{
		"type":      "function_call",
		"call_id":   "sim-1",
		"name":      "lookup_profile",
		"arguments": json.RawMessage(args),
	})
	time.Sleep(1 * time.Second)

	send(conn, map[string]interface{}{"type": "session_ended"})

	select {
	case <-done:
	case <-time.After(3 * time.Second):
	}
	fmt.Println("\n=== Simulation finished ===")
}

func getToken(baseURL, room string) (string, string, error) {
	q := url.Values{"name": {"simulation"}}
	if room != "" {
		q.Set("room", room)
	}

	resp, err := http.Get(baseURL + "/getToken?" + q.Encode())
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	return out.Data.Token, out.Data.Room, nil
}

func uploadDocument(baseURL, room, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("room_id", room); err != nil {
		return err
	}
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	resp, err := http.Post(baseURL+"/upload-document", w.FormDataContentType(), &body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}

func dial(baseURL, room, token string) (*websocket.Conn, error) {
	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/ws/session/" + url.PathEscape(room) + "?token=" + url.QueryEscape(token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	return conn, err
}

func send(conn *websocket.Conn, payload map[string]interface{}) {
	if err := conn.WriteJSON(payload); err != nil {
		errorColor.Printf("send failed: %v\n", err)
	}
}

func printFrames(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}

		switch f.Type {
		case "conversation.item.create":
			if f.Item == nil {
				continue
			}
			switch f.Item.Role {
			case "system":
				systemColor.Printf("[system] %s\n", preview(f.Item.Content, 160))
			case "assistant":
				assistantColor.Printf("COACH: %s\n", f.Item.Content)
			default:
				userColor.Printf("[%s] %s\n", f.Item.Role, preview(f.Item.Content, 160))
			}
		case "function_call_output":
			toolColor.Printf("[tool %s] %s\n", f.CallID, f.Output)
		case "response.create":
			systemColor.Println("  -> response requested")
		case "error":
			errorColor.Printf("[error] %s\n", f.Message)
		}
	}
}

func preview(text string, limit int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
