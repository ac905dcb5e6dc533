// Package client is a Go client for the persona-chat HTTP API, including the
// incremental consumer for streamed message replies.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// APIError is a non-success response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// User mirrors the API user payload
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Character mirrors the API character payload
type Character struct {
	ID          uint   `json:"id"`
	OwnerID     *uint  `json:"owner_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Greeting    string `json:"greeting"`
	AvatarColor string `json:"avatar_color"`
}

// Conversation mirrors the API conversation payload
type Conversation struct {
	ID            uint       `json:"id"`
	CharacterID   uint       `json:"character_id"`
	Title         string     `json:"title"`
	LastMessageAt time.Time  `json:"last_message_at"`
	Character     *Character `json:"character,omitempty"`
}

// Message mirrors the API message payload
type Message struct {
	ID        uint      `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationDetail is the full conversation fetch
type ConversationDetail struct {
	Conversation
	Character Character `json:"character"`
	Messages  []Message `json:"messages"`
}

// Client talks to the persona-chat API. The session cookie set by Login is
// kept in an internal jar and sent on every request.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar},
	}, nil
}

// Register creates an account
func (c *Client) Register(ctx context.Context, username, password string) (User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/register",
		map[string]string{"username": username, "password": password}, &user)
	return user, err
}

// Login starts a session; the cookie lands in the client's jar
func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": password}, &user)
	return user, err
}

// Logout ends the session
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Me returns the current user
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &user)
	return user, err
}

// Characters lists own plus shared characters
func (c *Client) Characters(ctx context.Context) ([]Character, error) {
	var characters []Character
	err := c.doJSON(ctx, http.MethodGet, "/api/characters", nil, &characters)
	return characters, err
}

// Conversations lists the user's conversations, most recent first
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var conversations []Conversation
	err := c.doJSON(ctx, http.MethodGet, "/api/conversations", nil, &conversations)
	return conversations, err
}

// CreateConversation starts a chat with a character
func (c *Client) CreateConversation(ctx context.Context, characterID uint) (Conversation, error) {
	var conversation Conversation
	err := c.doJSON(ctx, http.MethodPost, "/api/conversations",
		map[string]uint{"character_id": characterID}, &conversation)
	return conversation, err
}

// Conversation fetches one conversation with its ordered messages
func (c *Client) Conversation(ctx context.Context, id uint) (ConversationDetail, error) {
	var detail ConversationDetail
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/conversations/%d", id), nil, &detail)
	return detail, err
}

// DeleteConversation removes a conversation and its messages
func (c *Client) DeleteConversation(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/conversations/%d", id), nil, nil)
}

// SendMessage posts a user message and returns the reply stream. The caller
// must Close the stream; after a Done event it should refetch the
// conversation for the authoritative server state.
func (c *Client) SendMessage(ctx context.Context, conversationID uint, content string) (*Stream, error) {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/conversations/%d/messages", c.baseURL, conversationID),
		bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, apiErrorFromResponse(resp)
	}
	return NewStream(resp.Body), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiErrorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func apiErrorFromResponse(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
