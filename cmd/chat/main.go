// Command chat is a terminal client for the persona-chat server: it logs in,
// starts a conversation with a chosen character and renders streamed replies
// as they arrive.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"persona-chat/backend/client"
)

func main() {
	var (
		serverURL = flag.String("url", "http://localhost:8081", "server base URL")
		username  = flag.String("user", "", "username")
		password  = flag.String("pass", "", "password")
		register  = flag.Bool("register", false, "create the account before logging in")
	)
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("both -user and -pass are required")
	}

	ctx := context.Background()

	c, err := client.New(*serverURL)
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}

	if *register {
		if _, err := c.Register(ctx, *username, *password); err != nil {
			var apiErr *client.APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
				log.Fatalf("registration failed: %v", err)
			}
			// Already registered; fall through to login
		}
	}

	user, err := c.Login(ctx, *username, *password)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}
	fmt.Printf("Logged in as %s\n\n", user.Username)

	characters, err := c.Characters(ctx)
	if err != nil {
		log.Fatalf("failed to list characters: %v", err)
	}
	if len(characters) == 0 {
		log.Fatal("no characters available")
	}

	fmt.Println("Characters:")
	for i, character := range characters {
		fmt.Printf("  %d. %s - %s\n", i+1, character.Name, character.Description)
	}

	stdin := bufio.NewReader(os.Stdin)
	choice := promptInt(stdin, "\nPick a character: ", 1, len(characters))
	character := characters[choice-1]

	conversation, err := c.CreateConversation(ctx, character.ID)
	if err != nil {
		log.Fatalf("failed to start conversation: %v", err)
	}

	fmt.Printf("\n%s\n", conversation.Title)
	if character.Greeting != "" {
		fmt.Printf("%s: %s\n", character.Name, character.Greeting)
	}
	fmt.Println(`Type a message, or "quit" to exit.`)

	for {
		fmt.Print("\nYou: ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" {
			return
		}

		if err := streamReply(ctx, c, conversation.ID, character.Name, line); err != nil {
			fmt.Fprintf(os.Stderr, "\nmessage failed: %v\n", err)
		}
	}
}

// streamReply sends one message and prints deltas as they arrive. Input is
// not read again until the stream terminates, so a single client never has
// two sends in flight on the same conversation.
func streamReply(ctx context.Context, c *client.Client, conversationID uint, characterName, content string) error {
	stream, err := c.SendMessage(ctx, conversationID, content)
	if err != nil {
		return err
	}
	defer stream.Close()

	fmt.Printf("%s: ", characterName)
	for {
		event, err := stream.Recv()
		if err != nil {
			fmt.Println()
			return err
		}
		if event.Content != "" {
			fmt.Print(event.Content)
		}
		if event.Error != "" {
			fmt.Println()
			return errors.New(event.Error)
		}
		if event.Done {
			fmt.Println()
			return nil
		}
	}
}

func promptInt(stdin *bufio.Reader, prompt string, min, max int) int {
	for {
		fmt.Print(prompt)
		line, err := stdin.ReadString('\n')
		if err != nil {
			os.Exit(0)
		}
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(line), "%d", &n); err == nil && n >= min && n <= max {
			return n
		}
	}
}
