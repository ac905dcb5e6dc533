// Package store is the persistence adapter. A Store is constructed once per
// process and passed by reference into services and handlers; nothing in this
// package is a singleton.
package store

import (
	"context"
	"errors"

	"persona-chat/backend/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist or is not visible to
	// the requesting user. Callers cannot distinguish the two on purpose.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on unique-constraint conflicts
	ErrDuplicate = errors.New("record already exists")
)

// Store exposes typed CRUD access to users, characters, conversations and
// messages. Every operation on a user-owned entity is scoped by userID;
// character reads additionally admit shared rows (nil owner).
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)

	// Characters. Reads cover own plus shared; deletes require ownership.
	ListCharacters(ctx context.Context, userID uint) ([]models.Character, error)
	GetCharacter(ctx context.Context, userID, id uint) (*models.Character, error)
	CreateCharacter(ctx context.Context, character *models.Character) error
	DeleteCharacter(ctx context.Context, userID, id uint) error
	CountCharacters(ctx context.Context) (int64, error)

	// Conversations
	ListConversations(ctx context.Context, userID uint) ([]models.ConversationWithCharacter, error)
	GetConversation(ctx context.Context, userID, id uint) (*models.ConversationDetail, error)
	CreateConversation(ctx context.Context, conversation *models.Conversation) error
	DeleteConversation(ctx context.Context, userID, id uint) error
	UpdateConversationTitle(ctx context.Context, id uint, title string) error
	TouchConversation(ctx context.Context, id uint) error

	// AssertOwned is the single ownership gate for conversation-scoped
	// operations: it loads the conversation iff it belongs to userID.
	AssertOwned(ctx context.Context, userID, conversationID uint) (*models.Conversation, error)

	// Messages, transitively scoped through their conversation
	ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error)
	CreateMessage(ctx context.Context, message *models.Message) error
}
