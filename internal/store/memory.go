package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"persona-chat/backend/internal/models"
)

// MemoryStore is a thread-safe in-process Store. It backs the test suite and
// the zero-dependency dev mode (DB_DRIVER=memory).
type MemoryStore struct {
	mu sync.RWMutex

	users         map[uint]models.User
	characters    map[uint]models.Character
	conversations map[uint]models.Conversation
	messages      map[uint]models.Message

	nextUserID         uint
	nextCharacterID    uint
	nextConversationID uint
	nextMessageID      uint
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[uint]models.User),
		characters:    make(map[uint]models.Character),
		conversations: make(map[uint]models.Conversation),
		messages:      make(map[uint]models.Message),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return ErrDuplicate
		}
	}

	s.nextUserID++
	user.ID = s.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStore) ListCharacters(_ context.Context, userID uint) ([]models.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Character, 0)
	for _, character := range s.characters {
		if character.OwnerID == nil || *character.OwnerID == userID {
			out = append(out, character)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) GetCharacter(_ context.Context, userID, id uint) (*models.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	character, ok := s.characters[id]
	if !ok {
		return nil, ErrNotFound
	}
	if character.OwnerID != nil && *character.OwnerID != userID {
		return nil, ErrNotFound
	}
	return &character, nil
}

func (s *MemoryStore) CreateCharacter(_ context.Context, character *models.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCharacterID++
	character.ID = s.nextCharacterID
	if character.CreatedAt.IsZero() {
		character.CreatedAt = time.Now()
	}
	s.characters[character.ID] = *character
	return nil
}

func (s *MemoryStore) DeleteCharacter(_ context.Context, userID, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	character, ok := s.characters[id]
	if !ok || character.OwnerID == nil || *character.OwnerID != userID {
		return ErrNotFound
	}
	delete(s.characters, id)
	return nil
}

func (s *MemoryStore) CountCharacters(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.characters)), nil
}

func (s *MemoryStore) ListConversations(_ context.Context, userID uint) ([]models.ConversationWithCharacter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ConversationWithCharacter, 0)
	for _, conversation := range s.conversations {
		if conversation.UserID != userID {
			continue
		}
		entry := models.ConversationWithCharacter{Conversation: conversation}
		if character, ok := s.characters[conversation.CharacterID]; ok {
			c := character
			entry.Character = &c
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out, nil
}

func (s *MemoryStore) GetConversation(ctx context.Context, userID, id uint) (*models.ConversationDetail, error) {
	conversation, err := s.AssertOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	character, ok := s.characters[conversation.CharacterID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	messages, err := s.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.ConversationDetail{
		Conversation: *conversation,
		Character:    character,
		Messages:     messages,
	}, nil
}

func (s *MemoryStore) CreateConversation(_ context.Context, conversation *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextConversationID++
	conversation.ID = s.nextConversationID
	now := time.Now()
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = now
	}
	if conversation.LastMessageAt.IsZero() {
		conversation.LastMessageAt = now
	}
	s.conversations[conversation.ID] = *conversation
	return nil
}

func (s *MemoryStore) DeleteConversation(ctx context.Context, userID, id uint) error {
	if _, err := s.AssertOwned(ctx, userID, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, id)
	for msgID, message := range s.messages {
		if message.ConversationID == id {
			delete(s.messages, msgID)
		}
	}
	return nil
}

func (s *MemoryStore) UpdateConversationTitle(_ context.Context, id uint, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation, ok := s.conversations[id]
	if !ok {
		return ErrNotFound
	}
	conversation.Title = title
	s.conversations[id] = conversation
	return nil
}

func (s *MemoryStore) TouchConversation(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation, ok := s.conversations[id]
	if !ok {
		return ErrNotFound
	}
	conversation.LastMessageAt = time.Now()
	s.conversations[id] = conversation
	return nil
}

func (s *MemoryStore) AssertOwned(_ context.Context, userID, conversationID uint) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.conversations[conversationID]
	if !ok || conversation.UserID != userID {
		return nil, ErrNotFound
	}
	return &conversation, nil
}

func (s *MemoryStore) ListMessages(_ context.Context, conversationID uint) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, 0)
	for _, message := range s.messages {
		if message.ConversationID == conversationID {
			out = append(out, message)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CreateMessage(_ context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMessageID++
	message.ID = s.nextMessageID
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	s.messages[message.ID] = *message
	return nil
}
