package domain

import (
	"encoding/json"
	"time"
)

// Chat is a conversation owned by a user.
type Chat struct {
	ID        int64      `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	IsPublic  bool       `json:"is_public" db:"is_public"`
	UserID    int64      `json:"user_id" db:"user_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" db:"deleted_at"`
}

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

func (r MessageRole) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// Message belongs to a chat. Content is stored as JSONB and kept opaque here.
type Message struct {
	ID      string          `json:"id" db:"id"`
	Role    MessageRole     `json:"role" db:"role"`
	ChatID  int64           `json:"chat_id" db:"chat_id"`
	Content json.RawMessage `json:"content" db:"content"`
}
