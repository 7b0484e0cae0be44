// internal/models/conversation.go
package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Slot is a fact the conversation still has to collect.
type Slot string

const (
	SlotGreeting         Slot = "greeting"
	SlotLoanAmount       Slot = "loan_amount"
	SlotLoanType         Slot = "loan_type"
	SlotMonthlyIncome    Slot = "monthly_income"
	SlotAge              Slot = "age"
	SlotLoanTenure       Slot = "loan_tenure"
	SlotEmploymentStatus Slot = "employment_status"
	SlotExistingDebts    Slot = "existing_debts"
	SlotReady            Slot = "ready"
)

// Session is everything that outlives a single turn.
type Session struct {
	ID        string    `json:"id"`
	Profile   Profile   `json:"profile"`
	History   []Message `json:"history"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddMessage appends to the history, keeping at most limit messages when limit > 0.
func (s *Session) AddMessage(role Role, content string, limit int) {
	s.History = append(s.History, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if limit > 0 && len(s.History) > limit {
		s.History = append([]Message(nil), s.History[len(s.History)-limit:]...)
	}
	s.UpdatedAt = time.Now().UTC()
}

// Recent returns the last n messages.
func (s *Session) Recent(n int) []Message {
	if n <= 0 || n >= len(s.History) {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// AssistantMentioned reports whether any assistant message contains one of the keywords.
func AssistantMentioned(history []Message, keywords ...string) bool {
	for _, m := range history {
		if m.Role != RoleAssistant {
			continue
		}
		content := strings.ToLower(m.Content)
		for _, kw := range keywords {
			if strings.Contains(content, kw) {
				return true
			}
		}
	}
	return false
}
