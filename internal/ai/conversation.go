package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sadopc/planboard/internal/plan"
)

var (
	// ErrBusy is returned when a question is asked while another is in flight.
	ErrBusy       = errors.New("assistant is still answering")
	ErrEmptyInput = errors.New("empty question")
	ErrCleared    = errors.New("conversation cleared")
)

const systemPromptHeader = `Você é um assistente especializado em análise de planos de ação e status reports.
Você tem acesso aos seguintes dados de ações:
`

const systemPromptFooter = `
Analise os dados e responda às perguntas do usuário de forma clara e objetiva, fornecendo insights úteis sobre as ações, responsáveis, setores, prazos e status.`

// ContextRow is the per-action payload embedded in the system prompt.
type ContextRow struct {
	ID          int              `json:"id"`
	Action      string           `json:"action"`
	Responsible string           `json:"responsible"`
	Sector      string           `json:"sector"`
	Status      plan.DelayStatus `json:"status"`
	Deadline    string           `json:"deadline"`
}

func contextRows(actions []plan.ProcessedAction) []ContextRow {
	rows := make([]ContextRow, len(actions))
	for i, a := range actions {
		rows[i] = ContextRow{
			ID:          a.ID,
			Action:      a.Description,
			Responsible: a.Responsible,
			Sector:      a.Sector,
			Status:      a.DelayStatus,
			Deadline:    a.EndDate,
		}
	}
	return rows
}

// SystemPrompt embeds a JSON dump of the actions in the analyst instructions.
func SystemPrompt(actions []plan.ProcessedAction) (string, error) {
	data, err := json.MarshalIndent(contextRows(actions), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal action context: %w", err)
	}
	return systemPromptHeader + string(data) + systemPromptFooter, nil
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
	Time    time.Time
	Failed  bool
}

// Conversation is the assistant chat history. At most one question is in
// flight; Clear drops any answer still pending.
type Conversation struct {
	mu         sync.Mutex
	messages   []Message
	busy       bool
	generation uint64
	logger     *slog.Logger
	now        func() time.Time
}

func NewConversation(logger *slog.Logger) *Conversation {
	return &Conversation{logger: orDiscard(logger), now: time.Now}
}

// Pending is a question accepted by Begin and awaiting an answer.
type Pending struct {
	Generation uint64
	Question   string
	System     string
}

// Begin records the user's question and marks the conversation busy.
func (c *Conversation) Begin(question string, actions []plan.ProcessedAction) (Pending, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Pending{}, ErrEmptyInput
	}

	system, err := SystemPrompt(actions)
	if err != nil {
		return Pending{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return Pending{}, ErrBusy
	}
	c.busy = true
	c.messages = append(c.messages, Message{Role: RoleUser, Content: question, Time: c.now()})
	return Pending{Generation: c.generation, Question: question, System: system}, nil
}

// Finish records the outcome of p and returns the assistant message. A
// failure becomes a single assistant message so the conversation stays
// usable. ok is false when the conversation was cleared while p was in
// flight.
func (c *Conversation) Finish(p Pending, reply string, err error) (msg Message, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.Generation != c.generation {
		c.logger.Debug("dropping stale assistant reply", "generation", p.Generation)
		return Message{}, false
	}
	c.busy = false

	msg = Message{Role: RoleAssistant, Content: reply, Time: c.now()}
	if err != nil {
		c.logger.Error("assistant request failed", "err", err)
		msg.Content = failureText(err)
		msg.Failed = true
	}
	c.messages = append(c.messages, msg)
	return msg, true
}

// Ask runs a full question/answer round trip through client.
func (c *Conversation) Ask(ctx context.Context, client Client, question string, actions []plan.ProcessedAction) (Message, error) {
	if client == nil {
		return Message{}, ErrMissingAPIKey
	}
	p, err := c.Begin(question, actions)
	if err != nil {
		return Message{}, err
	}
	reply, err := client.Complete(ctx, p.System, p.Question)
	msg, ok := c.Finish(p, reply, err)
	if !ok {
		return Message{}, ErrCleared
	}
	return msg, err
}

func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Clear empties the history and invalidates any pending question.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.busy = false
	c.generation++
}

func failureText(err error) string {
	detail := ""
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		detail = " (" + apiErr.Message + ")"
	}
	return "Sorry, something went wrong while processing your request" + detail + ". Check your API key and try again."
}
