package agents

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/vitality-backend/internal/domain"
	pkgerrors "github.com/yungbote/vitality-backend/internal/pkg/errors"
)

// Kind is the closed set of dispatchable agents. Request kinds are parsed
// once at the dispatch boundary; everything past it works on the enum.
type Kind int

const (
	KindChat Kind = iota + 1
	KindResearch
)

func (k Kind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindResearch:
		return "research"
	default:
		return "unknown"
	}
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "chat":
		return KindChat, nil
	case "research":
		return KindResearch, nil
	default:
		return 0, fmt.Errorf("%w: unknown agent kind %q", pkgerrors.ErrInvalidArgument, s)
	}
}

// ProductRef identifies the product a research request targets.
type ProductRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

type Input struct {
	UserID    uuid.UUID
	SessionID string
	Message   string

	// Product is required by the research agent, ignored by chat.
	Product *ProductRef
}

// Candidate is one retrieved item surfaced to the user.
type Candidate struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"` // video|report
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

type Output struct {
	Agent      string      `json:"agent"`
	Intent     string      `json:"intent,omitempty"`
	Reply      string      `json:"reply,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`

	Report *domain.Report `json:"report,omitempty"`
}

type Agent interface {
	Process(ctx context.Context, in Input) (*Output, error)
}

// Dispatcher routes a request kind to its agent.
type Dispatcher struct {
	agents map[Kind]Agent
}

func NewDispatcher(chat, research Agent) *Dispatcher {
	return &Dispatcher{agents: map[Kind]Agent{
		KindChat:     chat,
		KindResearch: research,
	}}
}

func (d *Dispatcher) Dispatch(ctx context.Context, kind string, in Input) (*Output, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	agent, ok := d.agents[k]
	if !ok || agent == nil {
		return nil, fmt.Errorf("%w: agent %s not configured", pkgerrors.ErrInvalidArgument, k)
	}
	return agent.Process(ctx, in)
}
