package agents

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/yungbote/vitality-backend/internal/pkg/errors"
)

type stubAgent struct {
	out *Output
	err error
}

func (s *stubAgent) Process(ctx context.Context, in Input) (*Output, error) {
	return s.out, s.err
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"chat", KindChat, false},
		{"research", KindResearch, false},
		{"", 0, true},
		{"Chat", 0, true},
		{"video", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.wantErr {
			if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
				t.Fatalf("ParseKind(%q) err = %v, want invalid argument", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseKind(%q) = %v, %v", tc.in, got, err)
		}
	}
}

func TestDispatcherRoutesByKind(t *testing.T) {
	chat := &stubAgent{out: &Output{Agent: "chat"}}
	research := &stubAgent{out: &Output{Agent: "research"}}
	d := NewDispatcher(chat, research)

	out, err := d.Dispatch(context.Background(), "chat", Input{})
	if err != nil || out.Agent != "chat" {
		t.Fatalf("chat dispatch: %v %v", out, err)
	}
	out, err = d.Dispatch(context.Background(), "research", Input{})
	if err != nil || out.Agent != "research" {
		t.Fatalf("research dispatch: %v %v", out, err)
	}
}

func TestDispatcherRejectsUnknownKind(t *testing.T) {
	d := NewDispatcher(&stubAgent{}, &stubAgent{})
	if _, err := d.Dispatch(context.Background(), "oracle", Input{}); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}
