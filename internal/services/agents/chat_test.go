package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/vitality-backend/internal/domain"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/vitality-backend/internal/pkg/errors"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
	"github.com/yungbote/vitality-backend/internal/services"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// fakeModel answers GenerateJSON per schema name so one fake can serve
// intent classification and reranking in the same test.
type fakeModel struct {
	jsonBySchema map[string]map[string]any
	jsonErrs     map[string]error
	text         string
	textErr      error
}

func (f *fakeModel) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{0.1}
	}
	return out, nil
}

func (f *fakeModel) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	if err, ok := f.jsonErrs[schemaName]; ok {
		return nil, err
	}
	if out, ok := f.jsonBySchema[schemaName]; ok {
		return out, nil
	}
	return nil, errors.New("unexpected schema " + schemaName)
}

func (f *fakeModel) GenerateText(ctx context.Context, system, user string) (string, error) {
	return f.text, f.textErr
}

type fakeSearch struct {
	videoMatches  []services.VectorMatch
	reportMatches []services.VectorMatch
	err           error
}

func (f *fakeSearch) SearchSimilar(ctx context.Context, query string, limit int) ([]services.VectorMatch, error) {
	return f.videoMatches, f.err
}

func (f *fakeSearch) SearchReports(ctx context.Context, query string, limit int) ([]services.VectorMatch, error) {
	return f.reportMatches, f.err
}

type fakeVideos struct {
	rows map[uuid.UUID]*domain.Video
}

func (f *fakeVideos) Create(dbc dbctx.Context, rows []*domain.Video) ([]*domain.Video, error) {
	return rows, nil
}

func (f *fakeVideos) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Video, error) {
	if v, ok := f.rows[id]; ok {
		return v, nil
	}
	return nil, pkgerrors.ErrNotFound
}

func (f *fakeVideos) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Video, error) {
	out := []*domain.Video{}
	for _, id := range ids {
		if v, ok := f.rows[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVideos) GetByURL(dbc dbctx.Context, videoURL string) (*domain.Video, error) {
	return nil, pkgerrors.ErrNotFound
}

func (f *fakeVideos) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*domain.Video, error) {
	return nil, nil
}

func (f *fakeVideos) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

type fakeReports struct {
	rows map[uuid.UUID]*domain.Report
}

func (f *fakeReports) Create(dbc dbctx.Context, rows []*domain.Report) ([]*domain.Report, error) {
	if f.rows == nil {
		f.rows = map[uuid.UUID]*domain.Report{}
	}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return rows, nil
}

func (f *fakeReports) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Report, error) {
	if r, ok := f.rows[id]; ok {
		return r, nil
	}
	return nil, pkgerrors.ErrNotFound
}

func (f *fakeReports) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Report, error) {
	out := []*domain.Report{}
	for _, id := range ids {
		if r, ok := f.rows[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReports) GetByProductID(dbc dbctx.Context, productID string) (*domain.Report, error) {
	return nil, pkgerrors.ErrNotFound
}

func (f *fakeReports) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r, ok := f.rows[id]
	if !ok {
		return pkgerrors.ErrNotFound
	}
	if v, ok := updates["vector_id"].(string); ok {
		r.VectorID = v
	}
	return nil
}

type fakeMessages struct {
	created []*domain.Message
}

func (f *fakeMessages) Create(dbc dbctx.Context, rows []*domain.Message) ([]*domain.Message, error) {
	f.created = append(f.created, rows...)
	return rows, nil
}

func (f *fakeMessages) ListBySession(dbc dbctx.Context, sessionID string, limit int) ([]*domain.Message, error) {
	return f.created, nil
}

func (f *fakeMessages) NextSequence(dbc dbctx.Context, sessionID string) (int, error) {
	return len(f.created) + 1, nil
}

func intentResponse(intent string) map[string]map[string]any {
	return map[string]map[string]any{
		"intent_classification": {"intent": intent},
	}
}

func TestChatVideoSearchPipeline(t *testing.T) {
	v1, v2 := uuid.New(), uuid.New()
	model := &fakeModel{
		jsonBySchema: intentResponse(IntentVideoSearch),
		jsonErrs:     nil,
	}
	// Rerank picks v2 first.
	model.jsonBySchema["candidate_rerank"] = map[string]any{
		"chosen_ids": []any{v2.String(), v1.String()},
	}

	search := &fakeSearch{videoMatches: []services.VectorMatch{
		{ID: v1.String(), Score: 0.9},
		{ID: v2.String(), Score: 0.8},
		{ID: v1.String(), Score: 0.4},
	}}
	videos := &fakeVideos{rows: map[uuid.UUID]*domain.Video{
		v1: {ID: v1, Caption: "morning yoga"},
		v2: {ID: v2, Caption: "hill sprints"},
	}}
	msgs := &fakeMessages{}

	agent := NewChatAgent(testLogger(t), model, search, videos, &fakeReports{}, msgs)
	out, err := agent.Process(context.Background(), Input{
		UserID:    uuid.New(),
		SessionID: "sess-1",
		Message:   "show me workout videos",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Intent != IntentVideoSearch {
		t.Fatalf("intent = %q", out.Intent)
	}
	if len(out.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2 after dedupe and rerank", len(out.Candidates))
	}
	if out.Candidates[0].ID != v2.String() {
		t.Fatalf("candidates[0] = %s, want rerank winner %s", out.Candidates[0].ID, v2)
	}
	if len(msgs.created) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs.created))
	}
	m := msgs.created[0]
	if m.Role != "assistant" || m.SenderID != "AI" || m.Sequence != 1 {
		t.Fatalf("message = %+v", m)
	}
}

func TestChatRerankFailureFallsBackToScoreOrder(t *testing.T) {
	v1, v2, v3, v4 := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	model := &fakeModel{
		jsonBySchema: intentResponse(IntentVideoSearch),
		jsonErrs:     map[string]error{"candidate_rerank": errors.New("overloaded")},
	}
	search := &fakeSearch{videoMatches: []services.VectorMatch{
		{ID: v1.String(), Score: 0.5},
		{ID: v2.String(), Score: 0.9},
		{ID: v3.String(), Score: 0.7},
		{ID: v4.String(), Score: 0.6},
	}}
	videos := &fakeVideos{rows: map[uuid.UUID]*domain.Video{
		v1: {ID: v1, Caption: "a"}, v2: {ID: v2, Caption: "b"},
		v3: {ID: v3, Caption: "c"}, v4: {ID: v4, Caption: "d"},
	}}

	agent := NewChatAgent(testLogger(t), model, search, videos, &fakeReports{}, &fakeMessages{})
	out, err := agent.Process(context.Background(), Input{Message: "videos please"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(out.Candidates) != 3 {
		t.Fatalf("candidates = %d, want top 3", len(out.Candidates))
	}
	if out.Candidates[0].ID != v2.String() || out.Candidates[1].ID != v3.String() || out.Candidates[2].ID != v4.String() {
		t.Fatalf("order = %v", out.Candidates)
	}
}

func TestChatReportSearchHydratesReports(t *testing.T) {
	r1 := uuid.New()
	model := &fakeModel{jsonBySchema: intentResponse(IntentReportSearch)}
	search := &fakeSearch{reportMatches: []services.VectorMatch{{ID: r1.String(), Score: 0.8}}}
	reports := &fakeReports{rows: map[uuid.UUID]*domain.Report{
		r1: {ID: r1, ProductTitle: "Creatine Monohydrate"},
	}}

	agent := NewChatAgent(testLogger(t), model, search, &fakeVideos{}, reports, &fakeMessages{})
	out, err := agent.Process(context.Background(), Input{Message: "what did we find about creatine"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(out.Candidates) != 1 || out.Candidates[0].Title != "Creatine Monohydrate" {
		t.Fatalf("candidates = %v", out.Candidates)
	}
	if out.Candidates[0].Kind != "report" {
		t.Fatalf("kind = %q", out.Candidates[0].Kind)
	}
}

func TestChatGeneralChatRepliesWithText(t *testing.T) {
	model := &fakeModel{
		jsonBySchema: intentResponse(IntentGeneralChat),
		text:         "Aim for 7-9 hours of sleep.",
	}
	agent := NewChatAgent(testLogger(t), model, &fakeSearch{}, &fakeVideos{}, &fakeReports{}, &fakeMessages{})
	out, err := agent.Process(context.Background(), Input{Message: "how much should I sleep"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Reply != "Aim for 7-9 hours of sleep." {
		t.Fatalf("reply = %q", out.Reply)
	}
	if len(out.Candidates) != 0 {
		t.Fatalf("candidates = %v, want none", out.Candidates)
	}
}

func TestChatIntentFailureDegradesToGeneralChat(t *testing.T) {
	model := &fakeModel{
		jsonErrs: map[string]error{"intent_classification": errors.New("timeout")},
		text:     "hello",
	}
	agent := NewChatAgent(testLogger(t), model, &fakeSearch{}, &fakeVideos{}, &fakeReports{}, &fakeMessages{})
	out, err := agent.Process(context.Background(), Input{Message: "hi"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Intent != IntentGeneralChat {
		t.Fatalf("intent = %q", out.Intent)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	agent := NewChatAgent(testLogger(t), &fakeModel{}, &fakeSearch{}, &fakeVideos{}, &fakeReports{}, &fakeMessages{})
	if _, err := agent.Process(context.Background(), Input{Message: "  "}); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}
