package analyst

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candleboard/internal/adapters/ai"
	"candleboard/internal/domain/series"
	"candleboard/pkg/errors"
)

// fakeProvider returns a canned response or error and records the last request.
type fakeProvider struct {
	resp    *ai.ChatResponse
	err     error
	lastReq ai.ChatRequest
}

func (f *fakeProvider) Name() ai.ProviderName { return ai.ProviderNameGoogle }

func (f *fakeProvider) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func testTable() series.Table {
	return series.Table{
		{
			Timestamp: time.Date(2023, 5, 1, 9, 30, 0, 0, time.UTC),
			Open:      100.5, High: 106, Low: 99.25, Close: 104,
			Volume:    1200,
			Direction: series.DirectionLong,
			Support:   []float64{98.5, 99},
		},
		{
			Timestamp:  time.Date(2023, 5, 2, 9, 30, 0, 0, time.UTC),
			Open:       104, High: 108, Low: 103, Close: 105,
			Volume:     900,
			Direction:  series.DirectionShort,
			Resistance: []float64{108, 110},
		},
	}
}

func newTestService(p ai.ChatProvider) *Service {
	return NewService(p, testTable(), ai.ModelGemini15Flash, "TSLA", time.Millisecond)
}

func TestAnswer_Success(t *testing.T) {
	provider := &fakeProvider{
		resp: &ai.ChatResponse{Content: "The highest price was 108."},
	}
	svc := newTestService(provider)

	answer := svc.Answer(context.Background(), "What was the highest price?")

	assert.Equal(t, "The highest price was 108.", answer)
}

func TestAnswer_PromptContainsDataAndQuestion(t *testing.T) {
	provider := &fakeProvider{resp: &ai.ChatResponse{Content: "ok"}}
	svc := newTestService(provider)

	svc.Answer(context.Background(), "Analyze the volume trends")

	require.Len(t, provider.lastReq.Messages, 1)
	prompt := provider.lastReq.Messages[0].Content
	assert.Contains(t, prompt, "TSLA stock data")
	assert.Contains(t, prompt, "timestamp,open,high,low,close,volume,direction,Support,Resistance")
	assert.Contains(t, prompt, "Analyze the volume trends")
	assert.Equal(t, ai.RoleUser, provider.lastReq.Messages[0].Role)
	assert.Equal(t, ai.ModelGemini15Flash, provider.lastReq.Model)
}

func TestAnswer_RateLimitAdvisory(t *testing.T) {
	provider := &fakeProvider{
		err: errors.Wrapf(errors.ErrExternal, "gemini API error (429): RESOURCE_EXHAUSTED - quota exceeded"),
	}
	svc := newTestService(provider)

	answer := svc.Answer(context.Background(), "anything")

	assert.Equal(t, RateLimitAdvisory, answer)
}

func TestAnswer_OtherErrorsBecomeStrings(t *testing.T) {
	provider := &fakeProvider{
		err: errors.Wrap(errors.ErrExternal, "gemini API error (500): internal"),
	}
	svc := newTestService(provider)

	answer := svc.Answer(context.Background(), "anything")

	assert.True(t, strings.HasPrefix(answer, "Error: "), "got %q", answer)
	assert.Contains(t, answer, "500")
}

func TestPresetQuestions(t *testing.T) {
	questions := PresetQuestions()

	require.Len(t, questions, 6)
	assert.Contains(t, questions, "What was the highest price in the dataset?")
	assert.Contains(t, questions, "What was the average trading volume?")
}

func TestSerializeTable(t *testing.T) {
	got := SerializeTable(testTable())

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,open,high,low,close,volume,direction,Support,Resistance", lines[0])
	assert.Equal(t, `2023-05-01 09:30:00+00:00,100.5,106,99.25,104,1200,LONG,"[98.5, 99]",[]`, lines[1])
	assert.Equal(t, `2023-05-02 09:30:00+00:00,104,108,103,105,900,SHORT,[],"[108, 110]"`, lines[2])
}

func TestSerializeTable_Empty(t *testing.T) {
	got := SerializeTable(series.Table{})
	assert.Equal(t, "timestamp,open,high,low,close,volume,direction,Support,Resistance", got)
}
