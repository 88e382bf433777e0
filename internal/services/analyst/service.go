// Package analyst answers free-text questions about the loaded dataset by
// serializing the whole table into a fixed prompt and sending it to a chat
// provider. Every call is single-turn: the displayed transcript is never
// fed back into the model.
package analyst

import (
	"context"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"candleboard/internal/adapters/ai"
	"candleboard/internal/domain/series"
	"candleboard/internal/metrics"
	"candleboard/pkg/logger"
)

// RateLimitAdvisory is returned verbatim whenever the provider reports a
// rate-limit condition.
const RateLimitAdvisory = "Rate limit exceeded. Please wait a minute before trying again."

const promptTemplate = `I have loaded the %SYMBOL% stock data. The data includes timestamp, trading direction (SHORT/LONG), support and resistance levels, OHLC prices, and volume.
Here is the data in CSV format:
%DATA%

Please analyze this data and answer the following question:
%QUESTION%

Please provide a detailed analysis with specific data points from the CSV. Include relevant statistics, trends, and insights.`

// Service is the query responder. It is constructed once and passed
// explicitly; it holds no hidden global state.
type Service struct {
	provider ai.ChatProvider
	model    string
	symbol   string
	data     string // table serialized once; the table is immutable
	limiter  *rate.Limiter
	log      *logger.Logger
}

// NewService creates an analyst over an immutable table. minDelay is the
// client-side spacing enforced before each provider call.
func NewService(provider ai.ChatProvider, table series.Table, model, symbol string, minDelay time.Duration) *Service {
	if minDelay <= 0 {
		minDelay = time.Second
	}
	return &Service{
		provider: provider,
		model:    model,
		symbol:   symbol,
		data:     SerializeTable(table),
		limiter:  rate.NewLimiter(rate.Every(minDelay), 1),
		log:      logger.Get().With("component", "analyst", "provider", provider.Name()),
	}
}

// Answer returns the model's reply to the question. It never fails:
// transport and quota errors are folded into a human-readable string.
func (s *Service) Answer(ctx context.Context, question string) string {
	if err := s.limiter.Wait(ctx); err != nil {
		return "Error: " + err.Error()
	}

	prompt := s.buildPrompt(question)

	start := time.Now()
	resp, err := s.provider.Chat(ctx, ai.ChatRequest{
		Model: s.model,
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: prompt},
		},
	})
	metrics.AnalystLatency.WithLabelValues(s.provider.Name().String()).Observe(time.Since(start).Seconds())

	if err != nil {
		if strings.Contains(err.Error(), "429") {
			metrics.AnalystCalls.WithLabelValues(s.provider.Name().String(), "rate_limited").Inc()
			s.log.Warnw("Analyst call rate limited", "error", err)
			return RateLimitAdvisory
		}
		metrics.AnalystCalls.WithLabelValues(s.provider.Name().String(), "error").Inc()
		s.log.Errorw("Analyst call failed", "error", err)
		return "Error: " + err.Error()
	}

	metrics.AnalystCalls.WithLabelValues(s.provider.Name().String(), "success").Inc()
	s.log.Debugw("Analyst call succeeded",
		"tokens", resp.Usage.TotalTokens,
		"latency", time.Since(start),
	)
	return resp.Content
}

// PresetQuestions are the example questions offered by the dashboard.
func PresetQuestions() []string {
	return []string{
		"What was the highest price in the dataset?",
		"Show me the trading patterns for the last month",
		"What were the most common support levels?",
		"Analyze the volume trends",
		"What was the average trading volume?",
		"Show me the price trend over the last 30 days",
	}
}

func (s *Service) buildPrompt(question string) string {
	prompt := strings.ReplaceAll(promptTemplate, "%SYMBOL%", s.symbol)
	prompt = strings.ReplaceAll(prompt, "%DATA%", s.data)
	prompt = strings.ReplaceAll(prompt, "%QUESTION%", question)
	return prompt
}

// SerializeTable renders the table back to CSV text for the prompt, in
// the same column order the loader consumes.
func SerializeTable(t series.Table) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write([]string{"timestamp", "open", "high", "low", "close", "volume", "direction", "Support", "Resistance"})
	for _, row := range t {
		_ = w.Write([]string{
			row.Timestamp.Format("2006-01-02 15:04:05-07:00"),
			formatPrice(row.Open),
			formatPrice(row.High),
			formatPrice(row.Low),
			formatPrice(row.Close),
			strconv.FormatInt(row.Volume, 10),
			string(row.Direction),
			formatLevels(row.Support),
			formatLevels(row.Resistance),
		})
	}
	w.Flush()

	return strings.TrimRight(sb.String(), "\n")
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatLevels(levels []float64) string {
	if len(levels) == 0 {
		return "[]"
	}
	parts := make([]string, len(levels))
	for i, v := range levels {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
