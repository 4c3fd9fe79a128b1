package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"physiotrack/backend/internal/model"
)

const (
	defaultProgramName = "Recommended Program"
	maxExercises       = 10
)

type LLMConfig struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// LLMGenerator asks a hosted chat-completions model for a program and reads
// the answer line by line.
type LLMGenerator struct {
	cfg    LLMConfig
	client *http.Client
}

func NewLLMGenerator(cfg LLMConfig) *LLMGenerator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &LLMGenerator{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *LLMGenerator) Suggest(ctx context.Context, profile model.Profile) (Suggestion, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a physiotherapy assistant that designs short home exercise programs."},
			{Role: "user", Content: buildPrompt(profile)},
		},
	})
	if err != nil {
		return Suggestion{}, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return Suggestion{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Suggestion{}, fmt.Errorf("call recommender: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Suggestion{}, fmt.Errorf("read recommender response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Suggestion{}, fmt.Errorf("recommender returned status %d", resp.StatusCode)
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Suggestion{}, fmt.Errorf("decode recommender response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return Suggestion{}, ErrNoSuggestion
	}

	suggestion := ParseSuggestion(decoded.Choices[0].Message.Content)
	if len(suggestion.Exercises) == 0 {
		return Suggestion{}, ErrNoSuggestion
	}
	suggestion.Source = "llm"
	return suggestion, nil
}

func buildPrompt(profile model.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest a physiotherapy exercise program for the %s area for a %s patient.\n", profile.Area, profile.Level)
	if profile.Goal != "" {
		fmt.Fprintf(&b, "Their goal: %s\n", profile.Goal)
	}
	b.WriteString("Answer in this format:\n")
	b.WriteString("Name: <program name>\n")
	b.WriteString("- <exercise name>\n")
	b.WriteString("List between 3 and 6 exercises, one per line, with no other text.")
	return b.String()
}

// ParseSuggestion extracts a program name and exercise names from free text.
// Title lines start with "Name:", "Program:" or "Title:"; exercise lines start
// with "-", "*", "•" or a number followed by "." or ")". Everything else is ignored.
func ParseSuggestion(text string) Suggestion {
	suggestion := Suggestion{Name: defaultProgramName}
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		if line == "" {
			continue
		}

		if title, ok := titleLine(line); ok {
			if title != "" {
				suggestion.Name = title
			}
			continue
		}

		item, ok := listItem(line)
		if !ok {
			continue
		}
		name := exerciseName(item)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		suggestion.Exercises = append(suggestion.Exercises, name)
		if len(suggestion.Exercises) == maxExercises {
			break
		}
	}
	return suggestion
}

func titleLine(line string) (string, bool) {
	lower := strings.ToLower(line)
	for _, prefix := range []string{"name:", "program:", "title:"} {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", false
}

func listItem(line string) (string, bool) {
	for _, bullet := range []string{"-", "*", "•"} {
		if strings.HasPrefix(line, bullet) {
			return strings.TrimSpace(strings.TrimPrefix(line, bullet)), true
		}
	}

	digits := 0
	for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	if digits == 0 || digits >= len(line) {
		return "", false
	}
	if line[digits] != '.' && line[digits] != ')' {
		return "", false
	}
	return strings.TrimSpace(line[digits+1:]), true
}

// exerciseName drops trailing details such as "- 3 sets of 10" or ": hold 5s".
func exerciseName(item string) string {
	for _, sep := range []string{" - ", " – ", " — ", ":", " ("} {
		if idx := strings.Index(item, sep); idx > 0 {
			item = item[:idx]
		}
	}
	return strings.TrimSpace(item)
}
