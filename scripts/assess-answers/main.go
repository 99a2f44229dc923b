// assess-answers grades the answers a running docquery-engine gives for a
// set of benchmark questions. Each question is posted to /api/query and the
// returned answer is scored 0-100 by an LLM judge against the expected
// answer, so regressions in planning or summarization show up as score drops.
//
// The questions file is JSONL, one object per line:
//
//	{"question": "total revenue by region", "expected": "Top results:...", "file_key": "abc123"}
//
// "expected" and "file_key" are optional; without an expected answer the
// judge scores plausibility against the question alone.
//
// Usage: go run ./scripts/assess-answers [-server http://localhost:8080] <questions.jsonl>
//
// Requires: ANTHROPIC_API_KEY environment variable
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/docquery-inc/docquery-engine/pkg/llm"
)

const judgeModel = "claude-sonnet-4-5-20250929"

// BenchmarkQuestion is one line of the questions file.
type BenchmarkQuestion struct {
	Question string `json:"question"`
	Expected string `json:"expected,omitempty"`
	FileKey  string `json:"file_key,omitempty"`
}

// AnswerAssessment is the judge's verdict for one question.
type AnswerAssessment struct {
	Question   string `json:"question"`
	AnswerType string `json:"answer_type"`
	Answer     string `json:"answer"`
	Score      int    `json:"score"`
	Reasoning  string `json:"reasoning"`
}

// AssessmentResult is the full run output, printed as JSON on stdout.
type AssessmentResult struct {
	Server      string             `json:"server"`
	ModelUsed   string             `json:"model_used"`
	Assessments []AnswerAssessment `json:"assessments"`
	FinalScore  int                `json:"final_score"`
}

func main() {
	server := "http://localhost:8080"
	args := os.Args[1:]
	if len(args) >= 2 && args[0] == "-server" {
		server = args[1]
		args = args[2:]
	}
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-server <url>] <questions.jsonl>\n", os.Args[0])
		os.Exit(1)
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "ANTHROPIC_API_KEY environment variable is required\n")
		os.Exit(1)
	}

	questions, err := loadQuestions(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load questions: %v\n", err)
		os.Exit(1)
	}
	if len(questions) == 0 {
		fmt.Fprintf(os.Stderr, "No questions found in %s\n", args[0])
		os.Exit(1)
	}

	ctx := context.Background()
	client := anthropic.NewClient(apiKey)

	var assessments []AnswerAssessment
	total := 0
	for i, q := range questions {
		fmt.Fprintf(os.Stderr, "Assessing question %d/%d...\n", i+1, len(questions))

		answerType, answer, err := askEngine(ctx, server, q)
		if err != nil {
			assessments = append(assessments, AnswerAssessment{
				Question:  q.Question,
				Score:     0,
				Reasoning: fmt.Sprintf("Query failed: %v", err),
			})
			continue
		}

		a := judgeAnswer(ctx, client, q, answerType, answer)
		assessments = append(assessments, a)
		total += a.Score
	}

	result := AssessmentResult{
		Server:      server,
		ModelUsed:   judgeModel,
		Assessments: assessments,
		FinalScore:  total / len(questions),
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}

func loadQuestions(path string) ([]BenchmarkQuestion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var questions []BenchmarkQuestion
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var q BenchmarkQuestion
		if err := json.Unmarshal(line, &q); err != nil {
			return nil, fmt.Errorf("bad line %q: %w", line, err)
		}
		questions = append(questions, q)
	}
	return questions, scanner.Err()
}

func askEngine(ctx context.Context, server string, q BenchmarkQuestion) (string, string, error) {
	body, _ := json.Marshal(map[string]string{"question": q.Question, "file_key": q.FileKey})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, server+"/api/query", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("server returned %s", resp.Status)
	}

	var answer struct {
		Type   string `json:"type"`
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return "", "", err
	}
	return answer.Type, answer.Answer, nil
}

func judgeAnswer(ctx context.Context, client *anthropic.Client, q BenchmarkQuestion, answerType, answer string) AnswerAssessment {
	prompt := fmt.Sprintf(`You are grading an analytics engine's answer to a question about tabular data.

Question: %s

Engine answer (type %s):
%s
`, q.Question, answerType, answer)
	if q.Expected != "" {
		prompt += fmt.Sprintf("\nExpected answer:\n%s\n", q.Expected)
		prompt += `
Score 100 when the engine answer conveys the same facts and numbers as the
expected answer (formatting differences are fine). Deduct for wrong or
missing numbers, wrong grouping, or answering a different question.`
	} else {
		prompt += `
No reference answer is available. Score how plausible and well-formed the
answer is for the question: a direct, specific answer scores high; vague,
empty, or off-topic answers score low.`
	}
	prompt += `

Return ONLY a JSON object: {"score": <0-100>, "reasoning": "<one sentence>"}`

	resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     judgeModel,
		MaxTokens: 500,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return AnswerAssessment{
			Question:   q.Question,
			AnswerType: answerType,
			Answer:     answer,
			Reasoning:  fmt.Sprintf("Assessment failed: %v", err),
		}
	}

	responseText := ""
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			responseText = *block.Text
			break
		}
	}

	var verdict struct {
		Score     int    `json:"score"`
		Reasoning string `json:"reasoning"`
	}
	extracted, err := llm.ExtractJSON(responseText)
	if err == nil {
		_ = json.Unmarshal([]byte(extracted), &verdict)
	}

	return AnswerAssessment{
		Question:   q.Question,
		AnswerType: answerType,
		Answer:     answer,
		Score:      verdict.Score,
		Reasoning:  verdict.Reasoning,
	}
}
