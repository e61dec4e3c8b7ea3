package extract_test

import (
	"context"
	"testing"

	"github.com/jeni-ai/jeni/pkg/usecase/extract"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

// mockGemini returns canned responses in order and counts calls
type mockGemini struct {
	responses []string
	err       error
	calls     int
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: text}},
				},
			},
		},
	}
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	idx := m.calls
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if idx >= len(m.responses) {
		return textResponse("{}"), nil
	}
	return textResponse(m.responses[idx]), nil
}

func (m *mockGemini) CreateChat(ctx context.Context, config *genai.GenerateContentConfig, history []*genai.Content) (*genai.Chat, error) {
	return nil, goerr.New("not supported in mock")
}

func TestExtract(t *testing.T) {
	gemini := &mockGemini{responses: []string{
		`{"firstname": "Ana", "lastname": null, "identifier": null}`,
	}}

	x := extract.New(gemini)
	result := x.Extract(context.Background(), "Hi, I'm Ana")

	gt.Equal(t, result.Error, "")
	gt.Equal(t, result.UserInfo.FirstName, "Ana")
	gt.Equal(t, result.UserInfo.LastName, "")
	gt.Equal(t, gemini.calls, 1)
}

func TestExtractEmptyInputSkipsInference(t *testing.T) {
	gemini := &mockGemini{responses: []string{`{"firstname": "Ana"}`}}
	x := extract.New(gemini)

	_ = x.Extract(context.Background(), "My name is Ana")
	gt.Equal(t, x.Facts().FirstName, "Ana")

	for _, input := range []string{"", "   ", "\n\t"} {
		result := x.Extract(context.Background(), input)
		gt.Equal(t, result.Error, "")
		gt.Equal(t, result.UserInfo.FirstName, "Ana")
	}

	// Only the first call reached the model
	gt.Equal(t, gemini.calls, 1)
}

func TestExtractAccumulates(t *testing.T) {
	gemini := &mockGemini{responses: []string{
		`{"firstname": "Ana", "lastname": null, "identifier": null}`,
		`{"firstname": null, "lastname": "Souza", "identifier": null}`,
	}}

	x := extract.New(gemini)
	x.Extract(context.Background(), "I'm Ana")
	result := x.Extract(context.Background(), "Souza is my family name")

	// The null firstname in the second response must not erase the first
	gt.Equal(t, result.UserInfo.FirstName, "Ana")
	gt.Equal(t, result.UserInfo.LastName, "Souza")
}

func TestExtractIgnoresUnknownFields(t *testing.T) {
	gemini := &mockGemini{responses: []string{
		`{"firstname": "Ana", "favorite_color": "green"}`,
	}}

	x := extract.New(gemini)
	result := x.Extract(context.Background(), "I'm Ana and I like green")

	gt.Equal(t, result.Error, "")
	gt.Equal(t, result.UserInfo.FirstName, "Ana")
}

func TestExtractRejectsTypeMismatch(t *testing.T) {
	gemini := &mockGemini{responses: []string{
		`{"firstname": "Ana"}`,
		`{"firstname": 42}`,
	}}

	x := extract.New(gemini)
	x.Extract(context.Background(), "I'm Ana")
	result := x.Extract(context.Background(), "gibberish")

	gt.NotEqual(t, result.Error, "")
	gt.Equal(t, result.UserInfo.FirstName, "Ana")
}

func TestExtractMalformedOutput(t *testing.T) {
	testCases := map[string]string{
		"not json":   "Sure! The user's name is Ana.",
		"json array": `["Ana"]`,
		"empty":      "",
	}

	for name, response := range testCases {
		t.Run(name, func(t *testing.T) {
			gemini := &mockGemini{responses: []string{response}}
			x := extract.New(gemini)

			result := x.Extract(context.Background(), "I'm Ana")
			gt.NotEqual(t, result.Error, "")
			gt.True(t, result.UserInfo.Empty())
		})
	}
}

func TestExtractInferenceFailure(t *testing.T) {
	gemini := &mockGemini{err: goerr.New("model unavailable")}
	x := extract.New(gemini)

	result := x.Extract(context.Background(), "I'm Ana")

	gt.NotEqual(t, result.Error, "")
	gt.True(t, result.UserInfo.Empty())
	gt.True(t, x.Facts().Empty())
}
