// Package extract turns free-form user utterances into validated FactSet
// fields via the inference capability.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/jeni-ai/jeni/pkg/adapter"
	"github.com/jeni-ai/jeni/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

const extractPromptTmpl = `Extract user information from this text. Return only a JSON object with firstname, lastname, and identifier fields.
If information is not found, use null for that field.

Text: %s

JSON:`

const maxExtractTokens = 200

// resolveFactSchema builds the schema the inference output must satisfy.
// Unknown extra fields are ignored; a known field of the wrong type is
// rejected.
var resolveFactSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	nullableString := func() *jsonschema.Schema {
		return &jsonschema.Schema{Types: []string{"string", "null"}}
	}
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			model.FieldFirstName:  nullableString(),
			model.FieldLastName:   nullableString(),
			model.FieldIdentifier: nullableString(),
		},
	}
	return schema.Resolve(nil)
})

// Result is the outcome of one extraction call. UserInfo always carries the
// best-known facts; Error is set when this call failed and the facts are
// simply the previously accumulated ones.
type Result struct {
	UserInfo model.FactSet `json:"user_info"`
	Error    string        `json:"error,omitempty"`
}

// Extractor accumulates facts for one session across extraction calls.
// It is not safe for concurrent use; each session owns its own instance.
type Extractor struct {
	gemini adapter.Gemini
	facts  model.FactSet
}

// New creates an extractor with an empty accumulated FactSet
func New(gemini adapter.Gemini) *Extractor {
	return &Extractor{gemini: gemini}
}

// Facts returns the accumulated FactSet
func (x *Extractor) Facts() model.FactSet {
	return x.facts
}

// Extract pulls fact fields out of the given text and merges them into the
// accumulated set. Empty input short-circuits without an inference call.
// Inference, parse, and validation failures are reported in the result and
// never propagate; the accumulated facts are only mutated after the model
// output passed validation.
func (x *Extractor) Extract(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{UserInfo: x.facts}
	}

	extracted, err := x.infer(ctx, text)
	if err != nil {
		return Result{UserInfo: x.facts, Error: err.Error()}
	}

	x.facts.Merge(extracted)
	return Result{UserInfo: x.facts}
}

func (x *Extractor) infer(ctx context.Context, text string) (model.FactSet, error) {
	prompt := fmt.Sprintf(extractPromptTmpl, text)

	maxTokens := int32(maxExtractTokens)
	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := x.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return model.FactSet{}, goerr.Wrap(err, "inference call failed")
	}

	raw := responseText(resp)
	if raw == "" {
		return model.FactSet{}, goerr.New("inference response has no text")
	}

	return decodeFacts(raw)
}

// decodeFacts parses the model output as JSON and validates it against the
// FactSet schema before decoding into the typed form.
func decodeFacts(raw string) (model.FactSet, error) {
	resolved, err := resolveFactSchema()
	if err != nil {
		return model.FactSet{}, goerr.Wrap(err, "failed to resolve fact schema")
	}

	var instance map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &instance); err != nil {
		return model.FactSet{}, goerr.Wrap(err, "inference output is not a JSON object")
	}

	if err := resolved.Validate(instance); err != nil {
		return model.FactSet{}, goerr.Wrap(err, "inference output does not match fact schema")
	}

	facts := model.FactSet{
		FirstName:  stringField(instance, model.FieldFirstName),
		LastName:   stringField(instance, model.FieldLastName),
		Identifier: stringField(instance, model.FieldIdentifier),
	}
	return facts, nil
}

func stringField(instance map[string]any, key string) string {
	if s, ok := instance[key].(string); ok {
		return s
	}
	return ""
}

// responseText flattens the first candidate of a response into plain text
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
