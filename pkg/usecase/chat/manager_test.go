package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/jeni-ai/jeni/pkg/model"
	"github.com/jeni-ai/jeni/pkg/usecase/chat"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

type failingGemini struct{}

func (failingGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return nil, goerr.New("backend unavailable")
}

func (failingGemini) CreateChat(ctx context.Context, config *genai.GenerateContentConfig, history []*genai.Content) (*genai.Chat, error) {
	return nil, goerr.New("backend unavailable")
}

func TestManagerAcquireFailure(t *testing.T) {
	m := chat.NewManager(failingGemini{}, time.Minute)

	identity := model.SessionIdentity{SessionID: "s1", ActorID: "u1"}
	_, err := m.Acquire(context.Background(), identity)
	gt.Error(t, err)

	// A failed acquire must not leave a half-built session behind
	gt.Equal(t, m.ActiveCount(), 0)
}
