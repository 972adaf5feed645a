package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/vnkhanh/pathfinder-backend/config"
)

var gemini struct {
	apiKey string
	model  string
}

// GenerateText gọi Gemini; thay thế được trong test.
var GenerateText = geminiGenerateText

func InitGemini(cfg *config.Config) {
	gemini.apiKey = cfg.GeminiAPIKey
	gemini.model = cfg.GeminiModel
}

func geminiGenerateText(ctx context.Context, prompt string) (string, error) {
	if gemini.apiKey == "" {
		return "", errors.New("GEMINI_API_KEY chưa cấu hình")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(gemini.apiKey))
	if err != nil {
		return "", errors.Wrap(err, "không thể tạo Gemini client")
	}
	defer client.Close()

	model := client.GenerativeModel(gemini.model)
	model.ResponseMIMEType = "application/json"
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", errors.Wrap(err, "lỗi Gemini xử lý")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini không trả kết quả hợp lệ")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		} else {
			sb.WriteString(fmt.Sprintf("%v", part))
		}
	}
	return sb.String(), nil
}
