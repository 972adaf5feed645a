package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

const (
	MaxGeneratedQuestions = 20
	maxSourceChars        = 20000
)

type GeneratedQuestion struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Options  []string `json:"options"`
}

func buildQuestionPrompt(content string, count int, difficulty models.Difficulty) string {
	if len(content) > maxSourceChars {
		// cắt đúng biên rune để prompt vẫn là UTF-8 hợp lệ
		n := maxSourceChars
		for n > 0 && !utf8.RuneStart(content[n]) {
			n--
		}
		content = content[:n]
	}
	return fmt.Sprintf(`You write multiple-choice quiz questions.
Using only the material below, write %d %s questions.
Respond with a JSON array only. Each element: {"question": string, "options": [4 strings], "answer": string}.
The answer must be exactly one of the options.

Material:
%s`, count, difficulty, content)
}

// stripCodeFence bỏ ```json ... ``` mà model đôi khi trả về.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// ParseGeneratedQuestions bỏ qua các câu không hợp lệ (thiếu option, đáp án
// không nằm trong option).
func ParseGeneratedQuestions(raw string) ([]GeneratedQuestion, error) {
	var items []GeneratedQuestion
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &items); err != nil {
		return nil, errors.Wrap(err, "parsing generated questions")
	}

	valid := make([]GeneratedQuestion, 0, len(items))
	for _, it := range items {
		it.Question = strings.TrimSpace(it.Question)
		it.Answer = strings.TrimSpace(it.Answer)
		if it.Question == "" || it.Answer == "" || len(it.Options) == 0 {
			continue
		}
		found := false
		for i := range it.Options {
			it.Options[i] = strings.TrimSpace(it.Options[i])
			if it.Options[i] == it.Answer {
				found = true
			}
		}
		if found {
			valid = append(valid, it)
		}
	}
	return valid, nil
}

// GenerateQuestions sinh câu hỏi từ nội dung một resource bằng Gemini.
func GenerateQuestions(ctx context.Context, content string, count int, difficulty models.Difficulty) ([]GeneratedQuestion, error) {
	if strings.TrimSpace(content) == "" {
		return nil, utils.NewValidationError("Resource has no content to generate questions from")
	}
	if count < 1 || count > MaxGeneratedQuestions {
		return nil, utils.NewValidationError(fmt.Sprintf("count must be between 1 and %d", MaxGeneratedQuestions))
	}
	if !difficulty.Valid() {
		return nil, utils.NewValidationError("Invalid difficulty")
	}

	raw, err := GenerateText(ctx, buildQuestionPrompt(content, count, difficulty))
	if err != nil {
		return nil, err
	}
	questions, err := ParseGeneratedQuestions(raw)
	if err != nil {
		return nil, err
	}
	if len(questions) > count {
		questions = questions[:count]
	}
	return questions, nil
}
