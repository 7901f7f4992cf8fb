package prompts

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/geoassist/server/internal/assistant/model"
)

//go:embed template/system_prompt.txt
var systemPrompt string

//go:embed template/user_prompt.txt
var userPrompt string

// System returns the fixed translator instruction sent on every call.
func System() string {
	return strings.TrimSpace(systemPrompt)
}

// RenderUser builds the single user turn: dataset hints plus the literal
// question. Only known tokens are substituted so braces inside the question
// text cannot interfere with the template.
func RenderUser(question string, dataset *model.Dataset) (string, error) {
	if dataset == nil {
		return "", fmt.Errorf("dataset is nil")
	}
	content := strings.NewReplacer(
		"{dataset_name}", dataset.Name,
		"{key_fields}", dataset.KeyFields,
		"{all_fields}", dataset.AllFields(),
		"{question}", question,
	).Replace(userPrompt)
	return strings.TrimSpace(content), nil
}
