package rerank

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// buildPrompt renders the selection-only instruction for the remote model:
// pick and order at most 3 of the given candidate ids, strict JSON output,
// never an id outside the list. Answer previews and example counts are
// bounded to keep the prompt small.
func buildPrompt(question string, candidates []*models.Intent, previewRunes, maxExamples int) string {
	var sb strings.Builder

	sb.WriteString("당신은 고객센터 상담 보조 시스템입니다.\n")
	sb.WriteString("아래 고객 질문에 가장 적합한 답변 후보를 후보 목록에서 골라 순위를 매기세요.\n\n")
	sb.WriteString("고객 질문: ")
	sb.WriteString(utils.NormalizeSpace(question))
	sb.WriteString("\n\n후보 목록:\n")

	for _, intent := range candidates {
		fmt.Fprintf(&sb, "- id: %s\n", intent.ID)
		if intent.Title != "" {
			fmt.Fprintf(&sb, "  제목: %s\n", intent.Title)
		}
		fmt.Fprintf(&sb, "  답변: %s\n", utils.TruncateRunes(utils.NormalizeSpace(intent.Answer), previewRunes))
		if len(intent.Examples) > 0 {
			examples := intent.Examples
			if maxExamples > 0 && len(examples) > maxExamples {
				examples = examples[:maxExamples]
			}
			fmt.Fprintf(&sb, "  예시 질문: %s\n", strings.Join(examples, " / "))
		}
	}

	sb.WriteString("\n규칙:\n")
	sb.WriteString("- 반드시 후보 목록에 있는 id만 사용하세요. 목록에 없는 id를 만들지 마세요.\n")
	sb.WriteString("- 가장 적합한 후보부터 최대 3개까지 고르세요.\n")
	sb.WriteString("- confidencePct는 0에서 100 사이의 정수, reason은 한 문장으로 짧게 쓰세요.\n")
	sb.WriteString("- 다른 설명, 마크다운, 코드 블록 없이 아래 형식의 JSON만 출력하세요.\n")
	sb.WriteString(`{"ranked":[{"intentId":"...","confidencePct":0,"reason":"..."}]}`)
	sb.WriteString("\n")

	return sb.String()
}
