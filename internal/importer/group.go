package importer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// answerGroup accumulates everything observed for one answer template.
type answerGroup struct {
	template  string
	count     int
	answers   map[string]int
	questions []string
	seen      map[string]bool
}

// buildIntents groups pairs by normalized answer template, elects the most
// frequent original answer as canonical, and keeps the group's questions
// as examples. Groups are ordered by frequency so common intents get the
// low ids.
func (im *Importer) buildIntents(pairs []qaPair) []*models.Intent {
	groups := make(map[string]*answerGroup)
	var order []string

	for _, p := range pairs {
		key := normalizeForGrouping(p.Answer)
		g, ok := groups[key]
		if !ok {
			g = &answerGroup{
				template: key,
				answers:  make(map[string]int),
				seen:     make(map[string]bool),
			}
			groups[key] = g
			order = append(order, key)
		}
		g.count++
		g.answers[p.Answer]++
		if !g.seen[p.Question] {
			g.seen[p.Question] = true
			g.questions = append(g.questions, p.Question)
		}
	}

	kept := make([]*answerGroup, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		if len([]rune(g.template)) >= minTemplateRunes && len(g.questions) >= 1 {
			kept = append(kept, g)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].count > kept[j].count })

	intents := make([]*models.Intent, 0, len(kept))
	for i, g := range kept {
		examples := make([]string, 0, im.opts.MaxExamples)
		for _, q := range g.questions {
			if q = utils.NormalizeSpace(q); q != "" {
				examples = append(examples, q)
			}
			if len(examples) == im.opts.MaxExamples {
				break
			}
		}

		title := guessTitle(g.template, examples)
		intents = append(intents, &models.Intent{
			ID:       fmt.Sprintf("intent_%03d", i+1),
			Title:    title,
			Tags:     titleTags(title),
			Examples: examples,
			Answer:   canonicalAnswer(g),
		})
	}
	return intents
}

// canonicalAnswer is the template form of the group's most frequent
// original answer. The template form is used so one-off values (amounts,
// dates) do not leak into the reusable reply.
func canonicalAnswer(g *answerGroup) string {
	best, bestCount := "", -1
	for answer, count := range g.answers {
		if count > bestCount || (count == bestCount && answer < best) {
			best, bestCount = answer, count
		}
	}
	return normalizeForGrouping(best)
}

// titleKeywords maps domain vocabulary to human-facing intent titles,
// checked in order.
var titleKeywords = []struct {
	keyword string
	title   string
}{
	{"보증금", "보증금/입찰한도 안내"},
	{"세금계산서", "세금계산서/현금영수증"},
	{"현장경매", "현장경매(3단계) 안내"},
	{"직접경매", "직접경매 안내"},
	{"수선", "수선 진행/비용 안내"},
	{"감정", "감정(CAS)/감정서 안내"},
	{"배송", "배송/출고 안내"},
	{"입점신청", "회원가입/입점신청 안내"},
	{"이용가이드", "이용가이드/링크 안내"},
	{"수수료", "수수료/결제 금액 안내"},
}

// guessTitle names an intent from the vocabulary of its answer template
// and examples.
func guessTitle(template string, examples []string) string {
	pool := template + " " + strings.Join(examples, " ")
	for _, entry := range titleKeywords {
		if strings.Contains(pool, entry.keyword) {
			return entry.title
		}
	}
	return "기타 문의"
}

var reTitleSplit = regexp.MustCompile(`[/() ]+`)

// titleTags derives up to 4 tags from the title's components.
func titleTags(title string) []string {
	parts := reTitleSplit.Split(title, -1)
	tags := make([]string, 0, 4)
	for _, part := range parts {
		if part == "" {
			continue
		}
		tags = append(tags, part)
		if len(tags) == 4 {
			break
		}
	}
	return tags
}
