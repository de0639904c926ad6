package importer

import (
	"regexp"

	"github.com/hyperjump/kotae/pkg/utils"
)

// Chat logs carry emails, phone numbers, account numbers and one-off
// amounts. Redaction masks them so answer templates group together and no
// personal data leaks into the catalog. The patterns are deliberately
// conservative: short amounts like 99,000원 keep their shape as <AMOUNT>원
// while long digit runs (accounts, order numbers) collapse to <NUM>.
var (
	reEmail     = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	rePhone     = regexp.MustCompile(`\b(01[016789]|02|0[3-6][1-5])[-\s]?\d{3,4}[-\s]?\d{4}\b`)
	rePassword  = regexp.MustCompile(`(?i)(비밀번호|password)\s*[:：]\s*[^\s,]+`)
	reUserID    = regexp.MustCompile(`(?i)(아이디|id)\s*[:：]\s*[^\s,]+`)
	reAmountSep = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+(원|¥)`)
	reAmount    = regexp.MustCompile(`\b\d+(원|¥)`)
	reLongNum   = regexp.MustCompile(`\b\d{6,}\b`)
	reURL       = regexp.MustCompile(`https?://\S+`)
	reMention   = regexp.MustCompile(`@[A-Za-z0-9_]{3,}`)
	reDate      = regexp.MustCompile(`\b20\d{2}[-/.]\d{1,2}[-/.]\d{1,2}\b`)
)

// redactPII masks personal data in a chat message.
func redactPII(text string) string {
	t := reEmail.ReplaceAllString(text, "<EMAIL>")
	t = rePhone.ReplaceAllString(t, "<PHONE>")
	t = rePassword.ReplaceAllString(t, "${1}: <PASSWORD>")
	t = reUserID.ReplaceAllString(t, "${1}: <ID>")
	t = reAmountSep.ReplaceAllString(t, "<AMOUNT>${1}")
	t = reAmount.ReplaceAllString(t, "<AMOUNT>${1}")
	t = reLongNum.ReplaceAllString(t, "<NUM>")
	t = reURL.ReplaceAllString(t, "<URL>")
	t = reMention.ReplaceAllString(t, "@<USER>")
	return t
}

// normalizeForGrouping turns an answer into its template form: whitespace
// collapsed, PII masked, dates and amounts generalized. Answers with the
// same template are the same intent.
func normalizeForGrouping(answer string) string {
	a := utils.NormalizeSpace(answer)
	a = redactPII(a)
	a = reDate.ReplaceAllString(a, "<DATE>")
	return a
}
