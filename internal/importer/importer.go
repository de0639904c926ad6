// Package importer builds the intent catalog from raw customer chat-log
// exports (CSV or XLSX with DATE, USER, MESSAGE columns).
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

const (
	// defaultMaxExamples caps the example questions kept per intent.
	defaultMaxExamples = 12
	// minQuestionRunes and minAnswerRunes drop degenerate turns.
	minQuestionRunes = 2
	minAnswerRunes   = 6
	// minTemplateRunes drops answer groups too short to be a real reply.
	minTemplateRunes = 10
)

// Options tunes the import.
type Options struct {
	// AgentMarker is the substring identifying company-side usernames in
	// the log. Messages from everyone else count as customer turns.
	AgentMarker string
	// MaxExamples caps example questions per intent (default 12).
	MaxExamples int
}

// Importer turns chat logs into an intent catalog.
type Importer struct {
	opts   Options
	logger *zap.Logger
}

// New creates an Importer. AgentMarker is required: without it every
// message looks like a customer turn and no pairs form.
func New(opts Options, logger *zap.Logger) (*Importer, error) {
	if opts.AgentMarker == "" {
		return nil, fmt.Errorf("agent marker is required")
	}
	if opts.MaxExamples <= 0 {
		opts.MaxExamples = defaultMaxExamples
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{opts: opts, logger: logger}, nil
}

// chatRow is one message in a chat log export.
type chatRow struct {
	Date    string
	User    string
	Message string
}

// qaPair is a customer question block and the agent's reply block.
type qaPair struct {
	Question string
	Answer   string
}

// ImportFiles reads every given CSV/XLSX file and returns the built
// catalog. Files that fail to parse abort the import; an empty input set
// is an error so an existing catalog is never clobbered by accident.
func (im *Importer) ImportFiles(paths []string) ([]*models.Intent, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files")
	}

	var pairs []qaPair
	for _, path := range paths {
		rows, err := im.readFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		filePairs := im.extractPairs(rows)
		im.logger.Info("parsed chat log",
			zap.String("file", filepath.Base(path)),
			zap.Int("rows", len(rows)),
			zap.Int("pairs", len(filePairs)),
		)
		pairs = append(pairs, filePairs...)
	}

	intents := im.buildIntents(pairs)
	im.logger.Info("import complete",
		zap.Int("files", len(paths)),
		zap.Int("pairs", len(pairs)),
		zap.Int("intents", len(intents)),
	)
	return intents, nil
}

func (im *Importer) readFile(path string) ([]chatRow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return parseCSV(f)
	case ".xlsx":
		return parseXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// parseCSV reads DATE,USER,MESSAGE rows, skipping the header. Extra
// columns are folded back into the message, since free-text messages may
// themselves contain commas the exporter did not quote.
func parseCSV(r io.Reader) ([]chatRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var rows []chatRow
	for i, record := range records {
		if i == 0 || len(record) < 3 {
			continue
		}
		rows = append(rows, chatRow{
			Date:    strings.TrimSpace(record[0]),
			User:    strings.TrimSpace(record[1]),
			Message: strings.TrimSpace(strings.Join(record[2:], ",")),
		})
	}
	return rows, nil
}

// parseXLSX reads the first sheet of an XLSX export, same column layout
// as the CSV form.
func parseXLSX(path string) ([]chatRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in workbook")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	var rows []chatRow
	for i, record := range records {
		if i == 0 || len(record) < 3 {
			continue
		}
		rows = append(rows, chatRow{
			Date:    strings.TrimSpace(record[0]),
			User:    strings.TrimSpace(record[1]),
			Message: strings.TrimSpace(strings.Join(record[2:], ",")),
		})
	}
	return rows, nil
}

func (im *Importer) isAgent(user string) bool {
	return strings.Contains(user, im.opts.AgentMarker)
}

func (im *Importer) isCustomer(user string) bool {
	return user != "" && !im.isAgent(user)
}

// looksLikeAttachment filters messenger attachment placeholders.
func looksLikeAttachment(msg string) bool {
	m := strings.ToLower(utils.NormalizeSpace(msg))
	if m == "사진" {
		return true
	}
	for _, ext := range []string{".pdf", ".jpg", ".jpeg", ".png", ".gif"} {
		if strings.HasSuffix(m, ext) {
			return true
		}
	}
	return false
}

// greetingMessage is the canned auto-reply that opens every conversation.
const greetingMessage = "안녕하세요. 무엇을 도와드릴까요?"

// extractPairs walks the log: a run of customer messages forms a
// question, the following run of agent messages (attachments and menu
// bot messages excluded) forms the answer. Pairs with a degenerate side
// are dropped.
func (im *Importer) extractPairs(rows []chatRow) []qaPair {
	menuPrefix := im.opts.AgentMarker + "(메뉴)"

	var pairs []qaPair
	i := 0
	for i < len(rows) {
		if !im.isCustomer(rows[i].User) {
			i++
			continue
		}

		var qParts []string
		for i < len(rows) && im.isCustomer(rows[i].User) {
			q := utils.NormalizeSpace(rows[i].Message)
			if q != "" && !looksLikeAttachment(q) {
				qParts = append(qParts, q)
			}
			i++
		}
		question := redactPII(utils.NormalizeSpace(strings.Join(qParts, " ")))
		if len([]rune(question)) < minQuestionRunes {
			continue
		}

		var aParts []string
		for i < len(rows) && im.isAgent(rows[i].User) {
			a := utils.NormalizeSpace(rows[i].Message)
			if a != "" && !looksLikeAttachment(a) && a != greetingMessage &&
				!strings.HasPrefix(a, menuPrefix) {
				aParts = append(aParts, a)
			}
			i++
		}
		answer := redactPII(strings.Join(aParts, "\n"))
		if len([]rune(utils.NormalizeSpace(answer))) < minAnswerRunes {
			continue
		}

		pairs = append(pairs, qaPair{Question: question, Answer: answer})
	}
	return pairs
}
