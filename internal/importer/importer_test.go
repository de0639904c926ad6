package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func newTestImporter(t *testing.T) *Importer {
	t.Helper()
	im, err := New(Options{AgentMarker: "까사트레이드"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return im
}

func TestNew(t *testing.T) {
	if _, err := New(Options{}, nil); err == nil {
		t.Error("missing agent marker should be rejected")
	}
	im, err := New(Options{AgentMarker: "상담원"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if im.opts.MaxExamples != defaultMaxExamples {
		t.Errorf("max examples default: %d", im.opts.MaxExamples)
	}
}

func TestExtractPairs(t *testing.T) {
	im := newTestImporter(t)

	rows := []chatRow{
		{Date: "2024-03-01 09:00", User: "까사트레이드", Message: "안녕하세요. 무엇을 도와드릴까요?"},
		{Date: "2024-03-01 09:01", User: "고객A", Message: "보증금은"},
		{Date: "2024-03-01 09:01", User: "고객A", Message: "왜 필요한가요?"},
		{Date: "2024-03-01 09:02", User: "까사트레이드", Message: "까사트레이드(메뉴) 1. 상담 2. 안내"},
		{Date: "2024-03-01 09:03", User: "까사트레이드", Message: "보증금은 입찰한도 설정을 위해 필요합니다."},
		{Date: "2024-03-01 09:10", User: "고객B", Message: "사진"},
		{Date: "2024-03-01 09:10", User: "고객B", Message: "receipt.jpg"},
		{Date: "2024-03-01 09:11", User: "까사트레이드", Message: "확인 감사합니다. 순차 처리하겠습니다."},
	}
	pairs := im.extractPairs(rows)

	if len(pairs) != 1 {
		t.Fatalf("got %d pairs", len(pairs))
	}
	if pairs[0].Question != "보증금은 왜 필요한가요?" {
		t.Errorf("question: %q", pairs[0].Question)
	}
	if pairs[0].Answer != "보증금은 입찰한도 설정을 위해 필요합니다." {
		t.Errorf("answer: %q", pairs[0].Answer)
	}
}

func TestExtractPairs_ShortSidesDropped(t *testing.T) {
	im := newTestImporter(t)

	rows := []chatRow{
		{User: "고객A", Message: "넵"},
		{User: "까사트레이드", Message: "네 감사합니다. 좋은 하루 보내세요."},
		{User: "고객B", Message: "한도 증액은 어떻게 하나요?"},
		{User: "까사트레이드", Message: "넵"},
	}
	if pairs := im.extractPairs(rows); len(pairs) != 0 {
		t.Errorf("got %d pairs: %+v", len(pairs), pairs)
	}
}

func TestBuildIntents(t *testing.T) {
	im := newTestImporter(t)

	pairs := []qaPair{
		{Question: "보증금은 왜 필요한가요?", Answer: "보증금은 입찰한도 설정을 위해 필요합니다. 현재 한도 100,000원 입니다."},
		{Question: "보증금 안내 부탁드려요", Answer: "보증금은 입찰한도 설정을 위해 필요합니다. 현재 한도 250,000원 입니다."},
		{Question: "배송은 언제 되나요?", Answer: "결제 확인 후 영업일 기준 2~3일 내 출고됩니다."},
	}
	intents := im.buildIntents(pairs)

	if len(intents) != 2 {
		t.Fatalf("got %d intents", len(intents))
	}

	// Most frequent group first, ids sequential.
	top := intents[0]
	if top.ID != "intent_001" {
		t.Errorf("id: %s", top.ID)
	}
	if top.Title != "보증금/입찰한도 안내" {
		t.Errorf("title: %s", top.Title)
	}
	if len(top.Examples) != 2 {
		t.Errorf("examples: %v", top.Examples)
	}
	if !strings.Contains(top.Answer, "<AMOUNT>원") {
		t.Errorf("answer should be template form: %q", top.Answer)
	}
	if len(top.Tags) == 0 || top.Tags[0] != "보증금" {
		t.Errorf("tags: %v", top.Tags)
	}

	if intents[1].Title != "배송/출고 안내" {
		t.Errorf("second title: %s", intents[1].Title)
	}

	for _, intent := range intents {
		if err := intent.Validate(); err != nil {
			t.Errorf("built intent invalid: %v", err)
		}
	}
}

func TestBuildIntents_ExamplesCapped(t *testing.T) {
	im, err := New(Options{AgentMarker: "까사트레이드", MaxExamples: 3}, nil)
	if err != nil {
		t.Fatal(err)
	}

	answer := "보증금은 입찰한도 설정을 위해 필요합니다."
	pairs := make([]qaPair, 0, 5)
	for _, q := range []string{"질문 하나", "질문 둘", "질문 셋", "질문 넷", "질문 다섯"} {
		pairs = append(pairs, qaPair{Question: q, Answer: answer})
	}
	intents := im.buildIntents(pairs)

	if len(intents) != 1 {
		t.Fatalf("got %d intents", len(intents))
	}
	if len(intents[0].Examples) != 3 {
		t.Errorf("examples: %v", intents[0].Examples)
	}
}

const sampleCSV = `DATE,USER,MESSAGE
2024-03-01 09:00,까사트레이드,안녕하세요. 무엇을 도와드릴까요?
2024-03-01 09:01,고객A,보증금은 왜 필요한가요?
2024-03-01 09:02,까사트레이드,보증금은 입찰한도 설정을 위해 필요합니다.
2024-03-01 10:00,고객B,"배송 문의드립니다, 언제 출고되나요?"
2024-03-01 10:01,까사트레이드,결제 확인 후 영업일 기준 2~3일 내 출고됩니다.
`

func TestImportFiles_CSV(t *testing.T) {
	im := newTestImporter(t)

	path := filepath.Join(t.TempDir(), "chat.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0600); err != nil {
		t.Fatal(err)
	}

	intents, err := im.ImportFiles([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(intents) != 2 {
		t.Fatalf("got %d intents", len(intents))
	}

	// The quoted comma stays inside the message.
	found := false
	for _, intent := range intents {
		for _, example := range intent.Examples {
			if example == "배송 문의드립니다, 언제 출고되나요?" {
				found = true
			}
		}
	}
	if !found {
		t.Error("quoted CSV message not preserved")
	}
}

func TestImportFiles_XLSX(t *testing.T) {
	im := newTestImporter(t)

	f := excelize.NewFile()
	rows := [][]string{
		{"DATE", "USER", "MESSAGE"},
		{"2024-03-01 09:01", "고객A", "보증금은 왜 필요한가요?"},
		{"2024-03-01 09:02", "까사트레이드", "보증금은 입찰한도 설정을 위해 필요합니다."},
	}
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "chat.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	intents, err := im.ImportFiles([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(intents) != 1 {
		t.Fatalf("got %d intents", len(intents))
	}
	if intents[0].Title != "보증금/입찰한도 안내" {
		t.Errorf("title: %s", intents[0].Title)
	}
}

func TestImportFiles_Errors(t *testing.T) {
	im := newTestImporter(t)

	t.Run("no inputs", func(t *testing.T) {
		if _, err := im.ImportFiles(nil); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chat.txt")
		if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := im.ImportFiles([]string{path}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := im.ImportFiles([]string{"/does/not/exist.csv"}); err == nil {
			t.Error("expected error")
		}
	})
}
