package pair

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BiBoyang/AIvsAI/internal/config"
	"github.com/BiBoyang/AIvsAI/internal/export"
	"github.com/BiBoyang/AIvsAI/internal/provider"
	"github.com/BiBoyang/AIvsAI/internal/session"
)

// scriptReader plays back a fixed list of input lines, then io.EOF.
type scriptReader struct {
	lines []string
}

func (r *scriptReader) ReadLine(string) (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

// fakeCompleter answers from a per-provider function table.
type fakeCompleter struct {
	responses map[string]func(messages []session.ChatMessage) (string, error)
	calls     []string
}

func (f *fakeCompleter) Complete(_ context.Context, cfg config.Provider, messages []session.ChatMessage) (string, error) {
	f.calls = append(f.calls, cfg.Name)
	return f.responses[cfg.Name](messages)
}

func answererConfig() config.Provider {
	return config.Provider{APIKey: "k", Endpoint: "http://a", Model: "model-a", Name: "Answerer"}
}

func reviewerConfig() config.Provider {
	return config.Provider{APIKey: "k", Endpoint: "http://r", Model: "model-r", Name: "Reviewer"}
}

func newTestPair(t *testing.T, reader *scriptReader, completer Completer, saver Saver) (*Pair, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(answererConfig(), reviewerConfig(), completer, saver, reader, &out, logger), &out
}

func TestRunRecordsTurnsInOrder(t *testing.T) {
	completer := &fakeCompleter{responses: map[string]func([]session.ChatMessage) (string, error){
		"Answerer": func([]session.ChatMessage) (string, error) { return "the answer", nil },
		"Reviewer": func(messages []session.ChatMessage) (string, error) {
			prompt := messages[1].Content
			if !strings.Contains(prompt, "the answer") {
				t.Errorf("review prompt does not embed the answer: %q", prompt)
			}
			return "the review", nil
		},
	}}
	reader := &scriptReader{lines: []string{"first question", "", "second question", "exit"}}
	p, _ := newTestPair(t, reader, completer, export.NewWriter(t.TempDir()))

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	s := p.Session()
	if s.Len() != 2 {
		t.Fatalf("session has %d turns, want 2 (empty lines and exit must not count)", s.Len())
	}
	for i, turn := range s.Turns {
		if turn.Seq != i+1 {
			t.Fatalf("turn %d has seq %d", i, turn.Seq)
		}
	}
	if s.Turns[1].Question != "second question" {
		t.Fatalf("turns recorded out of order: %+v", s.Turns)
	}

	// Two calls per turn, answerer strictly before reviewer.
	want := []string{"Answerer", "Reviewer", "Answerer", "Reviewer"}
	if strings.Join(completer.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("call order %v, want %v", completer.calls, want)
	}
}

func TestReviewerFailureAbandonsTurn(t *testing.T) {
	completer := &fakeCompleter{responses: map[string]func([]session.ChatMessage) (string, error){
		"Answerer": func([]session.ChatMessage) (string, error) { return "partial answer", nil },
		"Reviewer": func([]session.ChatMessage) (string, error) {
			return "", &provider.Error{Provider: "Reviewer", Kind: provider.KindHTTPStatus, Status: 429, Body: "rate limited"}
		},
	}}
	reader := &scriptReader{lines: []string{"a question", "quit"}}
	p, out := newTestPair(t, reader, completer, export.NewWriter(t.TempDir()))

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if p.Session().Len() != 0 {
		t.Fatalf("session has %d turns, want 0 after reviewer failure", p.Session().Len())
	}
	// The answer was already received and must still be shown.
	if !strings.Contains(out.String(), "partial answer") {
		t.Fatal("answer not displayed after reviewer failure")
	}
	if !strings.Contains(out.String(), "rate limited") {
		t.Fatal("reviewer error not reported")
	}
}

func TestAnswererFailureSkipsReviewer(t *testing.T) {
	completer := &fakeCompleter{responses: map[string]func([]session.ChatMessage) (string, error){
		"Answerer": func([]session.ChatMessage) (string, error) {
			return "", &provider.Error{Provider: "Answerer", Kind: provider.KindEmptyChoices}
		},
		"Reviewer": func([]session.ChatMessage) (string, error) {
			t.Error("reviewer must not be called when the answerer fails")
			return "", nil
		},
	}}
	reader := &scriptReader{lines: []string{"a question", "EXIT"}}
	p, _ := newTestPair(t, reader, completer, export.NewWriter(t.TempDir()))

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if p.Session().Len() != 0 {
		t.Fatalf("session has %d turns, want 0", p.Session().Len())
	}
	if got := completer.calls; len(got) != 1 || got[0] != "Answerer" {
		t.Fatalf("unexpected calls: %v", got)
	}
}

func TestSaveBeforeAnyTurnWritesNothing(t *testing.T) {
	root := t.TempDir()
	completer := &fakeCompleter{responses: map[string]func([]session.ChatMessage) (string, error){}}
	reader := &scriptReader{lines: []string{"/save", "exit"}}
	p, out := newTestPair(t, reader, completer, export.NewWriter(root))

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(out.String(), "Nothing to save") {
		t.Fatalf("missing nothing-to-save report: %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(root, "conversations")); !os.IsNotExist(err) {
		t.Fatal("no file or directory may be created for an empty session")
	}
}

func TestSaveAfterTurnReportsPath(t *testing.T) {
	root := t.TempDir()
	completer := &fakeCompleter{responses: map[string]func([]session.ChatMessage) (string, error){
		"Answerer": func([]session.ChatMessage) (string, error) { return "answer", nil },
		"Reviewer": func([]session.ChatMessage) (string, error) { return "review", nil },
	}}
	reader := &scriptReader{lines: []string{"a question", "/SAVE", "exit"}}
	p, out := newTestPair(t, reader, completer, export.NewWriter(root))

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(out.String(), "Saved conversation to ") {
		t.Fatalf("missing save report: %q", out.String())
	}

	entries, err := os.ReadDir(filepath.Join(root, "conversations"))
	if err != nil {
		t.Fatalf("conversations dir missing: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("found %d exported files, want 1", len(entries))
	}

	f, err := os.Open(filepath.Join(root, "conversations", entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	h, err := export.ParseHeader(f)
	if err != nil {
		t.Fatalf("exported header unreadable: %v", err)
	}
	if h.Turns != 1 || h.AnswererModel != "model-a" || h.ReviewerModel != "model-r" {
		t.Fatalf("unexpected header: %+v", h)
	}
}

func TestEndOfInputEndsLoop(t *testing.T) {
	completer := &fakeCompleter{responses: map[string]func([]session.ChatMessage) (string, error){}}
	reader := &scriptReader{}
	p, _ := newTestPair(t, reader, completer, export.NewWriter(t.TempDir()))

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("end of input must end the loop cleanly, got %v", err)
	}
}
