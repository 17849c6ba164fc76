// Package pair drives the answer-then-review loop between the two
// configured providers and accumulates completed turns into a
// session.
package pair

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/BiBoyang/AIvsAI/internal/config"
	"github.com/BiBoyang/AIvsAI/internal/console"
	"github.com/BiBoyang/AIvsAI/internal/export"
	"github.com/BiBoyang/AIvsAI/internal/session"
	"github.com/BiBoyang/AIvsAI/internal/ui"
)

const (
	answererSystemPrompt = "You are a helpful AI assistant."

	reviewerSystemPrompt = "You are an expert technical reviewer. Your goal is to verify the accuracy and quality of answers provided by other AI models. You must output your review in Chinese."

	reviewPromptFormat = "The user asked: \"%s\"\n\nAnother AI assistant provided the following answer:\n\"%s\"\n\nPlease review this answer. Point out any errors, hallucinations, or missing information. If the code is provided, check for bugs. If the answer is perfect, verify it.\n\nIMPORTANT: Please provide your review entirely in Chinese."
)

// Completer is the single operation the loop needs from the chat
// client.
type Completer interface {
	Complete(ctx context.Context, cfg config.Provider, messages []session.ChatMessage) (string, error)
}

// Saver renders the session to a file on demand.
type Saver interface {
	Save(sess *session.Session, answererModel, reviewerModel string) (string, error)
}

// Pair owns one interactive session against the two providers.
type Pair struct {
	answerer config.Provider
	reviewer config.Provider
	client   Completer
	saver    Saver
	reader   console.Reader
	out      io.Writer
	logger   *slog.Logger
	session  *session.Session
	now      func() time.Time
}

// New builds the loop. The session starts empty and lives for the
// lifetime of the process.
func New(answerer, reviewer config.Provider, client Completer, saver Saver, reader console.Reader, out io.Writer, logger *slog.Logger) *Pair {
	p := &Pair{
		answerer: answerer,
		reviewer: reviewer,
		client:   client,
		saver:    saver,
		reader:   reader,
		out:      out,
		logger:   logger,
		now:      time.Now,
	}
	p.session = session.New(p.now())
	return p
}

// Session exposes the accumulated session, mainly for tests.
func (p *Pair) Session() *session.Session {
	return p.session
}

// Run reads input until exit/quit or end of input. Every provider or
// file error is reported here and the loop continues; nothing
// propagates past it.
func (p *Pair) Run(ctx context.Context) error {
	banner := fmt.Sprintf("   AI Pair: %s (Answer) + %s (Review)   ", p.answerer.Name, p.reviewer.Name)
	fmt.Fprintln(p.out, ui.Banner.Render("=========================================="))
	fmt.Fprintln(p.out, ui.Banner.Render(banner))
	fmt.Fprintln(p.out, ui.Banner.Render("=========================================="))
	fmt.Fprintln(p.out, ui.Dim.Render("Ask a question, /save to export, /help for commands, exit to leave"))

	p.logger.Info("session started", "session_id", p.session.ID,
		"answerer", p.answerer.Model, "reviewer", p.reviewer.Model)

	for {
		line, err := p.reader.ReadLine(ui.Prompt.Render("\nUser > "))
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit":
			p.logger.Info("session ended", "session_id", p.session.ID, "turns", p.session.Len())
			fmt.Fprintln(p.out, ui.Dim.Render("Goodbye!"))
			return nil
		case "/save":
			p.handleSave()
			continue
		case "/help":
			p.printHelp()
			continue
		}

		p.runTurn(ctx, input)
	}

	p.logger.Info("input closed", "session_id", p.session.ID, "turns", p.session.Len())
	return nil
}

// runTurn performs one answer-then-review cycle. The two calls are
// strictly sequential: the reviewer's prompt embeds the answerer's
// output. A turn is recorded only after both calls succeed.
func (p *Pair) runTurn(ctx context.Context, question string) {
	fmt.Fprintln(p.out, ui.Dim.Render(fmt.Sprintf("Thinking (%s) ...", p.answerer.Name)))
	answer, err := p.client.Complete(ctx, p.answerer, answererMessages(question))
	if err != nil {
		fmt.Fprintln(p.out, ui.Error.Render(fmt.Sprintf("Error: %v", err)))
		p.logger.Error("answerer call failed", "provider", p.answerer.Name, "error", err)
		return
	}

	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, ui.AnswerHead.Render(fmt.Sprintf("--- %s Answer ---", p.answerer.Name)))
	fmt.Fprintln(p.out, answer)

	fmt.Fprintln(p.out, ui.Dim.Render(fmt.Sprintf("Thinking (%s) ...", p.reviewer.Name)))
	review, err := p.client.Complete(ctx, p.reviewer, reviewerMessages(question, answer))
	if err != nil {
		// The answer above stays visible; the turn is not recorded.
		fmt.Fprintln(p.out, ui.Error.Render(fmt.Sprintf("Error: %v", err)))
		p.logger.Error("reviewer call failed", "provider", p.reviewer.Name, "error", err)
		return
	}

	turn := p.session.Record(question, answer, review, p.now())

	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, ui.ReviewHead.Render(fmt.Sprintf("--- %s Review ---", p.reviewer.Name)))
	fmt.Fprintln(p.out, review)
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, ui.Dim.Render("------------------------------------------"))

	p.logger.Info("turn recorded", "session_id", p.session.ID, "seq", turn.Seq)
}

func (p *Pair) handleSave() {
	path, err := p.saver.Save(p.session, p.answerer.Model, p.reviewer.Model)
	if errors.Is(err, export.ErrNothingToSave) {
		fmt.Fprintln(p.out, ui.Dim.Render("Nothing to save yet."))
		return
	}
	if err != nil {
		fmt.Fprintln(p.out, ui.Error.Render(fmt.Sprintf("Save failed: %v", err)))
		p.logger.Error("failed to save session", "session_id", p.session.ID, "error", err)
		return
	}
	fmt.Fprintln(p.out, ui.Dim.Render("Saved conversation to "+path))
	p.logger.Info("session saved", "session_id", p.session.ID, "path", path, "turns", p.session.Len())
}

func (p *Pair) printHelp() {
	fmt.Fprintln(p.out, "Available commands:")
	fmt.Fprintln(p.out, "  /save       - Export the conversation to a markdown file")
	fmt.Fprintln(p.out, "  /help       - Show this help message")
	fmt.Fprintln(p.out, "  exit, quit  - Leave the session")
}

func answererMessages(question string) []session.ChatMessage {
	return []session.ChatMessage{
		{Role: session.RoleSystem, Content: answererSystemPrompt},
		{Role: session.RoleUser, Content: question},
	}
}

func reviewerMessages(question, answer string) []session.ChatMessage {
	return []session.ChatMessage{
		{Role: session.RoleSystem, Content: reviewerSystemPrompt},
		{Role: session.RoleUser, Content: fmt.Sprintf(reviewPromptFormat, question, answer)},
	}
}
