// Package export renders accumulated sessions to markdown files under
// a conversations directory.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/BiBoyang/AIvsAI/internal/session"
)

// ErrNothingToSave is returned when the session has no recorded turns.
var ErrNothingToSave = errors.New("export: nothing to save")

// IoError wraps a filesystem failure during export.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("export: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

const (
	dirName      = "conversations"
	prefixBudget = 20
	timeLayout   = "2006-01-02_15-04-05"
)

// Writer saves sessions as markdown files under root/conversations.
type Writer struct {
	root string
	now  func() time.Time
}

// NewWriter builds a writer rooted at root (usually the working
// directory).
func NewWriter(root string) *Writer {
	return &Writer{root: root, now: time.Now}
}

// Save renders every recorded turn to a new timestamped file and
// returns its path. Repeated saves of a growing session produce new
// files rather than overwriting earlier ones; the timestamp in the
// name keeps them apart. The in-memory session is never touched.
func (w *Writer) Save(sess *session.Session, answererModel, reviewerModel string) (string, error) {
	if sess.Len() == 0 {
		return "", ErrNothingToSave
	}

	dir := filepath.Join(w.root, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &IoError{Op: "create", Path: dir, Err: err}
	}

	path := filepath.Join(dir, fileName(w.now(), sess.Turns[0].Question))
	doc := Render(sess, answererModel, reviewerModel)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", &IoError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// fileName derives <YYYY-MM-DD_HH-MM-SS>_<prefix>.md where prefix is
// the sanitized start of the first question.
func fileName(now time.Time, question string) string {
	return now.Format(timeLayout) + "_" + sanitizePrefix(question) + ".md"
}

// sanitizePrefix takes the first 20 runes of the question and replaces
// every rune that is not a letter or digit with '_'.
func sanitizePrefix(question string) string {
	runes := []rune(question)
	if len(runes) > prefixBudget {
		runes = runes[:prefixBudget]
	}
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			runes[i] = '_'
		}
	}
	return string(runes)
}

// Render produces the deterministic markdown document: a metadata
// header followed by one section per turn in sequence order, with
// answer and review block-quoted.
func Render(sess *session.Session, answererModel, reviewerModel string) string {
	var b strings.Builder

	b.WriteString("# AI vs AI Conversation\n\n")
	fmt.Fprintf(&b, "- Started: %s\n", sess.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Turns: %d\n", sess.Len())
	fmt.Fprintf(&b, "- Answerer: %s\n", answererModel)
	fmt.Fprintf(&b, "- Reviewer: %s\n\n", reviewerModel)

	for _, t := range sess.Turns {
		fmt.Fprintf(&b, "## Turn %d\n\n", t.Seq)
		fmt.Fprintf(&b, "**Question:** %s\n\n", t.Question)
		fmt.Fprintf(&b, "### Answer (%s)\n\n", answererModel)
		b.WriteString(blockQuote(t.Answer))
		b.WriteString("\n")
		fmt.Fprintf(&b, "### Review (%s)\n\n", reviewerModel)
		b.WriteString(blockQuote(t.Review))
		b.WriteString("\n")
	}

	return b.String()
}

// blockQuote prefixes every line of text with "> ".
func blockQuote(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	var b strings.Builder
	for _, line := range lines {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// Header is the metadata recovered from a rendered document. Only the
// header round-trips; turn content is not re-ingested by this tool.
type Header struct {
	StartedAt     time.Time
	Turns         int
	AnswererModel string
	ReviewerModel string
}

// ParseHeader reads the metadata block back out of a rendered
// document.
func ParseHeader(r io.Reader) (Header, error) {
	var h Header
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "- Started: "):
			t, err := time.Parse(time.RFC3339, strings.TrimPrefix(line, "- Started: "))
			if err != nil {
				return Header{}, fmt.Errorf("export: bad started-at line: %w", err)
			}
			h.StartedAt = t
		case strings.HasPrefix(line, "- Turns: "):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "- Turns: "))
			if err != nil {
				return Header{}, fmt.Errorf("export: bad turn-count line: %w", err)
			}
			h.Turns = n
		case strings.HasPrefix(line, "- Answerer: "):
			h.AnswererModel = strings.TrimPrefix(line, "- Answerer: ")
		case strings.HasPrefix(line, "- Reviewer: "):
			h.ReviewerModel = strings.TrimPrefix(line, "- Reviewer: ")
		case strings.HasPrefix(line, "## "):
			// The header block ends at the first turn section.
			return h, nil
		}
	}
	return h, sc.Err()
}
