// Package report renders the one-page end-of-run summary as a PDF.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/cory-johannsen/minidungeon/internal/game/battle"
	"github.com/cory-johannsen/minidungeon/internal/game/character"
)

// Summary is what the report shows about a finished run.
type Summary struct {
	Character character.Character
	// Floor is the floor the run ended on.
	Floor uint8
	// Slayer names the monster that ended the run; empty if the player quit.
	Slayer  string
	Tally   battle.Tally
	EndedAt time.Time
}

// Generate renders s as a single A4 page.
//
// Postcondition: Returns PDF bytes or a non-nil error.
func Generate(s Summary) ([]byte, error) {
	const (
		pageW  = 595.28
		margin = 48.0
		lineH  = 18.0
	)

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Run summary: "+s.Character.Name, true)
	pdf.AddPage()

	pdf.SetTextColor(60, 20, 20)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(pageW-2*margin, 30, "Here lies "+s.Character.Name, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "I", 11)
	epitaph := fmt.Sprintf("Fell on floor %d", s.Floor)
	if s.Slayer != "" {
		epitaph += " to the " + s.Slayer
	}
	pdf.CellFormat(pageW-2*margin, lineH, epitaph, "", 1, "C", false, 0, "")
	if !s.EndedAt.IsZero() {
		pdf.CellFormat(pageW-2*margin, lineH, s.EndedAt.Format("2 January 2006 15:04"), "", 1, "C", false, 0, "")
	}

	pdf.Ln(lineH)
	pdf.SetDrawColor(120, 80, 60)
	pdf.Line(margin, pdf.GetY(), pageW-margin, pdf.GetY())
	pdf.Ln(lineH / 2)

	c := s.Character
	rows := [][2]string{
		{"Level", fmt.Sprintf("%d", c.Level)},
		{"Floor reached", fmt.Sprintf("%d", s.Floor)},
		{"Monsters defeated", fmt.Sprintf("%d", s.Tally.Victories)},
		{"Escapes", fmt.Sprintf("%d", s.Tally.Escapes)},
		{"Gold earned", fmt.Sprintf("%d", s.Tally.GoldEarned)},
		{"Gold carried", fmt.Sprintf("%d", c.Gold)},
		{"Strength", fmt.Sprintf("%d", c.Attributes.Strength)},
		{"Magic", fmt.Sprintf("%d", c.Attributes.Magic)},
		{"Defense", fmt.Sprintf("%d", c.Attributes.Defense)},
		{"Magic defense", fmt.Sprintf("%d", c.Attributes.MagicDefense)},
	}
	pdf.SetTextColor(30, 30, 30)
	for _, r := range rows {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(180, lineH, r[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, lineH, r[1], "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering run report: %w", err)
	}
	return buf.Bytes(), nil
}

// Writer saves reports into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer for dir.
//
// Precondition: dir must be non-empty.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write renders s and stores it as <dir>/<name>-<unix time>.pdf.
//
// Postcondition: Returns the path written, or a non-nil error.
func (w *Writer) Write(s Summary) (string, error) {
	data, err := Generate(s)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}
	ended := s.EndedAt
	if ended.IsZero() {
		ended = time.Now()
	}
	name := fmt.Sprintf("%s-%d.pdf", fileSafe(s.Character.Name), ended.Unix())
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run report: %w", err)
	}
	return path, nil
}

func fileSafe(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if safe == "" {
		return "run"
	}
	return safe
}
