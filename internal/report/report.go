// Package report draws roadmap timelines as a landscape PDF: one page per
// timeline with a quarter grid, team bands and lane-packed task bars.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/akyairhashvil/roadmap/internal/calendar"
	"github.com/akyairhashvil/roadmap/internal/lanes"
	"github.com/akyairhashvil/roadmap/internal/models"
	"github.com/akyairhashvil/roadmap/internal/store"
)

var ErrNoTimelines = errors.New("report: no timelines to draw")

// Page geometry in millimetres.
const (
	margin      = 10.0
	gutterWidth = 40.0
	axisHeight  = 8.0
	laneHeight  = 9.0
	barInset    = 1.2
)

type rgb struct{ r, g, b int }

var (
	barFill = map[models.Color]rgb{
		models.ColorBlue:   {59, 130, 246},
		models.ColorIndigo: {99, 102, 241},
	}
	barTrack = map[models.Color]rgb{
		models.ColorBlue:   {191, 219, 254},
		models.ColorIndigo: {199, 210, 254},
	}
	gridColor = rgb{210, 210, 210}
	bandColor = rgb{245, 245, 250}
)

type Options struct {
	// All draws every timeline; otherwise only the active one.
	All   bool
	Title string
	Now   time.Time
}

// Write renders the report for snap to w.
func Write(w io.Writer, snap store.Snapshot, opts Options) error {
	pdf, err := build(snap, opts)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// DefaultFileName is the report file name for a given day.
func DefaultFileName(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("roadmap_%s.pdf", now.Format("2006-01-02")))
}

func build(snap store.Snapshot, opts Options) (*fpdf.Fpdf, error) {
	var boards []lanes.Board
	if opts.All {
		for _, tl := range snap.Timelines() {
			if board, ok := lanes.LayoutTimeline(snap, tl.ID); ok {
				boards = append(boards, board)
			}
		}
	} else if board, ok := lanes.Layout(snap); ok {
		boards = append(boards, board)
	}
	if len(boards) == 0 {
		return nil, ErrNoTimelines
	}
	if opts.Title == "" {
		opts.Title = "Roadmap"
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(opts.Title, true)
	pdf.SetCreator("roadmap", true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, board := range boards {
		drawBoard(pdf, tr, board, opts)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdf, nil
}

func drawBoard(pdf *fpdf.Fpdf, tr func(string) string, board lanes.Board, opts Options) {
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s: %s", opts.Title, board.Timeline.Name)), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s  |  %d tasks", opts.Now.Format("2006-01-02"), board.TaskCount()), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	if board.Empty() {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(0, 8, "No tasks in this timeline.", "", 1, "L", false, 0, "")
		return
	}

	quarters := board.Quarters()
	top := pdf.GetY()
	left := margin + gutterWidth
	colW := (pageW - 2*margin - gutterWidth) / float64(len(quarters))
	origin := calendar.ToIndex(board.Start)

	// Axis labels.
	pdf.SetFont("Arial", "B", 9)
	for i, q := range quarters {
		pdf.SetXY(left+float64(i)*colW, top)
		pdf.CellFormat(colW, axisHeight, calendar.FormatLabel(q), "", 0, "C", false, 0, "")
	}

	y := top + axisHeight
	for i, row := range board.Rows {
		rowLanes := row.Lanes
		if rowLanes == 0 {
			rowLanes = 1
		}
		rowH := float64(rowLanes) * laneHeight
		if y+rowH > pageH-margin {
			// Keep drawing on a continuation page.
			pdf.AddPage()
			y = margin
		}
		if i%2 == 0 {
			pdf.SetFillColor(bandColor.r, bandColor.g, bandColor.b)
			pdf.Rect(margin, y, pageW-2*margin, rowH, "F")
		}
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "B", 10)
		pdf.SetXY(margin, y)
		pdf.CellFormat(gutterWidth, laneHeight, tr(fit(pdf, tr, row.Team.Name, gutterWidth-2)), "", 0, "L", false, 0, "")

		for _, p := range row.Placements {
			x := left + float64(p.Task.StartIndex()-origin)*colW
			w := float64(p.Task.EndIndex()-p.Task.StartIndex()+1) * colW
			drawBar(pdf, tr, p.Task, x+barInset, y+float64(p.Lane)*laneHeight+barInset, w-2*barInset, laneHeight-2*barInset)
		}
		y += rowH
	}

	// Quarter grid.
	pdf.SetDrawColor(gridColor.r, gridColor.g, gridColor.b)
	pdf.SetLineWidth(0.2)
	for i := 0; i <= len(quarters); i++ {
		x := left + float64(i)*colW
		pdf.Line(x, top, x, y)
	}
}

func drawBar(pdf *fpdf.Fpdf, tr func(string) string, task models.Task, x, y, w, h float64) {
	track, fill := barTrack[task.Color], barFill[task.Color]
	if _, ok := barFill[task.Color]; !ok {
		track, fill = barTrack[models.DefaultColor], barFill[models.DefaultColor]
	}
	pdf.SetFillColor(track.r, track.g, track.b)
	pdf.Rect(x, y, w, h, "F")
	if task.Progress > 0 {
		pdf.SetFillColor(fill.r, fill.g, fill.b)
		pdf.Rect(x, y, w*float64(task.Progress)/100, h, "F")
	}

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(20, 20, 40)
	label := fmt.Sprintf("%s (%d%%)", task.Name, task.Progress)
	pdf.SetXY(x+1, y)
	pdf.CellFormat(w-2, h, tr(fit(pdf, tr, label, w-2)), "", 0, "L", false, 0, "")
}

// fit shortens text until it is at most width millimetres wide in the
// current font.
func fit(pdf *fpdf.Fpdf, tr func(string) string, text string, width float64) string {
	if pdf.GetStringWidth(tr(text)) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if pdf.GetStringWidth(tr(candidate)) <= width {
			return candidate
		}
	}
	return ""
}
