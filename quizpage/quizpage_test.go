package quizpage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"slices"
	"testing"
	"unicode/utf8"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/document"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/locale"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var small = document.Canvas{Width: 300, Height: 200, Margin: 10}

type runeMeasurer struct{}

func (runeMeasurer) Width(s string, _ document.Font) float64 {
	return 5 * float64(utf8.RuneCountInString(s))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray16(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.Gray16{Y: 0xffff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func question(n int, correct string) *model.QuizQuestion {
	q := &model.QuizQuestion{Id: string(rune('a' + n)), Number: n, Text: "Frage"}
	for i, letter := range []string{"a", "b"} {
		q.Answers = append(q.Answers, &model.QuizAnswer{Number: i + 1, Letter: letter, Text: "Antwort", Correct: letter == correct})
	}
	return q
}

func quizBook(index int) *model.QuizBook {
	return &model.QuizBook{
		BookIndex: index,
		Title:     "Bio",
		Language:  "de",
		Chapters: []*model.QuizChapter{
			{Title: "1 Zellen", Questions: []*model.QuizQuestion{question(1, "a"), question(2, "b")}},
			{Title: "leer"},
		},
	}
}

func pages(n int) (*document.Document, []*document.Page) {
	d := document.New(small)
	var ps []*document.Page
	for i := 0; i < n; i++ {
		p := document.NewPage()
		d.Append(p)
		ps = append(ps, p)
	}
	return d, ps
}

func TestRunEndPlacement(t *testing.T) {
	doc, ps := pages(3)
	entries := [][]model.TOCEntry{{{PdfPage: 1}, {PdfPage: 3}}}

	c := New(small, runeMeasurer{}, discard, Options{})
	inserted, sections, err := c.Run(context.Background(), doc, []*model.QuizBook{quizBook(0)}, []*document.Page{ps[0]}, entries)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if inserted == 0 || doc.Len() != 3+inserted {
		t.Fatalf("inserted %d, len %d", inserted, doc.Len())
	}
	if doc.Index(ps[2]) != 3 || entries[0][1].PdfPage != 3 {
		t.Error("content pages moved with end placement")
	}

	if len(sections) != 1 || len(sections[0].Bookmarks) != 2 {
		t.Fatalf("sections = %+v", sections)
	}
	q, s := sections[0].Bookmarks[0], sections[0].Bookmarks[1]
	if q.Label != "Bio – Fragen" || s.Label != "Bio – Lösungen" {
		t.Errorf("labels = %q, %q", q.Label, s.Label)
	}
	if len(q.Children) != 1 || q.Children[0].Label != "1 Zellen" {
		t.Errorf("question chapters = %+v", q.Children)
	}
	if doc.Index(q.Page) != 4 {
		t.Errorf("questions start at %d, want 4", doc.Index(q.Page))
	}
}

func TestRunBookPlacement(t *testing.T) {
	doc, ps := pages(4)
	entries := [][]model.TOCEntry{
		{{PdfPage: 1}, {PdfPage: 2}},
		{{PdfPage: 3}, {PdfPage: 4}},
	}
	starts := []*document.Page{ps[0], ps[2]}

	c := New(small, runeMeasurer{}, discard, Options{Placement: PlacementBook})
	inserted, _, err := c.Run(context.Background(), doc, []*model.QuizBook{quizBook(0)}, starts, entries)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if doc.Index(ps[2]) != 3+inserted {
		t.Errorf("second book starts at %d, want %d", doc.Index(ps[2]), 3+inserted)
	}
	if entries[0][1].PdfPage != 2 {
		t.Errorf("first book entry moved to %d", entries[0][1].PdfPage)
	}
	for i, e := range entries[1] {
		if e.PdfPage != 3+i+inserted {
			t.Errorf("second book entry %d at %d, want %d", i, e.PdfPage, 3+i+inserted)
		}
	}
}

func TestQuestionKeptTogether(t *testing.T) {
	c := New(small, runeMeasurer{}, discard, Options{})
	f := newFlow(small)
	f.newPage()
	// leave room for two lines only
	f.y = f.bottom() - 2*lineHeight

	c.question(f, question(7, "a"))
	if len(f.pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(f.pages))
	}
	if got := f.pages[1].Texts(); len(got) != 3 || got[0] != "7. Frage" {
		t.Errorf("second page texts = %q", got)
	}
	if len(f.pages[0].Texts()) != 0 {
		t.Error("question split across pages")
	}
}

func TestQuestionLongerThanPageBreaks(t *testing.T) {
	c := New(small, runeMeasurer{}, discard, Options{})
	f := newFlow(small)
	f.newPage()
	f.y = f.bottom() - 2*lineHeight

	q := question(1, "a")
	for i := 0; i < 20; i++ {
		q.Answers = append(q.Answers, &model.QuizAnswer{Number: 3 + i, Letter: "x", Text: "y"})
	}
	c.question(f, q)

	if got := f.pages[0].Texts(); len(got) != 2 {
		t.Errorf("first page should be filled, got %q", got)
	}
}

func TestSolutionsGrid(t *testing.T) {
	qb := &model.QuizBook{Title: "Bio", Language: "en", Chapters: []*model.QuizChapter{{
		Title:     "Kapitel",
		Questions: []*model.QuizQuestion{question(1, "a"), question(2, "b"), question(3, ""), question(4, "a")},
	}}}

	c := New(small, runeMeasurer{}, discard, Options{Columns: 3})
	ps, marks := c.solutions(qb, locale.For("en"))
	if len(ps) != 1 || len(marks) != 1 {
		t.Fatalf("pages %d, marks %d", len(ps), len(marks))
	}
	texts := ps[0].Texts()
	for _, want := range []string{"Bio – Solutions", "Kapitel", "1. a", "2. b", "3. –", "4. a"} {
		if !slices.Contains(texts, want) {
			t.Errorf("missing %q in %q", want, texts)
		}
	}
}

func TestSolutionsRepeatChapterHeader(t *testing.T) {
	ch := &model.QuizChapter{Title: "Kapitel"}
	for i := 1; i <= 60; i++ {
		ch.Questions = append(ch.Questions, question(i, "a"))
	}
	qb := &model.QuizBook{Title: "Bio", Chapters: []*model.QuizChapter{ch}}

	c := New(small, runeMeasurer{}, discard, Options{Columns: 3})
	ps, _ := c.solutions(qb, locale.For("de"))
	if len(ps) < 2 {
		t.Fatalf("expected several pages, got %d", len(ps))
	}
	for i, p := range ps[1:] {
		if texts := p.Texts(); len(texts) == 0 || texts[0] != "Kapitel" {
			t.Errorf("page %d does not start with the chapter header: %q", i+2, texts)
		}
	}
}

func TestPrepare(t *testing.T) {
	p, err := prepare(&model.QuizAsset{ResourceId: 1, Data: pngBytes(t, 4, 2)})
	if err != nil {
		t.Fatalf("prepare png: %v", err)
	}
	if p.kind != "PNG" || p.width != 4 || p.height != 2 || p.key != "quiz-1" {
		t.Errorf("png picture = %+v", p)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 3)), nil); err != nil {
		t.Fatal(err)
	}
	p, err = prepare(&model.QuizAsset{ResourceId: 2, Data: buf.Bytes()})
	if err != nil || p.kind != "JPG" || !bytes.Equal(p.data, buf.Bytes()) {
		t.Errorf("jpeg should pass through: %+v, %v", p, err)
	}

	if _, err := prepare(&model.QuizAsset{ResourceId: 3, Data: []byte("not an image")}); err == nil {
		t.Error("expected error for garbage")
	}
}

func TestImagesScaledAndDeduplicated(t *testing.T) {
	c := New(small, runeMeasurer{}, discard, Options{})
	f := newFlow(small)
	f.newPage()

	asset := &model.QuizAsset{ResourceId: 9, Data: pngBytes(t, 1000, 1000)}
	c.image(context.Background(), f, asset)

	want := small.Height - 2*small.Margin
	if got := f.y - small.Margin; got > want*maxImageShare+blockGap {
		t.Errorf("image took %v points of %v", got, want)
	}
	if len(c.pictures) != 1 {
		t.Errorf("pictures cached = %d", len(c.pictures))
	}

	c.image(context.Background(), f, &model.QuizAsset{ResourceId: 10, Data: []byte("bad")})
	c.image(context.Background(), f, &model.QuizAsset{ResourceId: 10, Data: []byte("bad")})
	if p, ok := c.pictures[10]; !ok || p != nil {
		t.Error("undecodable image should be remembered as skipped")
	}
}
