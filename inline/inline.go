package inline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/template"
)

// Document is one self-contained topic page ready for rendering.
type Document struct {
	BookIndex int
	IssueId   int64
	TopicId   int64
	HTML      string
}

type Stats struct {
	Documents int
	// Skipped counts topics without an order value.
	Skipped int
	// Missing counts unresolved image, stylesheet and font references.
	Missing int
}

// Placed is a topic together with the index of the selected book owning it.
type Placed struct {
	BookIndex int
	Topic     *model.Topic
}

// Order arranges topics book by book, issue by issue (in the book's issue
// order), then by topic order. Topics without an order value or outside the
// selection are dropped and counted.
func Order(books []*model.Book, topics []*model.Topic) ([]Placed, int) {
	type key struct {
		book  int
		issue int
	}
	issueKey := make(map[int64]key)
	for bi, book := range books {
		for ii, issueId := range book.IssueIds {
			if _, ok := issueKey[issueId]; !ok {
				issueKey[issueId] = key{bi, ii}
			}
		}
	}

	skipped := 0
	placed := make([]Placed, 0, len(topics))
	keys := make([]key, 0, len(topics))
	for _, t := range topics {
		k, ok := issueKey[t.IssueId]
		if !ok || t.Order == nil {
			skipped++
			continue
		}
		placed = append(placed, Placed{BookIndex: k.book, Topic: t})
		keys = append(keys, k)
	}

	idx := make([]int, len(placed))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka.book != kb.book {
			return ka.book < kb.book
		}
		if ka.issue != kb.issue {
			return ka.issue < kb.issue
		}
		return *placed[idx[a]].Topic.Order < *placed[idx[b]].Topic.Order
	})

	ret := make([]Placed, len(idx))
	for i, j := range idx {
		ret[i] = placed[j]
	}
	return ret, skipped
}

// Inliner turns topic markup into self-contained documents using resources
// that were fetched beforehand.
type Inliner struct {
	resources map[int64]*model.Resource
	l         *slog.Logger
}

func New(resources map[int64]*model.Resource, l *slog.Logger) *Inliner {
	if resources == nil {
		resources = make(map[int64]*model.Resource)
	}
	return &Inliner{resources: resources, l: l}
}

// Inline produces one document per ordered topic. progress, if set, receives
// the number of finished documents.
func (in *Inliner) Inline(ctx context.Context, books []*model.Book, topics []*model.Topic, progress func(done, total int)) ([]Document, Stats, error) {
	placed, skipped := Order(books, topics)
	stats := Stats{Skipped: skipped}

	docs := make([]Document, 0, len(placed))
	for i, p := range placed {
		html, missing, err := in.Topic(ctx, books[p.BookIndex].DisplayTitle(), p.Topic)
		if err != nil {
			return nil, stats, fmt.Errorf("failed to inline topic %d: %w", p.Topic.Id, err)
		}
		stats.Missing += missing
		docs = append(docs, Document{
			BookIndex: p.BookIndex,
			IssueId:   p.Topic.IssueId,
			TopicId:   p.Topic.Id,
			HTML:      html,
		})
		if progress != nil {
			progress(i+1, len(placed))
		}
	}
	stats.Documents = len(docs)

	return docs, stats, nil
}

// Topic inlines a single topic and reports how many references could not be
// resolved.
func (in *Inliner) Topic(ctx context.Context, title string, topic *model.Topic) (string, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(topic.Markup))
	if err != nil {
		return "", 0, fmt.Errorf("failed to parse html: %v", err)
	}

	missing := 0

	css := ""
	if id, ok := StylesheetRef(doc); ok {
		if res, ok := in.resources[id]; ok {
			var m int
			css, m = in.inlineFonts(ctx, topic.Id, string(res.Data))
			missing += m
		} else {
			missing++
			in.l.DebugContext(ctx, "stylesheet not found", "topic", topic.Id, "resource", id)
		}
	} else {
		in.l.DebugContext(ctx, "topic has no stylesheet link", "topic", topic.Id)
	}

	doc.Find("img[src]").Each(func(i int, s *goquery.Selection) {
		id, ok := ResourceId(s.AttrOr("src", ""))
		if !ok {
			return
		}
		res, ok := in.resources[id]
		if !ok || len(res.Data) == 0 {
			missing++
			in.l.DebugContext(ctx, "image not found", "topic", topic.Id, "resource", id)
			s.SetAttr("src", blankImage)
			return
		}
		s.SetAttr("src", dataURI(imageMime(res.MediaType, res.Data), res.Data))
	})

	body := doc.Find("body").First()
	body.Find(`script, link[rel~="stylesheet"]`).Remove()
	inner, err := body.Html()
	if err != nil {
		return "", missing, fmt.Errorf("failed to get body html: %v", err)
	}

	var sb strings.Builder
	if err := template.Shell(title, css, inner).Render(ctx, &sb); err != nil {
		return "", missing, fmt.Errorf("failed to render shell: %v", err)
	}

	return sb.String(), missing, nil
}

func (in *Inliner) inlineFonts(ctx context.Context, topicId int64, css string) (string, int) {
	missing := 0
	out := cssUrlRegexp.ReplaceAllStringFunc(css, func(match string) string {
		sub := cssUrlRegexp.FindStringSubmatch(match)
		id, ok := ResourceId(sub[1])
		if !ok {
			return match
		}
		res, ok := in.resources[id]
		if !ok {
			missing++
			in.l.DebugContext(ctx, "font not found", "topic", topicId, "resource", id)
			return "url(" + blankFont + ")"
		}
		return `url("` + dataURI(fontMime(res.MediaType), res.Data) + `")`
	})
	return out, missing
}
