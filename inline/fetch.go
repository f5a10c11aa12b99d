package inline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

// ResourceFetcher is the part of model.Store the inliner depends on.
type ResourceFetcher interface {
	Resources(ctx context.Context, issueIds []int64, ids []int64) (map[int64]*model.Resource, error)
}

// Refs returns the image and stylesheet ids referenced by the topics.
func Refs(topics []*model.Topic) []int64 {
	seen := make(map[int64]bool)
	for _, t := range topics {
		if t.Order == nil {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(t.Markup))
		if err != nil {
			continue
		}
		if id, ok := StylesheetRef(doc); ok {
			seen[id] = true
		}
		for _, id := range ImageRefs(doc) {
			seen[id] = true
		}
	}
	return sortedIds(seen)
}

// Fetch loads every resource the topics need in two rounds: pages' own
// references first, then fonts referenced from the stylesheets found.
func Fetch(ctx context.Context, f ResourceFetcher, issueIds []int64, topics []*model.Topic) (map[int64]*model.Resource, error) {
	resources, err := f.Resources(ctx, issueIds, Refs(topics))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page resources: %w", err)
	}

	fonts := make(map[int64]bool)
	for _, r := range resources {
		if r.Kind != model.KindStylesheet {
			continue
		}
		for _, id := range FontRefs(string(r.Data)) {
			if _, ok := resources[id]; !ok {
				fonts[id] = true
			}
		}
	}
	if len(fonts) == 0 {
		return resources, nil
	}

	more, err := f.Resources(ctx, issueIds, sortedIds(fonts))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fonts: %w", err)
	}
	for id, r := range more {
		resources[id] = r
	}
	return resources, nil
}

func sortedIds(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
