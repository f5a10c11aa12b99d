package quiz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

// share hoists assets whose consuming question set is identical and at least
// Threshold large into shared groups and removes them from the questions.
func (a *Aggregator) share(ch *model.QuizChapter) {
	type usage struct {
		asset     *model.QuizAsset
		questions []int
	}

	var (
		assets []int64
		usedBy = make(map[int64]*usage)
	)
	for _, q := range ch.Questions {
		for _, asset := range q.Assets {
			u, ok := usedBy[asset.ResourceId]
			if !ok {
				u = &usage{asset: asset}
				usedBy[asset.ResourceId] = u
				assets = append(assets, asset.ResourceId)
			}
			u.questions = append(u.questions, q.Number)
		}
	}

	var (
		keys   []string
		groups = make(map[string]*model.QuizSharedAssetGroup)
	)
	for _, id := range assets {
		u := usedBy[id]
		if len(u.questions) < a.Threshold {
			continue
		}
		key := fmt.Sprint(u.questions)
		g, ok := groups[key]
		if !ok {
			g = &model.QuizSharedAssetGroup{Questions: u.questions, Caption: Compact(u.questions)}
			groups[key] = g
			keys = append(keys, key)
		}
		g.Assets = append(g.Assets, u.asset)
	}
	if len(keys) == 0 {
		return
	}

	promoted := make(map[int64]bool)
	for _, key := range keys {
		g := groups[key]
		for _, asset := range g.Assets {
			promoted[asset.ResourceId] = true
		}
		ch.Shared = append(ch.Shared, g)
	}

	for _, q := range ch.Questions {
		kept := q.Assets[:0]
		for _, asset := range q.Assets {
			if !promoted[asset.ResourceId] {
				kept = append(kept, asset)
			}
		}
		q.Assets = kept
	}
}

// Compact renders sorted question numbers with consecutive runs collapsed,
// e.g. "1–4, 6".
func Compact(numbers []int) string {
	var parts []string
	for i := 0; i < len(numbers); {
		j := i
		for j+1 < len(numbers) && numbers[j+1] == numbers[j]+1 {
			j++
		}
		if j > i {
			parts = append(parts, strconv.Itoa(numbers[i])+"–"+strconv.Itoa(numbers[j]))
		} else {
			parts = append(parts, strconv.Itoa(numbers[i]))
		}
		i = j + 1
	}
	return strings.Join(parts, ", ")
}
