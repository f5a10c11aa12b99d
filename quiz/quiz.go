package quiz

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

const DefaultShareThreshold = 3

var chapterNumberRegexp = regexp.MustCompile(`^\s*(\d+)`)

type Aggregator struct {
	// Threshold is the number of identical consumers that hoists an asset
	// into a chapter-level shared group.
	Threshold int
}

func New(threshold int) *Aggregator {
	if threshold <= 0 {
		threshold = DefaultShareThreshold
	}
	return &Aggregator{Threshold: threshold}
}

type chapterKey struct {
	custom bool
	title  string
}

type chapterAcc struct {
	chapter   *model.QuizChapter
	questions map[string]*model.QuizQuestion
	exercises map[string]int64
}

// Aggregate nests quiz rows by book, chapter and question. Rows of issues
// outside books are ignored. links and resources supply the images attached
// to each exercise; links to missing resources are skipped. Books without
// questions are left out.
func (a *Aggregator) Aggregate(books []*model.Book, rows []*model.QuizRow, links []*model.QuizAssetLink, resources map[int64]*model.Resource) []*model.QuizBook {
	bookOf := make(map[int64]int)
	for bi, book := range books {
		for _, issueId := range book.IssueIds {
			if _, ok := bookOf[issueId]; !ok {
				bookOf[issueId] = bi
			}
		}
	}

	linksOf := make(map[int64][]*model.QuizAssetLink)
	for _, l := range links {
		linksOf[l.ExerciseId] = append(linksOf[l.ExerciseId], l)
	}
	for _, ls := range linksOf {
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].Position < ls[j].Position })
	}

	chapters := make([]map[chapterKey]*chapterAcc, len(books))
	order := make([][]chapterKey, len(books))

	for _, row := range rows {
		bi, ok := bookOf[row.IssueId]
		if !ok {
			continue
		}
		if chapters[bi] == nil {
			chapters[bi] = make(map[chapterKey]*chapterAcc)
		}

		key := chapterKey{custom: row.Custom, title: strings.TrimSpace(row.Chapter)}
		acc, ok := chapters[bi][key]
		if !ok {
			acc = &chapterAcc{
				chapter:   &model.QuizChapter{Title: key.title},
				questions: make(map[string]*model.QuizQuestion),
				exercises: make(map[string]int64),
			}
			chapters[bi][key] = acc
			order[bi] = append(order[bi], key)
		}

		q, ok := acc.questions[row.QuestionId]
		if !ok {
			q = &model.QuizQuestion{
				Id:     row.QuestionId,
				Number: len(acc.chapter.Questions) + 1,
				Text:   strings.TrimSpace(row.Question),
			}
			acc.questions[row.QuestionId] = q
			acc.exercises[row.QuestionId] = row.ExerciseId
			acc.chapter.Questions = append(acc.chapter.Questions, q)
		}

		if row.AnswerNumber > 0 && !hasAnswer(q, row.AnswerNumber) {
			q.Answers = append(q.Answers, &model.QuizAnswer{
				Number:  row.AnswerNumber,
				Letter:  strings.TrimSpace(row.AnswerLetter),
				Text:    strings.TrimSpace(row.Answer),
				Correct: row.Correct,
			})
		}
	}

	var ret []*model.QuizBook
	for bi, book := range books {
		if len(order[bi]) == 0 {
			continue
		}

		qb := &model.QuizBook{BookIndex: bi, Title: book.DisplayTitle(), Language: book.Language}
		for _, key := range order[bi] {
			acc := chapters[bi][key]
			for _, q := range acc.chapter.Questions {
				sort.SliceStable(q.Answers, func(i, j int) bool { return q.Answers[i].Number < q.Answers[j].Number })
				for _, l := range linksOf[acc.exercises[q.Id]] {
					res, ok := resources[l.ResourceId]
					if !ok || len(res.Data) == 0 || hasAsset(q, l.ResourceId) {
						continue
					}
					q.Assets = append(q.Assets, &model.QuizAsset{ResourceId: res.Id, MediaType: res.MediaType, Data: res.Data})
				}
			}
			a.share(acc.chapter)
			qb.Chapters = append(qb.Chapters, acc.chapter)
		}
		SortChapters(qb.Chapters)
		ret = append(ret, qb)
	}
	return ret
}

func hasAnswer(q *model.QuizQuestion, number int) bool {
	for _, a := range q.Answers {
		if a.Number == number {
			return true
		}
	}
	return false
}

func hasAsset(q *model.QuizQuestion, resourceId int64) bool {
	for _, a := range q.Assets {
		if a.ResourceId == resourceId {
			return true
		}
	}
	return false
}

// SortChapters orders chapters by the number their title starts with.
// Titles without a number keep their order after all numbered ones.
func SortChapters(chapters []*model.QuizChapter) {
	num := func(c *model.QuizChapter) (int, bool) {
		m := chapterNumberRegexp.FindStringSubmatch(c.Title)
		if m == nil {
			return 0, false
		}
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}

	sort.SliceStable(chapters, func(i, j int) bool {
		a, aok := num(chapters[i])
		b, bok := num(chapters[j])
		if aok != bok {
			return aok
		}
		return aok && a < b
	})
}
