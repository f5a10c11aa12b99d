package storage

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

// Memory is an in-process store used for fixtures and tests.
type Memory struct {
	mu sync.RWMutex

	books     []*model.Book
	topics    []*model.Topic
	toc       []*model.TOCRow
	resources map[int64]*model.Resource
	quiz      []*model.QuizRow
	assets    []*model.QuizAssetLink
	encrypted []*model.EncryptedQuizRow
}

var (
	_ model.Store     = (*Memory)(nil)
	_ model.QuizVault = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{resources: make(map[int64]*model.Resource)}
}

func (m *Memory) AddBooks(books ...*model.Book) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books = append(m.books, books...)
}

func (m *Memory) AddTopics(topics ...*model.Topic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = append(m.topics, topics...)
}

func (m *Memory) AddTOCRows(rows ...*model.TOCRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toc = append(m.toc, rows...)
}

func (m *Memory) AddResources(resources ...*model.Resource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range resources {
		m.resources[r.Id] = r
	}
}

func (m *Memory) AddQuizAssets(links ...*model.QuizAssetLink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets = append(m.assets, links...)
}

func (m *Memory) AddEncrypted(rows ...*model.EncryptedQuizRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.encrypted = append(m.encrypted, rows...)
}

func (m *Memory) Books(_ context.Context) ([]*model.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ret := slices.Clone(m.books)
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Id < ret[j].Id })
	return ret, nil
}

func (m *Memory) Topics(_ context.Context, issueIds []int64) ([]*model.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ret []*model.Topic
	for _, t := range m.topics {
		if slices.Contains(issueIds, t.IssueId) {
			ret = append(ret, t)
		}
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Id < ret[j].Id })
	return ret, nil
}

func (m *Memory) TOCRows(_ context.Context, issueIds []int64) ([]*model.TOCRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ret []*model.TOCRow
	for _, r := range m.toc {
		if slices.Contains(issueIds, r.IssueId) {
			ret = append(ret, r)
		}
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Id < ret[j].Id })
	return ret, nil
}

func (m *Memory) Resources(_ context.Context, issueIds []int64, ids []int64) (map[int64]*model.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ret := make(map[int64]*model.Resource, len(ids))
	for _, id := range ids {
		if r, ok := m.resources[id]; ok && slices.Contains(issueIds, r.IssueId) {
			ret[id] = r
		}
	}
	return ret, nil
}

func (m *Memory) QuizRows(_ context.Context, issueIds []int64, custom bool) ([]*model.QuizRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ret []*model.QuizRow
	for _, r := range m.quiz {
		if r.Custom == custom && slices.Contains(issueIds, r.IssueId) {
			ret = append(ret, r)
		}
	}
	return ret, nil
}

func (m *Memory) QuizAssets(_ context.Context, issueIds []int64) ([]*model.QuizAssetLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ret []*model.QuizAssetLink
	for _, l := range m.assets {
		r, ok := m.resources[l.ResourceId]
		if !ok || r.Kind != model.KindImage || !slices.Contains(issueIds, r.IssueId) {
			continue
		}
		ret = append(ret, l)
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].ExerciseId != ret[j].ExerciseId {
			return ret[i].ExerciseId < ret[j].ExerciseId
		}
		return ret[i].Position < ret[j].Position
	})
	return ret, nil
}

func (m *Memory) EncryptedQuiz(_ context.Context) ([]*model.EncryptedQuizRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.encrypted), nil
}

// SaveQuizRows replaces rows with the same question id and answer number.
func (m *Memory) SaveQuizRows(_ context.Context, rows []*model.QuizRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range rows {
		idx := slices.IndexFunc(m.quiz, func(r *model.QuizRow) bool {
			return r.QuestionId == row.QuestionId && r.AnswerNumber == row.AnswerNumber
		})
		if idx >= 0 {
			m.quiz[idx] = row
		} else {
			m.quiz = append(m.quiz, row)
		}
	}
	return nil
}
