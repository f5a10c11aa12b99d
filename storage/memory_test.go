package storage

import (
	"context"
	"testing"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

func TestMemoryResourcesScopedToIssues(t *testing.T) {
	m := NewMemory()
	m.AddResources(
		&model.Resource{Id: 1, IssueId: 10, Kind: model.KindImage},
		&model.Resource{Id: 2, IssueId: 11, Kind: model.KindImage},
	)

	got, err := m.Resources(context.Background(), []int64{10}, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("Resources: %v", err)
	}
	if len(got) != 1 || got[1] == nil {
		t.Fatalf("Resources = %v, want only id 1", got)
	}
}

func TestMemorySaveQuizRowsUpserts(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_ = m.SaveQuizRows(ctx, []*model.QuizRow{
		{IssueId: 10, QuestionId: "q1", AnswerNumber: 1, Answer: "old"},
		{IssueId: 10, QuestionId: "q1", AnswerNumber: 2, Answer: "b"},
	})
	_ = m.SaveQuizRows(ctx, []*model.QuizRow{
		{IssueId: 10, QuestionId: "q1", AnswerNumber: 1, Answer: "new"},
		{IssueId: 10, QuestionId: "q2", AnswerNumber: 1, Answer: "x", Custom: true},
	})

	rows, _ := m.QuizRows(ctx, []int64{10}, false)
	if len(rows) != 2 {
		t.Fatalf("got %d plain rows, want 2", len(rows))
	}
	if rows[0].Answer != "new" {
		t.Errorf("answer = %q, want new", rows[0].Answer)
	}

	custom, _ := m.QuizRows(ctx, []int64{10}, true)
	if len(custom) != 1 {
		t.Errorf("got %d custom rows, want 1", len(custom))
	}
}

func TestMemoryQuizAssetsImageOnly(t *testing.T) {
	m := NewMemory()
	m.AddResources(
		&model.Resource{Id: 1, IssueId: 10, Kind: model.KindImage},
		&model.Resource{Id: 2, IssueId: 10, Kind: model.KindFont},
	)
	m.AddQuizAssets(
		&model.QuizAssetLink{ExerciseId: 5, ResourceId: 2, Position: 0},
		&model.QuizAssetLink{ExerciseId: 5, ResourceId: 1, Position: 1},
	)

	links, _ := m.QuizAssets(context.Background(), []int64{10})
	if len(links) != 1 || links[0].ResourceId != 1 {
		t.Fatalf("QuizAssets = %+v, want only the image link", links)
	}
}
