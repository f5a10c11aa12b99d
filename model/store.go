package model

import "context"

// Store is the read surface the exporter needs from the relational store.
type Store interface {
	Books(ctx context.Context) ([]*Book, error)
	Topics(ctx context.Context, issueIds []int64) ([]*Topic, error)
	TOCRows(ctx context.Context, issueIds []int64) ([]*TOCRow, error)
	// Resources returns the subset of ids found within the issue set.
	Resources(ctx context.Context, issueIds []int64, ids []int64) (map[int64]*Resource, error)
	QuizRows(ctx context.Context, issueIds []int64, custom bool) ([]*QuizRow, error)
	QuizAssets(ctx context.Context, issueIds []int64) ([]*QuizAssetLink, error)
}

// QuizVault is the maintenance surface used to turn encrypted quiz rows into
// the plaintext rows read by Store.QuizRows.
type QuizVault interface {
	EncryptedQuiz(ctx context.Context) ([]*EncryptedQuizRow, error)
	SaveQuizRows(ctx context.Context, rows []*QuizRow) error
}
