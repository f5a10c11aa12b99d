package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/doug-martin/goqu/v9"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

var subIssues = goqu.Select(goqu.L("array_agg(issue.id order by issue.position, issue.id)")).
	From("issue").
	Where(goqu.C("book_id").Table("issue").Eq(goqu.C("id").Table("book")))

// PGX reads the exported catalog from Postgres.
type PGX struct {
	pg       *pgxpool.Pool
	g        goqu.DialectWrapper
	l        *slog.Logger
	pageSize int
}

var (
	_ model.Store     = (*PGX)(nil)
	_ model.QuizVault = (*PGX)(nil)
)

// NewPGX returns a store that fetches resources pageSize ids at a time.
func NewPGX(pg *pgxpool.Pool, l *slog.Logger, pageSize int) *PGX {
	if pageSize <= 0 {
		pageSize = 500
	}
	return &PGX{pg: pg, g: goqu.Dialect("postgres"), l: l, pageSize: pageSize}
}

type pgxBook struct {
	Id       int64   `db:"id"`
	Title    string  `db:"title"`
	Subtitle string  `db:"subtitle"`
	Ref      string  `db:"ref"`
	Toggled  bool    `db:"toggled"`
	Language string  `db:"language"`
	IssueIds []int64 `db:"issues"`
}

func (b *pgxBook) intoModel() *model.Book {
	return &model.Book{
		Id:       b.Id,
		Title:    b.Title,
		Subtitle: b.Subtitle,
		Ref:      b.Ref,
		IssueIds: b.IssueIds,
		Toggled:  b.Toggled,
		Language: b.Language,
	}
}

type pgxTopic struct {
	Id      int64  `db:"id"`
	IssueId int64  `db:"issue_id"`
	Order   *int   `db:"ord"`
	Markup  string `db:"markup"`
}

type pgxTOCRow struct {
	Id          int64  `db:"id"`
	IssueId     int64  `db:"issue_id"`
	PrintedPage int    `db:"printed_page"`
	Label       string `db:"label"`
	Level       int    `db:"level"`
	OrderHint   int    `db:"order_hint"`
}

type pgxResource struct {
	Id        int64  `db:"id"`
	IssueId   int64  `db:"issue_id"`
	Kind      string `db:"kind"`
	MediaType string `db:"media_type"`
	Data      []byte `db:"data"`
}

type pgxQuizRow struct {
	IssueId      int64  `db:"issue_id"`
	Chapter      string `db:"chapter"`
	ExerciseId   int64  `db:"exercise_id"`
	QuestionId   string `db:"question_id"`
	Question     string `db:"question"`
	AnswerNumber int    `db:"answer_number"`
	AnswerLetter string `db:"answer_letter"`
	Answer       string `db:"answer"`
	Correct      bool   `db:"correct"`
	Custom       bool   `db:"custom"`
}

type pgxEncryptedRow struct {
	Id         int64  `db:"id"`
	IssueId    int64  `db:"issue_id"`
	Chapter    string `db:"chapter"`
	ExerciseId int64  `db:"exercise_id"`
	Kind       string `db:"kind"`
	Number     int    `db:"number"`
	Blob       []byte `db:"blob"`
	Custom     bool   `db:"custom"`
}

func (p *PGX) Books(ctx context.Context) ([]*model.Book, error) {
	sql, params, err := p.g.From("book").
		Select("id", "title", "subtitle", "ref", "toggled", "language",
			subIssues.As("issues")).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var rows []pgxBook
	if err := pgxscan.Select(ctx, p.pg, &rows, sql, params...); err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}

	ret := make([]*model.Book, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, row.intoModel())
	}
	return ret, nil
}

func (p *PGX) Topics(ctx context.Context, issueIds []int64) ([]*model.Topic, error) {
	if len(issueIds) == 0 {
		return nil, nil
	}

	sql, params, err := p.g.From("topic").
		Select("id", "issue_id", "ord", "markup").
		Where(goqu.C("issue_id").In(issueIds)).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var rows []pgxTopic
	if err := pgxscan.Select(ctx, p.pg, &rows, sql, params...); err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}

	ret := make([]*model.Topic, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, &model.Topic{Id: row.Id, IssueId: row.IssueId, Order: row.Order, Markup: row.Markup})
	}
	return ret, nil
}

func (p *PGX) TOCRows(ctx context.Context, issueIds []int64) ([]*model.TOCRow, error) {
	if len(issueIds) == 0 {
		return nil, nil
	}

	sql, params, err := p.g.From("toc_entry").
		Select("id", "issue_id", "printed_page", "label", "level", "order_hint").
		Where(goqu.C("issue_id").In(issueIds)).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var rows []pgxTOCRow
	if err := pgxscan.Select(ctx, p.pg, &rows, sql, params...); err != nil {
		return nil, fmt.Errorf("listing toc rows: %w", err)
	}

	ret := make([]*model.TOCRow, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, &model.TOCRow{
			Id:          row.Id,
			IssueId:     row.IssueId,
			PrintedPage: row.PrintedPage,
			Label:       row.Label,
			Level:       row.Level,
			OrderHint:   row.OrderHint,
		})
	}
	return ret, nil
}

func (p *PGX) Resources(ctx context.Context, issueIds []int64, ids []int64) (map[int64]*model.Resource, error) {
	ret := make(map[int64]*model.Resource, len(ids))
	if len(issueIds) == 0 || len(ids) == 0 {
		return ret, nil
	}

	for start := 0; start < len(ids); start += p.pageSize {
		end := min(start+p.pageSize, len(ids))

		sql, params, err := p.g.From("resource").
			Select("id", "issue_id", "kind", "media_type", "data").
			Where(
				goqu.C("issue_id").In(issueIds),
				goqu.C("id").In(ids[start:end]),
			).
			Order(goqu.C("id").Asc()).
			ToSQL()
		if err != nil {
			return nil, err
		}

		var rows []pgxResource
		if err := pgxscan.Select(ctx, p.pg, &rows, sql, params...); err != nil {
			return nil, fmt.Errorf("fetching resources %d-%d: %w", start, end, err)
		}

		for _, row := range rows {
			if _, ok := ret[row.Id]; ok {
				continue
			}
			ret[row.Id] = &model.Resource{
				Id:        row.Id,
				IssueId:   row.IssueId,
				Kind:      model.ResourceKind(row.Kind),
				MediaType: row.MediaType,
				Data:      row.Data,
			}
		}
		p.l.DebugContext(ctx, "fetched resource page", "from", start, "to", end, "found", len(rows))
	}

	return ret, nil
}

func (p *PGX) QuizRows(ctx context.Context, issueIds []int64, custom bool) ([]*model.QuizRow, error) {
	if len(issueIds) == 0 {
		return nil, nil
	}

	sql, params, err := p.g.From("quiz_entry").
		Select("issue_id", "chapter", "exercise_id", "question_id", "question",
			"answer_number", "answer_letter", "answer", "correct", "custom").
		Where(
			goqu.C("issue_id").In(issueIds),
			goqu.C("custom").Eq(custom),
		).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var rows []pgxQuizRow
	if err := pgxscan.Select(ctx, p.pg, &rows, sql, params...); err != nil {
		return nil, fmt.Errorf("listing quiz rows: %w", err)
	}

	ret := make([]*model.QuizRow, 0, len(rows))
	for _, row := range rows {
		r := model.QuizRow(row)
		ret = append(ret, &r)
	}
	return ret, nil
}

func (p *PGX) QuizAssets(ctx context.Context, issueIds []int64) ([]*model.QuizAssetLink, error) {
	if len(issueIds) == 0 {
		return nil, nil
	}

	type row struct {
		ExerciseId int64 `db:"exercise_id"`
		ResourceId int64 `db:"resource_id"`
		Position   int   `db:"position"`
	}

	sql, params, err := p.g.From("quiz_asset").
		Select("quiz_asset.exercise_id", "quiz_asset.resource_id", "quiz_asset.position").
		Join(goqu.T("resource"), goqu.On(
			goqu.C("id").Table("resource").Eq(goqu.C("resource_id").Table("quiz_asset")),
		)).
		Where(
			goqu.C("issue_id").Table("resource").In(issueIds),
			goqu.C("kind").Table("resource").Eq(string(model.KindImage)),
		).
		Order(goqu.C("exercise_id").Asc(), goqu.C("position").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var rows []row
	if err := pgxscan.Select(ctx, p.pg, &rows, sql, params...); err != nil {
		return nil, fmt.Errorf("listing quiz assets: %w", err)
	}

	ret := make([]*model.QuizAssetLink, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, &model.QuizAssetLink{ExerciseId: r.ExerciseId, ResourceId: r.ResourceId, Position: r.Position})
	}
	return ret, nil
}

func (p *PGX) EncryptedQuiz(ctx context.Context) ([]*model.EncryptedQuizRow, error) {
	sql, params, err := p.g.From("quiz_encrypted").
		Select("id", "issue_id", "chapter", "exercise_id", "kind", "number", "blob", "custom").
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var rows []pgxEncryptedRow
	if err := pgxscan.Select(ctx, p.pg, &rows, sql, params...); err != nil {
		return nil, fmt.Errorf("listing encrypted quiz rows: %w", err)
	}

	ret := make([]*model.EncryptedQuizRow, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, &model.EncryptedQuizRow{
			Id:         row.Id,
			IssueId:    row.IssueId,
			Chapter:    row.Chapter,
			ExerciseId: row.ExerciseId,
			Kind:       model.QuizBlobKind(row.Kind),
			Number:     row.Number,
			Blob:       row.Blob,
			Custom:     row.Custom,
		})
	}
	return ret, nil
}

// SaveQuizRows upserts decrypted rows keyed by question id and answer number.
func (p *PGX) SaveQuizRows(ctx context.Context, rows []*model.QuizRow) error {
	for start := 0; start < len(rows); start += p.pageSize {
		end := min(start+p.pageSize, len(rows))

		batch := make([]any, 0, end-start)
		for _, row := range rows[start:end] {
			batch = append(batch, pgxQuizRow(*row))
		}

		sql, params, err := p.g.Insert("quiz_entry").
			Rows(batch...).
			OnConflict(goqu.DoUpdate("question_id, answer_number", map[string]any{
				"question":      goqu.L("excluded.question"),
				"answer_letter": goqu.L("excluded.answer_letter"),
				"answer":        goqu.L("excluded.answer"),
				"correct":       goqu.L("excluded.correct"),
			})).
			ToSQL()
		if err != nil {
			return err
		}

		if _, err := p.pg.Exec(ctx, sql, params...); err != nil {
			return fmt.Errorf("saving quiz rows: %w", err)
		}
	}
	return nil
}
