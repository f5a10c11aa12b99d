package model

// QuizRow is one decrypted question/answer pair. Questions without answers
// carry AnswerNumber 0.
type QuizRow struct {
	IssueId      int64
	Chapter      string
	ExerciseId   int64
	QuestionId   string
	Question     string
	AnswerNumber int
	AnswerLetter string
	Answer       string
	Correct      bool
	Custom       bool
}

type QuizAssetLink struct {
	ExerciseId int64
	ResourceId int64
	Position   int
}

type QuizBook struct {
	BookIndex int
	Title     string
	Language  string
	Chapters  []*QuizChapter
}

type QuizChapter struct {
	Title     string
	Questions []*QuizQuestion
	Shared    []*QuizSharedAssetGroup
}

type QuizQuestion struct {
	Id      string
	Number  int
	Text    string
	Answers []*QuizAnswer
	Assets  []*QuizAsset
}

type QuizAnswer struct {
	Number  int
	Letter  string
	Text    string
	Correct bool
}

type QuizAsset struct {
	ResourceId int64
	MediaType  string
	Data       []byte
}

// QuizSharedAssetGroup holds assets used identically by the listed questions.
type QuizSharedAssetGroup struct {
	Questions []int
	Assets    []*QuizAsset
	Caption   string
}

// CorrectLetter returns the letter of the first answer flagged correct.
func (q *QuizQuestion) CorrectLetter() (string, bool) {
	for _, a := range q.Answers {
		if a.Correct {
			return a.Letter, true
		}
	}
	return "", false
}

type QuizBlobKind string

const (
	BlobQuestion QuizBlobKind = "question"
	BlobAnswer   QuizBlobKind = "answer"
)

// EncryptedQuizRow is a quiz row as shipped in the export, before the
// decrypt maintenance step. Number is the answer number for answer blobs.
type EncryptedQuizRow struct {
	Id         int64
	IssueId    int64
	Chapter    string
	ExerciseId int64
	Kind       QuizBlobKind
	Number     int
	Blob       []byte
	Custom     bool
}
