package model

type ResourceKind string

const (
	KindMarkup     ResourceKind = "markup"
	KindStylesheet ResourceKind = "stylesheet"
	KindImage      ResourceKind = "image"
	KindFont       ResourceKind = "font"
)

type Book struct {
	Id       int64   `json:"id"`
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Ref      string  `json:"ref,omitempty"`
	IssueIds []int64 `json:"issue_ids"`
	Toggled  bool    `json:"toggled"`
	Language string  `json:"language,omitempty"`
}

// DisplayTitle joins title and subtitle the way the catalog shows them.
func (b *Book) DisplayTitle() string {
	if b.Subtitle == "" {
		return b.Title
	}
	return b.Title + " – " + b.Subtitle
}

type Issue struct {
	Id       int64
	BookId   int64
	Title    string
	Position int
}

type Topic struct {
	Id      int64
	IssueId int64
	// Order is nil for topics that are not part of the printed sequence.
	Order  *int
	Markup string
}

type Resource struct {
	Id        int64
	IssueId   int64
	Kind      ResourceKind
	MediaType string
	Data      []byte
}
