package export

import "errors"

var (
	ErrEmptySelection = errors.New("selection is empty")
	ErrUnknownBook    = errors.New("book not in catalog")
	ErrNoTopics       = errors.New("selected books have no printable topics")
)
