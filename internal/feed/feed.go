package feed

import (
	"context"
	"net/url"

	"github.com/google/uuid"
)

// Item is a single entry of a loaded feed. Items are immutable values and
// compare equal with == when their contents are equal.
type Item struct {
	id          uuid.UUID
	description text
	location    text
	image       string
}

// text is an optional string.
type text struct {
	value string
	set   bool
}

func newText(s *string) text {
	if s == nil {
		return text{}
	}
	return text{value: *s, set: true}
}

// NewItem copies its arguments into an Item. A nil description or location
// means the field is absent.
func NewItem(id uuid.UUID, description, location *string, image *url.URL) Item {
	item := Item{
		id:          id,
		description: newText(description),
		location:    newText(location),
	}
	if image != nil {
		item.image = image.String()
	}
	return item
}

func (i Item) ID() uuid.UUID { return i.id }

// Description reports the description and whether it was present.
func (i Item) Description() (string, bool) { return i.description.value, i.description.set }

// Location reports the location and whether it was present.
func (i Item) Location() (string, bool) { return i.location.value, i.location.set }

// Image returns a fresh copy of the image URL, or nil if the item has none.
func (i Item) Image() *url.URL {
	if i.image == "" {
		return nil
	}
	u, err := url.Parse(i.image)
	if err != nil {
		return nil
	}
	return u
}

// ErrorKind is the closed set of failures a Loader reports.
type ErrorKind int

const (
	// Connectivity means the transport could not complete the exchange.
	Connectivity ErrorKind = iota + 1
	// InvalidData means the exchange completed but the response was unusable.
	InvalidData
)

func (k ErrorKind) Error() string {
	switch k {
	case Connectivity:
		return "feed: connectivity"
	case InvalidData:
		return "feed: invalid data"
	default:
		return "feed: unknown error"
	}
}

// Result is the outcome of a single Load call. Err is nil on success,
// otherwise it is one of Connectivity or InvalidData.
type Result struct {
	Items []Item
	Err   error
}

func Success(items []Item) Result {
	return Result{Items: items}
}

func Failure(kind ErrorKind) Result {
	return Result{Err: kind}
}

// Loader loads a feed and calls completion exactly once with the outcome.
type Loader interface {
	Load(ctx context.Context, completion func(Result))
}
