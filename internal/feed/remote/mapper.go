package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bakkerme/feedloader/internal/feed"
	"github.com/google/uuid"
)

// ErrInvalidData is wrapped by every error Map returns.
var ErrInvalidData = errors.New("remote: invalid data")

// Wire keys. Matching is exact and case-sensitive.
const (
	keyItems       = "items"
	keyID          = "id"
	keyDescription = "description"
	keyLocation    = "location"
	keyImage       = "image"
)

// object is a decoded JSON object. Keys are looked up verbatim, unlike
// struct-tag decoding which folds case.
type object map[string]json.RawMessage

// Map decodes a feed payload. Any status other than 200 fails without
// looking at data. Decoding is all-or-nothing: one bad record fails the call.
func Map(statusCode int, data []byte) ([]feed.Item, error) {
	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidData, statusCode)
	}

	var doc object
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidData, err)
	}
	rawItems, ok := doc[keyItems]
	if !ok {
		return nil, fmt.Errorf("%w: missing items array", ErrInvalidData)
	}
	var records []object
	if err := json.Unmarshal(rawItems, &records); err != nil {
		return nil, fmt.Errorf("%w: decode items: %v", ErrInvalidData, err)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: missing items array", ErrInvalidData)
	}

	items := make([]feed.Item, 0, len(records))
	for i, record := range records {
		mapped, err := record.toItem()
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrInvalidData, i, err)
		}
		items = append(items, mapped)
	}
	return items, nil
}

func (o object) toItem() (feed.Item, error) {
	rawID, err := o.optionalString(keyID)
	if err != nil {
		return feed.Item{}, err
	}
	if rawID == nil {
		return feed.Item{}, errors.New("missing id")
	}
	id, err := uuid.Parse(*rawID)
	if err != nil {
		return feed.Item{}, fmt.Errorf("parse id: %w", err)
	}

	rawImage, err := o.optionalString(keyImage)
	if err != nil {
		return feed.Item{}, err
	}
	if rawImage == nil {
		return feed.Item{}, errors.New("missing image")
	}
	image, err := url.Parse(*rawImage)
	if err != nil {
		return feed.Item{}, fmt.Errorf("parse image: %w", err)
	}
	if !image.IsAbs() || image.Host == "" {
		return feed.Item{}, fmt.Errorf("image %q is not an absolute url", *rawImage)
	}

	description, err := o.optionalString(keyDescription)
	if err != nil {
		return feed.Item{}, err
	}
	location, err := o.optionalString(keyLocation)
	if err != nil {
		return feed.Item{}, err
	}

	return feed.NewItem(id, description, location, image), nil
}

// optionalString returns nil when key is absent or null.
func (o object) optionalString(key string) (*string, error) {
	raw, ok := o[key]
	if !ok {
		return nil, nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return s, nil
}
