package conversation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ImageMarker replaces image items when a multimodal utterance is flattened to text.
const ImageMarker = "[image]"

const (
	ItemText  = "text"
	ItemImage = "image"
)

// ContentItem is one element of a multimodal utterance.
type ContentItem struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Content is a committed user utterance: either plain text or a list of items.
// Absent (null) list elements are kept as nil.
type Content struct {
	Text   string
	Items  []*ContentItem
	IsList bool
}

func TextContent(text string) Content {
	return Content{Text: text}
}

func ListContent(items ...*ContentItem) Content {
	return Content{Items: items, IsList: true}
}

func TextItem(text string) *ContentItem {
	return &ContentItem{Type: ItemText, Text: text}
}

func ImageItem(url string) *ContentItem {
	return &ContentItem{Type: ItemImage, ImageURL: url}
}

// Normalize flattens content into a single text payload.
// ok is false when nothing but empty or whitespace material remains.
func Normalize(c Content) (text string, ok bool) {
	if !c.IsList {
		if strings.TrimSpace(c.Text) == "" {
			return "", false
		}
		return c.Text, true
	}

	parts := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		if item == nil {
			continue
		}
		switch item.Type {
		case ItemImage:
			parts = append(parts, ImageMarker)
		default:
			if strings.TrimSpace(item.Text) == "" {
				continue
			}
			parts = append(parts, item.Text)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n"), true
}

// UnmarshalJSON accepts a string, null, or an array whose elements are
// strings, nulls, or item objects.
func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Content{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = TextContent(s)
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]*ContentItem, 0, len(raw))
		for _, r := range raw {
			r = bytes.TrimSpace(r)
			switch {
			case bytes.Equal(r, []byte("null")):
				items = append(items, nil)
			case len(r) > 0 && r[0] == '"':
				var s string
				if err := json.Unmarshal(r, &s); err != nil {
					return err
				}
				items = append(items, TextItem(s))
			default:
				var item ContentItem
				if err := json.Unmarshal(r, &item); err != nil {
					return err
				}
				if item.Type == "" {
					item.Type = ItemText
				}
				items = append(items, &item)
			}
		}
		*c = ListContent(items...)
		return nil
	default:
		return fmt.Errorf("unsupported utterance content: %s", string(data))
	}
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.IsList {
		return json.Marshal(c.Items)
	}
	return json.Marshal(c.Text)
}
