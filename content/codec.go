package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// LegacyID marks the single text block synthesized from a stored body that
// is not a block document. Generated ids are UUIDs and never collide with it.
const LegacyID = "legacy-content"

var (
	// ErrMalformed is returned by Parse for input that is not a block document.
	ErrMalformed = errors.New("content: malformed block document")
	// ErrInvalidURL is returned by Validate for media blocks whose content
	// is not a resolvable URL.
	ErrInvalidURL = errors.New("content: invalid media url")
)

// record is the wire shape of one block.
type record struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Caption string `json:"caption,omitempty"`
	Level   int    `json:"level,omitempty"`
}

func toRecord(b Block) record {
	r := record{
		ID:      b.ID(),
		Type:    string(b.Kind()),
		Content: ContentOf(b),
		Caption: CaptionOf(b),
	}
	switch v := b.(type) {
	case Headline:
		r.Level = v.Level
	case Unknown:
		r.Level = v.Level
	}
	return r
}

func fromRecord(r record) Block {
	switch Kind(r.Type) {
	case KindHeadline:
		return Headline{BlockID: r.ID, Text: r.Content, Level: r.Level}
	case KindText:
		return Text{BlockID: r.ID, Body: r.Content}
	case KindImage:
		return Image{BlockID: r.ID, URL: r.Content, Alt: r.Caption}
	case KindVideo:
		return Video{BlockID: r.ID, URL: r.Content, Title: r.Caption}
	case KindPDF:
		return PDF{BlockID: r.ID, URL: r.Content, Title: r.Caption}
	case KindLink:
		return Link{BlockID: r.ID, URL: r.Content, Label: r.Caption}
	}
	return Unknown{BlockID: r.ID, Type: r.Type, Content: r.Content, Caption: r.Caption, Level: r.Level}
}

// Blocks is an ordered block sequence that marshals to the wire format.
type Blocks []Block

// MarshalJSON encodes the sequence as a JSON array of block records.
func (bs Blocks) MarshalJSON() ([]byte, error) {
	recs := make([]record, 0, len(bs))
	for _, b := range bs {
		if b == nil {
			continue
		}
		recs = append(recs, toRecord(b))
	}
	return json.Marshal(recs)
}

// UnmarshalJSON decodes a JSON array of block records.
func (bs *Blocks) UnmarshalJSON(data []byte) error {
	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return err
	}
	out := make(Blocks, 0, len(recs))
	for _, r := range recs {
		out = append(out, fromRecord(r))
	}
	*bs = out
	return nil
}

// Encode serializes blocks for storage. A nil or empty sequence encodes as "[]".
func Encode(blocks []Block) (string, error) {
	data, err := json.Marshal(Blocks(blocks))
	if err != nil {
		return "", fmt.Errorf("encode blocks: %w", err)
	}
	return string(data), nil
}

// Parse decodes a stored block document strictly.
func Parse(raw string) ([]Block, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []Block{}, nil
	}
	if !strings.HasPrefix(trimmed, "[") {
		return nil, ErrMalformed
	}
	var bs Blocks
	if err := json.Unmarshal([]byte(trimmed), &bs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return []Block(bs), nil
}

// Decode reads a stored body and never fails. An empty body yields an empty
// sequence; anything that is not a block document is treated as legacy
// plain text and wrapped in a single text block with id LegacyID.
func Decode(raw string) []Block {
	blocks, err := Parse(raw)
	if err == nil {
		return blocks
	}
	return []Block{Text{BlockID: LegacyID, Body: raw}}
}

// Validate checks the media URL invariant: image, video and pdf blocks are
// either empty placeholders or carry an absolute http(s) or site-relative URL.
func Validate(blocks []Block) error {
	for _, b := range blocks {
		switch b.Kind() {
		case KindImage, KindVideo, KindPDF:
			u := strings.TrimSpace(ContentOf(b))
			if u == "" {
				continue
			}
			if !resolvable(u) {
				return fmt.Errorf("%w: block %s: %q", ErrInvalidURL, b.ID(), u)
			}
		}
	}
	return nil
}

func resolvable(raw string) bool {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
