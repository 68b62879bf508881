// Package content defines the block document model used for post bodies:
// a closed set of block variants, their JSON wire format, and the editor
// state machine that mutates an ordered block sequence.
package content

import (
	"github.com/google/uuid"
)

// Kind is the wire name of a block variant.
type Kind string

const (
	KindHeadline Kind = "headline"
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindPDF      Kind = "pdf"
	KindLink     Kind = "link"
)

// Kinds lists the block kinds the editor can create, in menu order.
var Kinds = []Kind{KindHeadline, KindText, KindImage, KindVideo, KindPDF, KindLink}

// Valid reports whether k is one of the known block kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindHeadline, KindText, KindImage, KindVideo, KindPDF, KindLink:
		return true
	}
	return false
}

// Block is one unit of authored content. The set of implementations is
// closed; each variant carries only the fields valid for its kind.
type Block interface {
	ID() string
	Kind() Kind
	block()
}

// Headline is a section heading. Level is 1-6, or 0 when unset.
type Headline struct {
	BlockID string
	Text    string
	Level   int
}

// Text is a run of paragraphs separated by blank lines.
type Text struct {
	BlockID string
	Body    string
}

// Image references an image by URL with optional alt text.
type Image struct {
	BlockID string
	URL     string
	Alt     string
}

// Video references a provider page or a video file.
type Video struct {
	BlockID string
	URL     string
	Title   string
}

// PDF references a document shown as a download button.
type PDF struct {
	BlockID string
	URL     string
	Title   string
}

// Link is a call-to-action button.
type Link struct {
	BlockID string
	URL     string
	Label   string
}

// Unknown holds a stored block whose type this version does not know.
// It is kept verbatim so that re-saving a document does not drop it.
type Unknown struct {
	BlockID string
	Type    string
	Content string
	Caption string
	Level   int
}

func (b Headline) ID() string { return b.BlockID }
func (b Text) ID() string     { return b.BlockID }
func (b Image) ID() string    { return b.BlockID }
func (b Video) ID() string    { return b.BlockID }
func (b PDF) ID() string      { return b.BlockID }
func (b Link) ID() string     { return b.BlockID }
func (b Unknown) ID() string  { return b.BlockID }

func (Headline) Kind() Kind  { return KindHeadline }
func (Text) Kind() Kind      { return KindText }
func (Image) Kind() Kind     { return KindImage }
func (Video) Kind() Kind     { return KindVideo }
func (PDF) Kind() Kind       { return KindPDF }
func (Link) Kind() Kind      { return KindLink }
func (b Unknown) Kind() Kind { return Kind(b.Type) }

func (Headline) block() {}
func (Text) block()     {}
func (Image) block()    {}
func (Video) block()    {}
func (PDF) block()      {}
func (Link) block()     {}
func (Unknown) block()  {}

// NewID returns a fresh block identifier.
func NewID() string {
	return uuid.NewString()
}

// New creates an empty block of the given kind with a fresh id.
// Unknown kinds yield nil.
func New(kind Kind) Block {
	id := NewID()
	switch kind {
	case KindHeadline:
		return Headline{BlockID: id, Level: 2}
	case KindText:
		return Text{BlockID: id}
	case KindImage:
		return Image{BlockID: id}
	case KindVideo:
		return Video{BlockID: id}
	case KindPDF:
		return PDF{BlockID: id}
	case KindLink:
		return Link{BlockID: id}
	}
	return nil
}

// WithID returns a copy of b carrying id.
func WithID(b Block, id string) Block {
	switch v := b.(type) {
	case Headline:
		v.BlockID = id
		return v
	case Text:
		v.BlockID = id
		return v
	case Image:
		v.BlockID = id
		return v
	case Video:
		v.BlockID = id
		return v
	case PDF:
		v.BlockID = id
		return v
	case Link:
		v.BlockID = id
		return v
	case Unknown:
		v.BlockID = id
		return v
	}
	return b
}

// ContentOf returns the semantic payload of b: the text of headline and
// text blocks, the URL of media and link blocks.
func ContentOf(b Block) string {
	switch v := b.(type) {
	case Headline:
		return v.Text
	case Text:
		return v.Body
	case Image:
		return v.URL
	case Video:
		return v.URL
	case PDF:
		return v.URL
	case Link:
		return v.URL
	case Unknown:
		return v.Content
	}
	return ""
}

// CaptionOf returns the optional label of b, or "" for kinds without one.
func CaptionOf(b Block) string {
	switch v := b.(type) {
	case Image:
		return v.Alt
	case Video:
		return v.Title
	case PDF:
		return v.Title
	case Link:
		return v.Label
	case Unknown:
		return v.Caption
	}
	return ""
}

// Patch names the fields to replace on a block. Nil fields are left alone;
// fields the target variant does not carry are ignored.
type Patch struct {
	Content *string
	Caption *string
	Level   *int
}

// Apply returns a copy of b with the patch applied.
func (p Patch) Apply(b Block) Block {
	switch v := b.(type) {
	case Headline:
		if p.Content != nil {
			v.Text = *p.Content
		}
		if p.Level != nil && *p.Level >= 1 && *p.Level <= 6 {
			v.Level = *p.Level
		}
		return v
	case Text:
		if p.Content != nil {
			v.Body = *p.Content
		}
		return v
	case Image:
		if p.Content != nil {
			v.URL = *p.Content
		}
		if p.Caption != nil {
			v.Alt = *p.Caption
		}
		return v
	case Video:
		if p.Content != nil {
			v.URL = *p.Content
		}
		if p.Caption != nil {
			v.Title = *p.Caption
		}
		return v
	case PDF:
		if p.Content != nil {
			v.URL = *p.Content
		}
		if p.Caption != nil {
			v.Title = *p.Caption
		}
		return v
	case Link:
		if p.Content != nil {
			v.URL = *p.Content
		}
		if p.Caption != nil {
			v.Label = *p.Caption
		}
		return v
	}
	return b
}
