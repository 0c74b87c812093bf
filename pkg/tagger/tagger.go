package tagger

import (
	"strings"

	"github.com/ccollicutt/talklog/pkg/parser"
)

// Tags are the labels attached to one piece of text.
type Tags struct {
	Category  string `json:"category"`
	Publisher string `json:"publisher"`
	Subject   string `json:"subject"`
	Complaint bool   `json:"complaint"`
}

// TaggedMessage is a chat record with its tags.
type TaggedMessage struct {
	parser.Record
	Tags
}

// Tagger matches text against immutable keyword tables.
type Tagger struct {
	tables            Tables
	fold              bool
	publisherFallback string
}

// NewChatTagger returns a case-sensitive tagger for chat messages. Messages
// without a publisher get an empty publisher tag.
func NewChatTagger(t Tables) *Tagger {
	return &Tagger{tables: t.Clone()}
}

// NewNewsTagger returns a tagger for news text. Keywords and text are
// lowercased before matching, and a missing publisher is DefaultPublisher.
func NewNewsTagger(t Tables) *Tagger {
	tables := t.Clone()
	for i := range tables.Categories {
		lowerAll(tables.Categories[i].Keywords)
	}
	lowerAll(tables.Subjects)
	lowerAll(tables.Complaints)
	lowerAll(tables.TextbookTerms)
	// Publisher names are reported as configured, so they are lowered at match time.
	return &Tagger{tables: tables, fold: true, publisherFallback: DefaultPublisher}
}

// Tables returns a copy of the tables in use.
func (t *Tagger) Tables() Tables {
	return t.tables.Clone()
}

// Tag computes all tags for text.
func (t *Tagger) Tag(text string) Tags {
	text = t.normalize(text)
	return Tags{
		Category:  t.category(text),
		Publisher: t.publisher(text),
		Subject:   firstContained(text, t.tables.Subjects),
		Complaint: firstContained(text, t.tables.Complaints) != "",
	}
}

// Category returns the first category whose keywords appear in text, or
// DefaultCategory.
func (t *Tagger) Category(text string) string {
	return t.category(t.normalize(text))
}

// Publisher returns the first configured publisher that appears in text.
func (t *Tagger) Publisher(text string) string {
	return t.publisher(t.normalize(text))
}

// PublisherMentioned reports whether any publisher appears in text.
func (t *Tagger) PublisherMentioned(text string) bool {
	text = t.normalize(text)
	for _, p := range t.tables.Publishers {
		if t.contains(text, p) {
			return true
		}
	}
	return false
}

// TextbookMentioned reports whether any textbook term appears in text.
func (t *Tagger) TextbookMentioned(text string) bool {
	return firstContained(t.normalize(text), t.tables.TextbookTerms) != ""
}

// TagMessages tags each record's message. The input is not modified.
func (t *Tagger) TagMessages(records []parser.Record) []TaggedMessage {
	out := make([]TaggedMessage, len(records))
	for i, r := range records {
		out[i] = TaggedMessage{Record: r, Tags: t.Tag(r.Message)}
	}
	return out
}

func (t *Tagger) category(text string) string {
	for _, rule := range t.tables.Categories {
		if firstContained(text, rule.Keywords) != "" {
			return rule.Name
		}
	}
	return DefaultCategory
}

func (t *Tagger) publisher(text string) string {
	for _, p := range t.tables.Publishers {
		if t.contains(text, p) {
			return p
		}
	}
	return t.publisherFallback
}

func (t *Tagger) contains(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	if t.fold {
		keyword = strings.ToLower(keyword)
	}
	return strings.Contains(text, keyword)
}

func (t *Tagger) normalize(text string) string {
	if t.fold {
		return strings.ToLower(text)
	}
	return text
}

func firstContained(text string, keywords []string) string {
	for _, k := range keywords {
		if k != "" && strings.Contains(text, k) {
			return k
		}
	}
	return ""
}

func lowerAll(ss []string) {
	for i, s := range ss {
		ss[i] = strings.ToLower(s)
	}
}
