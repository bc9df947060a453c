package replies

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultGroup names the fallback reply chosen when no keyword group matches.
const DefaultGroup = "default"

const (
	maxButtons     = 3
	maxButtonTitle = 20
)

var (
	// ErrEmptyReply is returned when a group or the fallback has no reply text.
	ErrEmptyReply = errors.New("replies: reply text required")
	// ErrNoKeywords is returned when a group has no usable keywords.
	ErrNoKeywords = errors.New("replies: group needs at least one keyword")
)

// Button is a quick-reply button offered alongside a reply.
type Button struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// Reply is the canned response for a keyword group.
type Reply struct {
	Text    string
	Buttons []Button
}

// Group maps a set of synonymous keywords to one reply.
type Group struct {
	Name     string
	Keywords []string
	Reply    Reply
}

// Match is the outcome of selecting a reply for a message.
type Match struct {
	Group   string
	Keyword string
	Reply   Reply
}

// IsDefault reports whether no keyword group matched.
func (m Match) IsDefault() bool {
	return m.Group == DefaultGroup
}

// Table is an ordered, immutable keyword reply table. Groups are evaluated in
// order and the first group with a keyword contained in the normalized text
// wins. A Table is safe for concurrent use.
type Table struct {
	groups   []Group
	fallback Reply
}

// NewTable validates and copies groups into a Table. Keywords are trimmed and
// lowercased; empty keywords are dropped.
func NewTable(groups []Group, fallback Reply) (*Table, error) {
	if strings.TrimSpace(fallback.Text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyReply, DefaultGroup)
	}
	if err := validateButtons(DefaultGroup, fallback.Buttons); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(groups))
	out := make([]Group, 0, len(groups))
	for i, g := range groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			name = fmt.Sprintf("group_%d", i+1)
		}
		if name == DefaultGroup {
			return nil, fmt.Errorf("replies: group name %q is reserved", DefaultGroup)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("replies: duplicate group %q", name)
		}
		seen[name] = struct{}{}

		keywords := make([]string, 0, len(g.Keywords))
		for _, kw := range g.Keywords {
			if kw = Normalize(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoKeywords, name)
		}
		if strings.TrimSpace(g.Reply.Text) == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyReply, name)
		}
		if err := validateButtons(name, g.Reply.Buttons); err != nil {
			return nil, err
		}

		out = append(out, Group{
			Name:     name,
			Keywords: keywords,
			Reply:    copyReply(g.Reply),
		})
	}

	return &Table{groups: out, fallback: copyReply(fallback)}, nil
}

// MustNewTable is NewTable that panics on error, for static tables.
func MustNewTable(groups []Group, fallback Reply) *Table {
	t, err := NewTable(groups, fallback)
	if err != nil {
		panic(err)
	}
	return t
}

// Normalize trims surrounding whitespace and lowercases text.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Select returns the reply for text: the first group with a keyword contained
// in the normalized text, or the default reply.
func (t *Table) Select(text string) Match {
	normalized := Normalize(text)
	if normalized != "" {
		for _, g := range t.groups {
			for _, kw := range g.Keywords {
				if strings.Contains(normalized, kw) {
					return Match{Group: g.Name, Keyword: kw, Reply: g.Reply}
				}
			}
		}
	}
	return Match{Group: DefaultGroup, Reply: t.fallback}
}

// Groups returns a copy of the table's groups in evaluation order.
func (t *Table) Groups() []Group {
	out := make([]Group, len(t.groups))
	for i, g := range t.groups {
		out[i] = Group{
			Name:     g.Name,
			Keywords: append([]string(nil), g.Keywords...),
			Reply:    copyReply(g.Reply),
		}
	}
	return out
}

// Default returns the fallback reply.
func (t *Table) Default() Reply {
	return copyReply(t.fallback)
}

func copyReply(r Reply) Reply {
	return Reply{Text: r.Text, Buttons: append([]Button(nil), r.Buttons...)}
}

func validateButtons(group string, buttons []Button) error {
	if len(buttons) > maxButtons {
		return fmt.Errorf("replies: group %q has %d buttons, max %d", group, len(buttons), maxButtons)
	}
	for _, b := range buttons {
		if strings.TrimSpace(b.ID) == "" || strings.TrimSpace(b.Title) == "" {
			return fmt.Errorf("replies: group %q has a button without id or title", group)
		}
		if utf8.RuneCountInString(b.Title) > maxButtonTitle {
			return fmt.Errorf("replies: group %q button %q title exceeds %d characters", group, b.ID, maxButtonTitle)
		}
	}
	return nil
}
