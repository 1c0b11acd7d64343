package models

var DefaultPreComments = []string{
	"🔥 Fire!",
	"😂 LOL",
	"👏 Well said",
	"❤️ Love it",
	"🤔 Interesting",
}

// PreCommentCatalog is the ordered list of canned comments. It is never
// modified after construction.
type PreCommentCatalog struct {
	entries []string
}

// NewPreCommentCatalog copies entries, falling back to DefaultPreComments
// when entries is empty.
func NewPreCommentCatalog(entries []string) *PreCommentCatalog {
	if len(entries) == 0 {
		entries = DefaultPreComments
	}
	c := &PreCommentCatalog{entries: make([]string, len(entries))}
	copy(c.entries, entries)
	return c
}

func (c *PreCommentCatalog) Get(index int) (string, bool) {
	if index < 0 || index >= len(c.entries) {
		return "", false
	}
	return c.entries[index], true
}

func (c *PreCommentCatalog) Len() int {
	return len(c.entries)
}

func (c *PreCommentCatalog) Entries() []string {
	out := make([]string, len(c.entries))
	copy(out, c.entries)
	return out
}
