package parser

// DateContext remembers the date announced by the most recent date separator.
// A fresh, unset context is used for every parse.
type DateContext struct {
	date Date
	set  bool
}

// Set replaces the current date.
func (c *DateContext) Set(d Date) {
	c.date = d
	c.set = true
}

// Get returns the current date and whether one has been seen.
func (c *DateContext) Get() (Date, bool) {
	return c.date, c.set
}

// Clear forgets the current date.
func (c *DateContext) Clear() {
	*c = DateContext{}
}
