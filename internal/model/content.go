package model

// Settings holds the SMTP account and addressing used for every send.
// To and Cc are comma-separated address lists; ServerPort stays a string
// and is joined with the host at dial time.
type Settings struct {
	ServerName string `json:"server_name"`
	ServerPort string `json:"server_port"`
	Sender     string `json:"sender"`
	Password   string `json:"password"`
	To         string `json:"to"`
	Cc         string `json:"cc"`
	Name       string `json:"name"`
}

// IsEmpty reports whether the settings have never been filled in.
func (s Settings) IsEmpty() bool {
	return s == Settings{}
}

// Content is the full persisted state: settings plus the daily and weekly
// entry grids. Each grid maps a field name to exactly EntriesPerField texts,
// positionally aligned with WeekdayLabels.
type Content struct {
	Settings Settings            `json:"settings"`
	Daily    map[string][]string `json:"daily"`
	Weekly   map[string][]string `json:"weekly"`
}

// DefaultContent returns an empty Content, used when no content file exists.
func DefaultContent() *Content {
	return &Content{
		Daily:  map[string][]string{},
		Weekly: map[string][]string{},
	}
}

// EntriesPerField is the number of texts per field, one per weekday.
const EntriesPerField = 5

// WeekdayLabels label the entry rows, in grid order.
var WeekdayLabels = [EntriesPerField]string{"Mon.", "Tue.", "Wed.", "Thur.", "Fri."}

// Field pairs a context key with its display label.
type Field struct {
	Name  string
	Label string
}

// DailyFields and WeeklyFields define the entry columns of the two grids.
var (
	DailyFields = []Field{
		{Name: "conclusion", Label: "Conclusions"},
		{Name: "plan", Label: "Plans"},
	}
	WeeklyFields = []Field{
		{Name: "conclusion", Label: "Conclusions"},
		{Name: "progress", Label: "Progresses"},
		{Name: "plan", Label: "Plans"},
	}
)

// Normalize pads or trims every grid list to EntriesPerField entries so the
// positional weekday alignment always holds. Entries are never reordered.
func (c *Content) Normalize() {
	normalizeGrid(c.Daily)
	normalizeGrid(c.Weekly)
}

func normalizeGrid(grid map[string][]string) {
	for name, entries := range grid {
		if len(entries) == EntriesPerField {
			continue
		}
		fixed := make([]string, EntriesPerField)
		copy(fixed, entries)
		grid[name] = fixed
	}
}
