package domain

// CategoryLabel is one display label from either of the two disjoint
// category sets. Git-relative builds use New/Modified/Unchanged,
// deployed-site builds use Recent/Updated/Older; the two sets never mix
// within a single categorization run.
type CategoryLabel string

const (
	LabelNew       CategoryLabel = "NEW"
	LabelModified  CategoryLabel = "MODIFIED"
	LabelUnchanged CategoryLabel = "UNCHANGED"

	LabelRecent  CategoryLabel = "RECENT"
	LabelUpdated CategoryLabel = "UPDATED"
	LabelOlder   CategoryLabel = "OLDER"
)

// Category is a tagged display variant carrying its label and the color
// the rendering layer uses for it, so the renderer stays generic over
// both label sets.
type Category struct {
	Label CategoryLabel `json:"label"`
	Color string        `json:"color"`
}

var (
	CategoryNew       = Category{Label: LabelNew, Color: "green"}
	CategoryModified  = Category{Label: LabelModified, Color: "yellow"}
	CategoryUnchanged = Category{Label: LabelUnchanged, Color: "gray"}

	CategoryRecent  = Category{Label: LabelRecent, Color: "green"}
	CategoryUpdated = Category{Label: LabelUpdated, Color: "yellow"}
	CategoryOlder   = Category{Label: LabelOlder, Color: "gray"}
)
