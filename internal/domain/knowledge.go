package domain

// Destination is a place the bot can describe. Key is the lower-case name that
// is searched for in user text.
type Destination struct {
	Key           string   `json:"key" yaml:"key"`
	Description   string   `json:"description" yaml:"description"`
	Activities    []string `json:"activities" yaml:"activities"`
	Accommodation string   `json:"accommodation" yaml:"accommodation"`
	BestTime      string   `json:"best_time" yaml:"best_time"`
}

// Category groups destination names under an activity type ("beach", "city").
// Destinations are plain names and are not linked to Destination records.
type Category struct {
	Key          string   `json:"key" yaml:"key"`
	Destinations []string `json:"destinations" yaml:"destinations"`
}

// Knowledge is the static knowledge base. Slice order is declaration order and
// decides ties when more than one key matches.
type Knowledge struct {
	Destinations []Destination `json:"destinations" yaml:"destinations"`
	Categories   []Category    `json:"categories" yaml:"categories"`
	Tips         []string      `json:"tips" yaml:"tips"`
}

func (k *Knowledge) Destination(key string) (Destination, bool) {
	for _, d := range k.Destinations {
		if d.Key == key {
			return d, true
		}
	}
	return Destination{}, false
}

func (k *Knowledge) Category(key string) (Category, bool) {
	for _, c := range k.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}
