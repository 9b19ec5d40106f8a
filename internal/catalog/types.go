package catalog

// Activity is a unit of course content. Activities are read-only to the
// simulator.
type Activity struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Difficulty in [0,1]; harder activities score lower.
	Difficulty float64 `json:"difficulty" yaml:"difficulty"`

	// EstimatedDuration is the nominal time to finish, in minutes.
	EstimatedDuration int `json:"estimatedDuration" yaml:"estimatedDuration"`

	// Probability is the selection weight. Weights need not sum to 1.
	Probability float64 `json:"probability" yaml:"probability"`

	// Rating in [0,1] is the activity's typical learner satisfaction.
	Rating float64 `json:"rating" yaml:"rating"`

	// ObjectType is an activity type IRI or a short ADL type name
	// such as "lesson" or "assessment".
	ObjectType string `json:"objectType,omitempty" yaml:"objectType,omitempty"`
	Href       string `json:"href,omitempty" yaml:"href,omitempty"`
}

// Section groups activities within a course.
type Section struct {
	Title      string     `json:"title" yaml:"title"`
	Activities []Activity `json:"activities" yaml:"activities"`
}

// Course is the course catalog consumed by the simulator.
type Course struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Sections    []Section `json:"sections" yaml:"sections"`
}

// Activities returns every activity in section order.
func (c *Course) Activities() []Activity {
	var out []Activity
	for _, s := range c.Sections {
		out = append(out, s.Activities...)
	}
	return out
}

// Activity finds an activity by id.
func (c *Course) Activity(id string) (Activity, bool) {
	for _, s := range c.Sections {
		for _, a := range s.Activities {
			if a.ID == id {
				return a, true
			}
		}
	}
	return Activity{}, false
}

// Verb is one entry of a verb vocabulary.
type Verb struct {
	ID         string `json:"id" yaml:"id"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	PrefLabel  string `json:"prefLabel" yaml:"prefLabel"`
	Definition string `json:"definition,omitempty" yaml:"definition,omitempty"`
}
