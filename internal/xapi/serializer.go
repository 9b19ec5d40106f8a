package xapi

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/abhisek/learnsim/internal/catalog"
	"github.com/abhisek/learnsim/internal/events"
	"github.com/abhisek/learnsim/internal/profile"
	"github.com/abhisek/learnsim/internal/rng"
	"github.com/abhisek/learnsim/internal/session"
)

const (
	adlVerbBase     = "http://adlnet.gov/expapi/verbs/"
	adlActivityBase = "http://adlnet.gov/expapi/activities/"
)

// Config controls how statements are stamped.
type Config struct {
	Version           string
	IRIBase           string
	InstructorName    string
	InstructorMailbox string
	Language          string
	Platform          string
}

// DefaultConfig returns the default serializer settings.
func DefaultConfig() Config {
	return Config{
		Version:           DefaultVersion,
		IRIBase:           "https://learnsim.example.com/xapi",
		InstructorName:    "Course Instructor",
		InstructorMailbox: "instructor@example.com",
		Language:          "en-US",
		Platform:          "learnsim",
	}
}

// Serializer turns interactions into statements and back.
type Serializer struct {
	cfg   Config
	verbs *catalog.VerbCatalog
	rng   rng.Source
}

// NewSerializer creates a serializer. Statement ids are drawn from r.
func NewSerializer(cfg Config, verbs *catalog.VerbCatalog, r rng.Source) *Serializer {
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	def := DefaultConfig()
	if cfg.Language == "" {
		cfg.Language = def.Language
	}
	if cfg.IRIBase == "" {
		cfg.IRIBase = def.IRIBase
	}
	if cfg.InstructorMailbox == "" {
		cfg.InstructorMailbox = def.InstructorMailbox
	}
	if cfg.InstructorName == "" {
		cfg.InstructorName = def.InstructorName
	}
	cfg.IRIBase = strings.TrimRight(cfg.IRIBase, "/")
	return &Serializer{cfg: cfg, verbs: verbs, rng: r}
}

// ProgressExtension is the result extension key carrying progress in [0,1].
func (s *Serializer) ProgressExtension() string {
	return s.cfg.IRIBase + "/extensions/progress"
}

// ActivityExtension is the object extension key carrying the catalog activity id.
func (s *Serializer) ActivityExtension() string {
	return s.cfg.IRIBase + "/extensions/activity-id"
}

// CourseExtension is the context extension key carrying the course id.
func (s *Serializer) CourseExtension() string {
	return s.cfg.IRIBase + "/extensions/course-id"
}

// ResolveVerb returns the vocabulary entry for kind, or an ADL-style
// fallback with a generated definition when the vocabulary lacks it.
func (s *Serializer) ResolveVerb(kind events.Kind) catalog.Verb {
	if v, ok := s.verbs.Lookup(string(kind)); ok {
		return v
	}
	return catalog.Verb{
		ID:         adlVerbBase + string(kind),
		PrefLabel:  string(kind),
		Definition: fmt.Sprintf("Indicates the actor %s the activity.", string(kind)),
	}
}

// Statement serializes one interaction. A nil activity yields a
// statement about the course itself.
func (s *Serializer) Statement(in events.Interaction, act *catalog.Activity, learner profile.LearnerProfile, course *catalog.Course, registration string) Statement {
	verb := s.ResolveVerb(in.Kind)
	st := Statement{
		ID: rng.UUID(s.rng).String(),
		Actor: Agent{
			ObjectType: "Agent",
			Name:       localPart(learner.Email),
			Mbox:       "mailto:" + learner.Email,
		},
		Verb: Verb{
			ID:      verb.ID,
			Display: LanguageMap{s.cfg.Language: verb.PrefLabel},
		},
		Timestamp: in.Timestamp.UTC(),
		Version:   s.cfg.Version,
		Result:    s.result(in.Result),
		Context:   s.context(course, registration),
	}
	if act != nil {
		st.Object = s.activityObject(*act, course)
	} else {
		st.Object = s.courseObject(course, true)
	}
	return st
}

// Session serializes every interaction of a learning session, ordered
// by timestamp. The session id is the registration.
func (s *Serializer) Session(learner profile.LearnerProfile, course *catalog.Course, sess session.LearningSession) []Statement {
	var out []Statement
	for i := range sess.Activities {
		sa := &sess.Activities[i]
		for _, in := range sess.Activities[i].Interactions {
			out = append(out, s.Statement(in, &sa.Activity, learner, course, sess.ID))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Interaction recovers the event kind and result from a statement.
func (s *Serializer) Interaction(st Statement) (events.Interaction, error) {
	kind, err := s.kindOf(st.Verb.ID)
	if err != nil {
		return events.Interaction{}, err
	}
	in := events.Interaction{Kind: kind, Timestamp: st.Timestamp}
	if st.Result == nil {
		return in, nil
	}

	res := &events.Result{Success: st.Result.Success, Completion: st.Result.Completion}
	if st.Result.Duration != "" {
		minutes, err := ParseDuration(st.Result.Duration)
		if err != nil {
			return events.Interaction{}, fmt.Errorf("statement %s: %w", st.ID, err)
		}
		res.Duration = minutesToDuration(minutes)
	}
	if sc := st.Result.Score; sc != nil {
		res.Score = &events.Score{
			Raw:    int(math.Round(sc.Raw)),
			Min:    int(math.Round(sc.Min)),
			Max:    int(math.Round(sc.Max)),
			Scaled: sc.Scaled,
		}
	}
	if v, ok := st.Result.Extensions[s.ProgressExtension()]; ok {
		p, err := toFloat(v)
		if err != nil {
			return events.Interaction{}, fmt.Errorf("statement %s progress: %w", st.ID, err)
		}
		res.Progress = &p
	}
	in.Result = res
	return in, nil
}

func (s *Serializer) kindOf(verbID string) (events.Kind, error) {
	if name, ok := s.verbs.NameOf(verbID); ok {
		return events.Kind(name), nil
	}
	if name, ok := strings.CutPrefix(verbID, adlVerbBase); ok {
		for _, k := range events.AllKinds() {
			if string(k) == name {
				return k, nil
			}
		}
	}
	return "", fmt.Errorf("unknown verb %q", verbID)
}

func (s *Serializer) result(r *events.Result) *Result {
	if r == nil {
		return nil
	}
	out := &Result{Success: r.Success, Completion: r.Completion}
	if r.Duration > 0 {
		out.Duration = FormatDuration(r.Duration)
	}
	if r.Score != nil {
		out.Score = &Score{
			Scaled: r.Score.Scaled,
			Raw:    float64(r.Score.Raw),
			Min:    float64(r.Score.Min),
			Max:    float64(r.Score.Max),
		}
	}
	if r.Progress != nil {
		out.Extensions = map[string]any{s.ProgressExtension(): *r.Progress}
	}
	return out
}

func (s *Serializer) context(course *catalog.Course, registration string) *Context {
	courseID := "unknown"
	if course != nil {
		courseID = course.ID
	}
	return &Context{
		Registration: registration,
		Instructor: &Agent{
			ObjectType: "Agent",
			Name:       s.cfg.InstructorName,
			Mbox:       "mailto:" + s.cfg.InstructorMailbox,
		},
		ContextActivities: &ContextActivities{Parent: []Object{s.courseObject(course, false)}},
		Platform:          s.cfg.Platform,
		Language:          s.cfg.Language,
		Extensions:        map[string]any{s.CourseExtension(): courseID},
	}
}

func (s *Serializer) activityObject(a catalog.Activity, course *catalog.Course) Object {
	id := a.Href
	if !isIRI(id) {
		id = s.courseIRI(course) + "/activities/" + a.ID
	}
	def := &ActivityDefinition{
		Type:       activityType(a.ObjectType),
		Name:       LanguageMap{s.cfg.Language: a.Title},
		Extensions: map[string]any{s.ActivityExtension(): a.ID},
	}
	if a.Description != "" {
		def.Description = LanguageMap{s.cfg.Language: a.Description}
	}
	if isIRI(a.Href) {
		def.MoreInfo = a.Href
	}
	return Object{ObjectType: "Activity", ID: id, Definition: def}
}

func (s *Serializer) courseObject(course *catalog.Course, withDefinition bool) Object {
	obj := Object{ObjectType: "Activity", ID: s.courseIRI(course)}
	if withDefinition && course != nil {
		obj.Definition = &ActivityDefinition{
			Type: adlActivityBase + "course",
			Name: LanguageMap{s.cfg.Language: course.Title},
		}
		if course.Description != "" {
			obj.Definition.Description = LanguageMap{s.cfg.Language: course.Description}
		}
	}
	return obj
}

func (s *Serializer) courseIRI(course *catalog.Course) string {
	if course == nil {
		return s.cfg.IRIBase + "/courses/unknown"
	}
	if isIRI(course.ID) {
		return strings.TrimRight(course.ID, "/")
	}
	return s.cfg.IRIBase + "/courses/" + course.ID
}

func activityType(t string) string {
	switch {
	case t == "":
		return adlActivityBase + "lesson"
	case isIRI(t):
		return t
	default:
		return adlActivityBase + t
	}
}

func isIRI(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("unexpected extension value %T", v)
	}
}
