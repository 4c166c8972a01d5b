// Package course implements the course-assistant responders: schedule
// lookups, preparation plans, assignment tracking, and topic research.
//
// Responders hold only immutable configuration (filesystem, paths, LLM
// handle). All per-call state arrives in the dispatch Request and the
// schedule is re-read on every call, so no invocation can observe another's
// leftovers.
package course

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aafsar/multi-modal-agent/core/intents"
	"github.com/aafsar/multi-modal-agent/core/responders"
	"github.com/spf13/afero"
)

const (
	defaultSchedulePath    = "data/schedule.csv"
	defaultPreferencesPath = "knowledge/user_preference.txt"
	defaultTrack           = "Tech"
	defaultTopic           = "AI Agents"
)

const concisePromptSuffix = "Answer in at most three short sentences; the answer may be read aloud."

// Crew wires the course responders into a dispatch registry.
type Crew struct {
	fileSys         afero.Fs
	schedulePath    string
	preferencesPath string
	track           string
	llm             LLM
}

type CrewOption func(*Crew)

func WithFileSystem(fileSys afero.Fs) CrewOption {
	return func(c *Crew) {
		if fileSys != nil {
			c.fileSys = fileSys
		}
	}
}

func WithSchedulePath(path string) CrewOption {
	return func(c *Crew) {
		if path != "" {
			c.schedulePath = path
		}
	}
}

func WithPreferencesPath(path string) CrewOption {
	return func(c *Crew) {
		if path != "" {
			c.preferencesPath = path
		}
	}
}

// WithDefaultTrack sets the assignment track used when a question does not
// name one.
func WithDefaultTrack(track string) CrewOption {
	return func(c *Crew) {
		if track != "" {
			c.track = track
		}
	}
}

func NewCrew(llm LLM, opts ...CrewOption) *Crew {
	crew := &Crew{
		fileSys:         afero.NewOsFs(),
		schedulePath:    defaultSchedulePath,
		preferencesPath: defaultPreferencesPath,
		track:           defaultTrack,
		llm:             llm,
	}
	for _, opt := range opts {
		opt(crew)
	}
	return crew
}

// Register installs every course responder plus the generic fallback.
func (c *Crew) Register(registry *responders.Registry) {
	registry.Register(intents.LabelNextClass, responders.ResponderFunc(c.nextClass))
	registry.Register(intents.LabelWeeklyPlan, responders.ResponderFunc(c.weeklyPlan))
	registry.Register(intents.LabelAssignments, responders.ResponderFunc(c.assignments))
	registry.Register(intents.LabelTopicResearch, responders.ResponderFunc(c.topicResearch))
	registry.Register(intents.LabelHelp, responders.ResponderFunc(c.help))
	registry.SetFallback(responders.ResponderFunc(c.general))
}

func (c *Crew) nextClass(ctx context.Context, req responders.Request) (string, error) {
	ctx, span := tracer.Start(ctx, "respond next class")
	defer span.End()

	entries, err := c.upcomingEntries(req.CurrentDate)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "There are no more classes on the schedule.", nil
	}

	systemPrompt := "You are a course assistant. Using only the schedule excerpt provided, tell the student about their next class. " + concisePromptSuffix
	userPrompt := fmt.Sprintf("Today is %s.\nSchedule:\n%s\nQuestion: %s",
		req.CurrentDate, describeEntries(entries[:1]), req.Question)

	return c.llm.Respond(ctx, systemPrompt, userPrompt)
}

func (c *Crew) weeklyPlan(ctx context.Context, req responders.Request) (string, error) {
	ctx, span := tracer.Start(ctx, "respond weekly plan")
	defer span.End()

	entries, err := c.entriesWithin(req.CurrentDate, 14*24*time.Hour)
	if err != nil {
		return "", err
	}

	preferences := c.preferences()

	systemPrompt := "You are a course assistant. Build a short preparation plan for the student's upcoming classes. " + concisePromptSuffix
	userPrompt := fmt.Sprintf("Today is %s.\nUpcoming classes:\n%s\nStudent preferences: %s\nQuestion: %s",
		req.CurrentDate, describeEntries(entries), preferences, req.Question)

	return c.llm.Respond(ctx, systemPrompt, userPrompt)
}

func (c *Crew) assignments(ctx context.Context, req responders.Request) (string, error) {
	ctx, span := tracer.Start(ctx, "respond assignments")
	defer span.End()

	track := req.Parameter("track", c.track)
	entries, err := c.upcomingEntries(req.CurrentDate)
	if err != nil {
		return "", err
	}

	var due []string
	for _, entry := range entries {
		if assignment := entry.assignment(track); assignment != "" {
			due = append(due, fmt.Sprintf("%s: %s", entry.Date.Format(scheduleDateLayout), assignment))
		}
	}
	if len(due) == 0 {
		return fmt.Sprintf("No open assignments on the %s track.", track), nil
	}

	systemPrompt := "You are a course assistant. Summarize the student's open assignments. " + concisePromptSuffix
	userPrompt := fmt.Sprintf("Today is %s.\nTrack: %s\nAssignments due:\n%s\nQuestion: %s",
		req.CurrentDate, track, strings.Join(due, "\n"), req.Question)

	return c.llm.Respond(ctx, systemPrompt, userPrompt)
}

func (c *Crew) topicResearch(ctx context.Context, req responders.Request) (string, error) {
	ctx, span := tracer.Start(ctx, "respond topic research")
	defer span.End()

	topic := req.Parameter("topic", defaultTopic)

	systemPrompt := "You are a course assistant helping a student research a topic. " + concisePromptSuffix
	userPrompt := fmt.Sprintf("Topic: %s\nQuestion: %s", topic, req.Question)

	return c.llm.Respond(ctx, systemPrompt, userPrompt)
}

func (c *Crew) help(_ context.Context, _ responders.Request) (string, error) {
	return Capabilities(), nil
}

// general answers anything the classifier could not place, using the original
// question without specialization.
func (c *Crew) general(ctx context.Context, req responders.Request) (string, error) {
	ctx, span := tracer.Start(ctx, "respond general")
	defer span.End()

	systemPrompt := "You are a voice-enabled course assistant. " + concisePromptSuffix
	return c.llm.Respond(ctx, systemPrompt, req.Question)
}

func (c *Crew) upcomingEntries(currentDate string) ([]scheduleEntry, error) {
	now, err := time.Parse(scheduleDateLayout, currentDate)
	if err != nil {
		now = time.Now()
	}

	entries, err := loadSchedule(c.fileSys, c.schedulePath)
	if err != nil {
		return nil, err
	}
	return upcoming(entries, now), nil
}

func (c *Crew) entriesWithin(currentDate string, window time.Duration) ([]scheduleEntry, error) {
	now, err := time.Parse(scheduleDateLayout, currentDate)
	if err != nil {
		now = time.Now()
	}

	entries, err := loadSchedule(c.fileSys, c.schedulePath)
	if err != nil {
		return nil, err
	}
	return within(entries, now, window), nil
}

func (c *Crew) preferences() string {
	content, err := afero.ReadFile(c.fileSys, c.preferencesPath)
	if err != nil {
		return "none recorded"
	}
	return strings.TrimSpace(string(content))
}

// Capabilities describes what the assistant can do; used by the help
// responder and by the UI welcome screen.
func Capabilities() string {
	return strings.TrimSpace(`
I can help you with:

Next Class Information — "When is my next class?" or "What's coming up?"
Topic Research — "Research multimodal AI" or "Tell me about AI agents"
Weekly Preparation Plan — "Create my weekly plan" or "What should I prepare?"
Assignment Tracking — "Show my assignments" or "Track Tech track homework"

Just ask me naturally in voice or text.`)
}
