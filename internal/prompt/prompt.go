package prompt

// #region imports
import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/advisor-sim/internal/backend"
	"github.com/danielpatrickdp/advisor-sim/internal/corpus"
	"github.com/danielpatrickdp/advisor-sim/internal/persona"
	"github.com/danielpatrickdp/advisor-sim/internal/retrieval"
	"github.com/danielpatrickdp/advisor-sim/internal/strategy"
)

// #endregion imports

// #region types

// Turn roles.
const (
	RoleAdvisor = "advisor"
	RoleStudent = "student"
)

// Turn is one line of the dialogue.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request carries the per-call inputs the prompt depends on.
// The last turn of Context is the advisor message being answered.
type Request struct {
	Intent           string
	KnowledgeContext string
	Context          []Turn
}

// Config bounds the rendered prompt.
type Config struct {
	MaxChars          int // hard ceiling on the whole prompt, in runes
	MaxContextTurns   int
	KeepRecent        int // most recent prior turns always rendered
	MaxTurnChars      int
	MaxKnowledgeChars int
}

// DefaultConfig returns the production bounds.
func DefaultConfig() Config {
	return Config{
		MaxChars:          12000,
		MaxContextTurns:   6,
		KeepRecent:        2,
		MaxTurnChars:      300,
		MaxKnowledgeChars: 2000,
	}
}

// SystemPrompt is sent ahead of every generated prompt.
const SystemPrompt = "You are a professional academic conversation assistant. Always respond in English. Generate natural, direct responses."

const (
	maxCoreChars     = 250
	maxItemChars     = 120
	maxStrategyItems = 4
)

// #endregion types

// #region builder

// Builder assembles bounded generation prompts. It performs no I/O.
type Builder struct {
	config     Config
	strategies strategy.Lookup
}

// NewBuilder creates a Builder. strategies may be nil, in which case no
// strategy block is rendered.
func NewBuilder(config Config, strategies strategy.Lookup) *Builder {
	return &Builder{config: config, strategies: strategies}
}

// CurrentTurn returns the text of the last turn, the message being answered.
func CurrentTurn(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	return turns[len(turns)-1].Text
}

// sections are rendered in this order.
type sections struct {
	knowledge   string
	persona     string
	style       string
	strategy    string
	examples    string
	context     string
	current     string
	constraints string
}

func (s sections) String() string {
	return s.knowledge + s.persona + s.style + s.strategy + s.examples + s.context + s.current + s.constraints
}

// Build renders the prompt for one reply. The result never exceeds
// Config.MaxChars runes: over budget, the context slice shrinks first, then
// examples, then the strategy block, then knowledge.
func (b *Builder) Build(req Request, profile persona.Profile, examples []corpus.Exchange) string {
	current := CurrentTurn(req.Context)
	var prior []Turn
	if len(req.Context) > 0 {
		prior = req.Context[:len(req.Context)-1]
	}
	turns := b.selectContext(prior, current)
	exs := examples

	s := sections{
		knowledge: knowledgeBlock(truncate(strings.TrimSpace(req.KnowledgeContext), b.config.MaxKnowledgeChars)),
		persona:   personaBlock(profile),
		style:     styleBlock(profile.Style),
		strategy:  b.strategyBlock(profile, req.Intent),
		current:   currentBlock(current),
	}
	s.examples = examplesBlock(profile, exs)
	s.context = b.contextBlock(turns)
	s.constraints = constraintsBlock(profile, len(exs) > 0)

	out := s.String()
	for b.over(out) && len(turns) > 0 {
		turns = turns[1:]
		s.context = b.contextBlock(turns)
		out = s.String()
	}
	for b.over(out) && len(exs) > 0 {
		exs = exs[:len(exs)-1]
		s.examples = examplesBlock(profile, exs)
		s.constraints = constraintsBlock(profile, len(exs) > 0)
		out = s.String()
	}
	if b.over(out) && s.strategy != "" {
		s.strategy = ""
		out = s.String()
	}
	if b.over(out) && s.knowledge != "" {
		s.knowledge = ""
		out = s.String()
	}
	if b.over(out) {
		rest := runeLen(out) - runeLen(current)
		if budget := b.config.MaxChars - rest; budget > 0 {
			s.current = currentBlock(truncate(current, budget))
			out = s.String()
		}
	}
	if b.over(out) {
		out = string([]rune(out)[:b.config.MaxChars])
	}
	return out
}

// Messages wraps a prompt with the system message.
func Messages(prompt string) []backend.Message {
	return []backend.Message{
		{Role: backend.RoleSystem, Content: SystemPrompt},
		{Role: backend.RoleUser, Content: prompt},
	}
}

func (b *Builder) over(s string) bool {
	return b.config.MaxChars > 0 && runeLen(s) > b.config.MaxChars
}

// #endregion builder

// #region context

// selectContext ranks prior turns by keyword overlap with the current turn
// plus a recency weight in (0,1]. The most recent KeepRecent turns are
// always kept; the result is in chronological order.
func (b *Builder) selectContext(prior []Turn, current string) []Turn {
	limit := b.config.MaxContextTurns
	n := len(prior)
	if limit <= 0 || n == 0 {
		return nil
	}
	if n <= limit {
		return prior
	}

	keep := min(b.config.KeepRecent, limit)
	chosen := make([]int, 0, limit)
	for i := n - keep; i < n; i++ {
		chosen = append(chosen, i)
	}

	type ranked struct {
		idx   int
		score float64
	}
	rest := make([]ranked, 0, n-keep)
	for i := 0; i < n-keep; i++ {
		score := float64(retrieval.KeywordOverlap(prior[i].Text, current)) + float64(i+1)/float64(n)
		rest = append(rest, ranked{idx: i, score: score})
	}
	sort.SliceStable(rest, func(a, b int) bool {
		if rest[a].score != rest[b].score {
			return rest[a].score > rest[b].score
		}
		return rest[a].idx > rest[b].idx
	})
	for _, r := range rest {
		if len(chosen) >= limit {
			break
		}
		chosen = append(chosen, r.idx)
	}
	sort.Ints(chosen)

	out := make([]Turn, len(chosen))
	for i, idx := range chosen {
		out[i] = prior[idx]
	}
	return out
}

func (b *Builder) contextBlock(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Previous conversation:\n")
	for _, t := range turns {
		fmt.Fprintf(&sb, "%s: %s\n", speaker(t.Role), truncate(strings.TrimSpace(t.Text), b.config.MaxTurnChars))
	}
	sb.WriteString("\n")
	return sb.String()
}

// turnRoles maps accepted turn roles to their speaker label.
var turnRoles = map[string]string{
	RoleAdvisor:           "Advisor",
	RoleStudent:           "Student",
	backend.RoleAssistant: "Student",
}

// ValidRole reports whether role is one of the accepted turn roles, ignoring case.
func ValidRole(role string) bool {
	_, ok := turnRoles[strings.ToLower(role)]
	return ok
}

func speaker(role string) string {
	if label, ok := turnRoles[strings.ToLower(role)]; ok {
		return label
	}
	return "Advisor"
}

// #endregion context

// #region blocks

func knowledgeBlock(kc string) string {
	if kc == "" {
		return ""
	}
	return "Based on the following MAE professional knowledge:\n" + kc + "\n\n"
}

func personaBlock(p persona.Profile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a %s type MAE student having a conversation with a peer advisor.\n\n", p.Label())
	sb.WriteString("Persona Characteristics:\n")
	fmt.Fprintf(&sb, "- Description: %s\n", strings.TrimSpace(p.Description))
	fmt.Fprintf(&sb, "- Traits: %s\n", strings.Join(p.Traits, ", "))
	fmt.Fprintf(&sb, "- Help Seeking: %s\n\n", strings.TrimSpace(p.HelpSeeking))
	return sb.String()
}

func styleBlock(st persona.StyleTemplate) string {
	if st.Title == "" && len(st.Rules) == 0 {
		return ""
	}
	var sb strings.Builder
	if st.Strict {
		fmt.Fprintf(&sb, "%s (MUST FOLLOW):\n", st.Title)
	} else {
		fmt.Fprintf(&sb, "%s:\n", st.Title)
	}
	for _, r := range st.Rules {
		fmt.Fprintf(&sb, "- %s\n", r)
	}
	if st.Tone != "" {
		fmt.Fprintf(&sb, "- Tone: %s\n", st.Tone)
	}
	if st.AfterHelp != "" {
		fmt.Fprintf(&sb, "- After receiving help: %s\n", st.AfterHelp)
	}
	sb.WriteString("\n")
	return sb.String()
}

func (b *Builder) strategyBlock(p persona.Profile, intent string) string {
	if b.strategies == nil || strings.TrimSpace(intent) == "" {
		return ""
	}
	s, ok := b.strategies.Lookup(p.ID, intent)
	if !ok {
		return ""
	}
	label := p.Label()
	var sb strings.Builder
	sb.WriteString("ADVISOR STRATEGY CONTEXT (understand how the advisor is approaching this conversation):\n")
	fmt.Fprintf(&sb, "The advisor is using a strategy for %q with a %s student.\n", intent, label)
	if s.Core != "" {
		fmt.Fprintf(&sb, "Core Strategy: %s\n", truncate(s.Core, maxCoreChars))
	}
	sb.WriteString("Key things the advisor is trying to DO:\n")
	writeItems(&sb, s.Do, "Focus on student needs")
	sb.WriteString("Things the advisor will AVOID:\n")
	writeItems(&sb, s.Avoid, "Generic responses")
	fmt.Fprintf(&sb, "As a %s student, respond authentically to this approach while staying in character.\n\n", label)
	return sb.String()
}

func writeItems(sb *strings.Builder, items []string, fallback string) {
	if len(items) == 0 {
		fmt.Fprintf(sb, "• %s\n", fallback)
		return
	}
	for i, item := range items {
		if i == maxStrategyItems {
			break
		}
		fmt.Fprintf(sb, "• %s\n", truncate(item, maxItemChars))
	}
}

func examplesBlock(p persona.Profile, examples []corpus.Exchange) string {
	if len(examples) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Here are some examples of similar conversations:\n\n")
	for i, ex := range examples {
		fmt.Fprintf(&sb, "Example %d:\n", i+1)
		fmt.Fprintf(&sb, "Advisor: %s\n", strings.TrimSpace(ex.Prompt))
		fmt.Fprintf(&sb, "Student (%s): %s\n", p.Label(), strings.TrimSpace(ex.Reply))
		if ex.Intent != "" {
			fmt.Fprintf(&sb, "Intent: %s\n", ex.Intent)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func currentBlock(msg string) string {
	return "Now, the peer advisor just said:\n\"" + msg + "\"\n\n"
}

func constraintsBlock(p persona.Profile, withExamples bool) string {
	label := p.Label()
	if !withExamples {
		return fmt.Sprintf("Generate a natural and authentic response as this %s student (1-3 sentences). "+
			"Answer the advisor directly and stay in character.\nStudent response:", label)
	}
	var sb strings.Builder
	sb.WriteString("CRITICAL INSTRUCTIONS:\n")
	sb.WriteString("1. ANSWER DIRECTLY: Respond to what the advisor just said. Do not change the subject.\n")
	sb.WriteString("2. USE CONTEXT: Stay consistent with the previous conversation.\n")
	sb.WriteString("3. BE NATURAL: Speak like a real student, not like an assistant.\n")
	sb.WriteString("4. BE SPECIFIC: Mention concrete classes, clubs, or plans where they fit.\n")
	sb.WriteString("5. LENGTH: 1-3 sentences.\n")
	fmt.Fprintf(&sb, "6. PERSONA CONSISTENCY: Stay in character as a %s student.\n", label)
	sb.WriteString("7. PROGRESSIVE ENGAGEMENT: If the advisor has helped you, show more engagement.\n\n")
	sb.WriteString("REMEMBER: You are the student, not the advisor. Do not give advice.\n")
	sb.WriteString("Student response:")
	return sb.String()
}

// #endregion blocks

// #region helpers

func runeLen(s string) int {
	return len([]rune(s))
}

// truncate cuts s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// #endregion helpers
