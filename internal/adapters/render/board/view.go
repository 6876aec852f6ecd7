package board

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/UchihaStesla/friberg/internal/application"
	"github.com/UchihaStesla/friberg/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now           time.Time
	MaxCandidates int
}

const defaultMaxCandidates = 10

// normalized fills in usable values for anything left zero.
func (o RenderOptions) normalized() RenderOptions {
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = defaultMaxCandidates
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// constraintOrder keeps the constraint section stable between renders.
var constraintOrder = []string{
	domain.KeyNationality,
	domain.KeyRegion,
	domain.KeyTeam,
	domain.KeyAge,
	domain.KeyRole,
	domain.KeyMajors,
	domain.KeyRetired,
}

var constraintLabels = map[string]string{
	domain.KeyNationality: "nationality",
	domain.KeyRegion:      "region",
	domain.KeyTeam:        "team",
	domain.KeyAge:         "age",
	domain.KeyRole:        "role",
	domain.KeyMajors:      "majors",
	domain.KeyRetired:     "retired",
}

func renderView(snapshot application.Snapshot, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(fmt.Sprintf("Room %s", snapshot.RoomID)),
		renderStateLine(snapshot.State, s),
	}

	if snapshot.Notice != "" {
		lines = append(lines, s.notice.Render(snapshot.Notice))
	}
	if snapshot.LastError != "" {
		lines = append(lines, s.warning.Render(snapshot.LastError))
	}

	lines = append(lines, s.section.Render(renderConstraints(snapshot.Constraints, s)))
	lines = append(lines, s.section.Render(renderCandidates(snapshot.Candidates, opts, s)))
	lines = append(lines, s.section.Render(renderResults(snapshot.Results, opts, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderStateLine(state domain.GameState, s styles) string {
	bar := renderGuessBar(state.RemainingGuesses, domain.DefaultGuessAllowance, s)
	open := "closed"
	if state.SubmissionOpen {
		open = "open"
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.phase.Render(state.Phase.Label()),
		s.header.Render(fmt.Sprintf("  %s  ", state.Record())),
		bar,
		s.header.Render(fmt.Sprintf(" %d guesses left, submissions %s", state.RemainingGuesses, open)),
	)
}

func renderConstraints(constraints domain.ConstraintSet, s styles) string {
	lines := []string{s.header.Render("constraints")}

	keys := orderedKeys(constraints)
	if len(keys) == 0 {
		lines = append(lines, s.empty.Render("No constraints yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, key := range keys {
		label := constraintLabels[key]
		if label == "" {
			label = key
		}
		line := lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.constraintKey.Render(fmt.Sprintf("%-12s", label)),
			s.constraintVal.Render(describeConstraint(constraints[key])),
		)
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func orderedKeys(constraints domain.ConstraintSet) []string {
	keys := make([]string, 0, len(constraints))
	seen := make(map[string]struct{}, len(constraints))
	for _, key := range constraintOrder {
		if _, ok := constraints[key]; ok {
			keys = append(keys, key)
			seen[key] = struct{}{}
		}
	}

	extra := make([]string, 0)
	for key := range constraints {
		if _, ok := seen[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

func describeConstraint(c domain.Constraint) string {
	parts := make([]string, 0, 3)

	if text, ok := c.ExactText(); ok {
		parts = append(parts, "= "+text)
	} else if n, ok := c.ExactInt(); ok {
		parts = append(parts, fmt.Sprintf("= %d", n))
	} else if b, ok := c.ExactBool(); ok {
		parts = append(parts, fmt.Sprintf("= %t", b))
	}

	excluded := c.ExcludeList
	if c.Exclude != "" {
		excluded = append([]string{c.Exclude}, excluded...)
	}
	if len(excluded) > 0 {
		parts = append(parts, "not "+strings.Join(excluded, ", "))
	}

	switch {
	case c.Min != nil && c.Max != nil:
		parts = append(parts, fmt.Sprintf("%d to %d", *c.Min, *c.Max))
	case c.Min != nil:
		parts = append(parts, fmt.Sprintf(">= %d", *c.Min))
	case c.Max != nil:
		parts = append(parts, fmt.Sprintf("<= %d", *c.Max))
	}

	if c.Region != "" {
		parts = append(parts, "in "+c.Region)
	}

	if len(parts) == 0 {
		return "any"
	}
	return strings.Join(parts, ", ")
}

func renderCandidates(candidates []domain.Candidate, opts RenderOptions, s styles) string {
	lines := []string{s.header.Render(fmt.Sprintf("candidates: %d", len(candidates)))}

	if len(candidates) == 0 {
		lines = append(lines, s.empty.Render("No recommendations loaded."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	limit := opts.MaxCandidates
	if limit > len(candidates) {
		limit = len(candidates)
	}

	for _, c := range candidates[:limit] {
		lines = append(lines, s.row.Render(candidateRow(c)))
	}
	if limit < len(candidates) {
		lines = append(lines, s.empty.Render(fmt.Sprintf("... and %d more", len(candidates)-limit)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func candidateRow(c domain.Candidate) string {
	team := string(c.Team)
	if team == "" {
		team = "-"
	}
	role := c.Role
	if role == "" {
		role = "-"
	}

	return fmt.Sprintf("%-14s %-22s %-12s %2s  %-8s majors:%d  %.3f",
		c.Nickname, c.FullName(), team, ageLabel(c.Age), role, c.MajorAppearances, c.EntropyValue)
}

func ageLabel(age int) string {
	if age <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", age)
}

func renderResults(results []domain.GuessResult, opts RenderOptions, s styles) string {
	lines := []string{s.header.Render(fmt.Sprintf("guesses: %d", len(results)))}

	if len(results) == 0 {
		lines = append(lines, s.empty.Render("No guesses yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, result := range results {
		lines = append(lines, resultLine(result, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func resultLine(result domain.GuessResult, opts RenderOptions, s styles) string {
	if result.Failure() {
		return s.warning.Render("! " + result.Message)
	}

	name := result.Nickname
	if name == "" {
		name = result.GuessedID()
	}

	glyph := s.verdictBad.Render("x")
	if result.IsSuccess {
		glyph = s.verdictGood.Render("*")
	}

	parts := []string{glyph, fmt.Sprintf("%-14s", name)}
	parts = append(parts, verdictParts(result, s)...)
	if stamp := receivedLabel(result.ReceivedAt, opts.Now); stamp != "" {
		parts = append(parts, s.constraintVal.Render(stamp))
	}

	return strings.Join(parts, " ")
}

func verdictParts(result domain.GuessResult, s styles) []string {
	parts := make([]string, 0, 6)

	if v := result.Nationality; v != nil {
		parts = append(parts, verdictCell("nat", v.Value, v.Result, s))
	}
	if v := result.Team; v != nil {
		parts = append(parts, verdictCell("team", string(v.Data), v.Result, s))
	}
	if v := result.Age; v != nil {
		parts = append(parts, verdictCell("age", fmt.Sprintf("%d", v.Value), v.Result, s))
	}
	if v := result.Role; v != nil {
		parts = append(parts, verdictCell("role", v.Value, v.Result, s))
	}
	if v := result.MajorAppearances; v != nil {
		parts = append(parts, verdictCell("majors", fmt.Sprintf("%d", v.Value), v.Result, s))
	}

	return parts
}

func verdictCell(label, value string, kind domain.VerdictKind, s styles) string {
	cell := label
	if value != "" {
		cell += ":" + value
	}
	return verdictStyle(kind, s).Render(cell + verdictGlyph(kind))
}

func verdictStyle(kind domain.VerdictKind, s styles) lipgloss.Style {
	switch {
	case kind.Correct():
		return s.verdictGood
	case kind.Close():
		return s.verdictClose
	default:
		return s.verdictBad
	}
}

func verdictGlyph(kind domain.VerdictKind) string {
	switch {
	case kind.Correct():
		return "(=)"
	case kind == domain.VerdictIncorrectClose:
		return "(~)"
	case kind == domain.VerdictHighClose:
		return "(~v)"
	case kind == domain.VerdictLowClose:
		return "(~^)"
	case kind == domain.VerdictHighFar:
		return "(v)"
	case kind == domain.VerdictLowFar:
		return "(^)"
	default:
		return "(x)"
	}
}

func receivedLabel(receivedAt, now time.Time) string {
	if receivedAt.IsZero() || now.IsZero() || now.Before(receivedAt) {
		return ""
	}

	elapsed := now.Sub(receivedAt)
	switch {
	case elapsed < time.Minute:
		return fmt.Sprintf("%ds ago", int(elapsed.Seconds()))
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	}
}

func renderGuessBar(remaining, allowance int, s styles) string {
	if allowance <= 0 {
		return ""
	}
	if remaining < 0 {
		remaining = 0
	}
	if remaining > allowance {
		remaining = allowance
	}

	fillSegment := s.barFill.Render(strings.Repeat("=", remaining))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", allowance-remaining))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}
