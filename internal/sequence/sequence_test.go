package sequence

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamim/promptforge/internal/generator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	return c
}

type fakeGenerator struct {
	responses []string
	err       error
	requests  []generator.Request
}

func (g *fakeGenerator) Generate(ctx context.Context, req generator.Request) (string, error) {
	g.requests = append(g.requests, req)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.err != nil {
		return "", g.err
	}
	i := len(g.requests) - 1
	if i >= len(g.responses) {
		return "", nil
	}
	return g.responses[i], nil
}

func TestDefaultCatalog(t *testing.T) {
	c := testCatalog(t)

	shots, ok := c.Preset("storyboard")
	require.True(t, ok)
	require.Len(t, shots, 6)
	assert.Equal(t, "establishing", shots[0].Label)
	assert.Contains(t, shots[0].Hint, "24mm lens")
	assert.Equal(t, "detail", shots[5].Label)

	alias, ok := c.Preset("STD")
	assert.True(t, ok)
	assert.Equal(t, shots, alias)

	unknown, ok := c.Preset("noir")
	assert.False(t, ok)
	require.Len(t, unknown, 1)
	assert.Equal(t, "scene", unknown[0].Label)

	assert.Equal(t, []string{"nsfw-boudoir", "nsfw-soft", "quality-character", "quality-outfit"}, c.BundleNames())
}

func TestCatalog_BundleTokens(t *testing.T) {
	c := testCatalog(t)

	tokens, err := c.BundleTokens([]string{"quality-outfit"}, []string{"red scarf, wool coat", "\nrain "}, true)
	require.NoError(t, err)
	assert.Equal(t, "couture outfit", tokens[0])
	assert.Equal(t, []string{"red scarf", "wool coat", "rain", "adult woman"}, tokens[len(tokens)-4:])

	_, err = c.BundleTokens([]string{"nope"}, nil, false)
	assert.ErrorContains(t, err, "unknown bundle")
}

func TestParseCatalog_Invalid(t *testing.T) {
	_, err := ParseCatalog([]byte("presets: ["))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("fallback: {label: scene}\npresets:\n  - name: empty\n"))
	assert.ErrorContains(t, err, "has no shots")

	_, err = ParseCatalog([]byte("presets: []\n"))
	assert.ErrorContains(t, err, "no fallback")
}

func TestFitShots(t *testing.T) {
	base, _ := testCatalog(t).Preset("storyboard")

	assert.Len(t, FitShots(base, 0), 6)
	assert.Len(t, FitShots(base, 3), 3)

	cycled := FitShots(base, 8)
	require.Len(t, cycled, 8)
	assert.Equal(t, "establishing", cycled[6].Label)
	assert.Equal(t, "wide", cycled[7].Label)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		maxLen  int
		addHash bool
		want    string
	}{
		{"plain", "Rainy neon alley; a poised woman exits a jazz bar", 80, true,
			"rainy-neon-alley-a-poised-woman-exits-a-jazz-bar"},
		{"symbols only", "  !!  ", 80, true, "scenario"},
		{"korean", "비 오는 옥상", 80, true, "비-오는-옥상"},
		{"truncate without hash", "Opening Rain Entry Scene", 20, false, "opening-rain-entry-s"},
		{"truncate trims dash", "abcdefghi jklmnop", 10, false, "abcdefghi"},
		{"no limit", "A B", 0, true, "a-b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.text, tt.maxLen, tt.addHash))
		})
	}
}

func TestSlugify_HashSuffix(t *testing.T) {
	long := strings.Repeat("abc ", 30)
	slug := Slugify(long, 20, true)

	assert.Len(t, slug, 20)
	assert.True(t, strings.HasPrefix(slug, "abc-abc-abc-"), slug)
	assert.Equal(t, slug, Slugify(long, 20, true))
	assert.NotEqual(t, slug, Slugify(long+"x", 20, true))
}

func TestParseShotList(t *testing.T) {
	raw := "<think>plan the shots</think>\n" +
		"```\n" +
		"Shot 1: Rain Entry | duration: 2s | shot: wide, low angle | lens: 24mm | camera: dolly in | subject/action: woman steps out | continuity: red umbrella\n" +
		"\n" +
		"rooftop at dusk | lens: 35mm\n" +
		"- Shot 3: Close | Duration: 1s | shot: close-up\n" +
		"```\n"

	shots := ParseShotList(raw)
	require.Len(t, shots, 3)

	assert.Equal(t, "rain_entry", shots[0].Label)
	assert.Equal(t, "Rain Entry, wide, low angle, 24mm, dolly in, woman steps out, red umbrella", shots[0].Hint)
	assert.NotContains(t, shots[0].Hint, "2s")

	assert.Equal(t, "shot_2", shots[1].Label)
	assert.Equal(t, "rooftop at dusk, 35mm", shots[1].Hint)

	assert.Equal(t, "close", shots[2].Label)
	assert.Equal(t, "Close, close-up", shots[2].Hint)

	assert.Empty(t, ParseShotList("  \n\n"))
}

func TestParseShotList_PunctuationNameFallsBackToIndex(t *testing.T) {
	shots := ParseShotList("Shot 1: Opening | shot: wide\nShot 2: --- | shot: close-up\n")
	require.Len(t, shots, 2)

	assert.Equal(t, "opening", shots[0].Label)
	assert.Equal(t, "shot_2", shots[1].Label)
	assert.Equal(t, "close-up", shots[1].Hint)
}

func TestComposeSeed(t *testing.T) {
	assert.Equal(t, "rooftop, wide shot, red scarf",
		ComposeSeed(" rooftop ", "wide shot", []string{"", "red scarf"}))
	assert.Equal(t, "wide shot", ComposeSeed("", "wide shot", nil))
}

func TestPlan_FixedPreset(t *testing.T) {
	p := NewPlanner(testCatalog(t), nil, generator.ModeGenerate, 0.7, testLogger())

	cuts, err := p.Plan(context.Background(), PlanRequest{
		Scenario: "rooftop at night",
		NumCuts:  5,
		Preset:   "storyboard",
		Bundle:   []string{"red scarf"},
	})
	require.NoError(t, err)
	require.Len(t, cuts, 5)

	for i, c := range cuts {
		assert.Equal(t, i+1, c.Index)
	}
	assert.Equal(t, "01_establishing", cuts[0].Key())
	assert.Equal(t, "05_over_shoulder", cuts[4].Key())
	assert.True(t, strings.HasPrefix(cuts[0].Seed, "rooftop at night, establishing shot"))
	assert.True(t, strings.HasSuffix(cuts[0].Seed, ", red scarf"))
}

func TestPlan_UnknownPreset(t *testing.T) {
	p := NewPlanner(testCatalog(t), nil, generator.ModeGenerate, 0.7, testLogger())

	cuts, err := p.Plan(context.Background(), PlanRequest{Scenario: "x", Preset: "noir"})
	require.NoError(t, err)
	require.Len(t, cuts, 1)
	assert.Equal(t, "01_scene", cuts[0].Key())
}

func TestPlan_AutoPadsWithPreset(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		"Shot 1: Door | shot: wide\nShot 2: Steps | shot: medium",
	}}
	p := NewPlanner(testCatalog(t), gen, generator.ModeChat, 0.7, testLogger())

	cuts, err := p.Plan(context.Background(), PlanRequest{
		Scenario: "jazz bar exit", NumCuts: 3, DurationSec: 10, Preset: "storyboard", Auto: true,
	})
	require.NoError(t, err)
	require.Len(t, cuts, 3)
	assert.Equal(t, "01_door", cuts[0].Key())
	assert.Equal(t, "02_steps", cuts[1].Key())
	assert.Equal(t, "03_establishing", cuts[2].Key())

	require.Len(t, gen.requests, 1)
	assert.Equal(t, generator.ModeChat, gen.requests[0].Mode)
	assert.Contains(t, gen.requests[0].Prompt, "Shots: exactly 3.")
}

func TestPlan_AutoTruncates(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"Shot 1: a\nShot 2: b\nShot 3: c"}}
	p := NewPlanner(testCatalog(t), gen, generator.ModeChat, 0.7, testLogger())

	cuts, err := p.Plan(context.Background(), PlanRequest{Scenario: "s", NumCuts: 2, Auto: true})
	require.NoError(t, err)
	assert.Len(t, cuts, 2)
}

func TestPlan_AutoChatMLRetryInGenerateMode(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"", "Shot 1: Door | shot: wide"}}
	p := NewPlanner(testCatalog(t), gen, generator.ModeGenerate, 0.7, testLogger())

	cuts, err := p.Plan(context.Background(), PlanRequest{Scenario: "s", NumCuts: 1, Preset: "storyboard", Auto: true})
	require.NoError(t, err)
	require.Len(t, gen.requests, 2)
	assert.True(t, strings.HasPrefix(gen.requests[1].Prompt, "<|im_start|>system"))
	assert.Equal(t, "01_door", cuts[0].Key())
}

func TestPlan_AutoFallsBackToPreset(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"generator error", &fakeGenerator{err: &generator.GenerationError{Backend: "ollama", Model: "m", Err: errors.New("down")}}},
		{"empty output", &fakeGenerator{responses: []string{"", "  "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlanner(testCatalog(t), tt.gen, generator.ModeGenerate, 0.7, testLogger())

			cuts, err := p.Plan(context.Background(), PlanRequest{Scenario: "s", NumCuts: 2, Preset: "storyboard", Auto: true})
			require.NoError(t, err)
			require.Len(t, cuts, 2)
			assert.Equal(t, "01_establishing", cuts[0].Key())
			assert.Equal(t, "02_wide", cuts[1].Key())
		})
	}
}

func TestPlan_AutoCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPlanner(testCatalog(t), &fakeGenerator{}, generator.ModeChat, 0.7, testLogger())

	_, err := p.Plan(ctx, PlanRequest{Scenario: "s", NumCuts: 2, Auto: true})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStoryPrompt(t *testing.T) {
	system, user := StoryPrompt([]string{"rain", " ", "neon"}, 2, "en", "logline")

	assert.Contains(t, system, "Always include the provided topics explicitly.")
	assert.Equal(t, "Write exactly 2 sentences in English as a cinematic logline. Include these topics: rain, neon. "+
		"Keep it concrete and evocative; no dialogue unless essential. Output one paragraph only.", user)

	_, user = StoryPrompt([]string{"rain"}, 3, "ko", "vignette")
	assert.Contains(t, user, "in Korean as a short cinematic vignette")
}

func TestShotListPrompt(t *testing.T) {
	_, user := ShotListPrompt(" harbor at dawn ", nil, 4, 10, "en")

	lines := strings.Split(user, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Scenario (context): harbor at dawn", lines[0])
	assert.Equal(t, "Topics: (none)", lines[1])
	assert.Equal(t, "Total duration: ~10 seconds. Shots: exactly 4.", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "Write in English. Output exactly 4 lines."))
}

func TestStoryWriter(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"  ", "<think>hmm</think> A woman walks out into the rain."}}
	w := &StoryWriter{Generator: gen, Temperature: 0.7, Logger: testLogger()}

	text, err := w.Write(context.Background(), []string{"rain"}, 1, "en", "logline")
	require.NoError(t, err)
	assert.Equal(t, "A woman walks out into the rain.", text)

	require.Len(t, gen.requests, 2)
	assert.Equal(t, generator.ModeChat, gen.requests[0].Mode)
	assert.Equal(t, generator.ModeGenerate, gen.requests[1].Mode)
}

func TestStoryWriter_Empty(t *testing.T) {
	w := &StoryWriter{Generator: &fakeGenerator{}, Logger: testLogger()}

	_, err := w.Write(context.Background(), []string{"rain"}, 1, "en", "logline")
	assert.ErrorIs(t, err, ErrEmptyStory)
}
