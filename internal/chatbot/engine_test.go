package chatbot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"buildcare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOrg = OrgConfig{
	Name:  "BuildCare Solutions",
	Phone: "+91 98422 11100",
	City:  "Madurai",
}

var testServices = []model.Service{
	{
		Slug:        "terrace-waterproofing",
		Title:       "Terrace Waterproofing",
		Description: "Complete terrace waterproofing with crack grouting, screed correction and a UV-stable membrane system designed to keep the slab dry through heavy monsoons for years without recoating.",
		Features:    []string{"Free moisture survey", "5-year written warranty", "Monsoon-ready membranes", "Stage-wise photos"},
	},
	{
		Slug:        "structural-rehab",
		Title:       "Structural Rehabilitation",
		Description: "Column and beam restoration.",
		Features:    []string{"Engineer assessment"},
	},
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewDefault(testOrg, testServices)
	require.NoError(t, err)
	return engine
}

func mustGet(t *testing.T, e *Engine, key string) string {
	t.Helper()
	text, err := e.catalog.Get(key)
	require.NoError(t, err)
	return text
}

func freeText(text string) Turn {
	return Turn{Kind: TurnFreeText, Text: text}
}

func menuClick(id string) Turn {
	return Turn{Kind: TurnMenuSelection, OptionID: id}
}

func TestEngine_ConstructionValidatesKeys(t *testing.T) {
	catalog := NewCatalog(testOrg)
	menus := NewMenus(testServices)

	// A rule pointing at a missing key must fail at construction.
	badRules := append([]Rule{}, DefaultRules()...)
	badRules = append(badRules, Rule{Key: "no_such_key", Groups: [][]string{{"x"}}, Menu: MenuMain})
	_, err := New(catalog, menus, badRules, DefaultOptions(), testServices)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKey)

	// An option pointing at a missing menu must fail too.
	badOptions := DefaultOptions()
	badOptions["oops"] = OptionRule{Key: "default", Menu: MenuID("nowhere")}
	_, err = New(catalog, menus, DefaultRules(), badOptions, testServices)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownMenu)
}

func TestEngine_NewSessionSeedsGreeting(t *testing.T) {
	engine := newTestEngine(t)
	state := engine.NewSession()

	require.Len(t, state.Transcript, 1)
	assert.True(t, state.Transcript[0].FromBot)
	assert.Equal(t, mustGet(t, engine, "greeting"), state.Transcript[0].Text)
	assert.Equal(t, ContextNone, state.Pending)
	assert.Equal(t, MenuMain, state.ActiveMenu)
}

func TestEngine_GreetingFollowupOnlyEarly(t *testing.T) {
	engine := newTestEngine(t)
	greeting := mustGet(t, engine, "greeting")
	followup := mustGet(t, engine, "greeting_followup")

	// Transcript length 1 (just the seed): greeting + followup.
	state := engine.NewSession()
	res, err := engine.Resolve(freeText("hi"), state)
	require.NoError(t, err)
	assert.Equal(t, greeting+"\n\n"+followup, res.BotText)

	// Longer transcript: greeting alone.
	res2, err := engine.Resolve(freeText("hello again"), res.State)
	require.NoError(t, err)
	assert.Equal(t, greeting, res2.BotText)
}

func TestEngine_AwaitingPhone(t *testing.T) {
	engine := newTestEngine(t)

	state := engine.NewSession()
	res, err := engine.Resolve(freeText("I want to schedule an appointment"), state)
	require.NoError(t, err)
	assert.Equal(t, mustGet(t, engine, "appointment"), res.BotText)
	assert.Equal(t, ContextAwaitingPhone, res.State.Pending)

	// No digit: clarification, context unchanged.
	res2, err := engine.Resolve(freeText("why do you need that"), res.State)
	require.NoError(t, err)
	assert.Equal(t, mustGet(t, engine, "phone_clarify"), res2.BotText)
	assert.Equal(t, ContextAwaitingPhone, res2.State.Pending)

	// At least one digit: follow-up, advance to the time-slot state.
	res3, err := engine.Resolve(freeText("you can call 98422 11100"), res2.State)
	require.NoError(t, err)
	assert.Equal(t, mustGet(t, engine, "appointment_followup"), res3.BotText)
	assert.Equal(t, ContextAwaitingTimeSlot, res3.State.Pending)
	assert.Equal(t, MenuTimeSlots, res3.Menu)
}

func TestEngine_AwaitingTimeSlotAcceptsAnything(t *testing.T) {
	engine := newTestEngine(t)

	for _, input := range []string{"Morning (9AM-12PM)", "afternoon", "xyz"} {
		state := engine.NewSession()
		state.Pending = ContextAwaitingTimeSlot

		res, err := engine.Resolve(freeText(input), state)
		require.NoError(t, err, input)
		assert.Equal(t, mustGet(t, engine, "appointment_confirmed"), res.BotText, input)
		assert.Equal(t, ContextNone, res.State.Pending, input)
		assert.Equal(t, MenuProblems, res.Menu, input)
	}
}

func TestEngine_RuleOrderAppointmentBeatsProblem(t *testing.T) {
	engine := newTestEngine(t)

	// Matches both the terrace-leak rule and the appointment rule; the
	// appointment rule is declared first, so it wins.
	res, err := engine.Resolve(freeText("I have a leaking roof and need to schedule an appointment"), engine.NewSession())
	require.NoError(t, err)
	assert.Equal(t, mustGet(t, engine, "appointment"), res.BotText)
	assert.Equal(t, ContextAwaitingPhone, res.State.Pending)

	// Without the appointment wording the same complaint reaches the
	// terrace rule.
	res2, err := engine.Resolve(freeText("my roof is leaking"), engine.NewSession())
	require.NoError(t, err)
	assert.Equal(t, mustGet(t, engine, "waterproofing_terrace"), res2.BotText)
}

func TestEngine_TwoGroupSymptomRule(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Resolve(freeText("I can see water stains near the window"), engine.NewSession())
	require.NoError(t, err)
	assert.Equal(t, mustGet(t, engine, "stains_damp"), res.BotText)

	// One group alone is not enough.
	res2, err := engine.Resolve(freeText("there are some stains on the floor tiles"), engine.NewSession())
	require.NoError(t, err)
	assert.Equal(t, mustGet(t, engine, "default"), res2.BotText)
}

func TestEngine_MenuSelectionContextFree(t *testing.T) {
	engine := newTestEngine(t)
	servicesText := mustGet(t, engine, "services_list")

	// Fresh session.
	res, err := engine.Resolve(menuClick("services"), engine.NewSession())
	require.NoError(t, err)
	assert.Equal(t, servicesText, res.BotText)
	assert.True(t, res.ShowServiceMenu)

	// Same click after a long exchange resolves identically.
	state := engine.NewSession()
	for _, text := range []string{"hello", "what about warranty", "and pricing"} {
		r, err := engine.Resolve(freeText(text), state)
		require.NoError(t, err)
		state = r.State
	}
	res2, err := engine.Resolve(menuClick("services"), state)
	require.NoError(t, err)
	assert.Equal(t, servicesText, res2.BotText)
	assert.True(t, res2.ShowServiceMenu)
}

func TestEngine_ServiceMenuMirrorsCatalog(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Resolve(menuClick("services"), engine.NewSession())
	require.NoError(t, err)
	require.Len(t, res.Options, len(testServices))
	assert.Equal(t, "terrace-waterproofing", res.Options[0].ID)
	assert.Equal(t, "Terrace Waterproofing", res.Options[0].Label)
}

func TestEngine_ServiceSlugSelection(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Resolve(menuClick("terrace-waterproofing"), engine.NewSession())
	require.NoError(t, err)

	// Truncated description plus at most three bullets.
	assert.True(t, strings.HasSuffix(strings.SplitN(res.BotText, "\n", 2)[0], "..."))
	assert.Contains(t, res.BotText, "• Free moisture survey")
	assert.Contains(t, res.BotText, "• Monsoon-ready membranes")
	assert.NotContains(t, res.BotText, "Stage-wise photos")
	assert.Equal(t, MenuServiceFollowup, res.Menu)

	// Short descriptions are kept verbatim.
	res2, err := engine.Resolve(menuClick("structural-rehab"), engine.NewSession())
	require.NoError(t, err)
	assert.Contains(t, res2.BotText, "Column and beam restoration.")
}

func TestTruncate_RuneSafe(t *testing.T) {
	// No space in the first 160 bytes and a multibyte rune straddling the
	// cut must not produce an invalid UTF-8 prefix.
	long := strings.Repeat("日", 60) // 3-byte runes, byte 160 mid-rune
	got := truncate(long, 160)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.NotContains(t, got, string(utf8.RuneError))

	// ASCII behavior unchanged: cut at the last word boundary.
	words := strings.Repeat("waterproofing ", 20)
	got = truncate(words, 160)
	assert.True(t, strings.HasSuffix(got, "waterproofing..."))
	assert.LessOrEqual(t, len(got), 163)

	// Short strings come back verbatim.
	assert.Equal(t, "short", truncate("short", 160))
}

func TestEngine_UnknownOptionFallsBack(t *testing.T) {
	engine := newTestEngine(t)

	res, err := engine.Resolve(menuClick("no-such-option"), engine.NewSession())
	require.NoError(t, err)
	assert.Equal(t, mustGet(t, engine, "default"), res.BotText)
	assert.Equal(t, MenuMain, res.Menu)
}

func TestEngine_InvalidTurnKind(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Resolve(Turn{}, engine.NewSession())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTurn)
}

func TestEngine_ResolveDoesNotMutateInput(t *testing.T) {
	engine := newTestEngine(t)
	state := engine.NewSession()
	before := len(state.Transcript)

	res, err := engine.Resolve(freeText("what about warranty"), state)
	require.NoError(t, err)
	assert.Len(t, state.Transcript, before)
	assert.Len(t, res.State.Transcript, before+2)
	assert.False(t, res.State.Transcript[before].FromBot)
	assert.True(t, res.State.Transcript[before+1].FromBot)
}

func TestEngine_EndToEndBookingScenario(t *testing.T) {
	engine := newTestEngine(t)
	greeting := mustGet(t, engine, "greeting")
	followup := mustGet(t, engine, "greeting_followup")

	// Turn 1: greeting with followup on a fresh session.
	state := engine.NewSession()
	res, err := engine.Resolve(freeText("hi"), state)
	require.NoError(t, err)
	require.Equal(t, greeting+"\n\n"+followup, res.BotText)

	// Turn 2: clicking the appointment option shows the appointment text
	// and the appointment quick replies, not the time-slot menu yet. Both
	// entry points collect a phone number first.
	res, err = engine.Resolve(menuClick("appointment"), res.State)
	require.NoError(t, err)
	require.Equal(t, mustGet(t, engine, "appointment"), res.BotText)
	require.Equal(t, MenuAppointment, res.Menu)
	require.Equal(t, ContextAwaitingPhone, res.State.Pending)

	// Turn 3: phone number advances to the time-slot menu.
	res, err = engine.Resolve(freeText("9842211100"), res.State)
	require.NoError(t, err)
	require.Equal(t, MenuTimeSlots, res.Menu)

	// Turn 4: picking a slot confirms and offers the problem menu.
	res, err = engine.Resolve(menuClick("slot_morning"), res.State)
	require.NoError(t, err)
	require.Equal(t, mustGet(t, engine, "appointment_confirmed"), res.BotText)
	require.Equal(t, MenuProblems, res.Menu)
	require.Equal(t, ContextNone, res.State.Pending)

	// Transcript grew by two messages per turn on top of the seed.
	assert.Len(t, res.State.Transcript, 1+4*2)
}

func TestEngine_GeneralPassCategories(t *testing.T) {
	engine := newTestEngine(t)

	cases := []struct {
		input string
		key   string
	}{
		{"what services do you offer", "services_list"},
		{"tell me about your experience", "about"},
		{"how do I contact you", "contact"},
		{"is there a warranty", "warranty"},
		{"what is the price range", "pricing_range"},
		{"do you take payment by upi", "pricing_payment"},
		{"any discount going on", "pricing_discount"},
		{"how much does it cost", "pricing_range"},
		{"where are you located", "location"},
		{"what is your process", "process"},
		{"which brands of materials do you use", "materials"},
		{"my bathroom is leaking", "waterproofing_bathroom"},
		{"cracks in the wall plaster", "cracks_wall"},
		{"crack on the ceiling slab", "cracks_ceiling"},
		{"dampness on my walls", "seepage_wall"},
		{"the expansion joints have failed", "expansion_joints"},
		{"the column has corrosion damage", "structural_columns"},
		{"paint is peeling off", "paint_peeling"},
		{"any maintenance tips", "maintenance"},
		{"thanks a lot", "gratitude"},
		{"ok bye", "goodbye"},
		{"asdkjhasd qwerty", "default"},
	}

	for _, tc := range cases {
		res, err := engine.Resolve(freeText(tc.input), engine.NewSession())
		require.NoError(t, err, tc.input)
		assert.Equal(t, mustGet(t, engine, tc.key), res.BotText, tc.input)
	}
}
