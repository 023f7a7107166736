package chatbot

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"buildcare/internal/model"
)

// ErrInvalidTurn is returned when a caller passes a turn that is neither
// free text nor a menu selection. This is a caller bug, not user input.
var ErrInvalidTurn = errors.New("chatbot: invalid turn kind")

const maxServiceDescription = 160

// Engine maps one user turn plus the session state to the next bot message
// and quick-reply menu. It performs no I/O and holds no mutable state, so a
// single Engine is safely shared by all sessions.
type Engine struct {
	catalog  *Catalog
	menus    *Menus
	rules    []Rule
	options  map[string]OptionRule
	services []model.Service
	bySlug   map[string]model.Service
}

// New builds an engine and exhaustively validates the configuration: every
// response key referenced by a rule, an option or the engine's own flow must
// exist in the catalog, and every referenced menu must be defined. A failure
// here is a programming error; a validated engine cannot hit a missing key
// at resolve time.
func New(catalog *Catalog, menus *Menus, rules []Rule, options map[string]OptionRule, services []model.Service) (*Engine, error) {
	for _, key := range []string{
		"greeting", "greeting_followup",
		"appointment_followup", "appointment_confirmed", "phone_clarify",
		"default",
	} {
		if !catalog.Has(key) {
			return nil, fmt.Errorf("%w: required key %q", ErrUnknownKey, key)
		}
	}

	for i, r := range rules {
		if !catalog.Has(r.Key) {
			return nil, fmt.Errorf("%w: rule %d references %q", ErrUnknownKey, i, r.Key)
		}
		if !menus.Has(r.Menu) {
			return nil, fmt.Errorf("%w: rule %q references menu %q", ErrUnknownMenu, r.Key, r.Menu)
		}
	}

	for id, o := range options {
		if !catalog.Has(o.Key) {
			return nil, fmt.Errorf("%w: option %q references %q", ErrUnknownKey, id, o.Key)
		}
		if !menus.Has(o.Menu) {
			return nil, fmt.Errorf("%w: option %q references menu %q", ErrUnknownMenu, id, o.Menu)
		}
	}

	// Every clickable option of a fixed menu must resolve through the option
	// table; only the service menu is allowed to carry catalog slugs.
	for _, name := range []MenuID{MenuMain, MenuAppointment, MenuTimeSlots, MenuPricing, MenuProblems, MenuMaintenance, MenuServiceFollowup} {
		opts, err := menus.Get(name)
		if err != nil {
			return nil, err
		}
		for _, o := range opts {
			if _, ok := options[o.ID]; !ok {
				return nil, fmt.Errorf("chatbot: menu %q option %q has no option rule", name, o.ID)
			}
		}
	}

	bySlug := make(map[string]model.Service, len(services))
	for _, s := range services {
		bySlug[s.Slug] = s
	}

	return &Engine{
		catalog:  catalog,
		menus:    menus,
		rules:    rules,
		options:  options,
		services: services,
		bySlug:   bySlug,
	}, nil
}

// NewDefault builds an engine from the default catalog, menus and rule
// tables for the given organization and service snapshot.
func NewDefault(org OrgConfig, services []model.Service) (*Engine, error) {
	return New(NewCatalog(org), NewMenus(services), DefaultRules(), DefaultOptions(), services)
}

// NewSession returns the initial state for a freshly opened chat widget:
// the greeting already in the transcript and the main menu active.
func (e *Engine) NewSession() State {
	greeting, _ := e.catalog.Get("greeting")
	return State{
		Transcript: []Message{{Text: greeting, FromBot: true}},
		Pending:    ContextNone,
		ActiveMenu: MenuMain,
	}
}

// Menu exposes a named menu's options, mainly for rendering the seeded
// main menu alongside NewSession.
func (e *Engine) Menu(name MenuID) []Option {
	options, _ := e.menus.Get(name)
	return options
}

type outcome struct {
	key          string
	text         string // overrides catalog lookup when non-empty
	menu         MenuID
	ctx          Context
	showServices bool
}

// Resolve computes the bot's reply for one turn. The returned state carries
// the transcript with both the user's turn and the bot message appended;
// the input state is not mutated.
func (e *Engine) Resolve(turn Turn, state State) (Result, error) {
	var userText string
	var out outcome

	switch turn.Kind {
	case TurnFreeText:
		userText = turn.Text
		out = e.resolveText(turn.Text, state)
	case TurnMenuSelection:
		userText = e.labelFor(turn.OptionID)
		out = e.resolveOption(turn.OptionID)
	default:
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidTurn, turn.Kind)
	}

	botText := out.text
	if botText == "" {
		text, err := e.catalog.Get(out.key)
		if err != nil {
			return Result{}, err
		}
		botText = text
	}

	if out.showServices {
		out.menu = MenuServices
	}

	transcript := make([]Message, 0, len(state.Transcript)+2)
	transcript = append(transcript, state.Transcript...)
	transcript = append(transcript,
		Message{Text: userText, FromBot: false},
		Message{Text: botText, FromBot: true},
	)

	newState := State{
		Transcript: transcript,
		Pending:    out.ctx,
		ActiveMenu: out.menu,
	}

	options, err := e.menus.Get(out.menu)
	if err != nil {
		return Result{}, err
	}

	return Result{
		BotText:         botText,
		State:           newState,
		Options:         options,
		Menu:            out.menu,
		ShowServiceMenu: out.showServices,
	}, nil
}

// resolveText runs the context-override pass and then the ordered rule
// table. The two appointment contexts take absolute precedence over keyword
// matching so that a bare phone number never falls through to "default".
func (e *Engine) resolveText(text string, state State) outcome {
	switch state.Pending {
	case ContextAwaitingPhone:
		if containsDigit(text) {
			return outcome{key: "appointment_followup", menu: MenuTimeSlots, ctx: ContextAwaitingTimeSlot}
		}
		// No progress: ask again, keep the context and menu unchanged.
		return outcome{key: "phone_clarify", menu: state.ActiveMenu, ctx: ContextAwaitingPhone}
	case ContextAwaitingTimeSlot:
		// Any input ends this state; the slot text itself is not validated.
		return outcome{key: "appointment_confirmed", menu: MenuProblems, ctx: ContextNone}
	}

	normalized, words := normalize(text)
	for _, r := range e.rules {
		if !matchGroups(normalized, words, r.Groups) {
			continue
		}
		out := outcome{key: r.Key, menu: r.Menu, ctx: r.Context, showServices: r.ShowServices}
		if r.Key == "greeting" && len(state.Transcript) <= 1 {
			greeting, _ := e.catalog.Get("greeting")
			followup, _ := e.catalog.Get("greeting_followup")
			out.text = greeting + "\n\n" + followup
		}
		return out
	}

	return outcome{key: "default", menu: MenuMain, ctx: ContextNone}
}

// resolveOption handles quick-reply clicks. Clicks are context-free: the
// outcome's own context replaces whatever was pending. Unknown ids are tried
// as service-catalog slugs before falling back to "default".
func (e *Engine) resolveOption(optionID string) outcome {
	if o, ok := e.options[optionID]; ok {
		return outcome{key: o.Key, menu: o.Menu, ctx: o.Context, showServices: o.ShowServices}
	}
	if s, ok := e.bySlug[optionID]; ok {
		return outcome{key: "default", text: serviceSummary(s), menu: MenuServiceFollowup, ctx: ContextNone}
	}
	return outcome{key: "default", menu: MenuMain, ctx: ContextNone}
}

func (e *Engine) labelFor(optionID string) string {
	if s, ok := e.bySlug[optionID]; ok {
		return s.Title
	}
	return e.menus.Label(optionID)
}

// serviceSummary synthesizes a reply for a service-menu click: a truncated
// description plus up to three feature bullets.
func serviceSummary(s model.Service) string {
	text := truncate(s.Description, maxServiceDescription)
	if len(s.Features) > 0 {
		text += "\n\nKey points:"
		for i, f := range s.Features {
			if i == 3 {
				break
			}
			text += "\n• " + f
		}
	}
	return text
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back off to a rune boundary before slicing; descriptions are
	// admin-supplied and not guaranteed ASCII.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// normalize lowercases the input and maps punctuation to spaces, returning
// both the joined form (for phrase patterns) and the word set (for single
// keywords, matched on word boundaries so "this" never triggers "hi").
func normalize(s string) (string, map[string]bool) {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	joined := strings.Join(strings.Fields(b.String()), " ")
	words := make(map[string]bool)
	for _, w := range strings.Fields(joined) {
		words[w] = true
	}
	return joined, words
}

// matchGroups reports whether every keyword group is satisfied: a group
// matches when any of its patterns hits. Multi-word patterns match as a
// substring of the normalized text, single words by exact word match.
func matchGroups(normalized string, words map[string]bool, groups [][]string) bool {
	if len(groups) == 0 {
		return false
	}
	for _, group := range groups {
		matched := false
		for _, pattern := range group {
			if strings.ContainsRune(pattern, ' ') {
				if strings.Contains(normalized, pattern) {
					matched = true
					break
				}
			} else if words[pattern] {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
