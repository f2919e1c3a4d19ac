package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nextlevelbuilder/rigbot/internal/catalog"
	"github.com/nextlevelbuilder/rigbot/internal/session"
)

// maxCandidates is how many ranked matches are offered as buttons when a
// search is ambiguous.
const maxCandidates = 4

// Reviewer produces the AI quality review for a build. Implementations must
// tolerate their own failures and return a user-presentable fallback.
type Reviewer interface {
	Review(ctx context.Context, b *session.Build) string
}

// Tracker drives the per-user conversation state machine. Events are handled
// one at a time; every mutation is flushed through the session cache before
// the reply is returned.
type Tracker struct {
	sessions *session.Cache
	catalog  *catalog.Store
	reviewer Reviewer
}

// NewTracker wires the tracker to its collaborators.
func NewTracker(sessions *session.Cache, cat *catalog.Store, reviewer Reviewer) *Tracker {
	return &Tracker{sessions: sessions, catalog: cat, reviewer: reviewer}
}

// Start handles first contact (the /start command): loads or creates the
// session and shows the main menu.
func (t *Tracker) Start(ctx context.Context, userID int64) (Reply, error) {
	if _, err := t.sessions.Get(ctx, userID); err != nil {
		return Reply{}, err
	}
	return mainMenu(false), nil
}

// HandleCallback handles a menu selection.
func (t *Tracker) HandleCallback(ctx context.Context, userID int64, data string) (Reply, error) {
	sess, err := t.sessions.Get(ctx, userID)
	if err != nil {
		return Reply{}, err
	}

	switch data {
	case cbMenu:
		return mainMenu(true), nil
	case cbTabCreate:
		return createTab(), nil
	case cbTabBuilds:
		return buildsTab("👾 View all systems\n\nChoose the system:"), nil
	case cbTabUpgrade:
		return buildsTab("🔄 Upgrade system\n\nChoose the system:"), nil
	case cbTabTutorials:
		return tutorialsTab(), nil

	case cbNewBuild:
		sess.Pending = session.Pending{State: session.PendingBuildName}
		return Reply{Text: "💻 Enter name of your computer:"}, nil

	case cbPartsMenu:
		return kindMenu("👽 Choose what you want to add:", addKey, "Add"), nil
	case cbChangeMenu:
		return kindMenu("🧐 Choose component:", changeKey, "Change"), nil
	case cbDeleteMenu:
		return kindMenu("🗑️ Choose component to delete:", deleteKey, "Delete"), nil

	case cbChooseBuild:
		return t.chooseBuild(sess), nil

	case cbView:
		b := sess.Current()
		if b == nil {
			return noBuildNotice(), nil
		}
		return Reply{
			Text: buildCard(b),
			Edit: true,
			Rows: rows(row(btn("⬅️ Back to menu", cbMenu))),
		}, nil

	case cbComplete:
		b := sess.Current()
		if b == nil {
			return noBuildNotice(), nil
		}
		return Reply{
			Text: completeCard(b),
			Edit: true,
			Rows: rows(
				row(btn("👀 View Components", cbView), btn("🔄 Upgrade system", cbChangeMenu)),
				row(btn("🖥️ Create New", cbNewBuild), btn("🤖 Check the build using AI", cbReview)),
				row(btn("⬅️ Back to menu", cbMenu)),
			),
		}, nil

	case cbReview:
		b := sess.Current()
		if b == nil {
			return noBuildNotice(), nil
		}
		review := t.reviewer.Review(ctx, b)
		return Reply{
			Text: fmt.Sprintf("%s\n\n🤖 What AI thinks about your build:\n\n%s", buildCard(b), review),
			Edit: true,
			Rows: rows(
				row(btn("🔄 Upgrade system", cbChangeMenu), btn("🖥️ Create New", cbNewBuild)),
				row(btn("⬅️ Back to menu", cbMenu)),
			),
		}, nil
	}

	if kind, ok := parseKind(data, prefixAdd); ok && strings.HasPrefix(data, prefixAdd) {
		return t.promptComponent(ctx, sess, kind, session.PendingComponent)
	}
	if kind, ok := parseKind(data, prefixChange); ok && strings.HasPrefix(data, prefixChange) {
		return t.promptComponent(ctx, sess, kind, session.PendingReplacement)
	}
	if kind, ok := parseKind(data, prefixDelete); ok && strings.HasPrefix(data, prefixDelete) {
		return t.deletePart(ctx, sess, kind)
	}
	if kind, ok := parseKind(data, prefixManual); ok && strings.HasPrefix(data, prefixManual) {
		// Stale keyboards outlive their session; without a build the tag
		// would dead-end at the price step.
		if sess.Current() == nil {
			return noBuildNotice(), nil
		}
		sess.Pending = session.Pending{State: session.PendingManualName, Slot: kind}
		return Reply{Text: fmt.Sprintf("✍️ Now enter name of the %s:", kind.Label())}, nil
	}
	if kind, id, ok := parsePick(data); ok && strings.HasPrefix(data, prefixPick) {
		return t.pickCandidate(ctx, sess, kind, id)
	}
	if strings.HasPrefix(data, prefixSelectBuild) {
		if id, err := strconv.Atoi(strings.TrimPrefix(data, prefixSelectBuild)); err == nil {
			return t.selectBuild(ctx, sess, id)
		}
	}

	slog.Debug("unknown callback", "user_id", userID, "data", data)
	return Reply{}, nil
}

// HandleText handles a free-text message according to the pending-input tag.
// With nothing pending the message is ignored, matching the original bot.
func (t *Tracker) HandleText(ctx context.Context, userID int64, text string) (Reply, error) {
	sess, err := t.sessions.Get(ctx, userID)
	if err != nil {
		return Reply{}, err
	}

	text = strings.TrimSpace(text)

	switch sess.Pending.State {
	case session.PendingBuildName:
		b := sess.NewBuild(text)
		sess.Pending = session.Pending{}
		t.sessions.Flush(ctx, userID)
		return Reply{
			Text: fmt.Sprintf("✅ Computer '%s' created! Now you can add components.", b.Name),
			Rows: rows(
				row(btn("🔧 Add components", cbPartsMenu)),
				row(btn("⬅️ Back to menu", cbMenu)),
			),
		}, nil

	case session.PendingComponent:
		return t.searchAndFill(ctx, sess, sess.Pending.Slot, text, false)

	case session.PendingReplacement:
		return t.searchAndFill(ctx, sess, sess.Pending.Slot, text, true)

	case session.PendingManualName:
		kind := sess.Pending.Slot
		sess.Pending = session.Pending{State: session.PendingManualPrice, Slot: kind, ManualName: text}
		return Reply{Text: fmt.Sprintf("💰 Now enter the price for '%s' (in $):", text)}, nil

	case session.PendingManualPrice:
		price, err := strconv.Atoi(text)
		if err != nil {
			// Reprompt; the pending tag is left untouched.
			return Reply{Text: "❌ Please enter a valid number (e.g., 250)."}, nil
		}
		kind := sess.Pending.Slot
		name := sess.Pending.ManualName
		return t.fillSlot(ctx, sess, kind, name, price, false, false)
	}

	return Reply{}, nil
}

// --- handlers ---

func noBuildNotice() Reply {
	return Reply{
		Text: "❌ You don't have any computers yet!",
		Rows: rows(row(btn("💻 Create new computer", cbNewBuild), btn("⬅️ Back to menu", cbMenu))),
	}
}

// promptComponent arms the awaiting-component tag. Rejected with a notice
// when the user has no current build.
func (t *Tracker) promptComponent(ctx context.Context, sess *session.Session, kind session.Kind, state session.PendingState) (Reply, error) {
	b := sess.Current()
	if b == nil {
		return noBuildNotice(), nil
	}

	sess.Pending = session.Pending{State: state, Slot: kind}

	if state == session.PendingReplacement {
		current := partLine(b, kind)
		return Reply{Text: fmt.Sprintf("%s Change %s\nCurrent: %s\n\nEnter new %s model:",
			kindEmoji[kind], kind.Label(), current, kind.Label())}, nil
	}
	return Reply{Text: fmt.Sprintf("%s Enter %s model:", kindEmoji[kind], kind.Label())}, nil
}

// searchAndFill runs the catalog search for a pending component and acts on
// the 0/1/N outcome. The kind hint deliberately does not restrict the query
// (see DESIGN.md). While candidates are offered the tag stays pending, so
// further free text simply re-enters this search.
func (t *Tracker) searchAndFill(ctx context.Context, sess *session.Session, kind session.Kind, query string, replacing bool) (Reply, error) {
	matches, err := t.catalog.Search(ctx, query, catalog.SearchOptions{})
	if err != nil {
		return Reply{}, fmt.Errorf("catalog search: %w", err)
	}

	switch {
	case len(matches) == 0:
		return Reply{
			Text: "❌ No price found for this component — you can enter the price yourself.",
			Rows: rows(
				row(btn("💸 Enter manually", manualKey(kind)), btn("🔧 Add next component", cbPartsMenu)),
				row(btn("⬅️ Back to menu", cbMenu)),
			),
		}, nil

	case len(matches) == 1:
		return t.fillSlot(ctx, sess, kind, matches[0].Name, matches[0].Price, replacing, false)

	default:
		top := matches
		if len(top) > maxCandidates {
			top = top[:maxCandidates]
		}
		var r [][]Button
		for _, m := range top {
			r = append(r, row(btn(fmt.Sprintf("🖥️ %s - $%d", m.Name, m.Price), pickKey(kind, m.ID))))
		}
		r = append(r,
			row(btn("💸 Enter manually", manualKey(kind)), btn("🔧 Add next component", cbPartsMenu)),
			row(btn("⬅️ Back to menu", cbMenu)),
		)
		return Reply{Text: "🔍 Found several options. Choose one:", Rows: r}, nil
	}
}

// pickCandidate fills a slot from a selection button, resolving the entry by
// id so the price is always the catalog's current one.
func (t *Tracker) pickCandidate(ctx context.Context, sess *session.Session, kind session.Kind, entryID int64) (Reply, error) {
	e, err := t.catalog.Get(ctx, entryID)
	if err != nil {
		return Reply{}, fmt.Errorf("resolve candidate %d: %w", entryID, err)
	}
	replacing := sess.Pending.State == session.PendingReplacement
	return t.fillSlot(ctx, sess, kind, e.Name, e.Price, replacing, true)
}

// fillSlot writes the slot, clears the pending tag, recomputes the total and
// flushes. Replacements refresh the price on every path.
func (t *Tracker) fillSlot(ctx context.Context, sess *session.Session, kind session.Kind, name string, price int, replacing, edit bool) (Reply, error) {
	b := sess.Current()
	if b == nil {
		sess.Pending = session.Pending{}
		return noBuildNotice(), nil
	}

	b.SetPart(kind, name, price)
	sess.Pending = session.Pending{}
	t.sessions.Flush(ctx, sess.UserID)

	return Reply{
		Text: fmt.Sprintf("✅ New %s: '%s' - $%d was added!\n%s",
			kind.Label(), name, price, progressLine(b)),
		Edit: edit,
		Rows: afterFillRows(b, replacing),
	}, nil
}

// deletePart clears a slot and flushes.
func (t *Tracker) deletePart(ctx context.Context, sess *session.Session, kind session.Kind) (Reply, error) {
	b := sess.Current()
	if b == nil {
		return noBuildNotice(), nil
	}

	b.ClearPart(kind)
	t.sessions.Flush(ctx, sess.UserID)

	return Reply{
		Text: fmt.Sprintf("💔 %s deleted\n\nComponent has been removed from %s", kind.Label(), b.Name),
		Rows: rows(
			row(btn("🗑️ Delete next component", cbDeleteMenu)),
			row(btn("⬅️ Back to menu", cbMenu)),
		),
	}, nil
}

// chooseBuild lists the user's builds as selection buttons.
func (t *Tracker) chooseBuild(sess *session.Session) Reply {
	if len(sess.Builds) == 0 {
		return Reply{
			Text: "❌ You need to create your first computer",
			Edit: true,
			Rows: rows(row(btn("⬅️ Back to menu", cbMenu))),
		}
	}

	var r [][]Button
	for _, b := range sess.Builds {
		r = append(r, row(btn(fmt.Sprintf("Computer: %s", b.Name), selectBuildKey(b.ID))))
	}
	r = append(r, row(btn("⬅️ Back to menu", cbMenu)))
	return Reply{Text: "👾 Choose your computer:", Edit: true, Rows: r}
}

// selectBuild makes a build current and shows its options.
func (t *Tracker) selectBuild(ctx context.Context, sess *session.Session, id int) (Reply, error) {
	if sess.Build(id) == nil {
		return noBuildNotice(), nil
	}
	sess.CurrentBuild = id
	t.sessions.Flush(ctx, sess.UserID)
	return buildOptionsMenu(), nil
}
