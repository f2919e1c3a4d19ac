package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nextlevelbuilder/rigbot/internal/session"
)

// Callback keys. Slot-parameterized actions encode the component kind (and
// for selections the catalog entry id) after a colon, e.g. "add:cpu",
// "pick:ram:42". Telegram callback data is limited to 64 bytes, so selection
// callbacks carry only the entry id; name and price are re-read from the
// catalog when the button is pressed.
const (
	cbMenu         = "menu"
	cbTabCreate    = "tab:create"
	cbTabBuilds    = "tab:builds"
	cbTabUpgrade   = "tab:upgrade"
	cbTabTutorials = "tab:tutorials"
	cbNewBuild     = "build:new"
	cbChooseBuild  = "build:list"
	cbPartsMenu    = "parts:menu"
	cbChangeMenu   = "change:menu"
	cbDeleteMenu   = "delete:menu"
	cbView         = "view"
	cbReview       = "review"
	cbComplete     = "complete"

	prefixSelectBuild = "build:"
	prefixAdd         = "add:"
	prefixChange      = "change:"
	prefixDelete      = "delete:"
	prefixManual      = "manual:"
	prefixPick        = "pick:"
)

func addKey(k session.Kind) string    { return prefixAdd + string(k) }
func changeKey(k session.Kind) string { return prefixChange + string(k) }
func deleteKey(k session.Kind) string { return prefixDelete + string(k) }
func manualKey(k session.Kind) string { return prefixManual + string(k) }

func pickKey(k session.Kind, entryID int64) string {
	return fmt.Sprintf("%s%s:%d", prefixPick, k, entryID)
}

func selectBuildKey(id int) string {
	return prefixSelectBuild + strconv.Itoa(id)
}

// parseKind extracts the component kind from "<prefix><kind>".
func parseKind(data, prefix string) (session.Kind, bool) {
	k := session.Kind(strings.TrimPrefix(data, prefix))
	return k, k.Valid()
}

// parsePick extracts the kind and entry id from "pick:<kind>:<id>".
func parsePick(data string) (session.Kind, int64, bool) {
	rest := strings.TrimPrefix(data, prefixPick)
	kindStr, idStr, found := strings.Cut(rest, ":")
	if !found {
		return "", 0, false
	}
	k := session.Kind(kindStr)
	if !k.Valid() {
		return "", 0, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return k, id, true
}
