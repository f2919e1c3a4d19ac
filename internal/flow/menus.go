package flow

import (
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/rigbot/internal/session"
)

const welcomeText = "✨ Welcome! Assemble a virtual computer and put it to the test ✨"

var kindEmoji = map[session.Kind]string{
	session.KindCPU:         "🔧",
	session.KindRAM:         "💾",
	session.KindGPU:         "🖥️",
	session.KindStorage:     "📦",
	session.KindMotherboard: "📁",
}

// tutorialLinks are the "what is X" reference pages offered in the tutorials tab.
var tutorialLinks = []struct{ label, url string }{
	{"What is CPU", "https://www.arm.com/glossary/cpu"},
	{"What is RAM", "https://www.intel.com/content/www/us/en/tech-tips-and-tricks/computer-ram.html"},
	{"What is GPU", "https://www.intel.com/content/www/us/en/products/docs/processors/what-is-a-gpu.html"},
	{"What is Storage", "https://www.intel.com/content/www/us/en/search.html#q=storage"},
	{"What is Motherboard", "https://www.intel.com/content/www/us/en/gaming/resources/how-to-choose-a-motherboard.html"},
}

func mainMenu(edit bool) Reply {
	return Reply{
		Text: welcomeText,
		Edit: edit,
		Rows: rows(
			row(btn("🖥️ Create new system", cbTabCreate)),
			row(btn("👾 View all systems", cbTabBuilds), btn("🔄 Upgrade system", cbTabUpgrade)),
			row(btn("📚 View tutorials", cbTabTutorials)),
		),
	}
}

func createTab() Reply {
	return Reply{
		Text: "🖥️ Create new system\n\nWhat do you want to do first:",
		Edit: true,
		Rows: rows(
			row(btn("💻 Create new computer", cbNewBuild), btn("🔧 Add components", cbPartsMenu)),
			row(btn("⬅️ Back to menu", cbMenu)),
		),
	}
}

func buildsTab(text string) Reply {
	return Reply{
		Text: text,
		Edit: true,
		Rows: rows(
			row(btn("💻 Choose the computer", cbChooseBuild)),
			row(btn("⬅️ Back to menu", cbMenu)),
		),
	}
}

func tutorialsTab() Reply {
	var r [][]Button
	for _, link := range tutorialLinks {
		r = append(r, row(urlBtn(link.label, link.url)))
	}
	r = append(r, row(btn("⬅️ Back to menu", cbMenu)))
	return Reply{
		Text: "📚 View tutorials\n\nChoose the tutorial:",
		Edit: true,
		Rows: r,
	}
}

// kindMenu renders the five-slot menu for a verb family (add/change/delete).
func kindMenu(text string, key func(session.Kind) string, verb string) Reply {
	k := func(kind session.Kind) Button {
		return btn(fmt.Sprintf("%s %s %s", kindEmoji[kind], verb, kind.Label()), key(kind))
	}
	return Reply{
		Text: text,
		Edit: true,
		Rows: rows(
			row(k(session.KindCPU)),
			row(k(session.KindRAM), k(session.KindGPU)),
			row(k(session.KindStorage), k(session.KindMotherboard)),
			row(btn("⬅️ Back to menu", cbMenu)),
		),
	}
}

func buildOptionsMenu() Reply {
	return Reply{
		Text: "🦾 Choose option:",
		Edit: true,
		Rows: rows(
			row(btn("🆙 Change component", cbChangeMenu), btn("👀 View all components", cbView)),
			row(btn("🗑️ Delete component", cbDeleteMenu), btn("🤖 Check the build using AI", cbReview)),
			row(btn("⬅️ Back to menu", cbMenu)),
		),
	}
}

// afterFillRows are the follow-up buttons after a slot was filled.
func afterFillRows(b *session.Build, replacing bool) [][]Button {
	next := btn("🔧 Add next component", cbPartsMenu)
	if replacing {
		next = btn("🔧 Change next component", cbChangeMenu)
	}
	r := rows(row(next, btn("⬅️ Back to menu", cbMenu)))
	if b.Complete() {
		r = append(r, row(btn("🎉 Build Complete!", cbComplete)))
	}
	return r
}

func progressLine(b *session.Build) string {
	filled, total := b.Progress()
	return fmt.Sprintf("🚧 Build progress: %d/%d components", filled, total)
}

func partLine(b *session.Build, k session.Kind) string {
	if p, ok := b.Part(k); ok {
		return p.Name
	}
	return "❌ Not set"
}

func buildCard(b *session.Build) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🖥️ Computer: %s\n", b.Name)
	fmt.Fprintf(&sb, "📅 Created: %s\n\nComponents:\n", b.CreatedAt.Format("02.01.2006"))
	for _, k := range session.Kinds() {
		fmt.Fprintf(&sb, "%s %s: %s\n", kindEmoji[k], k.Label(), partLine(b, k))
	}
	fmt.Fprintf(&sb, "💰 Total price: $%d", b.TotalPrice)
	return sb.String()
}

func completeCard(b *session.Build) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎉 Build Complete! 🎉\n\n🖥️ %s is ready!\n\nAll components have been added:\n", b.Name)
	for _, k := range session.Kinds() {
		fmt.Fprintf(&sb, "%s %s\n", kindEmoji[k], partLine(b, k))
	}
	fmt.Fprintf(&sb, "💰 $%d\n\nYour dream computer is assembled!", b.TotalPrice)
	return sb.String()
}
