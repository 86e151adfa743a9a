// Package report renders a finished session as Markdown and archives it.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bmcnav/internal/bmc"
	"bmcnav/internal/session"
)

// FileName is the object name a report is archived under.
const FileName = "report.md"

// Build renders the session outcome. It works for unfinished sessions too;
// sections without data are left out.
func Build(s session.State) string {
	var sb strings.Builder
	sb.WriteString("# BMC Navigátor: výstup sezení\n\n")
	fmt.Fprintf(&sb, "- Sezení: `%s`\n", s.ID)
	fmt.Fprintf(&sb, "- Stav: %s\n", s.Stage.Label())
	if !s.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "- Aktualizováno: %s\n", s.UpdatedAt.UTC().Format(time.RFC3339))
	}
	if s.Failure != "" {
		fmt.Fprintf(&sb, "- Chyba: %s\n", s.Failure)
	}

	if s.UserContext != "" {
		sb.WriteString("\n## Úvodní kontext\n\n")
		sb.WriteString(s.UserContext)
		sb.WriteString("\n")
	}

	if len(s.Plan) > 0 {
		sb.WriteString("\n## Business Model Canvas\n")
		for _, item := range s.Plan {
			fmt.Fprintf(&sb, "\n### %s\n\n", bmc.DisplayName(item.Key))
			fmt.Fprintf(&sb, "_%s_\n\n", item.QuestionText())
			answer, ok := s.Answers.Get(item.Key)
			switch {
			case !ok:
				sb.WriteString("(bez odpovědi)\n")
			case answer == bmc.Skipped:
				sb.WriteString("(přeskočeno)\n")
			default:
				sb.WriteString(answer)
				sb.WriteString("\n")
			}
		}
	}

	if s.Analysis != "" {
		sb.WriteString("\n## Strategická analýza\n\n")
		sb.WriteString(s.Analysis)
		sb.WriteString("\n")
	}
	if s.IdeaList != "" {
		sb.WriteString("\n## Přehled návrhů inovací\n\n")
		sb.WriteString(s.IdeaList)
		sb.WriteString("\n")
	}
	for i, d := range s.Details {
		fmt.Fprintf(&sb, "\n## Návrh %d: %s\n\n", i+1, d.Title)
		sb.WriteString(d.Detail)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Store archives rendered reports per session.
type Store interface {
	Put(ctx context.Context, sessionID, name string, content []byte) error
	Get(ctx context.Context, sessionID, name string) ([]byte, error)
	GetURL(ctx context.Context, sessionID, name string) (string, error)
}

// Archive builds the report for s and stores it. It returns the download
// location when the store offers one.
func Archive(ctx context.Context, st Store, s session.State) (string, error) {
	if st == nil {
		return "", nil
	}
	if err := st.Put(ctx, s.ID, FileName, []byte(Build(s))); err != nil {
		return "", fmt.Errorf("archive report: %w", err)
	}
	return st.GetURL(ctx, s.ID, FileName)
}
