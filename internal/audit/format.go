package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const separator = "──────────────────────────────────────────────────────────────────"

// Read loads all entries from a JSONL audit log.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("audit: parse line %d: %w", lineNum, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("audit: scan: %w", err)
	}
	return entries, nil
}

// FormatTimeline renders entries as a human-readable text timeline.
func FormatTimeline(entries []Entry) string {
	if len(entries) == 0 {
		return "No entries found.\n"
	}

	var b strings.Builder

	first := formatDate(entries[0].Timestamp)
	last := formatTimeOnly(entries[len(entries)-1].Timestamp)
	b.WriteString(fmt.Sprintf("Verdicts: %s–%s UTC\n", first, last))
	b.WriteString(separator + "\n")

	approved, rejected := 0, 0
	for _, e := range entries {
		ts := formatTimeOnly(e.Timestamp)
		decision := strings.ToUpper(e.Decision)
		if e.Decision == "approve" {
			approved++
		} else {
			rejected++
		}
		b.WriteString(fmt.Sprintf("%-10s %-8s %-12s %-12s %s\n",
			ts, decision, truncate(e.GroupID, 12), truncate(e.UserID, 12), e.Reason))
	}

	b.WriteString(separator + "\n")
	b.WriteString(fmt.Sprintf("Summary: %d approve, %d reject\n", approved, rejected))

	return b.String()
}

func formatDate(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimeOnly(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04:05")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
