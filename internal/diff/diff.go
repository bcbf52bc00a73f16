// Package diff implements change detection between page snapshots.
//
// The diff is positional: both texts are split on newlines and compared
// index by index. It does not realign after insertions or deletions, so a
// single line inserted near the top shows every following line as a paired
// removal and addition. Downstream consumers (Slack and Notion messages)
// render this shape as-is, so it must not be swapped for an LCS diff
// without checking them.
package diff

import "strings"

// Changed reports whether new content differs from old content. Strict
// byte comparison: whitespace-only and cosmetic differences count.
func Changed(oldContent, newContent string) bool {
	return oldContent != newContent
}

// Positional renders a line-oriented unified-style diff of the two texts.
// For each index up to the longer length it emits "- old" when the old
// line is non-empty and missing or different in new, and "+ new"
// symmetrically. Lines are joined with newlines; equal inputs yield "".
func Positional(oldContent, newContent string) string {
	oldLines := strings.Split(oldContent, "\n")
	newLines := strings.Split(newContent, "\n")

	maxLen := len(oldLines)
	if len(newLines) > maxLen {
		maxLen = len(newLines)
	}

	var out []string
	for i := 0; i < maxLen; i++ {
		oldLine := lineAt(oldLines, i)
		newLine := lineAt(newLines, i)
		if oldLine == newLine {
			continue
		}
		switch {
		case oldLine != "" && newLine == "":
			out = append(out, "- "+oldLine)
		case oldLine == "" && newLine != "":
			out = append(out, "+ "+newLine)
		default:
			out = append(out, "- "+oldLine, "+ "+newLine)
		}
	}
	return strings.Join(out, "\n")
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}
