package textrecord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtractsLabelledFields(t *testing.T) {
	t.Parallel()

	block := "TITLE: Login failures\nDESCRIPTION: Users cannot sign in.\nIMPACT: Blocks usage\nEVIDENCE: \"fails every time\"\nEMOJI: 🔐"
	got := Parse(block, "TITLE", "DESCRIPTION", "IMPACT", "EVIDENCE", "EMOJI")

	assert.Equal(t, map[string]string{
		"TITLE":       "Login failures",
		"DESCRIPTION": "Users cannot sign in.",
		"IMPACT":      "Blocks usage",
		"EVIDENCE":    "\"fails every time\"",
		"EMOJI":       "🔐",
	}, got)
}

func TestParseMissingFieldIsEmpty(t *testing.T) {
	t.Parallel()

	got := Parse("TITLE: Only a title", "TITLE", "IMPACT")

	require.Contains(t, got, "IMPACT")
	assert.Equal(t, "", got["IMPACT"])
	assert.Equal(t, "Only a title", got["TITLE"])
}

func TestParseToleratesMarkdown(t *testing.T) {
	t.Parallel()

	block := "1. **TITLE:** Slow sync\n- **EVIDENCE:** takes forever  \n"

	assert.Equal(t, "Slow sync", Field(block, "TITLE"))
	assert.Equal(t, "takes forever", Field(block, "EVIDENCE"))
}

func TestFieldDoesNotMatchInsideLongerLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Field("SUBTITLE: nope", "TITLE"))
}

func TestFieldStopsAtNewline(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Field("EMOJI:\nTITLE: next", "EMOJI"))
}

func TestSplitBlocks(t *testing.T) {
	t.Parallel()

	text := "TOPIC: A\nDESCRIPTION: a\n\n  \nTOPIC: B\n \t\nTOPIC: C\n\n"

	assert.Equal(t, []string{"TOPIC: A\nDESCRIPTION: a", "TOPIC: B", "TOPIC: C"}, SplitBlocks(text))
	assert.Empty(t, SplitBlocks("   \n\n"))
}

func TestSplitRecordsDiscardsPreamble(t *testing.T) {
	t.Parallel()

	text := "Here are the groups:\n\nTITLE: One\nDESCRIPTION: first\n\nTITLE: Two\nEMOJI: ✨"
	got := SplitRecords(text, "TITLE")

	require.Len(t, got, 2)
	assert.Equal(t, "TITLE: One\nDESCRIPTION: first", got[0])
	assert.Equal(t, "TITLE: Two\nEMOJI: ✨", got[1])
}

func TestSplitRecordsNoLabel(t *testing.T) {
	t.Parallel()

	assert.Empty(t, SplitRecords("nothing structured here", "PRIORITY"))
}

func TestFirstLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Battery drain", FirstLine("\n\n1. **Battery drain**\nmore"))
	assert.Equal(t, "", FirstLine("  \n"))
	assert.Equal(t, "2FA codes never arrive", FirstLine("2FA codes never arrive\nwaited an hour"))
	assert.Equal(t, "3D Touch menu broken", FirstLine("- 3D Touch menu broken"))
	assert.Equal(t, "Crash on start", FirstLine("12) Crash on start"))
	assert.Equal(t, "Heading", FirstLine("## Heading"))
}
