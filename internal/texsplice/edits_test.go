package texsplice

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceSpan(t *testing.T) {
	out, err := ReplaceSpan("hello world", 6, 11, "there")
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)

	out, err = ReplaceSpan("abc", 1, 1, "X")
	require.NoError(t, err)
	assert.Equal(t, "aXbc", out)

	out, err = ReplaceSpan("abc", 0, 3, "")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestReplaceSpan_RejectsBadSpans(t *testing.T) {
	for _, span := range [][2]int{{-1, 2}, {2, 1}, {0, 4}} {
		_, err := ReplaceSpan("abc", span[0], span[1], "x")
		assert.Error(t, err, "span %v", span)
	}
}

func TestApplyEdits_EmptyIsNoop(t *testing.T) {
	out, err := ApplyEdits("unchanged", nil)
	require.NoError(t, err)
	assert.Equal(t, "unchanged", out)
}

func TestApplyEdits_OrderIndependent(t *testing.T) {
	src := "one two three"
	edits := []Edit{
		{Start: 0, End: 3, Replacement: "1"},
		{Start: 8, End: 13, Replacement: "3"},
		{Start: 4, End: 7, Replacement: "2"},
	}
	out, err := ApplyEdits(src, edits)
	require.NoError(t, err)
	assert.Equal(t, "1 2 3", out)
}

func TestApplyEdits_RejectsOverlap(t *testing.T) {
	_, err := ApplyEdits("abcdef", []Edit{{Start: 0, End: 3}, {Start: 2, End: 4}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlapping")
}

func TestRewriteMatches_LastToFirst(t *testing.T) {
	re := regexp.MustCompile(`<(\w+)>`)
	var order []string
	out, n, err := RewriteMatches("a <x> b <yy> c <zzz>", re, 1, func(m Match) (string, bool, error) {
		order = append(order, m.Groups[1])
		return "[" + m.Groups[1] + "]", true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"zzz", "yy", "x"}, order)
	assert.Equal(t, "a <[x]> b <[yy]> c <[zzz]>", out)
}

func TestRewriteMatches_DeclinedMatchUntouched(t *testing.T) {
	re := regexp.MustCompile(`\d+`)
	out, n, err := RewriteMatches("1 22 333", re, 0, func(m Match) (string, bool, error) {
		if m.Full == "22" {
			return "", false, nil
		}
		return "#", true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "# 22 #", out)
}

func TestFindMatches_BadGroup(t *testing.T) {
	_, err := FindMatches("x", regexp.MustCompile(`x`), 1)
	assert.Error(t, err)
}

func TestRewriteMatches_OffsetsReferToOriginalText(t *testing.T) {
	re := regexp.MustCompile(`x`)
	text := "x-x-x"
	var starts []int
	out, n, err := RewriteMatches(text, re, 0, func(m Match) (string, bool, error) {
		starts = append(starts, m.Start)
		assert.Equal(t, "x", text[m.Start:m.End])
		return "long", true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{4, 2, 0}, starts)
	assert.Equal(t, "long-long-long", out)
}

func TestRewriteMatches_ErrorAppliesNothing(t *testing.T) {
	re := regexp.MustCompile(`\d`)
	out, _, err := RewriteMatches("1 2 3", re, 0, func(m Match) (string, bool, error) {
		if m.Full == "1" {
			return "", false, assert.AnError
		}
		return "#", true, nil
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, out)
}
