package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulwarkhq/bulwark/core/check"
)

func postContext(path, content string) *check.Context {
	return &check.Context{
		Phase:    check.PhasePost,
		ToolName: "Write",
		Path:     path,
		Content:  content,
	}
}

func TestTrailingWhitespaceCheckDescriptor(t *testing.T) {
	c := NewTrailingWhitespaceCheck()
	desc := c.Descriptor()

	assert.Equal(t, "trailing-whitespace", desc.ID)
	assert.Equal(t, check.CategoryFormatting, desc.Category)
	assert.Equal(t, check.PriorityBackground, desc.Priority)
	assert.Equal(t, check.BlockingNone, desc.Blocking)
	require.NoError(t, desc.Validate())

	assert.True(t, desc.Matcher.Matches(check.PhasePost, "Write", "a.go"))
	assert.False(t, desc.Matcher.Matches(check.PhasePre, "Write", "a.go"))
}

func TestTrailingWhitespaceCheckProposesPatch(t *testing.T) {
	c := NewTrailingWhitespaceCheck()

	res, err := c.Execute(context.Background(), postContext("main.go", "package main  \n\nfunc main() {\t\n}\n"))
	require.NoError(t, err)
	assert.Equal(t, check.StatusModify, res.Status)
	require.NotNil(t, res.Patch)
	assert.Equal(t, "main.go", res.Patch.Target)
	assert.Equal(t, "package main\n\nfunc main() {\n}\n", res.Patch.NewContent)
	assert.Equal(t, "stripped trailing whitespace", res.Message)
}

func TestTrailingWhitespaceCheckPreservesCRLF(t *testing.T) {
	c := NewTrailingWhitespaceCheck()

	res, err := c.Execute(context.Background(), postContext("a.txt", "one  \r\ntwo\r\n"))
	require.NoError(t, err)
	assert.Equal(t, check.StatusModify, res.Status)
	require.NotNil(t, res.Patch)
	assert.Equal(t, "one\r\ntwo\r\n", res.Patch.NewContent)
}

func TestTrailingWhitespaceCheckCleanContentAllows(t *testing.T) {
	c := NewTrailingWhitespaceCheck()

	for _, content := range []string{"package main\n\nfunc main() {}\n", ""} {
		res, err := c.Execute(context.Background(), postContext("main.go", content))
		require.NoError(t, err)
		assert.Equal(t, check.StatusAllow, res.Status)
		assert.Nil(t, res.Patch)
	}
}

func TestTrailingWhitespaceCheckFinalLineWithoutNewline(t *testing.T) {
	c := NewTrailingWhitespaceCheck()

	res, err := c.Execute(context.Background(), postContext("a.txt", "tail   "))
	require.NoError(t, err)
	assert.Equal(t, check.StatusModify, res.Status)
	require.NotNil(t, res.Patch)
	assert.Equal(t, "tail", res.Patch.NewContent)
}
