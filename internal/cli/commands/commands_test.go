package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"port", "no-browser", "dev"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewDemoCommand(t *testing.T) {
	cmd := NewDemoCommand()

	assert.Equal(t, "demo", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	flags := []string{"port", "database"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewQueryCommand(t *testing.T) {
	cmd := NewQueryCommand()

	assert.Equal(t, "query <dataset>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"page", "page-size", "sort", "desc", "search", "filter", "format"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}

	subs := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subs[sub.Name()] = true
	}
	assert.True(t, subs["datasets"], "datasets subcommand should exist")
	assert.True(t, subs["columns"], "columns subcommand should exist")
}

func TestNewBrowseCommand(t *testing.T) {
	cmd := NewBrowseCommand()

	assert.Equal(t, "browse [dataset]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "2026-01-01", "abc1234")

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}
