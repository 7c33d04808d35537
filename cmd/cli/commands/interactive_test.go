package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRoot builds a root with a recording command and the interactive command
func testRoot(calls *[]string) *cobra.Command {
	root := &cobra.Command{Use: "cli"}

	echo := &cobra.Command{
		Use:   "echo",
		Short: "Record the flag value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			word, _ := cmd.Flags().GetString("word")
			*calls = append(*calls, word)
			return nil
		},
	}
	echo.Flags().String("word", "default", "")

	root.AddCommand(echo)
	root.AddCommand(InteractiveCmd())
	return root
}

func TestRunInteractive_RunsCommandsAndResetsFlags(t *testing.T) {
	var calls []string
	root := testRoot(&calls)
	var out bytes.Buffer

	input := strings.NewReader("echo --word hello\necho\n\nexit\necho --word never\n")
	require.NoError(t, runInteractive(root, input, &out))

	assert.Equal(t, []string{"hello", "default"}, calls)
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestRunInteractive_UnknownAndInvalid(t *testing.T) {
	var calls []string
	root := testRoot(&calls)
	var out bytes.Buffer

	input := strings.NewReader("nope\necho extra-arg\nhelp\ninteractive\n")
	require.NoError(t, runInteractive(root, input, &out))

	assert.Empty(t, calls)
	assert.Contains(t, out.String(), "Unknown command: nope")
	assert.Contains(t, out.String(), "Error:")
	assert.Contains(t, out.String(), "Record the flag value")
	assert.Contains(t, out.String(), "Unknown command: interactive")
}
