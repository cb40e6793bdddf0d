package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	t.Run("trims the line", func(t *testing.T) {
		var out bytes.Buffer
		r := bufio.NewReader(strings.NewReader("  hello world  \n"))

		got, err := GetSimpleText(r, "Say something", &out)
		require.NoError(t, err)
		assert.Equal(t, "hello world", got)
		assert.Contains(t, out.String(), "Say something")
	})

	t.Run("partial line at EOF is returned", func(t *testing.T) {
		var out bytes.Buffer
		r := bufio.NewReader(strings.NewReader("no newline"))

		got, err := GetSimpleText(r, "p", &out)
		require.NoError(t, err)
		assert.Equal(t, "no newline", got)
	})

	t.Run("empty input at EOF errors", func(t *testing.T) {
		var out bytes.Buffer
		r := bufio.NewReader(strings.NewReader(""))

		_, err := GetSimpleText(r, "p", &out)
		require.Error(t, err)
	})
}

func TestGetSigningKey(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })

	t.Run("returns key without echoing", func(t *testing.T) {
		readPassword = func(fd int) ([]byte, error) { return []byte("deadbeef"), nil }

		var out bytes.Buffer
		key, err := GetSigningKey(&out)
		require.NoError(t, err)
		assert.Equal(t, []byte("deadbeef"), key)
		assert.Contains(t, out.String(), "Enter signing key")
		assert.NotContains(t, out.String(), "deadbeef")
	})

	t.Run("propagates terminal error", func(t *testing.T) {
		readPassword = func(fd int) ([]byte, error) { return nil, errors.New("not a tty") }

		var out bytes.Buffer
		_, err := GetSigningKey(&out)
		require.Error(t, err)
	})
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList("a, b"))
	assert.Equal(t, []string{"one"}, splitList("one,,  "))
	assert.Empty(t, splitList(""))
}
