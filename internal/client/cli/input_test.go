package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		err   error
	}{
		{name: "trims answer", input: "  buy milk \r\n", want: "buy milk"},
		{name: "last line without newline", input: "lastline", want: "lastline"},
		{name: "blank answer is allowed", input: "\n", want: ""},
		{name: "closed input", input: "", err: errInputClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out := newTestApp(&fakeClient{}, tt.input)

			got, err := a.ask("Tag")
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Tag: ", out.String())
		})
	}
}

func TestAskRequired_RepeatsOnBlank(t *testing.T) {
	a, out := newTestApp(&fakeClient{}, "\n   \t\nbuy milk\n")

	got, err := a.askRequired("Task text")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got)
	assert.Equal(t, 2, strings.Count(out.String(), "Task text cannot be empty"))
}

func TestAskRequired_InputEndsFirst(t *testing.T) {
	a, _ := newTestApp(&fakeClient{}, "\n")

	_, err := a.askRequired("User name")
	assert.ErrorIs(t, err, errInputClosed)
}

func TestAskPassword(t *testing.T) {
	stubPassword(t, "pw")
	a, out := newTestApp(&fakeClient{}, "")

	pw, err := a.askPassword()
	require.NoError(t, err)
	assert.Equal(t, []byte("pw"), pw)
	assert.Equal(t, "Password: \n", out.String())
}

func TestAskPassword_Blank(t *testing.T) {
	stubPassword(t, "  ")
	a, _ := newTestApp(&fakeClient{}, "")

	_, err := a.askPassword()
	assert.ErrorIs(t, err, errEmptyPassword)
}

func TestAskPassword_TerminalError(t *testing.T) {
	old := readPassword
	readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	t.Cleanup(func() { readPassword = old })
	a, _ := newTestApp(&fakeClient{}, "")

	_, err := a.askPassword()
	assert.EqualError(t, err, "not a terminal")
}

func TestAskLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "stops at empty line", input: "a\nb\n\nignored\n", want: "a\nb"},
		{name: "windows line endings", input: "a\r\nb\r\n\r\n", want: "a\nb"},
		{name: "immediate empty line", input: "\n", want: ""},
		{name: "end of input", input: "a\nb", want: "a\nb"},
		{name: "outer spaces trimmed", input: "  note  \n\n", want: "note"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestApp(&fakeClient{}, tt.input)

			got, err := a.askLines("Description")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdd_BlankTextIsAskedAgain(t *testing.T) {
	c := &fakeClient{}
	a, _ := newTestApp(c, "\nbuy milk\n\n\n")

	require.NoError(t, a.Add(context.Background()))
	require.Len(t, c.tasks, 1)
	assert.Equal(t, "buy milk", c.tasks[0].Text)
}
