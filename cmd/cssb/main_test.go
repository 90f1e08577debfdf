package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cssb/css"
	"cssb/state"
)

func TestParseBuildArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"single part", []string{"element=div"}, "div"},
		{"compound", []string{"element=a", "class=nav", "attr=href$=\".png\"", "pseudo-class=focus"}, `a.nav[href$=".png"]:focus`},
		{"short attr", []string{"attr=disabled"}, "[disabled]"},
		{"combined", []string{"element=div", "id=main", "+", "element=table", "id=data"}, "div#main + table#data"},
		{"folds left", []string{"element=a", "+", "element=b", "~", "element=c"}, "a + b ~ c"},
		{"descendant", []string{"element=nav", "descendant", "element=li"}, "nav   li"},
		{"value with equals", []string{"attr=lang=en"}, "[lang=en]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := parseBuildArgs(tt.args)
			require.NoError(t, err)
			require.NoError(t, f.Err())
			require.Equal(t, tt.want, f.String())
		})
	}
}

func TestParseBuildArgs_Malformed(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"empty", nil},
		{"leading combinator", []string{"+", "element=a"}},
		{"dangling combinator", []string{"element=a", ">"}},
		{"double combinator", []string{"element=a", ">", "+", "element=b"}},
		{"no value", []string{"element="}},
		{"no kind", []string{"div"}},
		{"unknown kind", []string{"tag=div"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBuildArgs(tt.args)
			require.Error(t, err)
		})
	}
}

func TestParseBuildArgs_InvalidSelector(t *testing.T) {
	f, err := parseBuildArgs([]string{"element=p", "class=note", "id=first"})
	require.NoError(t, err)
	require.ErrorIs(t, f.Err(), css.ErrOutOfOrder)

	f, err = parseBuildArgs([]string{"id=a", "id=b", "+", "element=p"})
	require.NoError(t, err)
	require.ErrorIs(t, f.Err(), css.ErrDuplicateKind)
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run(state.ContextWithEnv(context.Background()), append([]string{"cssb"}, args...))
	return out.String(), err
}

func TestApp_Build(t *testing.T) {
	out, err := runApp(t, "build", "element=div", "id=main", "+", "element=table", "id=data")
	require.NoError(t, err)
	require.Equal(t, "div#main + table#data\n", out)

	_, err = runApp(t, "build", "element=p", "class=note", "id=first")
	require.ErrorIs(t, err, css.ErrOutOfOrder)
}

func TestApp_Normalize(t *testing.T) {
	out, err := runApp(t, "normalize", "div#main  >  p.note", "a:hover")
	require.NoError(t, err)
	require.Equal(t, "div#main > p.note\na:hover\n", out)

	out, err = runApp(t, "normalize", "#a#b", "em")
	require.ErrorIs(t, err, css.ErrDuplicateKind)
	require.Equal(t, "em\n", out)
}

func TestApp_DumpConfig(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "cssb.yaml")

	_, err := runApp(t, "dumpconfig", "--default", dst)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Contains(t, string(data), "extensions")

	_, err = runApp(t, "--config", dst, "dumpconfig")
	require.NoError(t, err)
}

func TestApp_Inspect(t *testing.T) {
	sheet := filepath.Join(t.TempDir(), "style.css")
	require.NoError(t, os.WriteFile(sheet, []byte("p.note { margin: 0; }\n#a#b { color: red; }\n"), 0644))

	out, err := runApp(t, "inspect", sheet)
	require.NoError(t, err)
	require.Contains(t, out, "# "+sheet+"\n")
	require.Contains(t, out, "Stylesheet rules=2 invalid=1")
	require.Contains(t, out, "class: \".note\"")

	_, err = runApp(t, "inspect", filepath.Join(t.TempDir(), "missing.css"))
	require.Error(t, err)
}
