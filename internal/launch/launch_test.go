// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func fixedEnviron(vars ...string) Option {
	return WithEnviron(func() []string { return vars })
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name     string
		inv      Invocation
		environ  []string
		wantCode int
		wantOut  string
	}{
		{
			name:    "exports the mods directory",
			inv:     Invocation{Command: `echo "$MODS_DIR"`, ModsDir: "/game/mods"},
			wantOut: "/game/mods\n",
		},
		{
			name:    "arguments stay literal words",
			inv:     Invocation{Command: "echo", Args: []string{"hello world", "$HOME", "a;b"}},
			wantOut: "hello world $HOME a;b\n",
		},
		{
			name:    "declared variables override the environment",
			inv:     Invocation{Command: `echo "$GREETING"`, Env: map[string]string{"GREETING": "hi"}},
			environ: []string{"GREETING=old"},
			wantOut: "hi\n",
		},
		{
			name:    "declared variables override MODS_DIR",
			inv:     Invocation{Command: `echo "$MODS_DIR"`, ModsDir: "/game/mods", Env: map[string]string{"MODS_DIR": "/elsewhere"}},
			wantOut: "/elsewhere\n",
		},
		{
			name:    "runs in the working directory",
			inv:     Invocation{Command: "pwd", Dir: dir},
			wantOut: dir + "\n",
		},
		{
			name:    "arguments survive a trailing newline",
			inv:     Invocation{Command: "echo hi\n", Args: []string{"--flag"}},
			wantOut: "hi --flag\n",
		},
		{
			name:    "arguments survive a trailing comment",
			inv:     Invocation{Command: "echo hi # start game", Args: []string{"--flag"}},
			wantOut: "hi --flag\n",
		},
		{
			name:    "redirections keep the arguments",
			inv:     Invocation{Command: "echo hi 2>&1", Args: []string{"there"}},
			wantOut: "hi there\n",
		},
		{
			name:     "non-zero exit is a code",
			inv:      Invocation{Command: "exit 3"},
			wantCode: 3,
		},
		{
			name:     "unknown command",
			inv:      Invocation{Command: "modcollect-definitely-missing-binary"},
			wantCode: 127,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			inv := tt.inv
			inv.Stdout, inv.Stderr = &stdout, &stderr

			code, err := New(fixedEnviron(tt.environ...)).Run(context.Background(), inv)
			if err != nil {
				t.Fatalf("Run() error = %v (stderr: %s)", err, stderr.String())
			}
			if code != tt.wantCode {
				t.Errorf("Run() code = %d, want %d", code, tt.wantCode)
			}
			if tt.wantOut != "" && stdout.String() != tt.wantOut {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantOut)
			}
		})
	}
}

func TestRun_InvalidCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		command string
		wantErr error
	}{
		{name: "empty", command: "  ", wantErr: ErrEmptyCommand},
		{name: "syntax error", command: `echo "unterminated`},
		{name: "comment only", command: "# nothing to run", wantErr: ErrNotSimpleCommand},
		{name: "two statements", command: "echo hi\necho there", wantErr: ErrNotSimpleCommand},
		{name: "list", command: "cd game && ./run", wantErr: ErrNotSimpleCommand},
		{name: "pipeline", command: "./game | tee log", wantErr: ErrNotSimpleCommand},
		{name: "compound", command: "if true; then ./game; fi", wantErr: ErrNotSimpleCommand},
		{name: "background", command: "./game &", wantErr: ErrNotSimpleCommand},
		{name: "assignment only", command: "FOO=bar", wantErr: ErrNotSimpleCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := Validate(tt.command); err == nil {
				t.Error("Validate() error = nil")
			}
			_, err := New().Run(context.Background(), Invocation{Command: tt.command})
			if err == nil {
				t.Fatal("Run() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && !strings.Contains(err.Error(), "syntax error") {
				t.Errorf("Run() error = %v, want a syntax error", err)
			}
		})
	}
}

func TestValidate_AcceptsCommandLines(t *testing.T) {
	t.Parallel()

	for _, command := range []string{"./game", "java -jar game.jar", `"$JAVA_HOME/bin/java" -Xmx2g`, "./game\n", "./game > game.log # keep the log"} {
		if err := Validate(command); err != nil {
			t.Errorf("Validate(%q) error = %v", command, err)
		}
	}
}
