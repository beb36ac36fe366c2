// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package completion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func names(completions []string) []string {
	out := make([]string, 0, len(completions))
	for _, c := range completions {
		name, _, _ := strings.Cut(c, "\t")
		out = append(out, name)
	}
	return out
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func TestCompleteCommandNames(t *testing.T) {
	completions, directive := CompleteCommandNames(nil, nil, "")
	if len(completions) != 12 {
		t.Errorf("expected 12 commands, got %d", len(completions))
	}
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("expected ShellCompDirectiveNoFileComp, got %v", directive)
	}

	completions, _ = CompleteCommandNames(nil, nil, "humio-get")
	got := names(completions)
	if len(got) != 2 || !contains(got, "humio-get-alert-by-id") || !contains(got, "humio-get-notifier-by-id") {
		t.Errorf("unexpected prefix completions: %v", got)
	}

	completions, _ = CompleteCommandNames(nil, []string{"test-module"}, "")
	if len(completions) != 0 {
		t.Errorf("expected no completions after the first argument, got %v", completions)
	}
}

func TestCompleteExecArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		toComplete string
		want       []string
		notWant    []string
	}{
		{
			name:    "parameters of poll",
			args:    []string{"humio-poll"},
			want:    []string{"repository=", "id="},
			notWant: []string{"queryString="},
		},
		{
			name:    "skips given parameters",
			args:    []string{"humio-poll", "repository=sandbox"},
			want:    []string{"id="},
			notWant: []string{"repository="},
		},
		{
			name:       "prefix",
			args:       []string{"humio-query"},
			toComplete: "time",
			want:       []string{"timeZoneOffsetMinutes="},
			notWant:    []string{"start="},
		},
		{
			name: "unknown command",
			args: []string{"humio-nope"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completions, _ := CompleteExecArgs(nil, tt.args, tt.toComplete)
			got := names(completions)
			for _, w := range tt.want {
				if !contains(got, w) {
					t.Errorf("expected %q in %v", w, got)
				}
			}
			for _, w := range tt.notWant {
				if contains(got, w) {
					t.Errorf("did not expect %q in %v", w, got)
				}
			}
			if len(tt.want) == 0 && len(got) != 0 {
				t.Errorf("expected no completions, got %v", got)
			}
		})
	}
}

func TestCompleteCategories(t *testing.T) {
	completions, _ := CompleteCategories(nil, nil, "")
	want := []string{"alerts", "incidents", "notifiers", "query", "status"}
	if strings.Join(completions, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, completions)
	}
}

func TestSafeCompletionWrapper_RecoversPanic(t *testing.T) {
	completions, directive := SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		panic("boom")
	})
	if len(completions) != 0 {
		t.Errorf("expected empty completions, got %v", completions)
	}
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("expected ShellCompDirectiveNoFileComp, got %v", directive)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := &cobra.Command{Use: "humio-connector"}
			root.AddCommand(NewCommand())
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})

			if err := root.Execute(); err != nil {
				t.Fatalf("completion %s failed: %v", shell, err)
			}
			if !strings.Contains(out.String(), "humio-connector") {
				t.Errorf("expected script to mention humio-connector")
			}
		})
	}

	root := &cobra.Command{Use: "humio-connector"}
	root.AddCommand(NewCommand())
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestCompletionCommand_NoDescriptions(t *testing.T) {
	root := &cobra.Command{Use: "humio-connector"}
	root.AddCommand(NewCommand())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "zsh", "--no-descriptions"})

	if err := root.Execute(); err != nil {
		t.Fatalf("completion zsh failed: %v", err)
	}
	if !strings.Contains(out.String(), "__completeNoDesc") {
		t.Errorf("expected the no-description completion request in the script")
	}
}
