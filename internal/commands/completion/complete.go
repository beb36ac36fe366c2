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
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/humio-connector/internal/humio"
)

// SafeCompletionWrapper wraps a completion function with panic recovery.
// Returns empty completion list on panic or error.
func SafeCompletionWrapper(fn func() ([]string, cobra.ShellCompDirective)) (results []string, directive cobra.ShellCompDirective) {
	results = []string{}
	directive = cobra.ShellCompDirectiveNoFileComp

	defer func() {
		if r := recover(); r != nil {
			results = []string{}
			directive = cobra.ShellCompDirectiveNoFileComp
		}
	}()

	results, directive = fn()
	if results == nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	return results, directive
}

// CompleteCommandNames completes the first positional argument with Humio
// command names and their descriptions.
func CompleteCommandNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var completions []string
		for _, info := range humio.Catalog() {
			if strings.HasPrefix(info.Name, toComplete) {
				completions = append(completions, info.Name+"\t"+info.Description)
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteExecArgs completes exec: a command name first, then "param="
// for each parameter of that command not already given.
func CompleteExecArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return CompleteCommandNames(cmd, args, toComplete)
	}

	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		info, ok := humio.Lookup(args[0])
		if !ok {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		given := make(map[string]bool, len(args)-1)
		for _, pair := range args[1:] {
			key, _, _ := strings.Cut(pair, "=")
			given[key] = true
		}

		var completions []string
		for _, p := range info.Parameters {
			if given[p.Name] || !strings.HasPrefix(p.Name, toComplete) {
				continue
			}
			desc := p.Description
			if p.Required {
				desc += " (required)"
			}
			completions = append(completions, p.Name+"=\t"+desc)
		}
		return completions, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	})
}

// CompleteCategories provides completion for --category flag values.
func CompleteCategories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		seen := map[string]bool{}
		var categories []string
		for _, info := range humio.Catalog() {
			if !seen[info.Category] {
				seen[info.Category] = true
				categories = append(categories, info.Category)
			}
		}
		sort.Strings(categories)
		return categories, cobra.ShellCompDirectiveNoFileComp
	})
}
