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

package shared

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tombee/humio-connector/internal/humio"
	"github.com/tombee/humio-connector/internal/jq"
)

// ValidateJQ checks a --jq expression before any request is made.
func ValidateJQ(expr string) error {
	if err := jq.NewExecutor(0, 0).Validate(expr); err != nil {
		return NewArgumentError("invalid --jq expression", err)
	}
	return nil
}

// WriteFiltered applies expr to data and writes the result as JSON.
func WriteFiltered(ctx context.Context, w io.Writer, expr string, data any) error {
	if expr == "" {
		return WriteJSON(w, data)
	}
	out, err := jq.NewExecutor(0, 0).Execute(ctx, expr, data)
	if err != nil {
		return NewCommandError("jq filter failed", err)
	}
	return WriteJSON(w, out)
}

// RenderResult prints a command result. With a jq expression the
// structured output (Outputs, or Raw when there are none) is filtered and
// printed as JSON; with --json the envelope carries the markdown and the
// outputs, or Raw as result when there are no outputs; otherwise the markdown.
func RenderResult(ctx context.Context, w io.Writer, command string, result *humio.Result, jqExpr string) error {
	if jqExpr != "" {
		var data any = result.Raw
		if result.Outputs != nil {
			data = result.Outputs
		}
		return WriteFiltered(ctx, w, jqExpr, data)
	}

	if GetJSON() {
		resp := CommandResponse{
			JSONResponse: NewResponse(command),
			Markdown:     result.Markdown,
			Outputs:      result.Outputs,
		}
		if result.Outputs == nil {
			resp.Result = result.Raw
		}
		return WriteJSON(w, resp)
	}

	_, err := fmt.Fprintln(w, styleMarkdown(w, result.Markdown))
	return err
}

// styleMarkdown highlights "### " headings when w is a terminal.
func styleMarkdown(w io.Writer, md string) string {
	if !IsTerminal(w) {
		return md
	}
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		if title, ok := strings.CutPrefix(line, "### "); ok {
			lines[i] = Header.Render(title)
		}
	}
	return strings.Join(lines, "\n")
}
