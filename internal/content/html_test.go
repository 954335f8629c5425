package content_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/content"
)

func TestFlattenHTML(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "single_column_layout_table",
			input: `<html><body>
				<table id="main">
					<tbody>
						<tr><td>Problem 1 (20 points)</td></tr>
						<tr><td>a. Define latency.</td></tr>
					</tbody>
				</table>
			</body></html>`,
			expected: "Problem 1 (20 points)\na. Define latency.",
		},
		{
			name: "nested_single_column_tables",
			input: `<html><body>
				<table>
					<tr><td>
						<table>
							<tr><td>
								<p>Nested content</p>
							</td></tr>
						</table>
					</td></tr>
				</table>
			</body></html>`,
			expected: "Nested content",
		},
		{
			name: "data_table_with_headers",
			input: `<html><body>
				<p>Consider the schedule:</p>
				<table>
					<thead>
						<tr><th>Task</th><th>Time</th></tr>
					</thead>
					<tbody>
						<tr><td>A</td><td>3</td></tr>
						<tr><td>B</td><td>5 | 6</td></tr>
					</tbody>
				</table>
				<p>b. Compute the span.</p>
			</body></html>`,
			expected: "Consider the schedule:\n| Task | Time |\n|---|---|\n| A | 3 |\n| B | 5 / 6 |\n\nb. Compute the span.",
		},
		{
			name:     "line_breaks_lists_and_pre",
			input:    "<div>Important Notes<br>Read carefully</div><ul><li>No calculators</li><li>Show work</li></ul><pre>A -> B\n  B -> C</pre>",
			expected: "Important Notes\nRead carefully\n- No calculators\n- Show work\n```\nA -> B\n  B -> C\n```",
		},
		{
			name:     "inline_markup_keeps_spacing",
			input:    "<p>Compute <b>10^9</b> ops, <i>then</i> stop.</p><script>ignored()</script>",
			expected: "Compute 10^9 ops, then stop.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := content.FlattenHTML([]byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestFlattenedTableClassifies(t *testing.T) {
	flat, err := content.FlattenHTML([]byte(`<table><tr><th>x</th><th>y</th><th>z</th></tr><tr><td>1</td><td>2</td></tr></table>`))
	require.NoError(t, err)

	tables := content.BuildStream(flat, content.StreamOptions{}).Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{{"x", "y", "z"}, {"1", "2", ""}}, tables[0].Rows)
}
