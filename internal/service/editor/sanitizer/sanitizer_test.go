package sanitizer

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	anyScript  = regexp.MustCompile(`(?i)<script`)
	anyHandler = regexp.MustCompile(`(?i)<[^>]*\son\w+\s*=`)
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "script element with content",
			input: `<p>a</p><script>alert("x")</script><p>b</p>`,
			want:  `<p>a</p><p>b</p>`,
		},
		{
			name:  "script with attributes and uppercase",
			input: `<SCRIPT type="text/javascript">x()</SCRIPT ><p>ok</p>`,
			want:  `<p>ok</p>`,
		},
		{
			name:  "multiline script",
			input: "<p>a</p><script>\nvar a = 1;\nvar b = 2;\n</script>",
			want:  `<p>a</p>`,
		},
		{
			name:  "unterminated script",
			input: `<p>a</p><script>while(1){}`,
			want:  `<p>a</p>`,
		},
		{
			name:  "nested script fragments",
			input: `<scr<script>x</script>ipt>alert(1)</script><p>b</p>`,
			want:  `<p>b</p>`,
		},
		{
			name:  "inline handler",
			input: `<p onclick="x()">B</p>`,
			want:  `<p>B</p>`,
		},
		{
			name:  "handler among other attributes",
			input: `<img src="a.png" onerror="steal()" alt="A">`,
			want:  `<img src="a.png" alt="A">`,
		},
		{
			name:  "single quoted and mixed case handlers",
			input: `<div OnMouseOver='go()' class="c" onLoad="x">t</div>`,
			want:  `<div class="c">t</div>`,
		},
		{
			name:  "handler on self-closing tag",
			input: `<img src="a.png" onload="x"/>`,
			want:  `<img src="a.png"/>`,
		},
		{
			name:  "quoted angle bracket in attribute",
			input: `<img alt="a > b" onclick="x" src="i.png">`,
			want:  `<img alt="a > b" src="i.png">`,
		},
		{
			name:  "handler names with digits and underscores",
			input: `<p onclick2="x()" on_foo='y' id="k">t</p>`,
			want:  `<p id="k">t</p>`,
		},
		{
			name:  "empty input",
			input: ``,
			want:  ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.NotRegexp(t, anyScript, got)
			assert.NotRegexp(t, anyHandler, got)
			assert.Equal(t, got, Sanitize(got), "sanitize must be idempotent")
		})
	}
}

func TestSanitize_CleanInputUnchanged(t *testing.T) {
	inputs := []string{
		`<p>A</p>`,
		`<p></p>`,
		`<h2 style="text-align: center">Title</h2><p><strong>bold</strong> <em>it</em> <u>u</u></p>`,
		`<table><tbody><tr><th><p>h</p></th></tr><tr><td><p>c</p></td></tr></tbody></table>`,
		`<img src="data:image/png;base64,iVBORw0KGgo=" alt="x.png">`,
		`<iframe src="https://www.youtube.com/embed/abc" width="640" height="480" frameborder="0" allowfullscreen="true"></iframe>`,
		"<p>line one<br>line two</p>\n<p>  spaced  </p>",
		`<p data-one="1">not a handler</p>`,
		`<p title="set onclick=&quot;x&quot;">quoted value</p>`,
		`<p>use onclick="x" carefully</p>`,
		`plain text, no markup`,
	}

	for _, in := range inputs {
		assert.Equal(t, in, Sanitize(in))
	}
}

func TestPrettyPrint(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "paragraphs",
			input: `<p>a</p><p>b</p>`,
			want:  "<p>a</p>\n<p>b</p>",
		},
		{
			name:  "inline tags stay on one line",
			input: `<p><strong>a</strong><em>b</em></p><h2>c</h2>`,
			want:  "<p><strong>a</strong><em>b</em></p>\n<h2>c</h2>",
		},
		{
			name:  "table structure",
			input: `<table><tbody><tr><td><p>a</p></td><td><p>b</p></td></tr></tbody></table>`,
			want:  "<table>\n<tbody>\n<tr>\n<td><p>a</p>\n</td>\n<td><p>b</p>\n</td>\n</tr>\n</tbody>\n</table>",
		},
		{
			name:  "blank lines collapse",
			input: "<p>a</p>\n\n\n<p>b</p>\n  \n<p>c</p>",
			want:  "<p>a</p>\n<p>b</p>\n<p>c</p>",
		},
		{
			name:  "already pretty",
			input: "<p>a</p>\n<p>b</p>",
			want:  "<p>a</p>\n<p>b</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrettyPrint(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, PrettyPrint(got))
		})
	}
}
