package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Getting Started", "getting-started"},
		{"punctuation", "What's VRM?", "what-s-vrm"},
		{"multiple spaces", "Humanoid    bones", "humanoid-bones"},
		{"leading/trailing", "  First person  ", "first-person"},
		{"numbers", "VRM 1.0 changes", "vrm-1-0-changes"},
		{"japanese", "ライセンスの確認", "ライセンスの確認"},
		{"mixed", "VRM インスペクター", "vrm-インスペクター"},
		{"symbols only", "!!!", "section"},
		{"empty", "", "section"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestAnchorHeadings(t *testing.T) {
	in := `<h1>Title</h1><h2>Intro</h2><p>x</p><h3 id="custom">Details</h3><h2>Intro</h2><h4>Deep</h4><h5>Ignored</h5>`

	out, toc, err := AnchorHeadings(in)
	require.NoError(t, err)

	assert.Contains(t, out, `<h1>Title</h1>`)
	assert.Contains(t, out, `<h2 id="intro">Intro</h2>`)
	assert.Contains(t, out, `<h3 id="custom">Details</h3>`)
	assert.Contains(t, out, `<h2 id="intro-1">Intro</h2>`)
	assert.Contains(t, out, `<h5>Ignored</h5>`)

	assert.Equal(t, []TOCEntry{
		{Level: 2, ID: "intro", Text: "Intro"},
		{Level: 3, ID: "custom", Text: "Details"},
		{Level: 2, ID: "intro-1", Text: "Intro"},
		{Level: 4, ID: "deep", Text: "Deep"},
	}, toc)
}

func TestAnchorHeadingsAvoidsCollidingSuffix(t *testing.T) {
	_, toc, err := AnchorHeadings(`<h2>A</h2><h2>A 1</h2><h2>A</h2>`)
	require.NoError(t, err)
	require.Len(t, toc, 3)
	assert.Equal(t, "a", toc[0].ID)
	assert.Equal(t, "a-1", toc[1].ID)
	assert.Equal(t, "a-2", toc[2].ID)
}

func TestCleanHTML(t *testing.T) {
	in := "<p>keep</p><!-- raw HTML omitted --><script>evil()</script><style>p{}</style><pre><code>a\n  b</code></pre>"
	out := cleanHTML(in)

	assert.Equal(t, "<p>keep</p><pre><code>a\n  b</code></pre>", out)
}

func TestFirstHeading(t *testing.T) {
	assert.Equal(t, "Hello", FirstHeading(`<p>x</p><h1> Hello </h1><h1>Other</h1>`))
	assert.Equal(t, "", FirstHeading(`<p>no heading</p>`))
}
