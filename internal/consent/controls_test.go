package consent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractControls(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "nested markup in button",
			doc:  `<button class="x"><span>Accept</span>  <b>All</b></button>`,
			want: []string{"accept all"},
		},
		{
			name: "submit and button inputs",
			doc:  `<input type="submit" value="Reject All"><input type="BUTTON" value=" Settings "><input type="text" value="name">`,
			want: []string{"reject all", "settings"},
		},
		{
			name: "anchor styled as button",
			doc:  `<a class="btn btn-primary" href="#">Got it</a><a href="/about">About us</a>`,
			want: []string{"got it"},
		},
		{
			name: "script content ignored",
			doc:  `<script>var b = "<button>fake</button>";</script><button>Real</button>`,
			want: []string{"real"},
		},
		{
			name: "over-long text dropped",
			doc:  `<button>` + strings.Repeat("x", 120) + `</button><button>OK</button>`,
			want: []string{"ok"},
		},
		{
			name: "empty button dropped",
			doc:  `<button>   </button><button><img src="x.png"></button>`,
			want: nil,
		},
		{
			name: "nested buttons close together",
			doc:  `<button>Outer <button>inner</button> tail</button>`,
			want: []string{"outer inner tail"},
		},
		{
			name: "unclosed button dropped",
			doc:  `<button>Accept`,
			want: nil,
		},
		{
			name: "entities decoded",
			doc:  `<button>Tout refuser &amp; continuer</button>`,
			want: []string{"tout refuser & continuer"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractControls(tc.doc))
		})
	}
}

func TestNormalizeControlText(t *testing.T) {
	got, ok := normalizeControlText("  ACCEPT\n\t ALL ")
	assert.True(t, ok)
	assert.Equal(t, "accept all", got)

	_, ok = normalizeControlText(strings.Repeat("é", 100))
	assert.False(t, ok)

	got, ok = normalizeControlText(strings.Repeat("é", 99))
	assert.True(t, ok)
	assert.Len(t, []rune(got), 99)
}
