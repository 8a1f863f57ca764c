package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "emphasis", in: "Weekly **deep dives**.", want: "<strong>deep dives</strong>"},
		{name: "link", in: "[join](https://t.me/example)", want: `<a href="https://t.me/example">join</a>`},
		{name: "gfm strikethrough", in: "~~old price~~", want: "<del>old price</del>"},
		{name: "raw html passes through", in: `<span class="badge">new</span>`, want: `<span class="badge">new</span>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.in)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("ToHTML(%q) = %q, missing %q", tt.in, got, tt.want)
			}
		})
	}
}
