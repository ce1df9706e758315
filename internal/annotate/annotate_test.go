package annotate

import (
	"strings"
	"testing"
	"time"

	"github.com/thiagokokada/gitblame-go/internal/color"
	"github.com/thiagokokada/gitblame-go/internal/git"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testLine(author, email string, age time.Duration) git.BlameLine {
	return git.BlameLine{
		LineNumber:  1,
		CommitID:    "89abcdef0123456789abcdef0123456789abcdef",
		Author:      author,
		AuthorEmail: email,
		AuthorTime:  testNow.Add(-age),
		Summary:     "fix the flux capacitor",
		Message:     "fix the flux capacitor\n\nIt was broken.\n",
	}
}

func TestParseColorMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{in: "author", want: ColorAuthor},
		{in: "", want: ColorAuthor},
		{in: " AGE ", want: ColorAge},
		{in: "none", want: ColorNone},
		{in: "rainbow", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColorMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseColorMode(%q) error = %v", tt.in, err)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParseColorMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if err == nil && got.String() != strings.ToLower(strings.TrimSpace(tt.in)) && tt.in != "" {
			t.Fatalf("String() = %q for %q", got.String(), tt.in)
		}
	}
}

func TestAnnotate_Text(t *testing.T) {
	t.Parallel()

	a := New(DefaultOptions(), nil).WithClock(func() time.Time { return testNow })
	got := a.Annotate(testLine("Alice", "alice@example.com", 3*24*time.Hour))
	if got.Text != "Alice | 3 days ago | fix the flux capacitor" {
		t.Fatalf("Text = %q", got.Text)
	}
	if got.Date != "3 days ago" {
		t.Fatalf("Date = %q", got.Date)
	}

	opts := DefaultOptions()
	opts.Compact = true
	opts.DateLayout = "2006-01-02"
	compact := New(opts, nil).WithClock(func() time.Time { return testNow })
	if got := compact.Annotate(testLine("Alexander the Magnificent", "a@example.com", 0)); got.Text != "Alexander the …"+" | 2025-06-01" {
		t.Fatalf("compact Text = %q", got.Text)
	}
}

func TestAnnotate_Colours(t *testing.T) {
	t.Parallel()

	clock := func() time.Time { return testNow }

	authorOpts := DefaultOptions()
	authorOpts.Dark = true
	byAuthor := New(authorOpts, color.NewAuthorColors(nil)).WithClock(clock)
	first := byAuthor.Annotate(testLine("Alice", "alice@example.com", 0))
	second := byAuthor.Annotate(testLine("Bob", "bob@example.com", 0))
	again := byAuthor.Annotate(testLine("Alice", "ALICE@example.com", 0))
	if !first.Colored || first.Color != color.DefaultPalette[0] || second.Color != color.DefaultPalette[1] || again.Color != first.Color {
		t.Fatalf("unexpected author colours: %v %v %v", first.Color, second.Color, again.Color)
	}

	lightOpts := DefaultOptions()
	light := New(lightOpts, nil).WithClock(clock).Annotate(testLine("Alice", "alice@example.com", 0))
	if light.Color != color.AdjustForTheme(color.DefaultPalette[0], false) {
		t.Fatalf("light theme colour = %v", light.Color)
	}

	ageOpts := DefaultOptions()
	ageOpts.Mode = ColorAge
	ageOpts.MaxAgeDays = 100
	byAge := New(ageOpts, nil).WithClock(clock)
	if got := byAge.Annotate(testLine("Alice", "alice@example.com", 200*24*time.Hour)); got.Color != color.Heat(100, 100) {
		t.Fatalf("old line colour = %v", got.Color)
	}

	noneOpts := DefaultOptions()
	noneOpts.Mode = ColorNone
	if got := New(noneOpts, nil).WithClock(clock).Annotate(testLine("Alice", "a", 0)); got.Colored {
		t.Fatal("ColorNone should not colour")
	}
}

func TestDetails(t *testing.T) {
	t.Parallel()

	a := New(DefaultOptions(), nil).WithClock(func() time.Time { return testNow })
	got := a.Details(testLine("Alice", "alice@example.com", 2*time.Hour))
	for _, want := range []string{
		"Commit: 89abcdef0123456789abcdef0123456789abcdef",
		"Author: Alice <alice@example.com>",
		"(2 hours ago)",
		"    It was broken.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("Details missing %q:\n%s", want, got)
		}
	}
}

func TestStatusLine(t *testing.T) {
	t.Parallel()

	line := testLine("Alice", "alice@example.com", 49*time.Hour)
	tests := []struct {
		name string
		line git.BlameLine
		opts StatusOptions
		want string
	}{
		{
			name: "default",
			line: line,
			opts: DefaultStatusOptions(),
			want: "gitblame: Alice, 2 days ago • fix the flux capacitor",
		},
		{
			name: "sha_and_absolute_date",
			line: line,
			opts: StatusOptions{Format: "{sha} {date}"},
			want: "gitblame: 89abcde 2025-05-30 11:00",
		},
		{
			name: "unknown_author",
			line: testLine("", "", 0),
			opts: StatusOptions{Format: "{author}", RelativeDate: true},
			want: "gitblame: Unknown",
		},
		{
			name: "truncated",
			line: line,
			opts: StatusOptions{Format: "{message}", MaxLength: 10, RelativeDate: true},
			want: "gitblame: fix the...",
		},
		{
			name: "placeholder_text_is_not_expanded_twice",
			line: testLine("{sha}", "", 0),
			opts: StatusOptions{Format: "{author}"},
			want: "gitblame: {sha}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := StatusLine(tt.line, testNow, tt.opts); got != tt.want {
				t.Fatalf("StatusLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("héllo wörld", 8, "…"); got != "héllo w…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10, "..."); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abcdef", 2, "..."); got != "..." {
		t.Fatalf("truncate = %q", got)
	}
}
