package media

import "testing"

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultExtensions())
	cases := []struct {
		name string
		want Kind
	}{
		{"cat.mp4", KindVideo},
		{"cat.MP4", KindVideo},
		{"clip.webm", KindVideo},
		{"clip.Mov", KindVideo},
		{"show.ts", KindVideo},
		{"film.mpeg", KindVideo},
		{"dog.png", KindConvertibleImage},
		{"dog.JPG", KindConvertibleImage},
		{"dog.jpeg", KindConvertibleImage},
		{"art.gif", KindPassthroughImage},
		{"art.WebP", KindPassthroughImage},
		{"notes.txt", KindUnsupported},
		{"README", KindUnsupported},
		{"archive.tar.gz", KindUnsupported},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.name); got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestOutputName(t *testing.T) {
	c := NewClassifier(DefaultExtensions())
	cases := []struct {
		name     string
		wantName string
		wantKind Kind
	}{
		{"cat.mp4", "cat.webm", KindVideo},
		{"Cat.MOV", "Cat.webm", KindVideo},
		{"already.webm", "already.webm", KindVideo},
		{"dog.png", "dog.webp", KindConvertibleImage},
		{"my.holiday.JPEG", "my.holiday.webp", KindConvertibleImage},
		{"art.gif", "art.gif", KindPassthroughImage},
		{"Art.WEBP", "Art.WEBP", KindPassthroughImage},
		{"notes.txt", "", KindUnsupported},
	}
	for _, tc := range cases {
		gotName, gotKind := c.OutputName(tc.name)
		if gotName != tc.wantName || gotKind != tc.wantKind {
			t.Fatalf("OutputName(%q) = (%q, %s), want (%q, %s)", tc.name, gotName, gotKind, tc.wantName, tc.wantKind)
		}
	}
}

func TestNewClassifierNormalizesAndPrefersFirstKind(t *testing.T) {
	c := NewClassifier(Extensions{
		Video:       []string{"MP4", " .ogv "},
		Convertible: []string{".png", ".mp4"},
		Passthrough: []string{"gif", ""},
	})
	if got := c.Classify("x.ogv"); got != KindVideo {
		t.Fatalf("expected custom video extension, got %s", got)
	}
	if got := c.Classify("x.mp4"); got != KindVideo {
		t.Fatalf("expected first registration to win, got %s", got)
	}
	if got := c.Classify("x.gif"); got != KindPassthroughImage {
		t.Fatalf("expected undotted extension to be accepted, got %s", got)
	}
	if got := c.Classify("x.jpg"); got != KindUnsupported {
		t.Fatalf("expected default table to be replaced, got %s", got)
	}
}

func TestIsHidden(t *testing.T) {
	if !IsHidden(".DS_Store") || !IsHidden(".cat.mp4") {
		t.Fatal("expected dot files to be hidden")
	}
	if IsHidden("cat.mp4") {
		t.Fatal("expected regular file to be visible")
	}
}

func TestKindString(t *testing.T) {
	if KindVideo.String() != "video" || KindUnsupported.String() != "unsupported" {
		t.Fatal("unexpected kind labels")
	}
}
