package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "CJK content",
			content:  "静夜思\x00李白",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestPoem_ContentKey(t *testing.T) {
	tests := []struct {
		name string
		poem Poem
		want string
	}{
		{
			name: "title and author",
			poem: Poem{
				Title:  "静夜思",
				Author: "李白",
			},
			want: "静夜思\x00李白",
		},
		{
			name: "anonymous author",
			poem: Poem{
				Title:  "古诗",
				Author: "佚名",
			},
			want: "古诗\x00佚名",
		},
		{
			name: "empty poem",
			poem: Poem{},
			want: "\x00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.poem.ContentKey()
			if got != tt.want {
				t.Errorf("Poem.ContentKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPoem_ContentKey_DistinguishesAuthors(t *testing.T) {
	// Two poems may share a title; the author is part of the dedup key.
	a := Poem{Title: "无题", Author: "李商隐"}
	b := Poem{Title: "无题", Author: "佚名"}

	if IDFromContent(a.ContentKey()) == IDFromContent(b.ContentKey()) {
		t.Errorf("ContentKey() collided for same title with different authors")
	}
}
