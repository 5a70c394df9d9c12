package ingestion

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/shiyun/core"
)

// anonymousAuthor is used when a corpus record names no writer.
const anonymousAuthor = "佚名"

// corpusRecord mirrors the gushiwen corpus JSON shape. Files hold
// concatenated JSON objects, not an array.
type corpusRecord struct {
	Title       string `json:"title"`
	Writer      string `json:"writer"`
	Dynasty     string `json:"dynasty"`
	Content     string `json:"content"`
	Translation string `json:"translation"`
	Shangxi     string `json:"shangxi"`
}

// toPoem converts a corpus record to a domain poem.
// Records without content are dropped by the caller.
func (c *corpusRecord) toPoem() *core.Poem {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = anonymousAuthor
	}
	author := strings.TrimSpace(c.Writer)
	if author == "" {
		author = anonymousAuthor
	}
	return &core.Poem{
		Title:  title,
		Author: author,
		Era:    strings.TrimSpace(c.Dynasty),
		Body:   strings.TrimSpace(c.Content),
	}
}

// LoadCorpusFile parses one corpus file into poems.
// Records without content are skipped.
func LoadCorpusFile(path string) ([]*core.Poem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var poems []*core.Poem
	decoder := json.NewDecoder(f)
	for {
		var record corpusRecord
		if err := decoder.Decode(&record); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if strings.TrimSpace(record.Content) == "" {
			continue
		}
		poems = append(poems, record.toPoem())
	}
	return poems, nil
}

// LoadCorpusGlob parses all corpus files matching the glob pattern.
func LoadCorpusGlob(pattern string) ([]*core.Poem, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var poems []*core.Poem
	for _, path := range paths {
		filePoems, err := LoadCorpusFile(path)
		if err != nil {
			return nil, err
		}
		poems = append(poems, filePoems...)
	}
	return poems, nil
}
