package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"

	"jobagent/internal/job"
)

// Source is a lazy, restartable sequence of job listings. Next returns
// io.EOF when the sequence is exhausted; Restart rewinds to the beginning.
type Source interface {
	Next() (*job.Listing, error)
	Restart() error
	Close() error
}

// rawListing tolerates the field variants emitted by different scrapers:
// the LinkedIn robot emits "link" and "criteria", direct exports use
// "source_url" and "description".
type rawListing struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
	Criteria    string `json:"criteria"`
	Link        string `json:"link"`
	SourceURL   string `json:"source_url"`
	Platform    string `json:"platform"`
}

// FileSource reads listings from a JSON array file, one element at a time.
type FileSource struct {
	path string
	file *os.File
	dec  *json.Decoder
}

// NewFileSource opens the listings feed and positions at the first element.
func NewFileSource(path string) (*FileSource, error) {
	s := &FileSource{path: path}
	if err := s.Restart(); err != nil {
		return nil, err
	}
	return s, nil
}

// Restart rewinds the source to the beginning of the feed.
func (s *FileSource) Restart() error {
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}

	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("opening listings feed: %w", err)
	}

	dec := json.NewDecoder(file)
	tok, err := dec.Token()
	if err != nil {
		file.Close()
		return fmt.Errorf("reading listings feed: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		file.Close()
		return fmt.Errorf("listings feed %q: expected a JSON array", s.path)
	}

	s.file = file
	s.dec = dec
	return nil
}

// Next decodes the next listing, deriving its stable id from the identity
// fields. Elements with no usable source url are skipped.
func (s *FileSource) Next() (*job.Listing, error) {
	if s.dec == nil {
		return nil, io.EOF
	}

	for s.dec.More() {
		var item map[string]any
		if err := s.dec.Decode(&item); err != nil {
			return nil, fmt.Errorf("decoding listing: %w", err)
		}

		var raw rawListing
		cfg := &mapstructure.DecoderConfig{
			Result:  &raw,
			TagName: "json",
		}
		decoder, _ := mapstructure.NewDecoder(cfg)
		if err := decoder.Decode(item); err != nil {
			return nil, fmt.Errorf("decoding listing fields: %w", err)
		}

		listing := raw.toListing()
		if listing == nil {
			continue
		}
		return listing, nil
	}

	return nil, io.EOF
}

func (s *FileSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.dec = nil
	return err
}

func (r *rawListing) toListing() *job.Listing {
	url := strings.TrimSpace(r.SourceURL)
	if url == "" {
		url = strings.TrimSpace(r.Link)
	}
	if url == "" {
		return nil
	}

	description := r.Description
	if description == "" {
		description = r.Criteria
	}

	title := strings.TrimSpace(r.Title)
	company := strings.TrimSpace(r.Company)

	return &job.Listing{
		ID:           job.ListingID(url, title, company),
		Title:        title,
		Company:      company,
		Description:  description,
		SourceURL:    url,
		PlatformHint: strings.TrimSpace(r.Platform),
	}
}
