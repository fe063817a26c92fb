// Package execextract provides an extractor that shells out to an
// external conversion tool for binary document formats.
//
// The tool receives the raw document on stdin and the original file
// name as its last argument, and must print a single JSON object on
// stdout:
//
//	{
//	  "text": "...",
//	  "title": "...",
//	  "authors": ["..."],
//	  "pageCount": 12,
//	  "headings": [{"level": 1, "text": "...", "page": 1}],
//	  "tables": [{"data": [["..."]], "caption": "...", "page": 3}]
//	}
//
// Any non-zero exit, timeout, or malformed output maps to
// domain.ErrExtractionFailed so the indexing pipeline can reject the
// document cleanly.
package execextract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
	"github.com/quarrylabs/hearth/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// DefaultTimeout bounds a single conversion run.
const DefaultTimeout = 2 * time.Minute

// Config holds configuration for the subprocess extractor.
type Config struct {
	// Command is the conversion binary (required).
	Command string

	// Args are passed before the document name.
	Args []string

	// Types are the document types routed to this tool.
	// Defaults to pdf, docx and doc.
	Types []domain.DocumentType

	// Timeout bounds one conversion run (default: 2m).
	Timeout time.Duration
}

// Extractor converts documents by running an external tool.
type Extractor struct {
	command string
	args    []string
	types   []domain.DocumentType
	timeout time.Duration
}

// output is the JSON contract the conversion tool must honour.
type output struct {
	Text      string   `json:"text"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	PageCount int      `json:"pageCount"`
	Headings  []struct {
		Level int    `json:"level"`
		Text  string `json:"text"`
		Page  int    `json:"page"`
	} `json:"headings"`
	Tables []struct {
		Data    [][]string `json:"data"`
		Caption string     `json:"caption"`
		Page    int        `json:"page"`
	} `json:"tables"`
}

// New creates a new subprocess extractor.
func New(cfg Config) (*Extractor, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, fmt.Errorf("%w: extractor command is required", domain.ErrInvalidInput)
	}
	if len(cfg.Types) == 0 {
		cfg.Types = []domain.DocumentType{
			domain.DocumentTypePDF,
			domain.DocumentTypeDOCX,
			domain.DocumentTypeDOC,
		}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Extractor{
		command: cfg.Command,
		args:    cfg.Args,
		types:   cfg.Types,
		timeout: cfg.Timeout,
	}, nil
}

// SupportedTypes returns the document types routed to the tool.
func (e *Extractor) SupportedTypes() []domain.DocumentType {
	return e.types
}

// Extract runs the conversion tool and parses its JSON output.
func (e *Extractor) Extract(ctx context.Context, name string, content []byte) (*domain.Extraction, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := append(append([]string{}, e.args...), name)
	cmd := exec.CommandContext(ctx, e.command, args...)
	cmd.Stdin = bytes.NewReader(content)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Running extractor: %s %s", e.command, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrExtractionFailed, e.command, detail)
	}

	var out output
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("%w: %s produced invalid output: %v", domain.ErrExtractionFailed, e.command, err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return nil, fmt.Errorf("%w: %s produced no text for %s", domain.ErrExtractionFailed, e.command, name)
	}

	ext := &domain.Extraction{
		Text:      out.Text,
		Title:     out.Title,
		Authors:   out.Authors,
		PageCount: out.PageCount,
	}
	for _, h := range out.Headings {
		ext.Headings = append(ext.Headings, domain.ExtractedHeading{
			Level: h.Level,
			Text:  h.Text,
			Page:  h.Page,
		})
	}
	for _, tbl := range out.Tables {
		ext.Tables = append(ext.Tables, domain.ExtractedTable{
			Data:    tbl.Data,
			Caption: tbl.Caption,
			Page:    tbl.Page,
		})
	}
	return ext, nil
}
