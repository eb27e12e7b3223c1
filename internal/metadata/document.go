package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	keyTags        = "tags"
	keyAssignments = "assignments"
	keyFiles       = "files"

	indent = "    "
)

// Document is the in-memory form of metadata.json.
type Document struct {
	Tags        []string
	Assignments map[string]json.RawMessage
	Files       []string

	// extra holds top-level keys cathub does not manage, written back as-is.
	extra map[string]json.RawMessage
}

// NewDocument returns an empty document seeded with the given tags.
func NewDocument(tags []string) *Document {
	return &Document{
		Tags:        append([]string(nil), tags...),
		Assignments: make(map[string]json.RawMessage),
		Files:       []string{},
	}
}

// Decode parses a metadata document. Tags missing from the payload are
// filled from defaultTags. The files list is decoded leniently because every
// sync replaces it.
func Decode(data []byte, defaultTags []string) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decode metadata: top-level value is not an object")
	}

	doc := NewDocument(defaultTags)
	if value, ok := raw[keyTags]; ok && !isNull(value) {
		var tags []string
		if err := json.Unmarshal(value, &tags); err != nil {
			return nil, fmt.Errorf("decode metadata tags: %w", err)
		}
		doc.Tags = tags
	}
	if value, ok := raw[keyAssignments]; ok && !isNull(value) {
		var assignments map[string]json.RawMessage
		if err := json.Unmarshal(value, &assignments); err != nil {
			return nil, fmt.Errorf("decode metadata assignments: %w", err)
		}
		doc.Assignments = assignments
	}
	if value, ok := raw[keyFiles]; ok {
		var files []string
		if err := json.Unmarshal(value, &files); err == nil && files != nil {
			doc.Files = files
		}
	}

	for key, value := range raw {
		switch key {
		case keyTags, keyAssignments, keyFiles:
			continue
		}
		if doc.extra == nil {
			doc.extra = make(map[string]json.RawMessage)
		}
		doc.extra[key] = value
	}
	return doc, nil
}

// Encode renders the document with a four-space indent, leaving non-ASCII
// and HTML-significant characters unescaped. Managed keys come first in the
// order tags, assignments, files; unmanaged keys follow sorted by name.
func (d *Document) Encode() ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')

	write := func(first bool, key string, value any) error {
		if !first {
			compact.WriteByte(',')
		}
		if err := encodeCompact(&compact, key); err != nil {
			return err
		}
		compact.WriteByte(':')
		return encodeCompact(&compact, value)
	}

	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	assignments := d.Assignments
	if assignments == nil {
		assignments = map[string]json.RawMessage{}
	}
	files := d.Files
	if files == nil {
		files = []string{}
	}

	if err := write(true, keyTags, tags); err != nil {
		return nil, err
	}
	if err := write(false, keyAssignments, assignments); err != nil {
		return nil, err
	}
	if err := write(false, keyFiles, files); err != nil {
		return nil, err
	}

	extraKeys := make([]string, 0, len(d.extra))
	for key := range d.extra {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		if err := write(false, key, d.extra[key]); err != nil {
			return nil, err
		}
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", indent); err != nil {
		return nil, fmt.Errorf("indent metadata: %w", err)
	}
	return out.Bytes(), nil
}

// Reconcile replaces the file list with a sorted copy of files and removes
// every assignment whose key is not in it. It returns the removed keys in
// sorted order.
func (d *Document) Reconcile(files []string) []string {
	sorted := append([]string{}, files...)
	sort.Strings(sorted)
	d.Files = sorted

	present := make(map[string]struct{}, len(sorted))
	for _, name := range sorted {
		present[name] = struct{}{}
	}

	var dropped []string
	for key := range d.Assignments {
		if _, ok := present[key]; !ok {
			dropped = append(dropped, key)
		}
	}
	sort.Strings(dropped)
	for _, key := range dropped {
		delete(d.Assignments, key)
	}
	return dropped
}

// Orphans returns assignment keys that do not appear in the file list.
func (d *Document) Orphans() []string {
	present := make(map[string]struct{}, len(d.Files))
	for _, name := range d.Files {
		present[name] = struct{}{}
	}
	var orphans []string
	for key := range d.Assignments {
		if _, ok := present[key]; !ok {
			orphans = append(orphans, key)
		}
	}
	sort.Strings(orphans)
	return orphans
}

func encodeCompact(buf *bytes.Buffer, value any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

func isNull(value json.RawMessage) bool {
	return strings.TrimSpace(string(value)) == "null"
}
