package plantmodel

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Decode reads a unified plant model document.
func Decode(r io.Reader) (*Model, error) {
	var m Model
	if err := xml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse plant model XML: %w", err)
	}
	return &m, nil
}

// Encode writes m as an indented XML document. An empty version is set to Version.
func Encode(m *Model, w io.Writer) error {
	if m.Version == "" {
		m.Version = Version
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode plant model XML: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to flush plant model XML: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
