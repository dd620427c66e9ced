// Package models defines the card catalog data model shared by the sync
// engine, the repositories and the API layer.
package models

import (
	"path"
	"strings"
)

// Card is a shared (global) catalog card as served by the backend. The JSON
// shape matches the wire format, so the same struct is used for transport
// and for the locally persisted per-card document.
type Card struct {
	ID           string `json:"_id"`
	Title        string `json:"title"`
	TitleRU      string `json:"title_ru,omitempty"`
	TitleEN      string `json:"title_en,omitempty"`
	TitleKK      string `json:"title_kk,omitempty"`
	Section      string `json:"section"`
	Line         int    `json:"line"`
	Page         int    `json:"page"`
	ImageURI     string `json:"imageUri"`
	ThumbnailURI string `json:"thumbnailUri,omitempty"`
	AudioKK      string `json:"audio_kk,omitempty"`
	Version      int64  `json:"version"`
	UpdatedAt    string `json:"updatedAt"`
}

// PersonalCard is a per-user card. Personal cards carry no version: they
// sync eagerly while online and are queued while offline.
type PersonalCard struct {
	ID           string `json:"_id"`
	Title        string `json:"title"`
	TitleRU      string `json:"title_ru,omitempty"`
	TitleEN      string `json:"title_en,omitempty"`
	TitleKK      string `json:"title_kk,omitempty"`
	Section      string `json:"section"`
	Line         int    `json:"line"`
	Page         int    `json:"page"`
	ImageURI     string `json:"imageUri"`
	ThumbnailURI string `json:"thumbnailUri,omitempty"`
	AudioKK      string `json:"audio_kk,omitempty"`
	User         string `json:"user,omitempty"`
}

// Manifest summarizes the entire shared catalog's current state. Any
// add/update/delete bumps the single global version counter.
type Manifest struct {
	Version   int64  `json:"version"`
	UpdatedAt string `json:"updatedAt"`
}

// Change actions as sent by the server.
const (
	ChangeAdd    = "add"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// Change is one catalog mutation since a given point in time. Ephemeral:
// it only drives hydration and is never stored.
type Change struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	UpdatedAt string `json:"updatedAt"`
}

// DeriveThumbnail returns the conventional thumbnail location for an image:
// same directory, file name prefixed with "thumb_". Used only when the
// stored record carries no explicit thumbnail URI.
func DeriveThumbnail(imageURI string) string {
	if imageURI == "" {
		return ""
	}
	dir, file := path.Split(imageURI)
	return dir + "thumb_" + file
}

// IsRemote reports whether uri points at a server resource rather than a
// device-local file.
func IsRemote(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}
