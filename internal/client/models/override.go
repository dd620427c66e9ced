package models

// OverrideEntry is a client-local substitution of image and/or audio for a
// card id. Overrides never touch server state; they are merged over the
// authoritative record at read time.
type OverrideEntry struct {
	Image string `json:"image,omitempty"`
	Audio string `json:"audio,omitempty"`
}

// Empty reports whether the entry holds no overrides and should be pruned.
func (o OverrideEntry) Empty() bool {
	return o.Image == "" && o.Audio == ""
}

// Merge layers an override over a card and returns the merged copy. The
// input card is never mutated, so clearing an override always reveals the
// original server values without a re-fetch.
//
// Thumbnail fallback order: override image, server thumbnail, server image.
func Merge(c Card, o *OverrideEntry) Card {
	if c.ThumbnailURI == "" {
		c.ThumbnailURI = c.ImageURI
	}
	if o == nil {
		return c
	}
	if o.Image != "" {
		c.ImageURI = o.Image
		c.ThumbnailURI = o.Image
	}
	if o.Audio != "" {
		c.AudioKK = o.Audio
	}
	return c
}
