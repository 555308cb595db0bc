package models

// MediaAsset is a file hosted on the media CDN
type MediaAsset struct {
	PublicID        string `json:"public_id"`
	URL             string `json:"url"`
	ResourceType    string `json:"resourceType,omitempty"`
	Bytes           int    `json:"bytes,omitempty"`
	Format          string `json:"format,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}
