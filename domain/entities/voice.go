package entities

import "strings"

// FallbackVoiceID is used whenever the voice catalog is unreachable or
// returns no usable voices. The system stays usable with it.
const FallbackVoiceID = "voice_id"

// Voice is one entry of the remote text-to-speech voice catalog. Fields
// other than ID are optional on the wire and default to empty strings,
// resolved once at the adapter boundary.
type Voice struct {
	ID          string   `json:"id"`
	Gender      string   `json:"gender,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	Locale      string   `json:"locale,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// VoiceFilter narrows a voice catalog. Zero-value fields pass everything.
type VoiceFilter struct {
	Gender string
	Locale string
	Tag    string
}

// FilterVoices returns the voices matching the filter, preserving catalog
// order. Gender and locale are case-insensitive exact matches; voices
// without an ID are dropped.
func FilterVoices(voices []Voice, filter VoiceFilter) []Voice {
	var matched []Voice
	for _, voice := range voices {
		if voice.ID == "" {
			continue
		}
		if filter.Gender != "" && !strings.EqualFold(voice.Gender, filter.Gender) {
			continue
		}
		if filter.Locale != "" && !strings.EqualFold(voice.Locale, filter.Locale) {
			continue
		}
		if filter.Tag != "" && !hasTag(voice.Tags, filter.Tag) {
			continue
		}
		matched = append(matched, voice)
	}
	return matched
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
