// Package voices builds concrete speaker identities out of the loose host
// descriptors callers send with a generation request. Missing fields are
// filled from a small set of personality templates so the pipeline never
// sees an underspecified host.
package voices

// HostDescriptor is the raw host shape accepted from API callers.
// Any field may be empty.
type HostDescriptor struct {
	Name        string `json:"name"`
	Voice       string `json:"voice"`
	Personality string `json:"personality"`
	Style       string `json:"style"`
}

// VoiceSettings tunes base delivery for a host.
type VoiceSettings struct {
	Speed    float64 `json:"speed"`
	Pitch    float64 `json:"pitch"`
	Emphasis float64 `json:"emphasis"`
}

// VoiceProfile is a fully resolved speaker identity. Built once per
// generation request and never mutated afterwards.
type VoiceProfile struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Voice          string        `json:"voice"`
	Personality    string        `json:"personality"`
	Expertise      string        `json:"expertise"`
	SpeakingStyle  string        `json:"speakingStyle"`
	EmotionalRange []string      `json:"emotionalRange"`
	Catchphrases   []string      `json:"catchphrases"`
	Backchannels   []string      `json:"backchannels"`
	Settings       VoiceSettings `json:"settings"`
}

// defaultVoices is the synthesis voice rotation. Assigned by positional
// index so omitted selections never collide for up to six hosts.
var defaultVoices = []string{"alloy", "echo", "fable", "nova", "onyx", "shimmer"}

// personaTemplate fills in the personality fields a descriptor leaves blank.
type personaTemplate struct {
	personality    string
	expertise      string
	speakingStyle  string
	emotionalRange []string
	catchphrases   []string
	backchannels   []string
	settings       VoiceSettings
}

var personaTemplates = []personaTemplate{
	{
		personality:    "warm and curious, asks the questions listeners are thinking",
		expertise:      "everyday faith and community life",
		speakingStyle:  "energetic, conversational, quick to react",
		emotionalRange: []string{"excited", "curious", "amused", "surprised"},
		catchphrases:   []string{"Okay, walk me through that", "That's such a good point"},
		backchannels:   []string{"Mm-hmm", "Right", "Oh wow"},
		settings:       VoiceSettings{Speed: 1.05, Pitch: 1.0, Emphasis: 1.1},
	},
	{
		personality:    "seasoned and steady, grounds the conversation in experience",
		expertise:      "scripture, church history, pastoral care",
		speakingStyle:  "measured, story-driven, patient",
		emotionalRange: []string{"thoughtful", "passionate", "concerned", "agreeing"},
		catchphrases:   []string{"In my experience", "Here's what that looks like in practice"},
		backchannels:   []string{"Yes", "Absolutely", "That's right"},
		settings:       VoiceSettings{Speed: 0.97, Pitch: 0.95, Emphasis: 1.0},
	},
	{
		personality:    "analytical and direct, pushes back on easy answers",
		expertise:      "theology, ethics, cultural analysis",
		speakingStyle:  "precise, probing, occasionally wry",
		emotionalRange: []string{"questioning", "thoughtful", "surprised", "amused"},
		catchphrases:   []string{"But here's the tension", "Let's be careful with that"},
		backchannels:   []string{"Hmm", "Sure, but", "Interesting"},
		settings:       VoiceSettings{Speed: 1.0, Pitch: 1.0, Emphasis: 1.05},
	},
}

var defaultHostNames = []string{"Alex", "Sarah", "Jordan", "Maya", "Daniel", "Grace"}

// BuildProfiles turns host descriptors into voice profiles, one per
// descriptor, preserving order. When hosts is empty, count profiles are
// built entirely from defaults (count is clamped to at least 2 so a
// conversation is always possible). This stage has no failure mode.
func BuildProfiles(hosts []HostDescriptor, count int) []VoiceProfile {
	if len(hosts) == 0 {
		if count < 2 {
			count = 2
		}
		hosts = make([]HostDescriptor, count)
	}

	profiles := make([]VoiceProfile, len(hosts))
	for i, h := range hosts {
		tmpl := personaTemplates[i%len(personaTemplates)]

		name := h.Name
		if name == "" {
			name = defaultHostNames[i%len(defaultHostNames)]
		}
		voice := h.Voice
		if voice == "" {
			voice = defaultVoices[i%len(defaultVoices)]
		}
		personality := h.Personality
		if personality == "" {
			personality = tmpl.personality
		}
		style := h.Style
		if style == "" {
			style = tmpl.speakingStyle
		}

		profiles[i] = VoiceProfile{
			ID:             voice,
			Name:           name,
			Voice:          voice,
			Personality:    personality,
			Expertise:      tmpl.expertise,
			SpeakingStyle:  style,
			EmotionalRange: tmpl.emotionalRange,
			Catchphrases:   tmpl.catchphrases,
			Backchannels:   tmpl.backchannels,
			Settings:       tmpl.settings,
		}
	}

	return profiles
}
