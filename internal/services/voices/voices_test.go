package voices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProfilesDefaults(t *testing.T) {
	profiles := BuildProfiles(nil, 3)
	require.Len(t, profiles, 3)

	assert.Equal(t, "alloy", profiles[0].Voice)
	assert.Equal(t, "echo", profiles[1].Voice)
	assert.Equal(t, "fable", profiles[2].Voice)

	// Each of the first three hosts gets a distinct archetype
	assert.NotEqual(t, profiles[0].Personality, profiles[1].Personality)
	assert.NotEqual(t, profiles[1].Personality, profiles[2].Personality)

	for _, p := range profiles {
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Expertise)
		assert.NotEmpty(t, p.EmotionalRange)
		assert.Greater(t, p.Settings.Speed, 0.0)
	}
}

func TestBuildProfilesVoiceRotationNeverCollides(t *testing.T) {
	hosts := make([]HostDescriptor, 6)
	profiles := BuildProfiles(hosts, 0)
	require.Len(t, profiles, 6)

	seen := make(map[string]bool)
	for _, p := range profiles {
		assert.False(t, seen[p.Voice], "voice %s assigned twice", p.Voice)
		seen[p.Voice] = true
	}

	// Seventh host wraps around the rotation
	profiles = BuildProfiles(make([]HostDescriptor, 7), 0)
	assert.Equal(t, profiles[0].Voice, profiles[6].Voice)
}

func TestBuildProfilesKeepsExplicitFields(t *testing.T) {
	profiles := BuildProfiles([]HostDescriptor{
		{Name: "Pastor Dave", Voice: "onyx", Personality: "gentle shepherd"},
		{Name: "Ruth"},
	}, 0)
	require.Len(t, profiles, 2)

	assert.Equal(t, "Pastor Dave", profiles[0].Name)
	assert.Equal(t, "onyx", profiles[0].Voice)
	assert.Equal(t, "gentle shepherd", profiles[0].Personality)
	assert.NotEmpty(t, profiles[0].SpeakingStyle)

	assert.Equal(t, "Ruth", profiles[1].Name)
	assert.Equal(t, "echo", profiles[1].Voice)
}

func TestBuildProfilesMinimumTwoHosts(t *testing.T) {
	profiles := BuildProfiles(nil, 0)
	assert.Len(t, profiles, 2)

	profiles = BuildProfiles(nil, 1)
	assert.Len(t, profiles, 2)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sarah", "sarah"},
		{"  Pastor Dave!  ", "pastordave"},
		{"ALEX (laughing)", "alexlaughing"},
		{"Host-2", "host2"},
		{"***", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestResolve(t *testing.T) {
	profiles := BuildProfiles([]HostDescriptor{
		{Name: "Alex"},
		{Name: "Sarah"},
		{Name: "Jordan"},
	}, 0)

	tests := []struct {
		label string
		want  string
	}{
		{"Sarah", "Sarah"},
		{"sarah:", "Sarah"},
		{"Pastor Sarah", "Sarah"},
		{"Sarah (excited)", "Sarah"},
		{"JORDAN", "Jordan"},
		{"Al", "Alex"},
		{"Narrator", "Alex"}, // unresolved defaults to first host
		{"", "Alex"},
	}
	for _, tt := range tests {
		got := Resolve(tt.label, profiles)
		require.NotNil(t, got, "label %q", tt.label)
		assert.Equal(t, tt.want, got.Name, "label %q", tt.label)
	}
}

func TestResolveNoProfiles(t *testing.T) {
	assert.Nil(t, Resolve("Sarah", nil))
}
