package enums

import "fmt"

// FeatureKey names a plan capability flag.
type FeatureKey string

const (
	FeatureCarePlans       FeatureKey = "care_plans"
	FeatureDeviceSync      FeatureKey = "device_sync"
	FeatureCSVExport       FeatureKey = "csv_export"
	FeatureAIAssist        FeatureKey = "ai_assist"
	FeatureVoiceTranscribe FeatureKey = "voice_transcribe"
)

var validFeatureKeys = []FeatureKey{
	FeatureCarePlans,
	FeatureDeviceSync,
	FeatureCSVExport,
	FeatureAIAssist,
	FeatureVoiceTranscribe,
}

// String implements fmt.Stringer.
func (f FeatureKey) String() string {
	return string(f)
}

// IsValid reports whether the value is known.
func (f FeatureKey) IsValid() bool {
	for _, candidate := range validFeatureKeys {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFeatureKey converts raw input into a FeatureKey.
func ParseFeatureKey(value string) (FeatureKey, error) {
	for _, candidate := range validFeatureKeys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid feature key %q", value)
}
