package discount

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// SettingTieredDiscount toggles tiered spend discounts.
const SettingTieredDiscount = "tiered_discount_active"

// Toggle is the stored shape of boolean settings: {"enabled": true}.
type Toggle struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// Settings is the decoded app_settings table. Missing keys mean disabled.
type Settings struct {
	TieredDiscount Toggle `mapstructure:"tiered_discount_active" json:"tieredDiscount"`
}

// DecodeSettings turns raw key/value rows into Settings. Values are decoded
// weakly, so "true", 1 and a bare boolean are accepted for toggles.
func DecodeSettings(raw map[string]json.RawMessage) (Settings, error) {
	input := make(map[string]any, len(raw))
	for key, value := range raw {
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return Settings{}, fmt.Errorf("decode setting %s: %w", key, err)
		}
		if _, isMap := v.(map[string]any); !isMap && isToggle(key) {
			v = map[string]any{"enabled": v}
		}
		input[key] = v
	}

	var out Settings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return Settings{}, err
	}
	if err := dec.Decode(input); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return out, nil
}

// KnownSetting reports whether key is a setting the storefront reads.
func KnownSetting(key string) bool {
	return isToggle(key)
}

func isToggle(key string) bool {
	return key == SettingTieredDiscount
}
