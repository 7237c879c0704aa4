package types

import (
	"sort"

	"github.com/modern-go/reflect2"
)

// Feature is implemented by every typed capability handle. FeatureName must
// be callable on the zero value, so handles are plain structs with value
// receivers.
type Feature interface {
	FeatureName() string
}

// Features is the dynamic, string-keyed capability map a wallet exposes its
// features through. Keys are namespaced identifiers split on ":"; the
// namespaces "standard:" and "experimental:" are reserved by the wallet
// standard. The map is owned by the WalletInfo and read-only to consumers.
type Features map[string]interface{}

// Names returns the feature names in sorted order.
func (f Features) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterFeature inserts value under name, overwriting any prior entry.
// Last write wins; conformant producers must not register the same name
// twice.
func RegisterFeature(features Features, name string, value interface{}) {
	features[name] = value
}

// AddFeature registers a typed handle under its canonical name.
func AddFeature[T Feature](features Features, feature T) {
	features[feature.FeatureName()] = feature
}

// GetFeature looks up T's canonical name and converts the stored value to
// T. A missing key and a value of the wrong shape both report absence: in
// either case the capability is unusable, and the contract deliberately
// does not distinguish the two.
func GetFeature[T Feature](features Features) (T, bool) {
	var zero T
	raw, ok := features[zero.FeatureName()]
	if !ok || reflect2.IsNil(raw) {
		return zero, false
	}
	feature, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return feature, true
}

// RequireFeature is GetFeature composed with an unsupported-feature error
// on absence, carrying the feature name and the wallet name.
func RequireFeature[T Feature](features Features, walletName string) (T, error) {
	feature, ok := GetFeature[T](features)
	if !ok {
		var zero T
		return zero, UnsupportedFeatureError(zero.FeatureName(), walletName)
	}
	return feature, nil
}

// SupportsFeature probes for T without side effects.
func SupportsFeature[T Feature](features Features) bool {
	_, ok := GetFeature[T](features)
	return ok
}
