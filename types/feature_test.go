package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type mockFeature struct {
	Version string
}

func (mockFeature) FeatureName() string { return "mock:feature" }

func TestFeatureRoundTrip(t *testing.T) {
	features := Features{}
	want := mockFeature{Version: "1.0.0"}
	AddFeature(features, want)

	got, ok := GetFeature[mockFeature](features)
	require.True(t, ok)
	require.Equal(t, want, got)
	require.True(t, SupportsFeature[mockFeature](features))
}

func TestFeatureAbsent(t *testing.T) {
	features := Features{}

	_, ok := GetFeature[mockFeature](features)
	require.False(t, ok)
	require.False(t, SupportsFeature[mockFeature](features))

	_, err := RequireFeature[mockFeature](features, "Phantom")
	require.Error(t, err)
	var wErr *WalletError
	require.True(t, errors.As(err, &wErr))
	require.Equal(t, CodeUnsupportedFeature, wErr.Code)
	require.Equal(t, "mock:feature", wErr.Feature)
	require.Equal(t, "Phantom", wErr.Wallet)
}

func TestFeatureWrongShape(t *testing.T) {
	features := Features{}
	// same key, incompatible shape: treated exactly like absence
	RegisterFeature(features, mockFeature{}.FeatureName(), "not a feature struct")

	_, ok := GetFeature[mockFeature](features)
	require.False(t, ok)
	require.False(t, SupportsFeature[mockFeature](features))
}

func TestRegisterFeatureLastWriteWins(t *testing.T) {
	features := Features{}
	AddFeature(features, mockFeature{Version: "1.0.0"})
	AddFeature(features, mockFeature{Version: "2.0.0"})

	got, ok := GetFeature[mockFeature](features)
	require.True(t, ok)
	require.Equal(t, "2.0.0", got.Version)
	require.Equal(t, []string{"mock:feature"}, features.Names())
}
