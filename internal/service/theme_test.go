package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/mocks"
)

func TestParseTheme(t *testing.T) {
	assert.Equal(t, ThemeDark, ParseTheme(" Dark "))
	assert.Equal(t, ThemeLight, ParseTheme("light"))
	assert.Equal(t, ThemeLight, ParseTheme(""))
	assert.Equal(t, ThemeLight, ParseTheme("solarized"))
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
}

func TestThemeService_ToggleNotifies(t *testing.T) {
	ctx := context.Background()
	tiers := newTiers(t)
	svc := NewThemeService(ThemeServiceOptions{})

	assert.Equal(t, ThemeLight, svc.Current(ctx, tiers.durable))

	var seen []Theme
	unsubscribe := svc.Subscribe("device-1", func(th Theme) { seen = append(seen, th) })
	other := 0
	svc.Subscribe("device-2", func(Theme) { other++ })

	got, err := svc.Toggle(ctx, tiers.durable, "device-1")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, got)
	assert.Equal(t, "dark", tiers.durableValue(t, domainauth.KeyTheme))

	got, err = svc.Toggle(ctx, tiers.durable, "device-1")
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, got)

	assert.Equal(t, []Theme{ThemeDark, ThemeLight}, seen)
	assert.Zero(t, other)

	unsubscribe()
	unsubscribe()
	assert.Zero(t, svc.Subscribers("device-1"))
	require.NoError(t, svc.Set(ctx, tiers.durable, "device-1", ThemeDark))
	assert.Len(t, seen, 2)
}

func TestThemeService_StorageFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	tier := mocks.NewMockStorageTier(ctrl)
	svc := NewThemeService(ThemeServiceOptions{})

	tier.EXPECT().Get(gomock.Any(), domainauth.KeyTheme).Return("", errors.New("down")).AnyTimes()
	tier.EXPECT().Set(gomock.Any(), domainauth.KeyTheme, "dark").Return(errors.New("down"))

	called := false
	svc.Subscribe("device-1", func(Theme) { called = true })

	got, err := svc.Toggle(ctx, tier, "device-1")
	require.Error(t, err)
	assert.Equal(t, ThemeLight, got)
	assert.False(t, called)
}
