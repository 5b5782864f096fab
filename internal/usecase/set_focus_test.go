package usecase

import (
	"context"
	"testing"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetFocus_Execute_RecomputesUnderNewContext(t *testing.T) {
	// Setup
	e := newEnv(t)
	e.refs.Contexts["c1"] = domain.Context{ID: "c1", Name: "Office"}
	atOffice := task("t1", "Print", domain.StatusNext)
	atOffice.ContextID = "c1"
	atOffice.Priority = 400
	elsewhere := task("t2", "Garden", domain.StatusNext)
	elsewhere.Priority = 400
	e.seed(atOffice, elsewhere)
	uc := NewSetFocus(e.store, e.settings, e.refs, e.logger)

	// Execute
	out, err := uc.Execute(context.Background(), SetFocusInput{Context: domain.Ptr("office")})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "c1", e.settings.Values[domain.SettingCurrentContext])
	assert.Equal(t, "c1", out.Settings.CurrentContext)
	require.NotNil(t, out.Report)
	assert.Equal(t, 1, out.Report.Changed)
	assert.True(t, out.Report.Complete)
	assert.Equal(t, 430.0, e.codec.Decode(e.rows.Rows[0]).Priority)
	assert.Equal(t, 400.0, e.codec.Decode(e.rows.Rows[1]).Priority)
}

func TestSetFocus_Execute_EnergyAndMinutes(t *testing.T) {
	e := newEnv(t)
	uc := NewSetFocus(e.store, e.settings, e.refs, nil)

	out, err := uc.Execute(context.Background(), SetFocusInput{
		Energy:        domain.Ptr(" HIGH "),
		Minutes:       domain.Ptr("45"),
		SkipRecompute: true,
	})

	require.NoError(t, err)
	assert.Nil(t, out.Report)
	assert.Equal(t, domain.Settings{CurrentEnergy: domain.EnergyHigh, AvailableMinutes: 45}, out.Settings)
	assert.NotContains(t, e.settings.Values, domain.SettingCurrentContext)
}

func TestSetFocus_Execute_ClearContext(t *testing.T) {
	e := newEnv(t)
	e.settings.Values[domain.SettingCurrentContext] = "c1"
	uc := NewSetFocus(e.store, e.settings, e.refs, nil)

	out, err := uc.Execute(context.Background(), SetFocusInput{Context: domain.Ptr("")})

	require.NoError(t, err)
	assert.Empty(t, out.Settings.CurrentContext)
	require.NotNil(t, out.Report)
}

func TestSetFocus_Execute_NothingToChange(t *testing.T) {
	e := newEnv(t)
	uc := NewSetFocus(e.store, e.settings, e.refs, nil)

	out, err := uc.Execute(context.Background(), SetFocusInput{})

	require.NoError(t, err)
	assert.Nil(t, out.Report)
	assert.Zero(t, e.rows.ReadAllCount)
}

func TestSetFocus_Execute_ValidatesBeforeWriting(t *testing.T) {
	tests := []struct {
		name string
		in   SetFocusInput
		want error
	}{
		{"unknown context", SetFocusInput{Context: domain.Ptr("Moon")}, domain.ErrContextNotFound},
		{"bad energy", SetFocusInput{Context: domain.Ptr("c1"), Energy: domain.Ptr("sleepy")}, domain.ErrInvalidEnergy},
		{"bad minutes", SetFocusInput{Context: domain.Ptr("c1"), Minutes: domain.Ptr("-5")}, domain.ErrInvalidSetting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.refs.Contexts["c1"] = domain.Context{ID: "c1", Name: "Office"}
			uc := NewSetFocus(e.store, e.settings, e.refs, nil)

			_, err := uc.Execute(context.Background(), tt.in)

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, e.settings.Values, "nothing is written when any value is invalid")
		})
	}
}
