package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/pkg/utils"
)

func TestNewSystemModel(t *testing.T) {
	m := NewSystemModel("plant")

	assert.Equal(t, "plant", m.Name())
	assert.Equal(t, 1, m.Len())
	require.NotNil(t, m.Layout())
	assert.Equal(t, DefaultLayoutName, m.Layout().Name)

	scale, err := m.Layout().Property(models.KeyScaleX).ValueIn(models.UnitMM)
	require.NoError(t, err)
	assert.Equal(t, 50.0, scale)
}

func TestSystemModel_Add(t *testing.T) {
	tests := []struct {
		name     string
		entity   *models.Entity
		wantCode string
	}{
		{name: "nil component", entity: nil, wantCode: utils.CodePrecondition},
		{name: "unnamed component", entity: models.NewComponent(models.KindPoint, ""), wantCode: utils.CodePrecondition},
		{name: "unknown kind", entity: models.NewEntity(models.Kind("crane"), "C1"), wantCode: utils.CodeInvalidInput},
		{name: "duplicate name across kinds", entity: models.NewComponent(models.KindLocation, "P1"), wantCode: utils.CodeAlreadyExists},
		{name: "new point", entity: models.NewComponent(models.KindPoint, "P2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSystemModel("plant")
			require.NoError(t, m.Add(models.NewComponent(models.KindPoint, "P1")))

			err := m.Add(tt.entity)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			var appErr *utils.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestSystemModel_AddSameInstanceTwice(t *testing.T) {
	m := NewSystemModel("plant")
	p := models.NewComponent(models.KindPoint, "P1")

	require.NoError(t, m.Add(p))
	require.NoError(t, m.Add(p))
	assert.Equal(t, 2, m.Len())
}

func TestSystemModel_LayoutIsMerged(t *testing.T) {
	m := NewSystemModel("plant")
	original := m.Layout()

	second := models.NewComponent(models.KindLayout, "Other layout")
	second.Property(models.KeyScaleX).Number = 25
	require.NoError(t, m.Add(second))

	assert.Same(t, original, m.Layout())
	assert.Equal(t, "Other layout", m.Layout().Name)
	assert.Len(t, m.ComponentsOfKind(models.KindLayout), 1)
	assert.Equal(t, 25.0, m.Layout().Property(models.KeyScaleX).Number)

	got, ok := m.Lookup("Other layout")
	require.True(t, ok)
	assert.Same(t, original, got)
	_, ok = m.Lookup(DefaultLayoutName)
	assert.False(t, ok, "the default name is released")

	require.NoError(t, m.Add(models.NewComponent(models.KindPoint, DefaultLayoutName)))
	assert.Equal(t, 2, m.Len())
}

func TestSystemModel_LayoutNameTakenByComponent(t *testing.T) {
	m := NewSystemModel("plant")
	require.NoError(t, m.Add(models.NewComponent(models.KindPoint, "Hall")))

	err := m.Add(models.NewComponent(models.KindLayout, "Hall"))
	assert.True(t, utils.IsAlreadyExists(err))
	assert.Equal(t, DefaultLayoutName, m.Layout().Name)
	got, _ := m.Lookup("Hall")
	assert.Equal(t, models.KindPoint, got.Kind)
}

func TestSystemModel_RemoveAndRename(t *testing.T) {
	m := NewSystemModel("plant")
	require.NoError(t, m.Add(models.NewComponent(models.KindPoint, "P1")))
	require.NoError(t, m.Add(models.NewComponent(models.KindPoint, "P2")))

	_, ok := m.Remove(DefaultLayoutName)
	assert.False(t, ok, "the layout cannot be removed")

	require.NoError(t, m.Rename("P1", "P3"))
	_, ok = m.Lookup("P1")
	assert.False(t, ok)
	p3, ok := m.Lookup("P3")
	require.True(t, ok)
	assert.Equal(t, "P3", p3.Name)

	err := m.Rename("P3", "P2")
	assert.True(t, utils.IsAlreadyExists(err))
	assert.True(t, utils.IsNotFound(m.Rename("missing", "P9")))

	removed, ok := m.Remove("P2")
	require.True(t, ok)
	assert.Equal(t, "P2", removed.Name)
	assert.Equal(t, 2, m.Len())
}

func TestSystemModel_ComponentsKeepInsertionOrder(t *testing.T) {
	m := NewSystemModel("plant")
	for _, name := range []string{"B", "A", "C"} {
		require.NoError(t, m.Add(models.NewComponent(models.KindPoint, name)))
	}

	var names []string
	for _, e := range m.Components() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{DefaultLayoutName, "B", "A", "C"}, names)
	assert.Len(t, m.ComponentsOfKind(models.KindPoint), 3)
}

func TestSystemModel_Clone(t *testing.T) {
	m := NewSystemModel("plant")
	require.NoError(t, m.Add(models.NewComponent(models.KindPoint, "P1")))

	c := m.Clone()
	assert.Equal(t, m.Len(), c.Len())
	assert.NotSame(t, m.Layout(), c.Layout())
	assert.True(t, m.Layout().SameInstance(c.Layout()))

	cp, _ := c.Lookup("P1")
	cp.Property(models.KeyModelXPosition).Number = 99
	p, _ := m.Lookup("P1")
	assert.Equal(t, 0.0, p.Property(models.KeyModelXPosition).Number)
}
