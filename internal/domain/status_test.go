package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceKitchen(t *testing.T) {
	assert.Equal(t, StatusStarterServed, Advance(StatusInPreparation, DepartmentKitchen, CategoryStarters))
	assert.Equal(t, StatusFirstCourseServed, Advance(StatusInPreparation, DepartmentKitchen, CategoryFirstCourses))
	assert.Equal(t, StatusMainCourseServed, Advance(StatusInPreparation, DepartmentKitchen, CategoryMainCourses))
	assert.Equal(t, StatusConcluded, Advance(StatusInPreparation, DepartmentKitchen, CategoryDesserts))
	assert.Equal(t, StatusConcluded, Advance(StatusFirstCourseServed, DepartmentKitchen, CategoryFirstCourses))
	assert.Equal(t, StatusConcluded, Advance(StatusConcluded, DepartmentKitchen, CategoryFirstCourses))
	assert.Equal(t, StatusCancelled, Advance(StatusCancelled, DepartmentKitchen, CategoryFirstCourses))
}

func TestAdvanceGrillAndCashier(t *testing.T) {
	assert.Equal(t, StatusConcluded, Advance(StatusInPreparation, DepartmentGrill, CategoryMainCourses))
	assert.Equal(t, StatusConcluded, Advance(StatusConcluded, DepartmentCashier, CategoryDrinks))
	assert.Equal(t, StatusInPreparation, Advance(StatusInPreparation, DepartmentCashier, CategoryDrinks))
}

func TestRevertIsExplicitOnly(t *testing.T) {
	assert.Equal(t, StatusInPreparation, Revert(StatusFirstCourseServed, DepartmentKitchen))
	assert.Equal(t, StatusInPreparation, Revert(StatusConcluded, DepartmentGrill))
	assert.Equal(t, StatusCancelled, Revert(StatusCancelled, DepartmentKitchen))
	assert.Equal(t, StatusInPreparation, Revert(StatusInPreparation, DepartmentKitchen))
}

func TestCashierLinesNeverMove(t *testing.T) {
	assert.Equal(t, StatusConcluded, Revert(StatusConcluded, DepartmentCashier))
	assert.Equal(t, StatusConcluded, Advance(StatusConcluded, DepartmentCashier, CategoryDrinks))
	assert.False(t, DepartmentCashier.Accepts(StatusCancelled))
	assert.False(t, DepartmentCashier.Accepts(StatusInPreparation))
}

func TestServedTarget(t *testing.T) {
	assert.Equal(t, StatusStarterServed, ServedTarget(DepartmentKitchen, CategoryStarters))
	assert.Equal(t, StatusConcluded, ServedTarget(DepartmentKitchen, CategorySides))
	assert.Equal(t, StatusConcluded, ServedTarget(DepartmentGrill, CategoryMainCourses))
	assert.True(t, Reached(ServedTarget(DepartmentKitchen, CategoryMainCourses), DepartmentKitchen, CategoryMainCourses))
}

func TestDepartmentVocabulary(t *testing.T) {
	assert.True(t, DepartmentKitchen.Accepts(StatusStarterServed))
	assert.False(t, DepartmentGrill.Accepts(StatusStarterServed))
	assert.True(t, DepartmentGrill.Accepts(StatusCancelled))
	assert.True(t, DepartmentKitchen.Accepts(StatusCancelled))
	assert.True(t, DepartmentCashier.Accepts(StatusConcluded))
	assert.False(t, DepartmentCashier.Accepts(StatusInPreparation))
}

func TestParseDishStatus(t *testing.T) {
	s, err := ParseDishStatus("primo_servito")
	require.NoError(t, err)
	assert.Equal(t, StatusFirstCourseServed, s)
	assert.Equal(t, "Primo Servito", s.Label())
	assert.Equal(t, "info", s.Color())

	_, err = ParseDishStatus("pronto")
	assert.Error(t, err)
}
