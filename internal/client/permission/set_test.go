package permission

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func grantFixture(t *testing.T) *Set {
	t.Helper()
	return Normalize(ParseRawModules(json.RawMessage(`[
		{
			"id": "hr",
			"items": ["leave.view", "leave.approve"],
			"levels": ["view", "edit"],
			"routes": ["/hr", "/hr/leave"],
			"children": [
				{"id": "hr.reports", "items": [{"key": "reports.export"}], "routes": ["/hr/reports"]}
			]
		},
		{
			"key": "payroll",
			"permissions": ["payslip.view"],
			"levels": [{"name": "view"}]
		},
		{
			"id": "empty-module",
			"routes": ["/nowhere"]
		}
	]`)))
}

func TestNormalize_FlattensTree(t *testing.T) {
	t.Parallel()
	s := grantFixture(t)

	require.True(t, s.HasModule("hr"))
	require.True(t, s.HasModule("hr.reports"))
	require.True(t, s.HasModule("payroll"))

	require.True(t, s.HasItem("leave.view"))
	require.True(t, s.HasItem("reports.export"))
	require.True(t, s.HasItem("payslip.view"))
	require.False(t, s.HasItem("finance.close"))
}

func TestNormalize_PrunesEmptyModules(t *testing.T) {
	t.Parallel()
	s := grantFixture(t)

	// Routes alone do not keep a module alive.
	require.False(t, s.HasModule("empty-module"))
	require.False(t, s.HasRoute("/nowhere"))
}

func TestNormalize_EmptyAndNilInputs(t *testing.T) {
	t.Parallel()

	for _, s := range []*Set{
		Normalize(nil),
		Normalize([]RawModule{}),
		Normalize(ParseRawModules(json.RawMessage(`null`))),
		Normalize(ParseRawModules(json.RawMessage(`{"not":"a list"}`))),
		Normalize(ParseRawModules(nil)),
	} {
		require.NotNil(t, s)
		require.Empty(t, s.Modules())
		require.False(t, s.HasModule("hr"))
		require.False(t, s.HasItem("leave.view"))
	}
}

func TestNormalize_DuplicateModulesUnion(t *testing.T) {
	t.Parallel()

	s := Normalize([]RawModule{
		{ID: "hr", Items: []string{"a"}},
		{ID: "hr", Items: []string{"b"}, Levels: []string{"view"}},
	})
	require.Equal(t, []string{"a", "b"}, s.ModuleItems("hr"))
	require.Equal(t, []AccessLevel{"view"}, s.ModuleLevels("hr"))
}

func TestHasRoute_ExactMatchOnly(t *testing.T) {
	t.Parallel()
	s := grantFixture(t)

	require.True(t, s.HasRoute("/hr/leave"))
	require.True(t, s.HasRoute("/hr/reports"))
	require.False(t, s.HasRoute("/hr/leave/123"))
	require.False(t, s.HasRoute("/hr/"))
	require.False(t, s.HasRoute(""))
}

func TestModuleItems_AbsentModule(t *testing.T) {
	t.Parallel()
	s := grantFixture(t)

	require.Equal(t, []string{}, s.ModuleItems("finance"))
	require.Equal(t, []AccessLevel{}, s.ModuleLevels("finance"))
}

func TestHasAnyHasAll(t *testing.T) {
	t.Parallel()
	s := grantFixture(t)

	tests := []struct {
		name    string
		ids     []string
		wantAny bool
		wantAll bool
	}{
		{name: "empty list", ids: []string{}, wantAny: false, wantAll: false},
		{name: "nil list", ids: nil, wantAny: false, wantAll: false},
		{name: "all granted", ids: []string{"leave.view", "payslip.view"}, wantAny: true, wantAll: true},
		{name: "some granted", ids: []string{"leave.view", "finance.close"}, wantAny: true, wantAll: false},
		{name: "none granted", ids: []string{"finance.close"}, wantAny: false, wantAll: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.wantAny, s.HasAny(tc.ids))
			require.Equal(t, tc.wantAll, s.HasAll(tc.ids))
		})
	}

	var empty *Set
	require.False(t, empty.HasAny([]string{}))
	require.False(t, empty.HasAll([]string{}))
}

func TestQueries_NilSetDenies(t *testing.T) {
	t.Parallel()

	var s *Set
	require.False(t, s.HasItem("x"))
	require.False(t, s.HasRoute("/x"))
	require.False(t, s.HasModule("x"))
	require.Equal(t, []string{}, s.ModuleItems("x"))
	require.Equal(t, []AccessLevel{}, s.ModuleLevels("x"))
	require.Equal(t, []string{}, s.Modules())
}

func TestParseRawModules_ToleratesUnknownItemShapes(t *testing.T) {
	t.Parallel()

	s := Normalize(ParseRawModules(json.RawMessage(`[
		{"id": "hr", "items": ["ok", 42, {"weird": true}, {"name": "named"}]}
	]`)))
	require.True(t, s.HasItem("ok"))
	require.True(t, s.HasItem("named"))
	require.Equal(t, []string{"named", "ok"}, s.ModuleItems("hr"))
}
