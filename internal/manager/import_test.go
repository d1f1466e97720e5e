package manager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BitWorks/xbrlstudio/internal/filing"
	"github.com/BitWorks/xbrlstudio/internal/testutil"
)

func TestImportFiling_Stores(t *testing.T) {
	confirm := &stubConfirmer{}
	m := newTestManager(t, confirm)
	ctx := context.Background()

	path := testutil.WriteFactFile(t, testutil.DisclosureFiling("Example Corp", 320193, "2021", "Q2"))

	res, err := m.ImportFiling(ctx, path, nil)
	require.NoError(t, err)
	assert.Equal(t, ImportStored, res)
	assert.Zero(t, confirm.overwriteCalls, "fresh import should not prompt")

	stored, err := m.GetFiling(ctx, 320193, "q22021")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestImportFiling_ConflictConfirmed(t *testing.T) {
	confirm := &stubConfirmer{overwrite: true}
	m := newTestManager(t, confirm)
	ctx := context.Background()

	path := testutil.WriteFactFile(t, testutil.DisclosureFiling("Example Corp", 320193, "2021", "Q2"))

	res, err := m.ImportFiling(ctx, path, nil)
	require.NoError(t, err)
	require.Equal(t, ImportStored, res)

	res, err = m.ImportFiling(ctx, path, nil)
	require.NoError(t, err)
	assert.Equal(t, ImportStored, res)
	assert.Equal(t, 1, confirm.overwriteCalls)
	require.Len(t, confirm.lastConflicts, 1)
	assert.Equal(t, 320193, confirm.lastConflicts[0].CIK)
	assert.Equal(t, "q22021", confirm.lastConflicts[0].Period)
}

func TestImportFiling_ConflictDeclined(t *testing.T) {
	confirm := &stubConfirmer{overwrite: false}
	m := newTestManager(t, confirm)
	ctx := context.Background()

	path := testutil.WriteFactFile(t, testutil.DisclosureFiling("Example Corp", 320193, "2021", "Q2"))

	res, err := m.ImportFiling(ctx, path, nil)
	require.NoError(t, err)
	require.Equal(t, ImportStored, res)

	// Decline is a skip, never an error.
	res, err = m.ImportFiling(ctx, path, nil)
	require.NoError(t, err)
	assert.Equal(t, ImportSkipped, res)
	assert.Equal(t, 1, confirm.overwriteCalls)
}

func TestImportFiling_NotImportable(t *testing.T) {
	m := newTestManager(t, &stubConfirmer{})
	ctx := context.Background()

	// Name and period but no cik.
	f := filing.NewFiling([]filing.Fact{
		testutil.Fact("dei:EntityRegistrantName", "Example Corp"),
		testutil.Fact("dei:DocumentFiscalYearFocus", "2021"),
		testutil.Fact("dei:DocumentFiscalPeriodFocus", "Q2"),
	})
	path := testutil.WriteFactFile(t, f)

	res, err := m.ImportFiling(ctx, path, nil)
	assert.Equal(t, ImportSkipped, res)

	var notImportable *NotImportableError
	require.ErrorAs(t, err, &notImportable)
	assert.Equal(t, path, notImportable.Path)
	assert.Contains(t, notImportable.Missing, "cik")
}

func TestImportFiling_ExplicitCikBypassesCikRequirement(t *testing.T) {
	m := newTestManager(t, &stubConfirmer{})
	ctx := context.Background()

	f := filing.NewFiling([]filing.Fact{
		testutil.Fact("dei:EntityRegistrantName", "Example Corp"),
		testutil.Fact("dei:DocumentFiscalYearFocus", "2021"),
		testutil.Fact("dei:DocumentFiscalPeriodFocus", "Q2"),
	})
	path := testutil.WriteFactFile(t, f)

	cik := 777
	res, err := m.ImportFiling(ctx, path, &cik)
	require.NoError(t, err)
	require.Equal(t, ImportStored, res)

	stored, err := m.GetFiling(ctx, 777, "q22021")
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestImportFiling_ExplicitCikStillNeedsPeriod(t *testing.T) {
	m := newTestManager(t, &stubConfirmer{})

	f := filing.NewFiling([]filing.Fact{
		testutil.Fact("dei:EntityRegistrantName", "Example Corp"),
	})
	path := testutil.WriteFactFile(t, f)

	cik := 777
	res, err := m.ImportFiling(context.Background(), path, &cik)
	assert.Equal(t, ImportSkipped, res)

	var notImportable *NotImportableError
	require.ErrorAs(t, err, &notImportable)
	assert.Contains(t, notImportable.Missing, "period")
}

func TestImportFiling_ParseError(t *testing.T) {
	m := newTestManager(t, &stubConfirmer{})

	res, err := m.ImportFiling(context.Background(), "does-not-exist.xml", nil)
	assert.Equal(t, ImportSkipped, res)

	var parseErr *filing.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestImportManual_Stores(t *testing.T) {
	confirm := &stubConfirmer{}
	m := newTestManager(t, confirm)
	ctx := context.Background()

	f := filing.NewFiling([]filing.Fact{testutil.Fact("us-gaap:Revenues", "500")})
	path := testutil.WriteFactFile(t, f)

	// Period case is normalized before use.
	res, err := m.ImportManual(ctx, 42, "Manual Corp", "Q32019", path)
	require.NoError(t, err)
	assert.Equal(t, ImportStored, res)
	assert.Zero(t, confirm.manualCalls)

	stored, err := m.GetFiling(ctx, 42, "q32019")
	require.NoError(t, err)
	require.NotNil(t, stored)

	name, found, err := m.NameFromCik(ctx, 42)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Manual Corp", name)
}

func TestImportManual_InvalidPeriod(t *testing.T) {
	m := newTestManager(t, &stubConfirmer{})
	path := testutil.WriteFactFile(t, testutil.DisclosureFiling("Example Corp", 1, "2021", "Q1"))

	for _, period := range []string{"2021", "q52021", "q2-2021", ""} {
		res, err := m.ImportManual(context.Background(), 1, "Example Corp", period, path)
		assert.Equal(t, ImportSkipped, res)
		assert.Error(t, err, "period %q", period)
	}
}

func TestImportManual_OverwriteDeclined(t *testing.T) {
	confirm := &stubConfirmer{manual: false}
	m := newTestManager(t, confirm)
	ctx := context.Background()

	path := testutil.WriteFactFile(t, testutil.DisclosureFiling("Example Corp", 42, "2019", "Q3"))

	res, err := m.ImportManual(ctx, 42, "Example Corp", "q32019", path)
	require.NoError(t, err)
	require.Equal(t, ImportStored, res)

	res, err = m.ImportManual(ctx, 42, "Example Corp", "q32019", path)
	require.NoError(t, err)
	assert.Equal(t, ImportSkipped, res)
	assert.Equal(t, 1, confirm.manualCalls)
}

func TestImportManual_OverwriteConfirmed(t *testing.T) {
	confirm := &stubConfirmer{manual: true}
	m := newTestManager(t, confirm)
	ctx := context.Background()

	path := testutil.WriteFactFile(t, testutil.DisclosureFiling("Example Corp", 42, "2019", "Q3"))

	_, err := m.ImportManual(ctx, 42, "Example Corp", "q32019", path)
	require.NoError(t, err)

	res, err := m.ImportManual(ctx, 42, "Example Corp", "q32019", path)
	require.NoError(t, err)
	assert.Equal(t, ImportStored, res)
	assert.Equal(t, 1, confirm.manualCalls)
}

func TestNotImportableError_Message(t *testing.T) {
	err := &NotImportableError{Path: "a.xml", Missing: []string{"cik", "period"}}
	assert.Equal(t, "filing a.xml is not importable: missing cik, period", err.Error())
	var target *NotImportableError
	assert.True(t, errors.As(err, &target))
}
