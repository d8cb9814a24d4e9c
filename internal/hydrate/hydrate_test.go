package hydrate

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r14dd/matchsentinel/internal/api"
	"github.com/r14dd/matchsentinel/internal/common"
	"github.com/r14dd/matchsentinel/internal/model"
	"github.com/r14dd/matchsentinel/internal/poll"
	"github.com/r14dd/matchsentinel/internal/testutil"
)

// twoTransactions seeds a backend with t1 (two flags, case c1, two notifications)
// and t2 (one flag, case c2, one notification).
func twoTransactions() *testutil.Backend {
	b := testutil.NewBackend()
	b.AddFlags(
		testutil.Flag("f1", "t1", 0.9, "HIGH_AMOUNT"),
		testutil.Flag("f2", "t2", 0.4, "VELOCITY"),
		testutil.Flag("f3", "t1", 0.7, "HIGH_RISK_COUNTRY"),
	)
	b.AddCases(testutil.Case("c1", "t1"), testutil.Case("c2", "t2"))
	b.AddNotifications(
		testutil.Notification("n1", "c1"),
		testutil.Notification("n2", "c2"),
		testutil.Notification("n3", "c1"),
	)
	b.AddDecision(testutil.Decision("d1", "t1", 0.91))
	b.AddDecision(testutil.Decision("d2", "t2", 0.35))
	return b
}

func flagIDs(flags []model.Flag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.ID)
	}
	return out
}

func notificationIDs(items []model.NotificationItem) []string {
	out := make([]string, 0, len(items))
	for _, n := range items {
		out = append(out, n.ID)
	}
	return out
}

func TestFromFlag_ReturnsAllFlagsOfTheTransaction(t *testing.T) {
	b := twoTransactions()
	h := New(b.Services())

	for _, seed := range []string{"f1", "f3"} {
		t.Run(seed, func(t *testing.T) {
			flag := testutil.Flag(seed, "t1", 0.5)

			detail, err := h.FromFlag(context.Background(), flag, "")

			require.NoError(t, err)
			assert.Equal(t, SeedFlag, detail.Seed)
			assert.Equal(t, []string{"f1", "f3"}, flagIDs(detail.Flags))
			require.NotNil(t, detail.AIDecision)
			assert.Equal(t, "d1", detail.AIDecision.ID)
			require.NotNil(t, detail.Case)
			assert.Equal(t, "c1", detail.Case.ID)
			assert.Equal(t, []string{"n1", "n3"}, notificationIDs(detail.Notifications))
			assert.Equal(t, "t1", detail.Transaction.ID)
		})
	}
}

func TestFromFlag_KnownCaseSkipsLookupByTransaction(t *testing.T) {
	b := twoTransactions()
	services := b.Services()
	h := New(services)

	detail, err := h.FromFlag(context.Background(), testutil.Flag("f2", "t2", 0.4), "c2")

	require.NoError(t, err)
	require.NotNil(t, detail.Case)
	assert.Equal(t, "c2", detail.Case.ID)
	assert.Equal(t, 0, services.Calls("ListCases"))
	assert.Equal(t, 1, services.Calls("GetCase"))
}

func TestFromFlag_KnownCaseOfAnotherTransactionIsDropped(t *testing.T) {
	b := twoTransactions()
	h := New(b.Services())

	detail, err := h.FromFlag(context.Background(), testutil.Flag("f2", "t2", 0.4), "c1")

	require.NoError(t, err)
	assert.Nil(t, detail.Case)
	assert.Empty(t, detail.Notifications)
}

func TestFromFlag_FirstCaseWinsWhenServiceListsSeveral(t *testing.T) {
	b := testutil.NewBackend()
	b.AddFlags(testutil.Flag("f1", "t1", 0.9))
	b.AddCases(testutil.Case("c-late", "t1"), testutil.Case("c-early", "t1"))
	h := New(b.Services())

	detail, err := h.FromFlag(context.Background(), testutil.Flag("f1", "t1", 0.9), "")

	require.NoError(t, err)
	require.NotNil(t, detail.Case)
	assert.Equal(t, "c-late", detail.Case.ID)
}

func TestFromFlag_NoCaseYet(t *testing.T) {
	b := testutil.NewBackend()
	b.AddFlags(testutil.Flag("f1", "t1", 0.9))
	services := b.Services()
	h := New(services)

	detail, err := h.FromFlag(context.Background(), testutil.Flag("f1", "t1", 0.9), "")

	require.NoError(t, err)
	assert.Nil(t, detail.AIDecision)
	assert.Nil(t, detail.Case)
	assert.Empty(t, detail.Notifications)
	assert.Equal(t, 1, services.Calls("ListCases"))
	assert.Equal(t, 0, services.Calls("ListNotifications"))
}

func TestFromFlag_WithCaseWaitPollsUntilCaseAppears(t *testing.T) {
	b := testutil.NewBackend()
	b.AddFlags(testutil.Flag("f1", "t1", 0.9))
	services := b.Services()

	var lookups atomic.Int32
	list := services.ListCasesFn
	services.ListCasesFn = func(ctx context.Context, filter api.CaseFilter) (*model.Page[model.CaseItem], bool) {
		if lookups.Add(1) == 3 {
			b.AddCases(testutil.Case("c1", "t1"))
		}
		return list(ctx, filter)
	}

	h := New(services, WithCaseWait(poll.Options{MaxAttempts: 5, Interval: time.Millisecond}))
	detail, err := h.FromFlag(context.Background(), testutil.Flag("f1", "t1", 0.9), "")

	require.NoError(t, err)
	require.NotNil(t, detail.Case)
	assert.Equal(t, "c1", detail.Case.ID)
	assert.Equal(t, int32(3), lookups.Load())
}

func TestFromCase_ReadsCaseByIDOnly(t *testing.T) {
	b := twoTransactions()
	services := b.Services()
	h := New(services)

	stale := testutil.Case("c2", "t2")
	stale.Status = ""

	detail, err := h.FromCase(context.Background(), stale)

	require.NoError(t, err)
	assert.Equal(t, SeedCase, detail.Seed)
	assert.Equal(t, model.CaseStatusOpen, detail.Case.Status)
	assert.Equal(t, []string{"f2"}, flagIDs(detail.Flags))
	assert.Equal(t, []string{"n2"}, notificationIDs(detail.Notifications))
	assert.Equal(t, "d2", detail.AIDecision.ID)
	assert.Equal(t, "Test Merchant", detail.Transaction.Merchant)
	assert.Equal(t, 0, services.Calls("ListCases"))
}

func TestFromCaseID(t *testing.T) {
	services := twoTransactions().Services()
	h := New(services)

	detail, err := h.FromCaseID(context.Background(), "c2")

	require.NoError(t, err)
	assert.Equal(t, SeedCase, detail.Seed)
	assert.Equal(t, "t2", detail.Transaction.ID)
	assert.Equal(t, []string{"f2"}, flagIDs(detail.Flags))
	assert.Equal(t, []string{"n2"}, notificationIDs(detail.Notifications))
	assert.Equal(t, 1, services.Calls("GetCase"))
	assert.Equal(t, 0, services.Calls("ListCases"))

	_, err = h.FromCaseID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.NotNil(t, h.State().Err)
}

func TestFromNotification(t *testing.T) {
	b := twoTransactions()
	h := New(b.Services())

	detail, err := h.FromNotification(context.Background(), testutil.Notification("n3", "c1"))

	require.NoError(t, err)
	assert.Equal(t, SeedNotification, detail.Seed)
	assert.Equal(t, "t1", detail.Transaction.ID)
	assert.Equal(t, []string{"f1", "f3"}, flagIDs(detail.Flags))
	assert.Equal(t, []string{"n1", "n3"}, notificationIDs(detail.Notifications))
}

func TestFromNotification_ReferentialGapFetchesNothingElse(t *testing.T) {
	b := twoTransactions()
	services := b.Services()
	h := New(services)

	_, err := h.FromNotification(context.Background(), testutil.Notification("n9", "c-missing"))

	require.ErrorIs(t, err, common.ErrReferentialGap)
	assert.Contains(t, err.Error(), "c-missing")
	assert.Equal(t, 0, services.Calls("GetAIDecision"))
	assert.Equal(t, 0, services.Calls("ListFlags"))
	assert.Equal(t, 0, services.Calls("ListNotifications"))

	state := h.State()
	assert.Nil(t, state.Detail)
	assert.ErrorIs(t, state.Err, common.ErrReferentialGap)
}

func TestHydrator_NeverMixesTransactions(t *testing.T) {
	b := twoTransactions()
	h := New(b.Services())
	ctx := context.Background()

	seeds := []func() (Detail, error){
		func() (Detail, error) { return h.FromFlag(ctx, testutil.Flag("f1", "t1", 0.9), "") },
		func() (Detail, error) { return h.FromFlag(ctx, testutil.Flag("f2", "t2", 0.4), "") },
		func() (Detail, error) { return h.FromCase(ctx, testutil.Case("c1", "t1")) },
		func() (Detail, error) { return h.FromNotification(ctx, testutil.Notification("n2", "c2")) },
	}

	for _, hydrate := range seeds {
		detail, err := hydrate()
		require.NoError(t, err)

		txn := detail.Transaction.ID
		require.NotNil(t, detail.Case)
		assert.Equal(t, txn, detail.Case.TransactionID)
		if detail.AIDecision != nil {
			assert.Equal(t, txn, detail.AIDecision.TransactionID)
		}
		for _, f := range detail.Flags {
			assert.Equal(t, txn, f.TransactionID)
		}
		for _, n := range detail.Notifications {
			assert.Equal(t, detail.Case.ID, n.CaseID)
		}

		state := h.State()
		require.NotNil(t, state.Detail)
		assert.Equal(t, txn, state.Detail.Transaction.ID)
	}
}

func TestHydrator_StateIsReplacedWholesale(t *testing.T) {
	b := twoTransactions()
	h := New(b.Services())
	ctx := context.Background()

	_, err := h.FromFlag(ctx, testutil.Flag("f1", "t1", 0.9), "")
	require.NoError(t, err)
	require.NotNil(t, h.State().Detail)

	_, err = h.FromNotification(ctx, testutil.Notification("n9", "nope"))
	require.Error(t, err)
	assert.Nil(t, h.State().Detail)

	_, err = h.FromCase(ctx, testutil.Case("c2", "t2"))
	require.NoError(t, err)
	state := h.State()
	assert.NoError(t, state.Err)
	assert.Equal(t, "t2", state.Detail.Transaction.ID)
}
