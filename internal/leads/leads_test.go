package leads_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-rems/internal/leads"
	"github.com/diewo77/go-rems/internal/testdb"
)

func TestParseStatus(t *testing.T) {
	for _, s := range leads.Statuses {
		got, err := leads.ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := leads.ParseStatus(" Offer ")
	require.NoError(t, err)
	assert.Equal(t, leads.StatusOffer, got)

	for _, bad := range []string{"", "won", "lost", "archived"} {
		_, err := leads.ParseStatus(bad)
		assert.ErrorIs(t, err, leads.ErrInvalidStatus, bad)
	}
}

// Every store must accept every (current, target) pair.
func storeContract(t *testing.T, newStore func(t *testing.T) leads.Store) {
	ctx := context.Background()

	t.Run("any transition", func(t *testing.T) {
		st := newStore(t)
		for _, from := range leads.Statuses {
			for _, to := range leads.Statuses {
				t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
					l, err := st.Add(ctx, leads.Lead{PropertyID: 1, AgentID: 2, BuyerName: "B", BuyerEmail: "b@x.io", Status: from})
					require.NoError(t, err)
					got, err := st.SetStatus(ctx, l.ID, to)
					require.NoError(t, err)
					assert.Equal(t, to, got.Status)
				})
			}
		}
	})

	t.Run("defaults and lookups", func(t *testing.T) {
		st := newStore(t)
		a, err := st.Add(ctx, leads.Lead{PropertyID: 10, AgentID: 7, BuyerName: "A", BuyerEmail: "a@x.io"})
		require.NoError(t, err)
		assert.Equal(t, leads.StatusNew, a.Status)
		_, err = st.Add(ctx, leads.Lead{PropertyID: 11, AgentID: 7, BuyerName: "B", BuyerEmail: "b@x.io", Status: leads.StatusOffer})
		require.NoError(t, err)
		_, err = st.Add(ctx, leads.Lead{PropertyID: 12, AgentID: 8, BuyerName: "C", BuyerEmail: "c@x.io"})
		require.NoError(t, err)

		got, err := st.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "A", got.BuyerName)

		byProp, err := st.ListByProperty(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, byProp, 1)

		mine, err := st.ListForAgent(ctx, 7)
		require.NoError(t, err)
		assert.Len(t, mine, 2)
		assert.Greater(t, mine[0].ID, mine[1].ID, "newest first")

		counts, err := st.CountByStatus(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 1, counts[leads.StatusNew])
		assert.Equal(t, 1, counts[leads.StatusOffer])
		assert.Equal(t, 0, counts[leads.StatusClosed])
	})

	t.Run("statuses are stored canonical", func(t *testing.T) {
		st := newStore(t)
		l, err := st.Add(ctx, leads.Lead{PropertyID: 3, AgentID: 5, BuyerName: "N", BuyerEmail: "n@x.io", Status: " Offer "})
		require.NoError(t, err)
		assert.Equal(t, leads.StatusOffer, l.Status)

		got, err := st.SetStatus(ctx, l.ID, "CLOSED")
		require.NoError(t, err)
		assert.Equal(t, leads.StatusClosed, got.Status)

		stored, err := st.Get(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, leads.StatusClosed, stored.Status)

		counts, err := st.CountByStatus(ctx, 5)
		require.NoError(t, err)
		assert.Len(t, counts, len(leads.Statuses))
		assert.Equal(t, 1, counts[leads.StatusClosed])
	})

	t.Run("errors", func(t *testing.T) {
		st := newStore(t)
		_, err := st.Get(ctx, 99)
		assert.ErrorIs(t, err, leads.ErrNotFound)
		_, err = st.SetStatus(ctx, 99, leads.StatusClosed)
		assert.ErrorIs(t, err, leads.ErrNotFound)

		l, err := st.Add(ctx, leads.Lead{PropertyID: 1, AgentID: 1, BuyerName: "x", BuyerEmail: "x@x.io"})
		require.NoError(t, err)
		_, err = st.SetStatus(ctx, l.ID, "won")
		assert.ErrorIs(t, err, leads.ErrInvalidStatus)
		_, err = st.Add(ctx, leads.Lead{Status: "won"})
		assert.ErrorIs(t, err, leads.ErrInvalidStatus)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, func(*testing.T) leads.Store { return leads.NewMemoryStore() })
}

func TestGormStore(t *testing.T) {
	storeContract(t, func(t *testing.T) leads.Store { return leads.NewGormStore(testdb.SQLite(t)) })
}

func TestSessionStores(t *testing.T) {
	ctx := context.Background()
	reg := leads.NewSessionStores()

	a := reg.For("session-a")
	_, err := a.Add(ctx, leads.Lead{AgentID: 1, BuyerName: "x", BuyerEmail: "x@x.io"})
	require.NoError(t, err)
	assert.Same(t, a, reg.For("session-a"))

	other, err := reg.For("session-b").ListForAgent(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, other, "sessions do not share leads")

	reg.Drop("session-a")
	fresh, err := reg.For("session-a").ListForAgent(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, fresh, "state is lost with the session")
	assert.Equal(t, 2, reg.Len())
}
