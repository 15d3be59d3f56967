package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *MockRepository, *MockSellerDirectory) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	sellers := NewMockSellerDirectory(ctrl)
	svc := NewService(repo, sellers)
	svc.now = func() time.Time { return epoch }
	return svc, repo, sellers
}

func TestService_Create(t *testing.T) {
	svc, repo, _ := newTestService(t)
	price := 12.5
	d := Draft{
		Title:       "Dune",
		Author:      "Frank Herbert",
		Genre:       "Science Fiction",
		Condition:   ConditionGood,
		Price:       &price,
		Description: "A desert planet epic saga.",
	}

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, l *Listing) error {
		l.ID = "listing-1"
		return nil
	})

	l, err := svc.Create(context.Background(), "seller-1", d)
	require.NoError(t, err)
	assert.Equal(t, "listing-1", l.ID)
	assert.Equal(t, "seller-1", l.SellerID)
	assert.Equal(t, StatusAvailable, l.Status)
	assert.Equal(t, DefaultImageURL, l.ImageURL)
	assert.Zero(t, l.Views)
	assert.Equal(t, epoch, l.CreatedAt)
	assert.Equal(t, epoch, l.UpdatedAt)
	assert.Equal(t, 12.5, l.Price)
}

func TestService_CreateKeepsImage(t *testing.T) {
	svc, repo, _ := newTestService(t)
	price := 3.0
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	l, err := svc.Create(context.Background(), "seller-1", Draft{Price: &price, ImageURL: "https://example.com/c.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/c.jpg", l.ImageURL)
}

func TestService_Get(t *testing.T) {
	svc, repo, sellers := newTestService(t)
	stored := book("b1", 9, func(l *Listing) { l.SellerID = "s1"; l.Views = 4 })

	repo.EXPECT().IncrementViews(gomock.Any(), "b1").Return(stored, nil)
	sellers.EXPECT().Sellers(gomock.Any(), []string{"s1"}).Return(map[string]Seller{
		"s1": {ID: "s1", Name: "Ada", Email: "ada@example.com", Phone: "555", Location: "Leeds"},
	}, nil)

	sum, err := svc.Get(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), sum.Views)
	assert.Equal(t, "Ada", sum.SellerName)
	assert.Equal(t, "ada@example.com", sum.SellerEmail)
	assert.Equal(t, "555", sum.SellerPhone)
	assert.Equal(t, "Leeds", sum.SellerLocation)
	assert.Nil(t, sum.Score)
}

func TestService_GetNotFound(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.EXPECT().IncrementViews(gomock.Any(), "missing").Return(Listing{}, ErrNotFound)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_List(t *testing.T) {
	t.Run("ranks and paginates what the repository found", func(t *testing.T) {
		svc, repo, sellers := newTestService(t)
		q := DefaultQuery()
		q.Filter.Search = "dune"
		q.Sort.ByScore = true

		repo.EXPECT().Find(gomock.Any(), q.Filter).Return([]Listing{
			book("a", 5, func(l *Listing) { l.Title = "Dune"; l.SellerID = "s1" }),
			book("b", 5, func(l *Listing) { l.Title = "Dune Messiah"; l.Description = "Dune again, and more dune."; l.SellerID = "s2" }),
			book("c", 5, func(l *Listing) { l.Title = "Emma"; l.SellerID = "s1" }),
		}, nil)
		sellers.EXPECT().Sellers(gomock.Any(), []string{"s2", "s1"}).Return(map[string]Seller{"s1": {Name: "One"}}, nil)

		items, page, err := svc.List(context.Background(), q)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "b", items[0].ID)
		assert.Equal(t, "a", items[1].ID)
		require.NotNil(t, items[0].Score)
		assert.Equal(t, 5.0, *items[0].Score)
		assert.Empty(t, items[0].SellerName)
		assert.Equal(t, "One", items[1].SellerName)
		assert.Equal(t, 2, page.TotalBooks)
	})

	t.Run("inverted price range skips the repository", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		q := DefaultQuery()
		lo, hi := 9.0, 1.0
		q.Filter.MinPrice, q.Filter.MaxPrice = &lo, &hi

		items, page, err := svc.List(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, 0, page.TotalBooks)
	})

	t.Run("repository failure", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().Find(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		_, _, err := svc.List(context.Background(), DefaultQuery())
		assert.Error(t, err)
	})
}

func TestService_ListBySeller(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.EXPECT().ListBySeller(gomock.Any(), "s1").Return([]Listing{
		book("old", 1, func(l *Listing) { l.Status = StatusSold }),
		book("new", 1, func(l *Listing) { l.CreatedAt = epoch.Add(time.Hour) }),
	}, nil)

	items, err := svc.ListBySeller(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "new", items[0].ID)
	assert.Equal(t, "old", items[1].ID)
}

func TestService_Update(t *testing.T) {
	owned := book("b1", 10, func(l *Listing) { l.SellerID = "alice" })
	price := 20.0
	patch := Patch{Price: &price}

	t.Run("owner", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		updated := owned
		updated.Price = price
		repo.EXPECT().GetByID(gomock.Any(), "b1").Return(owned, nil)
		repo.EXPECT().Update(gomock.Any(), "b1", patch).Return(updated, nil)

		l, err := svc.Update(context.Background(), "alice", "b1", patch)
		require.NoError(t, err)
		assert.Equal(t, 20.0, l.Price)
	})

	t.Run("someone else is forbidden and nothing changes", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), "b1").Return(owned, nil)

		_, err := svc.Update(context.Background(), "bob", "b1", patch)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("anonymous is forbidden", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), "b1").Return(owned, nil)

		_, err := svc.Update(context.Background(), "", "b1", patch)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing listing", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), "b9").Return(Listing{}, ErrNotFound)

		_, err := svc.Update(context.Background(), "alice", "b9", patch)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty patch returns current listing", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), "b1").Return(owned, nil)

		l, err := svc.Update(context.Background(), "alice", "b1", Patch{})
		require.NoError(t, err)
		assert.Equal(t, owned, l)
	})
}

func TestService_SetStatus(t *testing.T) {
	svc, repo, _ := newTestService(t)
	owned := book("b1", 10, func(l *Listing) { l.SellerID = "alice"; l.Status = StatusSold })
	st := StatusAvailable
	back := owned
	back.Status = st

	repo.EXPECT().GetByID(gomock.Any(), "b1").Return(owned, nil)
	repo.EXPECT().Update(gomock.Any(), "b1", Patch{Status: &st}).Return(back, nil)

	l, err := svc.SetStatus(context.Background(), "alice", "b1", st)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, l.Status)
}

func TestService_Delete(t *testing.T) {
	owned := book("b1", 10, func(l *Listing) { l.SellerID = "alice" })

	t.Run("owner", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), "b1").Return(owned, nil)
		repo.EXPECT().Delete(gomock.Any(), "b1").Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), "alice", "b1"))
	})

	t.Run("someone else", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), "b1").Return(owned, nil)

		assert.ErrorIs(t, svc.Delete(context.Background(), "bob", "b1"), ErrForbidden)
	})

	t.Run("malformed id", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), "???").Return(Listing{}, ErrInvalidID)

		assert.ErrorIs(t, svc.Delete(context.Background(), "alice", "???"), ErrInvalidID)
	})
}
