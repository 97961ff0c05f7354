package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestConversationRepository_FindOrCreate_Either_Order(t *testing.T) {
	req := require.New(t)
	gdb := testutil.NewDB(t)
	repo := NewConversationRepository(gdb)
	ctx := context.Background()

	first, err := repo.FindOrCreate(ctx, "alice", "bob")
	req.NoError(err)
	second, err := repo.FindOrCreate(ctx, "bob", "alice")
	req.NoError(err)

	req.Equal(first.ID, second.ID)
	req.Equal("alice", first.MemberA)
	req.Equal("bob", first.MemberB)
}

func TestConversationRepository_FindOrCreate_Concurrent(t *testing.T) {
	req := require.New(t)
	gdb := testutil.NewDB(t)
	repo := NewConversationRepository(gdb)
	ctx := context.Background()

	const callers = 8
	ids := make([]uint64, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "alice", "bob"
			if i%2 == 1 {
				a, b = b, a
			}
			cv, err := repo.FindOrCreate(ctx, a, b)
			errs[i] = err
			if err == nil {
				ids[i] = cv.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		req.NoError(errs[i])
		req.Equal(ids[0], ids[i])
	}
	var count int64
	req.NoError(gdb.Model(&model.Conversation{}).Count(&count).Error)
	req.EqualValues(1, count)
}

func TestConversationRepository_CreateMessage_Moves_Latest_Pointer(t *testing.T) {
	req := require.New(t)
	gdb := testutil.NewDB(t)
	repo := NewConversationRepository(gdb)
	ctx := context.Background()

	cv, err := repo.FindOrCreate(ctx, "alice", "bob")
	req.NoError(err)
	req.Nil(cv.LatestMessageID)

	m1 := &model.Message{ConversationID: cv.ID, SenderUID: "alice", Text: "hi"}
	req.NoError(repo.CreateMessage(ctx, m1))
	m2 := &model.Message{ConversationID: cv.ID, SenderUID: "bob", Text: "hello"}
	req.NoError(repo.CreateMessage(ctx, m2))

	got, err := repo.FindByID(ctx, cv.ID)
	req.NoError(err)
	req.NotNil(got.LatestMessageID)
	req.Equal(m2.ID, *got.LatestMessageID)
	req.NotNil(got.LatestMessageAt)
}

func TestConversationRepository_ListMessages_Pages_Backwards(t *testing.T) {
	req := require.New(t)
	gdb := testutil.NewDB(t)
	repo := NewConversationRepository(gdb)
	ctx := context.Background()

	cv, err := repo.FindOrCreate(ctx, "alice", "bob")
	req.NoError(err)
	var ids []uint64
	for _, text := range []string{"one", "two", "three", "four"} {
		m := &model.Message{ConversationID: cv.ID, SenderUID: "alice", Text: text}
		req.NoError(repo.CreateMessage(ctx, m))
		ids = append(ids, m.ID)
	}

	// When fetching the newest page
	page, err := repo.ListMessages(ctx, cv.ID, 0, 2)
	req.NoError(err)
	req.Len(page, 2)
	req.Equal("three", page[0].Text)
	req.Equal("four", page[1].Text)

	// Then the cursor walks to older messages, still oldest first
	older, err := repo.ListMessages(ctx, cv.ID, page[0].ID, 10)
	req.NoError(err)
	req.Len(older, 2)
	req.Equal(ids[0], older[0].ID)
	req.Equal(ids[1], older[1].ID)
}

func TestConversationRepository_FindByUser_Newest_First(t *testing.T) {
	req := require.New(t)
	gdb := testutil.NewDB(t)
	repo := NewConversationRepository(gdb)
	ctx := context.Background()

	withBob, err := repo.FindOrCreate(ctx, "alice", "bob")
	req.NoError(err)
	withCarol, err := repo.FindOrCreate(ctx, "alice", "carol")
	req.NoError(err)
	_, err = repo.FindOrCreate(ctx, "bob", "carol")
	req.NoError(err)

	// Given the older conversation receives a message
	req.NoError(repo.CreateMessage(ctx, &model.Message{ConversationID: withBob.ID, SenderUID: "bob", Text: "ping"}))

	list, err := repo.FindByUser(ctx, "alice")
	req.NoError(err)
	req.Len(list, 2)
	req.Equal(withBob.ID, list[0].ID)
	req.Equal(withCarol.ID, list[1].ID)
}
