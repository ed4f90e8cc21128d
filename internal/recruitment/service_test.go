package recruitment

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

type memoryRepo struct {
	postings    map[int64]Posting
	departments map[int64]struct{}
	nextID      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		postings:    make(map[int64]Posting),
		departments: map[int64]struct{}{1: {}, 2: {}},
	}
}

func (r *memoryRepo) ListPostings(ctx context.Context, status string) ([]Posting, error) {
	var result []Posting
	for _, p := range r.postings {
		if status != "" && p.Status != status {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (r *memoryRepo) GetPosting(ctx context.Context, id int64) (Posting, error) {
	p, ok := r.postings[id]
	if !ok {
		return Posting{}, fmt.Errorf("%w: posting %d", shared.ErrNotFound, id)
	}
	return p, nil
}

func (r *memoryRepo) InsertPosting(ctx context.Context, posting Posting) (Posting, error) {
	r.nextID++
	posting.ID = r.nextID
	posting.CreatedAt = time.Now()
	posting.UpdatedAt = posting.CreatedAt
	r.postings[posting.ID] = posting
	return posting, nil
}

func (r *memoryRepo) UpdatePosting(ctx context.Context, posting Posting) (Posting, error) {
	if _, ok := r.postings[posting.ID]; !ok {
		return Posting{}, fmt.Errorf("%w: posting %d", shared.ErrNotFound, posting.ID)
	}
	posting.UpdatedAt = time.Now()
	r.postings[posting.ID] = posting
	return posting, nil
}

func (r *memoryRepo) DeletePosting(ctx context.Context, id int64) error {
	if _, ok := r.postings[id]; !ok {
		return fmt.Errorf("%w: posting %d", shared.ErrNotFound, id)
	}
	delete(r.postings, id)
	return nil
}

func (r *memoryRepo) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	_, ok := r.departments[id]
	return ok, nil
}

func TestCreatePostingDefaults(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	posting, err := svc.CreatePosting(ctx, CreatePostingInput{Position: "Backend Engineer", DepartmentID: 1})
	require.NoError(t, err)
	require.Equal(t, StatusOpen, posting.Status)
	require.Equal(t, 1, posting.NumberOfPosts)
	require.False(t, posting.PostedDate.IsZero())
}

func TestCreatePostingUnknownDepartment(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.CreatePosting(context.Background(), CreatePostingInput{Position: "Backend Engineer", DepartmentID: 42})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdatePostingStatusTransitions(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	posting, err := svc.CreatePosting(ctx, CreatePostingInput{Position: "Recruiter", DepartmentID: 2})
	require.NoError(t, err)

	closed := StatusClosed
	updated, err := svc.UpdatePosting(ctx, posting.ID, UpdatePostingInput{Status: &closed})
	require.NoError(t, err)
	require.Equal(t, StatusClosed, updated.Status)

	bad := "archived"
	_, err = svc.UpdatePosting(ctx, posting.ID, UpdatePostingInput{Status: &bad})
	require.ErrorIs(t, err, shared.ErrValidation)

	zero := 0
	_, err = svc.UpdatePosting(ctx, posting.ID, UpdatePostingInput{NumberOfPosts: &zero})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestListPostingsByStatus(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.CreatePosting(ctx, CreatePostingInput{Position: "One", DepartmentID: 1})
	require.NoError(t, err)
	_, err = svc.CreatePosting(ctx, CreatePostingInput{Position: "Two", DepartmentID: 1})
	require.NoError(t, err)

	closed := StatusClosed
	_, err = svc.UpdatePosting(ctx, first.ID, UpdatePostingInput{Status: &closed})
	require.NoError(t, err)

	open, err := svc.ListPostings(ctx, StatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, "Two", open[0].Position)

	_, err = svc.ListPostings(ctx, "draft")
	require.ErrorIs(t, err, shared.ErrValidation)
}
