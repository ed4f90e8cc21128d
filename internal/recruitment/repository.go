package recruitment

import "context"

// RepositoryPort defines data access methods for job postings.
type RepositoryPort interface {
	ListPostings(ctx context.Context, status string) ([]Posting, error)
	GetPosting(ctx context.Context, id int64) (Posting, error)
	InsertPosting(ctx context.Context, posting Posting) (Posting, error)
	UpdatePosting(ctx context.Context, posting Posting) (Posting, error)
	DeletePosting(ctx context.Context, id int64) error
	DepartmentExists(ctx context.Context, id int64) (bool, error)
}
